package object

// ObjectsEqual performs a deep equality check between two objects.
func ObjectsEqual(a, b Object) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}

	if eq, ok := a.(Equaler); ok {
		return eq.Equals(b)
	}
	if eq, ok := b.(Equaler); ok {
		return eq.Equals(a)
	}

	if a.Type() != b.Type() {
		return false
	}

	switch aVal := a.(type) {
	case *Integer:
		if bVal, ok := b.(*Integer); ok {
			return aVal.Value == bVal.Value
		}
	case *Float:
		if bVal, ok := b.(*Float); ok {
			return aVal.Value == bVal.Value
		}
	case *Boolean:
		if bVal, ok := b.(*Boolean); ok {
			return aVal.Value == bVal.Value
		}
	case *Char:
		if bVal, ok := b.(*Char); ok {
			return aVal.Value == bVal.Value
		}
	case *String:
		if bVal, ok := b.(*String); ok {
			return aVal.Value == bVal.Value
		}
	case *Nil:
		_, ok := b.(*Nil)
		return ok
	case *List:
		if bVal, ok := b.(*List); ok {
			if len(aVal.Elements) != len(bVal.Elements) {
				return false
			}
			for i := range aVal.Elements {
				if !ObjectsEqual(aVal.Elements[i], bVal.Elements[i]) {
					return false
				}
			}
			return true
		}
	case *Tuple:
		if bVal, ok := b.(*Tuple); ok {
			if len(aVal.Elements) != len(bVal.Elements) {
				return false
			}
			for i := range aVal.Elements {
				if !ObjectsEqual(aVal.Elements[i], bVal.Elements[i]) {
					return false
				}
			}
			return true
		}
	case *Record:
		if bVal, ok := b.(*Record); ok {
			if aVal.RType != bVal.RType {
				return false
			}
			for _, name := range aVal.RType.Fields {
				if !ObjectsEqual(aVal.Fields[name], bVal.Fields[name]) {
					return false
				}
			}
			return true
		}
	case *Builtin:
		return false // builtins are equal only by identity, handled above
	}
	return false
}
