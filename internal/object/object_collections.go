package object

import (
	"strings"
)

// List
type List struct {
	Elements []Object
}

func (l *List) Type() ObjectType { return LIST_OBJ }
func (l *List) Inspect() string {
	var out strings.Builder
	out.WriteString("[")
	for i, el := range l.Elements {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(el.Inspect())
	}
	out.WriteString("]")
	return out.String()
}
func (l *List) Hash() uint32 {
	var h uint32 = 17
	for _, el := range l.Elements {
		h = 31*h + el.Hash()
	}
	return h
}

func (l *List) Len() int { return len(l.Elements) }

// First returns the head element, or nil for an empty list.
func (l *List) First() Object {
	if len(l.Elements) == 0 {
		return nil
	}
	return l.Elements[0]
}

// Tuple
type Tuple struct {
	Elements []Object
}

func (t *Tuple) Type() ObjectType { return TUPLE_OBJ }
func (t *Tuple) Inspect() string {
	var out strings.Builder
	out.WriteString("(")
	for i, el := range t.Elements {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(el.Inspect())
	}
	out.WriteString(")")
	return out.String()
}
func (t *Tuple) Hash() uint32 {
	var h uint32 = 19
	for _, el := range t.Elements {
		h = 31*h + el.Hash()
	}
	return h
}

// First returns the head element, or nil for an empty tuple.
func (t *Tuple) First() Object {
	if len(t.Elements) == 0 {
		return nil
	}
	return t.Elements[0]
}
