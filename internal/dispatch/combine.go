package dispatch

import (
	"github.com/funvibe/genfun/internal/object"
)

// defaultCombine builds the default effective method from a method
// list already filtered to the call and sorted most specific first:
// around methods wrap before/after methods, which wrap the primary
// chain. The most specific method of each wrapping role runs
// outermost; after methods run least specific first.
func defaultCombine(g *Generic, methods []*Method) (dispatcher, error) {
	if len(methods) == 0 {
		return func(args []object.Object) (object.Object, error) {
			return nil, &NoApplicableMethodError{Generic: g.name, Args: args}
		}, nil
	}

	var primaries, befores, afters, arounds []*Method
	for _, m := range methods {
		role, ok := m.role()
		if !ok {
			return nil, &UnsupportedQualifierError{Generic: g.name, Qualifiers: m.Qualifiers}
		}
		switch role {
		case RoleBefore:
			befores = append(befores, m)
		case RoleAfter:
			afters = append(afters, m)
		case RoleAround:
			arounds = append(arounds, m)
		default:
			primaries = append(primaries, m)
		}
	}
	if len(primaries) == 0 {
		return nil, &NoPrimaryMethodError{Generic: g.name}
	}

	core := foldChain(g, primaries, nil)

	if len(befores) > 0 || len(afters) > 0 {
		inner := core
		core = func(args []object.Object) (object.Object, error) {
			for _, m := range befores {
				if _, err := m.Fn(noNext(g, args), args); err != nil {
					return nil, err
				}
			}
			res, err := inner(args)
			if err != nil {
				return nil, err
			}
			for i := len(afters) - 1; i >= 0; i-- {
				if _, err := afters[i].Fn(noNext(g, args), args); err != nil {
					return nil, err
				}
			}
			return res, nil
		}
	}

	if len(arounds) > 0 {
		core = foldChain(g, arounds, core)
	}
	return core, nil
}

// foldChain links methods right to left so the most specific one ends
// up outermost. Each link's continuation is bound to the next link;
// past the last link it is the tail (or the no-next-method signal
// when tail is nil). Calling the continuation with no arguments
// re-applies the argument list this link received.
func foldChain(g *Generic, methods []*Method, tail dispatcher) dispatcher {
	next := tail
	if next == nil {
		next = func(args []object.Object) (object.Object, error) {
			return nil, &NoNextMethodError{Generic: g.name, Args: args}
		}
	}
	for i := len(methods) - 1; i >= 0; i-- {
		m := methods[i]
		inner := next
		next = func(args []object.Object) (object.Object, error) {
			nm := func(override ...object.Object) (object.Object, error) {
				if len(override) == 0 {
					return inner(args)
				}
				return inner(override)
			}
			return m.Fn(nm, args)
		}
	}
	return next
}

// noNext is the continuation handed to before and after methods,
// which have no chain to continue into.
func noNext(g *Generic, args []object.Object) NextMethod {
	return func(override ...object.Object) (object.Object, error) {
		if len(override) == 0 {
			override = args
		}
		return nil, &NoNextMethodError{Generic: g.name, Args: override}
	}
}
