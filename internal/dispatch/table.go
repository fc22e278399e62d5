package dispatch

import (
	"fmt"
	"sort"
	"sync"

	"github.com/funvibe/genfun/internal/object"
)

// Names of the two generics the engine defines for itself. Both are
// ordinary generics in the same table; third parties extend the
// engine by defining methods on them.
const (
	GeneralizersOfName = "generalizers-of"
	CombineMethodsName = "combine-methods"
)

// Table is one process-wide namespace of generic functions plus the
// registration state the built-in generalizers read: the eql-literal
// buckets and the head-tag set, both append-only. Definition events
// serialize on the mutex. Calls assume a single goroutine: a miss
// populates cache tables without locking, computing a pure function
// of the state captured when the current entry point was installed.
// Callers mixing concurrent invocation with definition must
// synchronize externally; the atomic entry-point swap only guarantees
// that an in-flight call keeps a consistent old dispatcher.
type Table struct {
	mu       sync.Mutex
	generics map[string]*Generic

	eqlLiterals map[string][]object.Object
	headTags    map[string]struct{}

	combinedMemo map[string]*combinedState
	taggerMemo   map[string]*tagger

	generalizersOf *Generic
	combiner       *Generic

	// bootstrapping short-circuits generalizer resolution while the
	// generalizers-of generic is being given its own methods.
	bootstrapping bool
}

// NewTable creates a table and bootstraps the extension generics.
func NewTable() *Table {
	t := &Table{
		generics:     make(map[string]*Generic),
		eqlLiterals:  make(map[string][]object.Object),
		headTags:     make(map[string]struct{}),
		combinedMemo: make(map[string]*combinedState),
		taggerMemo:   make(map[string]*tagger),
	}
	t.bootstrap()
	return t
}

func (t *Table) bootstrap() {
	t.bootstrapping = true
	defer func() { t.bootstrapping = false }()

	gz := newGeneric(t, GeneralizersOfName, GenericOptions{
		Documentation: "Maps a specializer form to the generalizers that govern it.",
		Params:        []string{"specializer"},
	})
	gz.internal = true
	t.generics[GeneralizersOfName] = gz
	t.generalizersOf = gz

	builtin := map[string][]Generalizer{
		KindEql:    {&eqlGeneralizer{t: t}},
		KindHead:   {&headGeneralizer{t: t}},
		KindStruct: {structGeneralizer{}},
		KindType:   {typeGeneralizer{}},
		KindAny:    {universalGeneralizer{}},
	}
	kinds := make([]string, 0, len(builtin))
	for kind := range builtin {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		gens := builtin[kind]
		result := &GeneralizerList{Generalizers: gens}
		if _, err := t.defineMethod(GeneralizersOfName, MethodSpec{
			Specializers: []Specializer{Head{Tag: kind}},
			Fn: func(next NextMethod, args []object.Object) (object.Object, error) {
				return result, nil
			},
		}); err != nil {
			panic(fmt.Sprintf("dispatch: bootstrap of %s: %v", GeneralizersOfName, err))
		}
	}

	cm := newGeneric(t, CombineMethodsName, GenericOptions{
		Documentation: "Builds one callable from a sorted applicable-method list.",
		Params:        []string{"generic", "methods"},
	})
	cm.internal = true
	t.generics[CombineMethodsName] = cm
	t.combiner = cm

	if _, err := t.defineMethod(CombineMethodsName, MethodSpec{
		Specializers: []Specializer{Any{}, Any{}},
		Fn: func(next NextMethod, args []object.Object) (object.Object, error) {
			ref, ok := args[0].(*GenericRef)
			if !ok {
				return nil, fmt.Errorf("combine-methods: first argument is %s, want a generic", args[0].Inspect())
			}
			ml, ok := args[1].(*MethodList)
			if !ok {
				return nil, fmt.Errorf("combine-methods: second argument is %s, want a method list", args[1].Inspect())
			}
			fn, err := defaultCombine(ref.Generic, ml.Methods)
			if err != nil {
				return nil, err
			}
			return &Combined{Fn: fn}, nil
		},
	}); err != nil {
		panic(fmt.Sprintf("dispatch: bootstrap of %s: %v", CombineMethodsName, err))
	}
}

// GeneralizersOf exposes the specializer-resolution extension point.
func (t *Table) GeneralizersOf() *Generic { return t.generalizersOf }

// CombineMethods exposes the combination-strategy extension point.
func (t *Table) CombineMethods() *Generic { return t.combiner }

// Generic looks up a generic function by name.
func (t *Table) Generic(name string) (*Generic, bool) {
	g, ok := t.generics[name]
	return g, ok
}

// Generics returns all defined names, sorted.
func (t *Table) Generics() []string {
	names := make([]string, 0, len(t.generics))
	for name := range t.generics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call invokes a generic function by name.
func (t *Table) Call(name string, args ...object.Object) (object.Object, error) {
	g, ok := t.generics[name]
	if !ok {
		return nil, fmt.Errorf("undefined generic function '%s'", name)
	}
	return g.Call(args...)
}

// DefineGeneric creates or reconfigures a generic function. The
// precedence option must be a permutation of the declared parameter
// names; anything else is an invalid-precedence error.
func (t *Table) DefineGeneric(name string, opts GenericOptions) (*Generic, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(opts.Precedence) > 0 {
		if err := validatePrecedence(name, opts); err != nil {
			return nil, err
		}
	}
	g, ok := t.generics[name]
	if !ok {
		g = newGeneric(t, name, opts)
		t.generics[name] = g
		return g, nil
	}
	g.opts = opts
	g.sortAxes()
	g.rebuild()
	return g, nil
}

func validatePrecedence(name string, opts GenericOptions) error {
	if len(opts.Precedence) != len(opts.Params) {
		return &InvalidPrecedenceError{Generic: name}
	}
	seen := make(map[string]bool, len(opts.Precedence))
	for _, p := range opts.Precedence {
		mandatory := false
		for _, param := range opts.Params {
			if param == p {
				mandatory = true
				break
			}
		}
		if !mandatory {
			return &InvalidPrecedenceError{Generic: name, Param: p}
		}
		if seen[p] {
			return &InvalidPrecedenceError{Generic: name}
		}
		seen[p] = true
	}
	return nil
}

// DefineMethod adds a method to a generic function, creating the
// generic on first definition. A method with the same identity key —
// specializer list plus full qualifier list — replaces the old one
// and the entry point is reinstalled either way.
func (t *Table) DefineMethod(name string, spec MethodSpec) (*Method, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.defineMethod(name, spec)
}

func (t *Table) defineMethod(name string, spec MethodSpec) (*Method, error) {
	if spec.Fn == nil {
		return nil, fmt.Errorf("generic function '%s': method has no body", name)
	}
	g, ok := t.generics[name]
	if !ok {
		g = newGeneric(t, name, GenericOptions{})
		t.generics[name] = g
	}
	if len(g.opts.Params) > 0 && len(spec.Specializers) > len(g.opts.Params) {
		return nil, fmt.Errorf("generic function '%s': %d specializers for %d parameters",
			name, len(spec.Specializers), len(g.opts.Params))
	}
	for ctx := range spec.ContextSpecs {
		if _, ok := g.opts.Contexts[ctx]; !ok {
			return nil, fmt.Errorf("generic function '%s': unknown context expression '%s'", name, ctx)
		}
	}

	for _, s := range spec.Specializers {
		t.registerSpecializer(s)
	}
	for _, s := range spec.ContextSpecs {
		t.registerSpecializer(s)
	}

	for i, s := range spec.Specializers {
		gens, err := t.generalizersFor(s)
		if err != nil {
			return nil, err
		}
		g.mergeAxis(dispatchKey{Arg: i}, gens)
	}
	for ctx, s := range spec.ContextSpecs {
		gens, err := t.generalizersFor(s)
		if err != nil {
			return nil, err
		}
		g.mergeAxis(dispatchKey{Arg: -1, Context: ctx}, gens)
	}

	m := &Method{
		Specializers: append([]Specializer(nil), spec.Specializers...),
		Qualifiers:   append([]string(nil), spec.Qualifiers...),
		UsesNext:     spec.UsesNext,
		Fn:           spec.Fn,
	}
	if len(spec.ContextSpecs) > 0 {
		m.ContextSpecs = make(map[string]Specializer, len(spec.ContextSpecs))
		for ctx, s := range spec.ContextSpecs {
			m.ContextSpecs[ctx] = s
		}
	}
	g.insertMethod(m)
	if g.internal {
		t.invalidateDerived()
	}
	g.rebuild()
	return m, nil
}

// invalidateDerived discards the combined-method memo and reinstalls
// every entry point. Required when an extension generic changes:
// strategies already memoized for other generics would otherwise stay
// reachable through their installed entry points.
func (t *Table) invalidateDerived() {
	t.combinedMemo = make(map[string]*combinedState)
	for _, g := range t.generics {
		g.rebuild()
	}
}

// RemoveMethod removes the method matching the identity fields of
// spec (qualifiers, specializers, context specializers) and reports
// whether one was removed. Methods go away only this way; definition
// events otherwise replace.
func (t *Table) RemoveMethod(name string, spec MethodSpec) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	g, ok := t.generics[name]
	if !ok {
		return false, fmt.Errorf("undefined generic function '%s'", name)
	}
	if !g.removeMethod(identityKey(spec.Qualifiers, spec.Specializers, spec.ContextSpecs)) {
		return false, nil
	}
	if g.internal {
		t.invalidateDerived()
	}
	g.rebuild()
	return true, nil
}

// RemoveGeneric drops a generic function entirely. The extension
// generics cannot be removed.
func (t *Table) RemoveGeneric(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	g, ok := t.generics[name]
	if !ok || g.internal {
		return false
	}
	delete(t.generics, name)
	return true
}

// registerSpecializer records the literals the built-in generalizers
// extract in O(1): eql literals and head tags. Registration is
// append-only so cache tags stay bounded to declared literals.
func (t *Table) registerSpecializer(s Specializer) {
	switch sp := s.(type) {
	case Eql:
		key := eqlKeyOf(sp.Value)
		for _, lit := range t.eqlLiterals[key] {
			if object.ObjectsEqual(lit, sp.Value) {
				return
			}
		}
		t.eqlLiterals[key] = append(t.eqlLiterals[key], sp.Value)
	case Head:
		t.headTags[sp.Tag] = struct{}{}
	}
}

// generalizersFor resolves the generalizers governing a specializer
// by calling the generalizers-of generic on its form. During
// bootstrap, while that generic acquires its own methods, resolution
// falls back to the built-in families directly.
func (t *Table) generalizersFor(s Specializer) ([]Generalizer, error) {
	if t.bootstrapping {
		return t.builtinGeneralizers(s), nil
	}
	res, err := t.generalizersOf.Call(s.Form())
	if err != nil {
		return nil, fmt.Errorf("resolving generalizers for %s: %w", s.String(), err)
	}
	gl, ok := res.(*GeneralizerList)
	if !ok {
		return nil, fmt.Errorf("resolving generalizers for %s: got %s, want a generalizer list",
			s.String(), res.Inspect())
	}
	return gl.Generalizers, nil
}

func (t *Table) builtinGeneralizers(s Specializer) []Generalizer {
	switch s.(type) {
	case Eql:
		return []Generalizer{&eqlGeneralizer{t: t}}
	case Head:
		return []Generalizer{&headGeneralizer{t: t}}
	case Struct:
		return []Generalizer{structGeneralizer{}}
	case TypeOf:
		return []Generalizer{typeGeneralizer{}}
	default:
		return []Generalizer{universalGeneralizer{}}
	}
}
