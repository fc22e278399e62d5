package dispatch

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/funvibe/genfun/internal/object"
)

// modSpecializer matches integers by residue class: a third-party
// specializer kind the engine knows nothing about.
type modSpecializer struct {
	div, rem int64
}

func (s modSpecializer) Key() string { return fmt.Sprintf("mod/%d/%d", s.div, s.rem) }
func (s modSpecializer) Form() object.Object {
	return list(str("mod"), num(s.div), num(s.rem))
}
func (s modSpecializer) String() string { return fmt.Sprintf("<mod %d %d>", s.div, s.rem) }

type modTag struct {
	div, rem int64
}

type modGeneralizer struct {
	div int64
}

func (g modGeneralizer) Priority() int { return 60 }
func (g modGeneralizer) ID() string    { return fmt.Sprintf("mod/%d", g.div) }

func (g modGeneralizer) TagOf(arg object.Object) (Tag, bool) {
	i, ok := arg.(*object.Integer)
	if !ok {
		return nil, false
	}
	return modTag{div: g.div, rem: ((i.Value % g.div) + g.div) % g.div}, true
}

func (g modGeneralizer) SpecializersFor(tag Tag) []Specializer {
	mt := tag.(modTag)
	return []Specializer{
		modSpecializer{div: mt.div, rem: mt.rem},
		TypeOf{T: object.INTEGER_OBJ},
		TypeOf{T: object.NUMBER_OBJ},
		Any{},
	}
}

func TestCustomSpecializerKind(t *testing.T) {
	tbl := NewTable()

	// Registering the kind is an ordinary method definition on the
	// generalizers-of generic, dispatched by the form's head tag.
	gens := &GeneralizerList{Generalizers: []Generalizer{modGeneralizer{div: 3}}}
	mustDefine(t, tbl, GeneralizersOfName, MethodSpec{
		Specializers: []Specializer{Head{Tag: "mod"}},
		Fn: func(next NextMethod, args []object.Object) (object.Object, error) {
			return gens, nil
		},
	})

	mustDefine(t, tbl, "fizz", MethodSpec{
		Specializers: []Specializer{modSpecializer{div: 3, rem: 0}},
		Fn:           ret("fizz"),
	})
	mustDefine(t, tbl, "fizz", MethodSpec{
		Specializers: []Specializer{TypeOf{T: object.INTEGER_OBJ}},
		Fn:           ret("plain"),
	})

	tests := []struct {
		n        int64
		expected string
	}{
		{9, "fizz"},
		{3, "fizz"},
		{4, "plain"},
		{5, "plain"},
		{0, "fizz"},
	}
	for _, tt := range tests {
		if got := callString(t, tbl, "fizz", num(tt.n)); got != tt.expected {
			t.Errorf("fizz(%d) = %q, want %q", tt.n, got, tt.expected)
		}
	}
}

func TestUnknownSpecializerKindFailsDefinition(t *testing.T) {
	tbl := NewTable()
	_, err := tbl.DefineMethod("f", MethodSpec{
		Specializers: []Specializer{modSpecializer{div: 7, rem: 1}},
		Fn:           ret("x"),
	})
	if err == nil {
		t.Fatal("defining a method with an unregistered specializer kind succeeded")
	}
	var nam *NoApplicableMethodError
	if !errors.As(err, &nam) || nam.Generic != GeneralizersOfName {
		t.Errorf("error = %v, want no-applicable-method from %s", err, GeneralizersOfName)
	}
}

func TestCustomCombinationStrategy(t *testing.T) {
	tbl := NewTable()
	g, err := tbl.DefineGeneric("tags", GenericOptions{Params: []string{"x"}})
	if err != nil {
		t.Fatal(err)
	}

	// Strategy for this one generic: run every primary, join results.
	mustDefine(t, tbl, CombineMethodsName, MethodSpec{
		Specializers: []Specializer{Eql{Value: &GenericRef{Generic: g}}, Any{}},
		UsesNext:     true,
		Fn: func(next NextMethod, args []object.Object) (object.Object, error) {
			ml := args[1].(*MethodList)
			methods := ml.Methods
			return &Combined{Fn: func(callArgs []object.Object) (object.Object, error) {
				var parts []string
				for _, m := range methods {
					res, err := m.Fn(noNext(g, callArgs), callArgs)
					if err != nil {
						return nil, err
					}
					if s, ok := res.(*object.String); ok {
						parts = append(parts, s.Value)
					}
				}
				return str(strings.Join(parts, "+")), nil
			}}, nil
		},
	})

	wide, mid, _ := chainTypes()
	mustDefine(t, tbl, "tags", MethodSpec{
		Specializers: []Specializer{Struct{RType: wide}},
		Fn:           ret("wide"),
	})
	mustDefine(t, tbl, "tags", MethodSpec{
		Specializers: []Specializer{Struct{RType: mid}},
		Fn:           ret("mid"),
	})

	if got := callString(t, tbl, "tags", object.NewRecord(mid, nil)); got != "mid+wide" {
		t.Errorf("tags(mid) = %q, want mid+wide (custom combination)", got)
	}

	// Other generics keep the default combination.
	mustDefine(t, tbl, "other", MethodSpec{
		Specializers: []Specializer{Struct{RType: mid}},
		Fn:           ret("default"),
	})
	mustDefine(t, tbl, "other", MethodSpec{
		Specializers: []Specializer{Struct{RType: wide}},
		Fn:           ret("ignored"),
	})
	if got := callString(t, tbl, "other", object.NewRecord(mid, nil)); got != "default" {
		t.Errorf("other(mid) = %q, want default", got)
	}
}

func TestCombinationStrategyCanDeferToDefault(t *testing.T) {
	tbl := NewTable()
	g, err := tbl.DefineGeneric("plain", GenericOptions{Params: []string{"x"}})
	if err != nil {
		t.Fatal(err)
	}

	deferred := false
	mustDefine(t, tbl, CombineMethodsName, MethodSpec{
		Specializers: []Specializer{Eql{Value: &GenericRef{Generic: g}}, Any{}},
		UsesNext:     true,
		Fn: func(next NextMethod, args []object.Object) (object.Object, error) {
			deferred = true
			return next()
		},
	})
	mustDefine(t, tbl, "plain", MethodSpec{
		Specializers: []Specializer{TypeOf{T: object.INTEGER_OBJ}},
		Fn:           ret("value"),
	})

	if got := callString(t, tbl, "plain", num(1)); got != "value" {
		t.Errorf("plain(1) = %q, want value", got)
	}
	if !deferred {
		t.Error("custom strategy was never consulted")
	}
}

func TestCyclicCombinationDetected(t *testing.T) {
	tbl := NewTable()
	g, err := tbl.DefineGeneric("loopy", GenericOptions{Params: []string{"x"}})
	if err != nil {
		t.Fatal(err)
	}

	// A strategy that calls its own generic while the combined method
	// is still under construction.
	mustDefine(t, tbl, CombineMethodsName, MethodSpec{
		Specializers: []Specializer{Eql{Value: &GenericRef{Generic: g}}, Any{}},
		UsesNext:     true,
		Fn: func(next NextMethod, args []object.Object) (object.Object, error) {
			if _, err := tbl.Call("loopy", num(7)); err != nil {
				return nil, err
			}
			return next()
		},
	})
	mustDefine(t, tbl, "loopy", MethodSpec{
		Specializers: []Specializer{TypeOf{T: object.INTEGER_OBJ}},
		Fn:           ret("v"),
	})

	_, err = tbl.Call("loopy", num(7))
	var cd *CyclicDefinitionError
	if !errors.As(err, &cd) {
		t.Fatalf("error = %v, want CyclicDefinitionError", err)
	}
	if cd.Generic != "loopy" {
		t.Errorf("CyclicDefinitionError.Generic = %q, want loopy", cd.Generic)
	}
}

func TestExtensionGenericsAreIntrospectable(t *testing.T) {
	tbl := NewTable()
	info, ok := tbl.Describe(GeneralizersOfName)
	if !ok {
		t.Fatalf("%s is not described", GeneralizersOfName)
	}
	if len(info.Methods) != 5 {
		t.Errorf("%s has %d methods, want 5 built-in kinds", GeneralizersOfName, len(info.Methods))
	}
	if tbl.RemoveGeneric(CombineMethodsName) {
		t.Error("removing an extension generic succeeded")
	}
}
