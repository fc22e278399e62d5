package dispatch

import (
	"errors"
	"reflect"
	"testing"

	"github.com/funvibe/genfun/internal/object"
)

// chainTypes builds a three-deep single-parent chain for specificity
// ordering tests: wide <- mid <- narrow.
func chainTypes() (wide, mid, narrow *object.RecordType) {
	wide = &object.RecordType{Name: "wide"}
	mid = &object.RecordType{Name: "mid", Parent: wide}
	narrow = &object.RecordType{Name: "narrow", Parent: mid}
	return
}

func TestCombinationRunOrder(t *testing.T) {
	wide, mid, narrow := chainTypes()
	tbl := NewTable()
	var log []string

	logging := func(tag string, callNext bool) MethodFunc {
		return func(next NextMethod, args []object.Object) (object.Object, error) {
			log = append(log, tag)
			if callNext {
				return next()
			}
			return str(tag), nil
		}
	}
	observer := func(tag string) MethodFunc {
		return func(next NextMethod, args []object.Object) (object.Object, error) {
			log = append(log, tag)
			return object.NilValue, nil
		}
	}

	add := func(quals []string, rt *object.RecordType, fn MethodFunc) {
		mustDefine(t, tbl, "op", MethodSpec{
			Qualifiers:   quals,
			Specializers: []Specializer{Struct{RType: rt}},
			Fn:           fn,
		})
	}

	add(nil, wide, logging("primary-wide", false))
	add(nil, mid, logging("primary-mid", true))
	add(nil, narrow, logging("primary-narrow", true))
	add([]string{RoleBefore}, wide, observer("before-wide"))
	add([]string{RoleBefore}, narrow, observer("before-narrow"))
	add([]string{RoleAfter}, wide, observer("after-wide"))
	add([]string{RoleAfter}, narrow, observer("after-narrow"))
	add([]string{RoleAround}, wide, logging("around-wide", true))
	add([]string{RoleAround}, narrow, logging("around-narrow", true))

	res := callString(t, tbl, "op", object.NewRecord(narrow, nil))
	if res != "primary-wide" {
		t.Errorf("op() = %q, want the innermost primary's value to survive the wrappers", res)
	}

	want := []string{
		"around-narrow", "around-wide",
		"before-narrow", "before-wide",
		"primary-narrow", "primary-mid", "primary-wide",
		"after-wide", "after-narrow",
	}
	if !reflect.DeepEqual(log, want) {
		t.Errorf("run order = %v, want %v", log, want)
	}
}

func TestNextMethodArguments(t *testing.T) {
	wide, _, narrow := chainTypes()
	tbl := NewTable()

	// The outer method decides whether the inner one sees the original
	// or an overridden argument list.
	var passExplicit bool
	mustDefine(t, tbl, "step", MethodSpec{
		Specializers: []Specializer{Struct{RType: narrow}, Any{}},
		UsesNext:     true,
		Fn: func(next NextMethod, args []object.Object) (object.Object, error) {
			if passExplicit {
				return next(args[0], num(99))
			}
			return next()
		},
	})
	var seen int64
	mustDefine(t, tbl, "step", MethodSpec{
		Specializers: []Specializer{Struct{RType: wide}, Any{}},
		Fn: func(next NextMethod, args []object.Object) (object.Object, error) {
			seen = args[1].(*object.Integer).Value
			return object.NilValue, nil
		},
	})

	v := object.NewRecord(narrow, nil)

	if _, err := tbl.Call("step", v, num(1)); err != nil {
		t.Fatal(err)
	}
	if seen != 1 {
		t.Errorf("next() with no arguments: inner saw %d, want the original 1", seen)
	}

	passExplicit = true
	if _, err := tbl.Call("step", v, num(1)); err != nil {
		t.Fatal(err)
	}
	if seen != 99 {
		t.Errorf("next(args...) with overrides: inner saw %d, want 99", seen)
	}
}

func TestNoNextMethod(t *testing.T) {
	tbl := NewTable()
	mustDefine(t, tbl, "lonely", MethodSpec{
		Specializers: []Specializer{TypeOf{T: object.INTEGER_OBJ}},
		UsesNext:     true,
		Fn: func(next NextMethod, args []object.Object) (object.Object, error) {
			return next()
		},
	})

	_, err := tbl.Call("lonely", num(1))
	var nn *NoNextMethodError
	if !errors.As(err, &nn) {
		t.Fatalf("error = %v, want NoNextMethodError", err)
	}
	if nn.Generic != "lonely" {
		t.Errorf("NoNextMethodError.Generic = %q, want lonely", nn.Generic)
	}
}

func TestNoPrimaryMethod(t *testing.T) {
	tbl := NewTable()
	mustDefine(t, tbl, "watch", MethodSpec{
		Qualifiers:   []string{RoleBefore},
		Specializers: []Specializer{TypeOf{T: object.INTEGER_OBJ}},
		Fn: func(next NextMethod, args []object.Object) (object.Object, error) {
			return object.NilValue, nil
		},
	})

	_, err := tbl.Call("watch", num(1))
	var np *NoPrimaryMethodError
	if !errors.As(err, &np) {
		t.Fatalf("error = %v, want NoPrimaryMethodError", err)
	}

	// A call where nothing at all applies is the distinct
	// no-applicable-method signal.
	_, err = tbl.Call("watch", str("x"))
	var nam *NoApplicableMethodError
	if !errors.As(err, &nam) {
		t.Fatalf("error = %v, want NoApplicableMethodError", err)
	}
}

func TestAroundCanSuppress(t *testing.T) {
	tbl := NewTable()
	mustDefine(t, tbl, "guarded", MethodSpec{
		Specializers: []Specializer{TypeOf{T: object.INTEGER_OBJ}},
		Fn:           ret("inner"),
	})
	mustDefine(t, tbl, "guarded", MethodSpec{
		Qualifiers:   []string{RoleAround},
		Specializers: []Specializer{TypeOf{T: object.INTEGER_OBJ}},
		Fn: func(next NextMethod, args []object.Object) (object.Object, error) {
			if args[0].(*object.Integer).Value < 0 {
				return str("suppressed"), nil
			}
			return next()
		},
	})

	if got := callString(t, tbl, "guarded", num(1)); got != "inner" {
		t.Errorf("guarded(1) = %q, want inner", got)
	}
	if got := callString(t, tbl, "guarded", num(-1)); got != "suppressed" {
		t.Errorf("guarded(-1) = %q, want suppressed", got)
	}
}

func TestUnsupportedQualifiers(t *testing.T) {
	tbl := NewTable()
	mustDefine(t, tbl, "odd", MethodSpec{
		Qualifiers:   []string{":banana"},
		Specializers: []Specializer{TypeOf{T: object.INTEGER_OBJ}},
		Fn:           ret("x"),
	})

	// Qualifier problems surface at combination-build time, i.e. on
	// the first call, not at definition time.
	_, err := tbl.Call("odd", num(1))
	var uq *UnsupportedQualifierError
	if !errors.As(err, &uq) {
		t.Fatalf("error = %v, want UnsupportedQualifierError", err)
	}
	if len(uq.Qualifiers) != 1 || uq.Qualifiers[0] != ":banana" {
		t.Errorf("UnsupportedQualifierError.Qualifiers = %v", uq.Qualifiers)
	}

	// A dangling :extra without its tag is rejected the same way.
	mustDefine(t, tbl, "odd2", MethodSpec{
		Qualifiers:   []string{RoleBefore, QualifierExtra},
		Specializers: []Specializer{TypeOf{T: object.INTEGER_OBJ}},
		Fn:           ret("x"),
	})
	_, err = tbl.Call("odd2", num(1))
	if !errors.As(err, &uq) {
		t.Fatalf("error = %v, want UnsupportedQualifierError", err)
	}
}

func TestBeforeErrorStopsPrimary(t *testing.T) {
	tbl := NewTable()
	ran := false
	mustDefine(t, tbl, "checked", MethodSpec{
		Qualifiers:   []string{RoleBefore},
		Specializers: []Specializer{TypeOf{T: object.INTEGER_OBJ}},
		Fn: func(next NextMethod, args []object.Object) (object.Object, error) {
			return nil, errors.New("validation failed")
		},
	})
	mustDefine(t, tbl, "checked", MethodSpec{
		Specializers: []Specializer{TypeOf{T: object.INTEGER_OBJ}},
		Fn: func(next NextMethod, args []object.Object) (object.Object, error) {
			ran = true
			return object.NilValue, nil
		},
	})

	if _, err := tbl.Call("checked", num(1)); err == nil {
		t.Fatal("expected the before method's error to propagate")
	}
	if ran {
		t.Error("primary ran although a before method failed")
	}
}
