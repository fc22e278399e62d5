package dispatch

import (
	"github.com/funvibe/genfun/internal/object"
)

// Tag is a comparable value extracted from an argument at one dispatch
// axis. The dispatch cache is keyed by tags, so two values may share a
// tag only when every generalizer involved ranks them identically.
// Each built-in family uses its own tag type, so tags from different
// families can never collide in one cache.
type Tag interface{}

// Generalizer reduces a runtime value to a tag and expands a tag back
// into the ordered list of specializers that tag satisfies, most
// specific first. Higher-priority generalizers are consulted first on
// each axis; the first one that claims a value governs its tag.
type Generalizer interface {
	Priority() int
	ID() string
	TagOf(arg object.Object) (Tag, bool)
	SpecializersFor(tag Tag) []Specializer
}

type eqlTag struct {
	key   string
	index int
}

type headTag struct {
	tag string
	seq object.ObjectType
}

type structTag struct {
	rt *object.RecordType
}

type typeTag object.ObjectType

type anyTag struct{}

// runtimeChain returns the runtime-type specializer chain a value
// satisfies below any family-specific specializers: for records the
// ancestry of its type, for everything else the built-in type and its
// supertypes. Every chain ends in the universal specializer so each
// dispatch axis stays total.
func runtimeChain(v object.Object) []Specializer {
	var specs []Specializer
	if rec, ok := v.(*object.Record); ok {
		for _, rt := range rec.RType.Ancestry() {
			specs = append(specs, Struct{RType: rt})
		}
		specs = append(specs, TypeOf{T: object.RECORD_OBJ})
	} else {
		t := v.Type()
		specs = append(specs, TypeOf{T: t})
		for _, sup := range object.Supertypes(t) {
			specs = append(specs, TypeOf{T: sup})
		}
	}
	return append(specs, Any{})
}

// eqlGeneralizer governs values registered as eql literals. The tag is
// the literal itself, identified by its bucket slot so structurally
// distinct values never share a tag.
type eqlGeneralizer struct {
	t *Table
}

func (g *eqlGeneralizer) Priority() int { return 100 }
func (g *eqlGeneralizer) ID() string    { return KindEql }

func (g *eqlGeneralizer) TagOf(arg object.Object) (Tag, bool) {
	key := eqlKeyOf(arg)
	bucket, ok := g.t.eqlLiterals[key]
	if !ok {
		return nil, false
	}
	for i, lit := range bucket {
		if object.ObjectsEqual(arg, lit) {
			return eqlTag{key: key, index: i}, true
		}
	}
	return nil, false
}

func (g *eqlGeneralizer) SpecializersFor(tag Tag) []Specializer {
	et := tag.(eqlTag)
	lit := g.t.eqlLiterals[et.key][et.index]
	return append([]Specializer{Eql{Value: lit}}, runtimeChain(lit)...)
}

// headGeneralizer governs lists and tuples whose first element is a
// registered head tag.
type headGeneralizer struct {
	t *Table
}

func (g *headGeneralizer) Priority() int { return 80 }
func (g *headGeneralizer) ID() string    { return KindHead }

func (g *headGeneralizer) TagOf(arg object.Object) (Tag, bool) {
	var first object.Object
	switch seq := arg.(type) {
	case *object.List:
		first = seq.First()
	case *object.Tuple:
		first = seq.First()
	default:
		return nil, false
	}
	s, ok := first.(*object.String)
	if !ok {
		return nil, false
	}
	if _, ok := g.t.headTags[s.Value]; !ok {
		return nil, false
	}
	return headTag{tag: s.Value, seq: arg.Type()}, true
}

func (g *headGeneralizer) SpecializersFor(tag Tag) []Specializer {
	ht := tag.(headTag)
	specs := []Specializer{Head{Tag: ht.tag}, TypeOf{T: ht.seq}}
	for _, sup := range object.Supertypes(ht.seq) {
		specs = append(specs, TypeOf{T: sup})
	}
	return append(specs, Any{})
}

// structGeneralizer governs record instances; the tag is the record's
// type witness pointer.
type structGeneralizer struct{}

func (structGeneralizer) Priority() int { return 50 }
func (structGeneralizer) ID() string    { return KindStruct }

func (structGeneralizer) TagOf(arg object.Object) (Tag, bool) {
	rec, ok := arg.(*object.Record)
	if !ok {
		return nil, false
	}
	return structTag{rt: rec.RType}, true
}

func (structGeneralizer) SpecializersFor(tag Tag) []Specializer {
	st := tag.(structTag)
	var specs []Specializer
	for _, rt := range st.rt.Ancestry() {
		specs = append(specs, Struct{RType: rt})
	}
	specs = append(specs, TypeOf{T: object.RECORD_OBJ})
	return append(specs, Any{})
}

// typeGeneralizer governs every value by its built-in runtime-type
// tag. Missing arguments were already replaced by Nil, whose NIL tag
// is the absence-of-value case.
type typeGeneralizer struct{}

func (typeGeneralizer) Priority() int { return 10 }
func (typeGeneralizer) ID() string    { return KindType }

func (typeGeneralizer) TagOf(arg object.Object) (Tag, bool) {
	return typeTag(arg.Type()), true
}

func (typeGeneralizer) SpecializersFor(tag Tag) []Specializer {
	t := object.ObjectType(tag.(typeTag))
	specs := []Specializer{TypeOf{T: t}}
	for _, sup := range object.Supertypes(t) {
		specs = append(specs, TypeOf{T: sup})
	}
	return append(specs, Any{})
}

// universalGeneralizer seeds every axis and always claims the value,
// so tag extraction cannot fall through.
type universalGeneralizer struct{}

func (universalGeneralizer) Priority() int { return 0 }
func (universalGeneralizer) ID() string    { return "universal" }

func (universalGeneralizer) TagOf(arg object.Object) (Tag, bool) {
	return anyTag{}, true
}

func (universalGeneralizer) SpecializersFor(tag Tag) []Specializer {
	return []Specializer{Any{}}
}
