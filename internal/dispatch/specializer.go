package dispatch

import (
	"fmt"

	"github.com/funvibe/genfun/internal/object"
)

// Specializer form kinds. The first element of a specializer's list
// form names its kind; generalizers-of dispatches on it with a Head
// specializer, so new kinds are added by defining new methods there.
const (
	KindEql    = "eql"
	KindHead   = "head"
	KindStruct = "struct"
	KindType   = "type"
	KindAny    = "any"
)

// Specializer is a per-parameter constraint on a method. Specializers
// compare by structural equality (Key), never by identity. Form
// returns the list form used to dispatch the generalizers-of generic.
type Specializer interface {
	Key() string
	Form() object.Object
	String() string
}

// Any matches every value. It is the implicit specializer for
// positions a method does not constrain.
type Any struct{}

func (Any) Key() string { return KindAny }
func (Any) Form() object.Object {
	return &object.List{Elements: []object.Object{&object.String{Value: KindAny}}}
}
func (Any) String() string { return "<any>" }

// Eql matches values structurally equal to a literal.
type Eql struct {
	Value object.Object
}

func (s Eql) Key() string { return KindEql + "/" + eqlKeyOf(s.Value) }
func (s Eql) Form() object.Object {
	return &object.List{Elements: []object.Object{&object.String{Value: KindEql}, s.Value}}
}
func (s Eql) String() string { return fmt.Sprintf("<eql %s>", s.Value.Inspect()) }

// Head matches lists and tuples whose first element is the given
// string literal. Tags are registered globally so extraction stays a
// map lookup over literals that have actually been declared.
type Head struct {
	Tag string
}

func (s Head) Key() string { return KindHead + "/" + s.Tag }
func (s Head) Form() object.Object {
	return &object.List{Elements: []object.Object{
		&object.String{Value: KindHead},
		&object.String{Value: s.Tag},
	}}
}
func (s Head) String() string { return fmt.Sprintf("<head %s>", s.Tag) }

// Struct matches instances of a nominal record type, including
// instances of its descendants along the single-parent chain.
type Struct struct {
	RType *object.RecordType
}

func (s Struct) Key() string { return KindStruct + "/" + s.RType.Name }
func (s Struct) Form() object.Object {
	return &object.List{Elements: []object.Object{
		&object.String{Value: KindStruct},
		&object.String{Value: s.RType.Name},
	}}
}
func (s Struct) String() string { return fmt.Sprintf("<struct %s>", s.RType.Name) }

// TypeOf matches values of a built-in runtime type or any of the
// types declared beneath it (integer under number, list under
// sequence, and so on).
type TypeOf struct {
	T object.ObjectType
}

func (s TypeOf) Key() string { return KindType + "/" + string(s.T) }
func (s TypeOf) Form() object.Object {
	return &object.List{Elements: []object.Object{
		&object.String{Value: KindType},
		&object.String{Value: string(s.T)},
	}}
}
func (s TypeOf) String() string { return fmt.Sprintf("<type %s>", s.T) }

// eqlKeyOf renders a value as a stable structural key for eql-literal
// registration and tagging. Values with colliding keys are
// disambiguated by bucket index at extraction time.
func eqlKeyOf(v object.Object) string {
	return fmt.Sprintf("%s:%08x:%s", v.Type(), v.Hash(), v.Inspect())
}
