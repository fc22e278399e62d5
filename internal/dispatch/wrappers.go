package dispatch

import (
	"fmt"

	"github.com/funvibe/genfun/internal/object"
)

// Object type tags for engine entities exposed as values, so the
// extension generics (generalizers-of, combine-methods) can dispatch
// over them with the ordinary machinery.
const (
	GENERIC_OBJ          = "GENERIC"
	METHOD_LIST_OBJ      = "METHOD_LIST"
	GENERALIZER_LIST_OBJ = "GENERALIZER_LIST"
	COMBINED_OBJ         = "COMBINED"
)

// GenericRef wraps a generic function as a value. Two refs are equal
// when they wrap the same generic, so an eql specializer on a ref
// selects a combination strategy for exactly that generic.
type GenericRef struct {
	Generic *Generic
}

func (r *GenericRef) Type() object.ObjectType { return GENERIC_OBJ }
func (r *GenericRef) Inspect() string         { return fmt.Sprintf("#<generic %s>", r.Generic.name) }
func (r *GenericRef) Hash() uint32            { return r.Generic.nameHash }

func (r *GenericRef) Equals(other object.Object) bool {
	o, ok := other.(*GenericRef)
	return ok && o.Generic == r.Generic
}

// MethodList wraps the sorted applicable-method list handed to a
// combination strategy.
type MethodList struct {
	Methods []*Method
}

func (ml *MethodList) Type() object.ObjectType { return METHOD_LIST_OBJ }
func (ml *MethodList) Inspect() string         { return fmt.Sprintf("#<methods %d>", len(ml.Methods)) }
func (ml *MethodList) Hash() uint32            { return uint32(len(ml.Methods)) }

// GeneralizerList is the result value of generalizers-of methods.
type GeneralizerList struct {
	Generalizers []Generalizer
}

func (gl *GeneralizerList) Type() object.ObjectType { return GENERALIZER_LIST_OBJ }
func (gl *GeneralizerList) Inspect() string {
	return fmt.Sprintf("#<generalizers %d>", len(gl.Generalizers))
}
func (gl *GeneralizerList) Hash() uint32 { return uint32(len(gl.Generalizers)) }

// Combined is the result value of combine-methods strategies: one
// callable built from all applicable methods of a call.
type Combined struct {
	Fn func(args []object.Object) (object.Object, error)
}

func (c *Combined) Type() object.ObjectType { return COMBINED_OBJ }
func (c *Combined) Inspect() string         { return "#<combined method>" }
func (c *Combined) Hash() uint32            { return 0 }
