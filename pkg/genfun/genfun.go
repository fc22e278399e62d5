// Package genfun is the embedding surface of the generic-function
// engine: a process-wide table of generic functions, multiple
// dispatch over the engine's value model, qualifier-based method
// combination and a tag-indexed dispatch cache.
package genfun

import (
	"os"

	"github.com/funvibe/genfun/internal/dispatch"
	"github.com/funvibe/genfun/internal/manifest"
	"github.com/funvibe/genfun/internal/object"
)

// Engine types.
type (
	Table          = dispatch.Table
	Generic        = dispatch.Generic
	Method         = dispatch.Method
	MethodSpec     = dispatch.MethodSpec
	GenericOptions = dispatch.GenericOptions
	ContextFunc    = dispatch.ContextFunc
	NextMethod     = dispatch.NextMethod
	MethodFunc     = dispatch.MethodFunc
	Stats          = dispatch.Stats
	GenericInfo    = dispatch.GenericInfo
	MethodInfo     = dispatch.MethodInfo
)

// Specializers.
type (
	Specializer = dispatch.Specializer
	Any         = dispatch.Any
	Eql         = dispatch.Eql
	Head        = dispatch.Head
	Struct      = dispatch.Struct
	TypeOf      = dispatch.TypeOf
)

// Extension-point values.
type (
	Generalizer     = dispatch.Generalizer
	GeneralizerList = dispatch.GeneralizerList
	GenericRef      = dispatch.GenericRef
	MethodList      = dispatch.MethodList
	Combined        = dispatch.Combined
)

// Value model.
type (
	Object     = object.Object
	ObjectType = object.ObjectType
	Integer    = object.Integer
	Float      = object.Float
	Boolean    = object.Boolean
	String     = object.String
	List       = object.List
	Tuple      = object.Tuple
	Record     = object.Record
	RecordType = object.RecordType
)

// New creates an empty table with the two extension generics
// (generalizers-of, combine-methods) bootstrapped.
func New() *Table {
	return dispatch.NewTable()
}

// NewFromManifest creates a table and applies the nearest genfun.yaml
// found from dir upward. A missing manifest is not an error; the
// table is simply returned empty.
func NewFromManifest(dir string) (*Table, error) {
	t := dispatch.NewTable()
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		dir = wd
	}
	path, err := manifest.Find(dir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return t, nil
	}
	m, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	if err := m.Apply(t); err != nil {
		return nil, err
	}
	return t, nil
}
