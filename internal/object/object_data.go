package object

import (
	"fmt"
	"strings"
)

// RecordType is the witness for a nominal record type with
// single-parent inheritance. Instances hold a pointer to their type,
// so the dispatch tag for a record is the *RecordType itself.
type RecordType struct {
	Name   string
	Parent *RecordType // nil for root types
	Fields []string
}

// Ancestry returns the type and all its ancestors, most specific first.
func (rt *RecordType) Ancestry() []*RecordType {
	var chain []*RecordType
	for t := rt; t != nil; t = t.Parent {
		chain = append(chain, t)
	}
	return chain
}

// IsA reports whether rt is other or inherits from other.
func (rt *RecordType) IsA(other *RecordType) bool {
	for t := rt; t != nil; t = t.Parent {
		if t == other {
			return true
		}
	}
	return false
}

// Record is an instance of a RecordType.
type Record struct {
	RType  *RecordType
	Fields map[string]Object
}

// NewRecord creates an instance, filling missing fields with Nil.
func NewRecord(rt *RecordType, fields map[string]Object) *Record {
	r := &Record{RType: rt, Fields: make(map[string]Object, len(rt.Fields))}
	for _, name := range rt.Fields {
		if v, ok := fields[name]; ok {
			r.Fields[name] = v
		} else {
			r.Fields[name] = NilValue
		}
	}
	return r
}

func (r *Record) Type() ObjectType { return RECORD_OBJ }
func (r *Record) Inspect() string {
	var out strings.Builder
	out.WriteString(r.RType.Name)
	out.WriteString("{")
	for i, name := range r.RType.Fields {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(fmt.Sprintf("%s: %s", name, r.Fields[name].Inspect()))
	}
	out.WriteString("}")
	return out.String()
}
func (r *Record) Hash() uint32 {
	h := hashString(r.RType.Name)
	for _, name := range r.RType.Fields {
		h = 31*h + r.Fields[name].Hash()
	}
	return h
}

// Get returns a field value, or Nil for unknown fields.
func (r *Record) Get(name string) Object {
	if v, ok := r.Fields[name]; ok {
		return v
	}
	return NilValue
}

// Builtin wraps a Go function as an engine value.
type Builtin struct {
	Name string
	Fn   func(args ...Object) (Object, error)
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return "builtin " + b.Name }
func (b *Builtin) Hash() uint32     { return hashString(b.Name) }
