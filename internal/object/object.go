package object

import (
	"hash/fnv"
)

type ObjectType string

const (
	INTEGER_OBJ  = "INTEGER"
	FLOAT_OBJ    = "FLOAT"
	BOOLEAN_OBJ  = "BOOLEAN"
	CHAR_OBJ     = "CHAR"
	STRING_OBJ   = "STRING"
	NIL_OBJ      = "NIL"
	LIST_OBJ     = "LIST"
	TUPLE_OBJ    = "TUPLE"
	RECORD_OBJ   = "RECORD"
	BUILTIN_OBJ  = "BUILTIN"

	// Abstract runtime types. No value carries these tags directly;
	// they only appear as supertypes in the runtime-type hierarchy.
	NUMBER_OBJ   = "NUMBER"
	SEQUENCE_OBJ = "SEQUENCE"
	ANY_OBJ      = "ANY"
)

type Object interface {
	Type() ObjectType
	Inspect() string
	Hash() uint32
}

// Equaler lets wrapper objects defined outside this package take part
// in ObjectsEqual (e.g. engine handles compared by identity).
type Equaler interface {
	Equals(other Object) bool
}

// supertypes maps each concrete runtime-type tag to its declared
// supertype chain, nearest first. Every chain implicitly ends in ANY.
var supertypes = map[ObjectType][]ObjectType{
	INTEGER_OBJ: {NUMBER_OBJ},
	FLOAT_OBJ:   {NUMBER_OBJ},
	STRING_OBJ:  {SEQUENCE_OBJ},
	LIST_OBJ:    {SEQUENCE_OBJ},
	TUPLE_OBJ:   {SEQUENCE_OBJ},
}

// Supertypes returns the declared supertype chain of t, nearest first,
// excluding t itself and the universal ANY tag.
func Supertypes(t ObjectType) []ObjectType {
	return supertypes[t]
}

// Helper for hashing strings
func hashString(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}
