package dispatch

import (
	"fmt"
	"strings"

	"github.com/funvibe/genfun/internal/object"
)

// NoApplicableMethodError reports a call no method's specializers
// matched. It always reaches the caller; dispatch never defaults.
type NoApplicableMethodError struct {
	Generic string
	Args    []object.Object
}

func (e *NoApplicableMethodError) Error() string {
	return fmt.Sprintf("no applicable method for generic function '%s' with arguments (%s)",
		e.Generic, inspectArgs(e.Args))
}

// NoPrimaryMethodError reports a call where before/after/around
// methods matched but no primary method did.
type NoPrimaryMethodError struct {
	Generic string
}

func (e *NoPrimaryMethodError) Error() string {
	return fmt.Sprintf("no primary method for generic function '%s'", e.Generic)
}

// NoNextMethodError reports a continuation invoked past the end of
// its chain. Raised at invocation time, not combination time, since
// calling the continuation is the body's runtime decision.
type NoNextMethodError struct {
	Generic string
	Args    []object.Object
}

func (e *NoNextMethodError) Error() string {
	return fmt.Sprintf("no next method for generic function '%s' with arguments (%s)",
		e.Generic, inspectArgs(e.Args))
}

// CyclicDefinitionError reports an effective-method build that
// recursed into itself, usually a mis-registered generalizer or
// combination extension.
type CyclicDefinitionError struct {
	Generic string
}

func (e *CyclicDefinitionError) Error() string {
	return fmt.Sprintf("cyclic definition: building the combined method of generic function '%s' recursed into itself", e.Generic)
}

// InvalidPrecedenceError reports an argument-precedence declaration
// that is not a permutation of the mandatory parameter names.
type InvalidPrecedenceError struct {
	Generic string
	Param   string
}

func (e *InvalidPrecedenceError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("invalid argument precedence for generic function '%s': '%s' is not a mandatory parameter", e.Generic, e.Param)
	}
	return fmt.Sprintf("invalid argument precedence for generic function '%s': not a permutation of the mandatory parameters", e.Generic)
}

// UnsupportedQualifierError reports a qualifier list the combination
// in effect cannot consume. Detected at combination-build time so a
// custom strategy may accept qualifiers the default rejects.
type UnsupportedQualifierError struct {
	Generic    string
	Qualifiers []string
}

func (e *UnsupportedQualifierError) Error() string {
	return fmt.Sprintf("unsupported qualifier combination (%s) on generic function '%s'",
		strings.Join(e.Qualifiers, " "), e.Generic)
}

func inspectArgs(args []object.Object) string {
	parts := make([]string, len(args))
	for i, a := range args {
		if a == nil {
			parts[i] = "Nil"
			continue
		}
		parts[i] = a.Inspect()
	}
	return strings.Join(parts, ", ")
}
