package dispatch

import (
	"sort"
	"strings"

	"github.com/funvibe/genfun/internal/object"
)

// Combination roles. An empty role is a primary method.
const (
	RoleBefore = ":before"
	RoleAfter  = ":after"
	RoleAround = ":around"

	// QualifierExtra introduces a disambiguation tag pair. Extra tags
	// take part in method identity but not in combination, so two
	// otherwise identical methods can coexist.
	QualifierExtra = ":extra"
)

// NextMethod continues into the next link of a method chain. Called
// with no arguments it re-applies the original argument list; called
// with arguments it overrides them for the remainder of the chain.
type NextMethod func(args ...object.Object) (object.Object, error)

// MethodFunc is a method body. The continuation is always supplied;
// invoking it past the end of the chain fails with no-next-method.
type MethodFunc func(next NextMethod, args []object.Object) (object.Object, error)

// Method is one implementation of a generic function.
type Method struct {
	Specializers []Specializer
	ContextSpecs map[string]Specializer
	Qualifiers   []string
	UsesNext     bool
	Fn           MethodFunc

	// seq is the declaration order inside one generic, the final
	// tie-break when ranks come out equal at every axis. Redefining a
	// method keeps the original position.
	seq int
}

// MethodSpec is the definition-time description of a method.
type MethodSpec struct {
	Qualifiers   []string
	Specializers []Specializer
	ContextSpecs map[string]Specializer
	UsesNext     bool
	Fn           MethodFunc
}

// identityKey is the replace-on-redefine key: specializer list plus
// full qualifier list, extras included.
func identityKey(quals []string, specs []Specializer, ctx map[string]Specializer) string {
	var b strings.Builder
	for _, s := range specs {
		b.WriteString(s.Key())
		b.WriteString(";")
	}
	names := make([]string, 0, len(ctx))
	for name := range ctx {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b.WriteString("@")
		b.WriteString(name)
		b.WriteString("=")
		b.WriteString(ctx[name].Key())
		b.WriteString(";")
	}
	b.WriteString("|")
	b.WriteString(strings.Join(quals, " "))
	return b.String()
}

func (m *Method) identityKey() string {
	return identityKey(m.Qualifiers, m.Specializers, m.ContextSpecs)
}

// specializerAt returns the method's specializer for one dispatch key,
// the universal specializer where the method does not constrain it.
func (m *Method) specializerAt(key dispatchKey) Specializer {
	if key.Context != "" {
		if s, ok := m.ContextSpecs[key.Context]; ok {
			return s
		}
		return Any{}
	}
	if key.Arg >= 0 && key.Arg < len(m.Specializers) {
		return m.Specializers[key.Arg]
	}
	return Any{}
}

// role extracts the combination role and validates the qualifier list:
// at most one role atom, then any number of :extra tag pairs.
func (m *Method) role() (string, bool) {
	quals := m.Qualifiers
	role := ""
	i := 0
	if len(quals) > 0 {
		switch quals[0] {
		case RoleBefore, RoleAfter, RoleAround:
			role = quals[0]
			i = 1
		case QualifierExtra:
			// primary with extras
		default:
			return "", false
		}
	}
	for ; i < len(quals); i += 2 {
		if quals[i] != QualifierExtra || i+1 >= len(quals) {
			return "", false
		}
	}
	return role, true
}
