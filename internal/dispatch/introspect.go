package dispatch

import (
	"sort"
)

// MethodInfo is the display form of one method: qualifiers and
// specializer forms, for the describe/help surface. The dispatch path
// itself never reads these.
type MethodInfo struct {
	Qualifiers   []string          `json:"qualifiers,omitempty"`
	Specializers []string          `json:"specializers"`
	Contexts     map[string]string `json:"contexts,omitempty"`
	UsesNext     bool              `json:"uses_next_method,omitempty"`
}

// GenericInfo is the display form of one generic function.
type GenericInfo struct {
	Name          string       `json:"name"`
	Documentation string       `json:"documentation,omitempty"`
	Params        []string     `json:"params,omitempty"`
	Precedence    []string     `json:"precedence,omitempty"`
	Stamp         string       `json:"stamp"`
	Cached        bool         `json:"cached_dispatch"`
	Methods       []MethodInfo `json:"methods"`
}

// Describe enumerates one generic function's methods for display.
func (t *Table) Describe(name string) (GenericInfo, bool) {
	g, ok := t.generics[name]
	if !ok {
		return GenericInfo{}, false
	}
	info := GenericInfo{
		Name:          g.name,
		Documentation: g.opts.Documentation,
		Params:        append([]string(nil), g.opts.Params...),
		Precedence:    append([]string(nil), g.opts.Precedence...),
		Stamp:         g.Stamp().String(),
		Cached:        g.CachedDispatch(),
	}
	for _, m := range g.methods {
		mi := MethodInfo{
			Qualifiers: append([]string(nil), m.Qualifiers...),
			UsesNext:   m.UsesNext,
		}
		for _, s := range m.Specializers {
			mi.Specializers = append(mi.Specializers, s.String())
		}
		if len(m.ContextSpecs) > 0 {
			mi.Contexts = make(map[string]string, len(m.ContextSpecs))
			for ctx, s := range m.ContextSpecs {
				mi.Contexts[ctx] = s.String()
			}
		}
		info.Methods = append(info.Methods, mi)
	}
	return info, true
}

// DescribeAll enumerates every generic function, sorted by name.
func (t *Table) DescribeAll() []GenericInfo {
	names := t.Generics()
	out := make([]GenericInfo, 0, len(names))
	for _, name := range names {
		if info, ok := t.Describe(name); ok {
			out = append(out, info)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
