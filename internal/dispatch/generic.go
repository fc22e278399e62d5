package dispatch

import (
	"hash/fnv"
	"sort"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/xtgo/set"

	"github.com/funvibe/genfun/internal/object"
)

// ContextFunc computes a dispatched context value from the live
// argument list (a dispatch axis that is not a positional argument).
type ContextFunc func(args []object.Object) object.Object

// GenericOptions is the declared metadata of a generic function.
type GenericOptions struct {
	// Documentation is carried for introspection only.
	Documentation string
	// Params names the mandatory parameters, in order. Required when
	// Precedence is declared.
	Params []string
	// Precedence is an explicit argument precedence order: a
	// permutation of Params, most important first.
	Precedence []string
	// Contexts maps context-expression names to their extractors.
	Contexts map[string]ContextFunc
}

// dispatchKey identifies one dispatch axis: an argument index, or a
// named context expression (Arg is -1 then).
type dispatchKey struct {
	Arg     int
	Context string
}

// axis is one entry of the dispatch-order table: a key plus the
// merged generalizers of every specializer declared for it, priority
// descending. The universal generalizer seeds each axis, so the list
// is never empty and extraction is total.
type axis struct {
	key  dispatchKey
	gens []Generalizer
}

// discriminates reports whether any method actually constrains this
// axis; axes carrying only the universal generalizer are skipped by
// the dispatcher.
func (ax *axis) discriminates() bool {
	for _, g := range ax.gens {
		if g.Priority() > 0 {
			return true
		}
	}
	return false
}

// Stats counts dispatch-cache traffic for one generic. Counters are
// incremented per axis lookup.
type Stats struct {
	Hits     uint64
	Misses   uint64
	Rebuilds uint64
}

// entryPoint is the installed invocation target of a generic. Every
// definition event replaces it wholesale; in-flight calls holding the
// old pointer keep a consistent old view.
type entryPoint struct {
	stamp  uuid.UUID
	invoke dispatcher
	cached bool
}

// Generic is a named function resolved to one of several method
// bodies by the specializers of its methods.
type Generic struct {
	table    *Table
	name     string
	nameHash uint32
	opts     GenericOptions

	methods []*Method
	byKey   map[string]*Method
	axes    []*axis
	nextSeq int

	entry atomic.Pointer[entryPoint]
	stats Stats

	// internal marks the two bootstrap generics; their effective
	// methods are built directly so resolving them cannot recurse
	// into themselves.
	internal bool
}

func newGeneric(t *Table, name string, opts GenericOptions) *Generic {
	h := fnv.New32a()
	h.Write([]byte(name))
	g := &Generic{
		table:    t,
		name:     name,
		nameHash: h.Sum32(),
		opts:     opts,
		byKey:    make(map[string]*Method),
	}
	g.rebuild()
	return g
}

func (g *Generic) Name() string          { return g.name }
func (g *Generic) Documentation() string { return g.opts.Documentation }

// Stamp identifies the currently installed entry point. It changes on
// every definition event and never in between.
func (g *Generic) Stamp() uuid.UUID { return g.entry.Load().stamp }

// CachedDispatch reports whether calls go through the dispatch cache.
// Generics whose methods discriminate nothing bypass it entirely.
func (g *Generic) CachedDispatch() bool { return g.entry.Load().cached }

// Stats returns a snapshot of the cache counters.
func (g *Generic) Stats() Stats { return g.stats }

// Methods returns the defined methods in declaration order.
func (g *Generic) Methods() []*Method {
	out := make([]*Method, len(g.methods))
	copy(out, g.methods)
	return out
}

// Call invokes the generic on concrete arguments through whatever
// entry point is installed right now.
func (g *Generic) Call(args ...object.Object) (object.Object, error) {
	return g.entry.Load().invoke(args)
}

// insertMethod replaces any method with the same identity key,
// keeping its original declaration position, and appends otherwise.
func (g *Generic) insertMethod(m *Method) {
	key := m.identityKey()
	if old, ok := g.byKey[key]; ok {
		m.seq = old.seq
		for i, existing := range g.methods {
			if existing == old {
				g.methods[i] = m
				break
			}
		}
	} else {
		m.seq = g.nextSeq
		g.nextSeq++
		g.methods = append(g.methods, m)
	}
	g.byKey[key] = m
}

func (g *Generic) removeMethod(key string) bool {
	old, ok := g.byKey[key]
	if !ok {
		return false
	}
	delete(g.byKey, key)
	for i, m := range g.methods {
		if m == old {
			g.methods = append(g.methods[:i], g.methods[i+1:]...)
			break
		}
	}
	return true
}

// mergeAxis folds generalizers into the axis for one key, creating it
// seeded with the universal generalizer when absent. Within one key
// the merge is append-only: sorted by priority, duplicates collapsed.
func (g *Generic) mergeAxis(key dispatchKey, gens []Generalizer) {
	var ax *axis
	for _, a := range g.axes {
		if a.key == key {
			ax = a
			break
		}
	}
	if ax == nil {
		ax = &axis{key: key, gens: []Generalizer{universalGeneralizer{}}}
		g.axes = append(g.axes, ax)
	}
	ax.gens = append(ax.gens, gens...)
	s := genOrder(ax.gens)
	sort.Sort(s)
	ax.gens = ax.gens[:set.Uniq(s)]
	g.sortAxes()
}

// genOrder sorts generalizers by priority descending, ID as tie-break;
// two entries with equal priority and ID are the same generalizer.
type genOrder []Generalizer

func (s genOrder) Len() int      { return len(s) }
func (s genOrder) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s genOrder) Less(i, j int) bool {
	if s[i].Priority() != s[j].Priority() {
		return s[i].Priority() > s[j].Priority()
	}
	return s[i].ID() < s[j].ID()
}

// sortAxes orders the dispatch keys least important first: context
// expressions, then arguments from the least decisive to the most.
// Without an explicit precedence the leftmost parameter is the most
// important and therefore dispatched last, where its tag cache sees
// maximal reuse.
func (g *Generic) sortAxes() {
	imp := func(ax *axis) int {
		if ax.key.Context != "" {
			return 1 << 20 // contexts are least important
		}
		i := ax.key.Arg
		if len(g.opts.Precedence) > 0 && i < len(g.opts.Params) {
			for p, name := range g.opts.Precedence {
				if name == g.opts.Params[i] {
					return p
				}
			}
		}
		return i
	}
	sort.SliceStable(g.axes, func(i, j int) bool {
		ii, ij := imp(g.axes[i]), imp(g.axes[j])
		if ii != ij {
			return ii > ij
		}
		return g.axes[i].key.Context > g.axes[j].key.Context
	})
}

// rebuild constructs and atomically installs a fresh entry point.
// This is the sole mutator of installed entry points: caches hanging
// off the previous one become unreachable, never patched.
func (g *Generic) rebuild() {
	var active []*axis
	for _, ax := range g.axes {
		if ax.discriminates() {
			active = append(active, ax)
		}
	}

	methods := g.Methods()
	sort.SliceStable(methods, func(i, j int) bool { return methods[i].seq < methods[j].seq })

	ep := &entryPoint{stamp: uuid.New()}
	if len(active) == 0 {
		// Nothing discriminates: the combined method is called
		// directly, with zero cache overhead.
		d, err := g.table.combinedFor(g, methods)
		if err != nil {
			ep.invoke = failing(err)
		} else {
			ep.invoke = d
		}
	} else {
		ep.cached = true
		ep.invoke = g.table.chainDispatcher(g, active, methods)
	}
	g.entry.Store(ep)
	g.stats.Rebuilds++
}

// axisValue extracts the value inspected at one axis: the positional
// argument, Nil when absent, or the named context expression.
func (g *Generic) axisValue(ax *axis, args []object.Object) object.Object {
	if ax.key.Context != "" {
		if fn, ok := g.opts.Contexts[ax.key.Context]; ok {
			if v := fn(args); v != nil {
				return v
			}
		}
		return object.NilValue
	}
	if ax.key.Arg < len(args) && args[ax.key.Arg] != nil {
		return args[ax.key.Arg]
	}
	return object.NilValue
}

func failing(err error) dispatcher {
	return func(args []object.Object) (object.Object, error) {
		return nil, err
	}
}
