package dispatch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/funvibe/genfun/internal/object"
)

// dispatcher is one link of the dispatch chain: either a tag-cached
// closure inspecting the next axis, or the combined method itself.
type dispatcher func(args []object.Object) (object.Object, error)

// tagger extracts the governing tag of a value for one axis: the
// highest-priority generalizer that claims the value wins. Taggers
// are memoized globally per (position, generalizer set).
type tagger struct {
	gens []Generalizer
}

func (tg *tagger) tagOf(v object.Object) (Tag, Generalizer) {
	for _, g := range tg.gens {
		if tag, ok := g.TagOf(v); ok {
			return tag, g
		}
	}
	// The universal generalizer claims everything, so this is
	// unreachable unless an axis was built without its seed.
	return anyTag{}, universalGeneralizer{}
}

func (t *Table) taggerFor(key dispatchKey, gens []Generalizer) *tagger {
	var b strings.Builder
	if key.Context != "" {
		fmt.Fprintf(&b, "@%s", key.Context)
	} else {
		fmt.Fprintf(&b, "%d", key.Arg)
	}
	for _, g := range gens {
		fmt.Fprintf(&b, "|%s/%d", g.ID(), g.Priority())
	}
	memoKey := b.String()
	if tg, ok := t.taggerMemo[memoKey]; ok {
		return tg
	}
	tg := &tagger{gens: gens}
	t.taggerMemo[memoKey] = tg
	return tg
}

// rankedMethod pairs a surviving method with its rank at the current
// axis: the position of its specializer in the tag's specializer
// list, smaller meaning more specific.
type rankedMethod struct {
	m    *Method
	rank int
}

// filterByRank keeps the methods whose specializer at this axis
// appears anywhere in the tag's specializer list (membership, not
// equality: an ancestor chain satisfies several specializers at
// different ranks) and stable-sorts them rank ascending. Each axis
// sorts after the previous one, so the axis dispatched last — the
// most important — dominates the final order.
func filterByRank(methods []*Method, key dispatchKey, specs []Specializer) []*Method {
	rankOf := make(map[string]int, len(specs))
	for i, s := range specs {
		if _, ok := rankOf[s.Key()]; !ok {
			rankOf[s.Key()] = i
		}
	}
	surv := make([]rankedMethod, 0, len(methods))
	for _, m := range methods {
		if rank, ok := rankOf[m.specializerAt(key).Key()]; ok {
			surv = append(surv, rankedMethod{m: m, rank: rank})
		}
	}
	sort.SliceStable(surv, func(i, j int) bool { return surv[i].rank < surv[j].rank })
	out := make([]*Method, len(surv))
	for i, rm := range surv {
		out[i] = rm.m
	}
	return out
}

// chainDispatcher builds the cache chain for the remaining axes. Each
// link owns a private tag table; population on a miss is a pure
// function of the method set and registry captured here, so a
// definition event invalidates by replacing the entry point, never by
// touching these tables.
func (t *Table) chainDispatcher(g *Generic, axes []*axis, methods []*Method) dispatcher {
	if len(axes) == 0 {
		d, err := t.combinedFor(g, methods)
		if err != nil {
			return failing(err)
		}
		return d
	}
	ax := axes[0]
	rest := axes[1:]
	tg := t.taggerFor(ax.key, ax.gens)
	cache := make(map[Tag]dispatcher)

	return func(args []object.Object) (object.Object, error) {
		v := g.axisValue(ax, args)
		tag, gen := tg.tagOf(v)
		if d, ok := cache[tag]; ok {
			g.stats.Hits++
			return d(args)
		}
		g.stats.Misses++
		specs := gen.SpecializersFor(tag)
		next := t.chainDispatcher(g, rest, filterByRank(methods, ax.key, specs))
		cache[tag] = next
		return next(args)
	}
}

// combinedState is a memo slot for one (generic, method list) build.
// The nil-fn state is the under-construction sentinel: observing it
// means the build recursed into itself.
type combinedState struct {
	fn   dispatcher
	done bool
}

func methodsKey(g *Generic, methods []*Method) string {
	var b strings.Builder
	b.WriteString(g.name)
	for _, m := range methods {
		fmt.Fprintf(&b, "|%p", m)
	}
	return b.String()
}

// combinedFor returns the memoized combined method for a resolved,
// most-specific-first method list, building it on first use.
func (t *Table) combinedFor(g *Generic, methods []*Method) (dispatcher, error) {
	key := methodsKey(g, methods)
	if st, ok := t.combinedMemo[key]; ok {
		if !st.done {
			return nil, &CyclicDefinitionError{Generic: g.name}
		}
		return st.fn, nil
	}
	st := &combinedState{}
	t.combinedMemo[key] = st
	fn, err := t.buildCombined(g, methods)
	if err != nil {
		delete(t.combinedMemo, key)
		return nil, err
	}
	st.fn = fn
	st.done = true
	return fn, nil
}

// buildCombined resolves the combination strategy. The two bootstrap
// generics combine directly; everything else goes through the
// combine-methods generic, whose default method is the default
// combination, so third parties override it per generic or wholesale.
func (t *Table) buildCombined(g *Generic, methods []*Method) (dispatcher, error) {
	if g.internal || t.combiner == nil {
		return defaultCombine(g, methods)
	}
	res, err := t.combiner.Call(&GenericRef{Generic: g}, &MethodList{Methods: methods})
	if err != nil {
		return nil, err
	}
	comb, ok := res.(*Combined)
	if !ok {
		return nil, fmt.Errorf("combination strategy for generic function '%s' returned %s, want a combined method",
			g.name, res.Inspect())
	}
	return comb.Fn, nil
}
