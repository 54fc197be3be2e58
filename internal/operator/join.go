package operator

import (
	"fmt"
	"sort"

	"github.com/codenerd/lftjengine/pkg/value"
	"github.com/codenerd/lftjengine/internal/trie"
)

// JoinAtom declares one input relation's participation in a Join (spec
// §4.7): its schema and the subset of the join's Variable Order that its
// positions are bound to, named in schema-position order. Two JoinAtoms
// may name the same underlying relation with different variable bindings
// to express a self-join (§4.7.3); each gets its own trie.
type JoinAtom struct {
	Schema *value.Schema
	Vars   []string // vars(A_i), in the order Schema's positions appear
}

// Join implements the n-ary worst-case-optimal join (LFTJ) with
// incremental probing (LFTJ+) described in spec §4.7. Each JoinAtom owns
// an independent trie keyed in the order VO restricts to its variables;
// Consume re-probes only the atom that changed, against the current state
// of every other atom, maintaining a witness count per output tuple so
// that only 0<->1 crossings are emitted (invariants I-J1, I-J2).
type Join struct {
	vo      []string // the global Variable Order
	voIndex map[string]int

	atoms     []*JoinAtom
	tries     []*trie.Trie
	keyOrder  [][]int // per atom: for each VO position the atom binds, its local schema index
	outVars   []string
	outSchema *value.Schema

	witness map[string]int
	tuples  map[string]value.Tuple
}

// NewJoin validates and builds a Join node over atoms, with global
// variable order vo and output projection outVars (a subset/permutation
// of vo). It panics on structural misconfiguration (empty level groups,
// output variables not in vo, atom variables not in vo): these are
// graph-validation-class errors that the graph layer is expected to have
// already checked before construction (spec §4.7.3, §4.8).
func NewJoin(vo []string, atoms []*JoinAtom, outVars []string) *Join {
	voIndex := make(map[string]int, len(vo))
	for i, v := range vo {
		voIndex[v] = i
	}

	tries := make([]*trie.Trie, len(atoms))
	keyOrder := make([][]int, len(atoms))
	for ai, a := range atoms {
		// Determine the physical key order for this atom's trie: its
		// variables in VO order (spec §4.7, "Trie ordering").
		type voPos struct{ pos, localIdx int }
		var positions []voPos
		for li, v := range a.Vars {
			pos, ok := voIndex[v]
			if !ok {
				panic(fmt.Sprintf("operator: join atom variable %q not in variable order", v))
			}
			positions = append(positions, voPos{pos, li})
		}
		sort.Slice(positions, func(i, j int) bool { return positions[i].pos < positions[j].pos })
		order := make([]int, len(positions))
		for i, p := range positions {
			order[i] = p.localIdx
		}
		keyOrder[ai] = order
		tries[ai] = trie.New(len(a.Vars))
	}

	// Validate: every VO position must be bound by at least one atom
	// (empty level group, spec §4.7.3).
	for li, v := range vo {
		bound := false
		for _, a := range atoms {
			for _, av := range a.Vars {
				if av == v {
					bound = true
					break
				}
			}
			if bound {
				break
			}
		}
		if !bound {
			panic(fmt.Sprintf("operator: variable order position %d (%q) is not bound by any atom", li, v))
		}
	}

	for _, v := range outVars {
		if _, ok := voIndex[v]; !ok {
			panic(fmt.Sprintf("operator: join output variable %q not in variable order", v))
		}
	}
	outSchema := value.NewSchema("join", outVars, nil)

	return &Join{
		vo:        vo,
		voIndex:   voIndex,
		atoms:     atoms,
		tries:     tries,
		keyOrder:  keyOrder,
		outVars:   outVars,
		outSchema: outSchema,
		witness:   map[string]int{},
		tuples:    map[string]value.Tuple{},
	}
}

func indexOf(ss []string, s string) int {
	for i, v := range ss {
		if v == s {
			return i
		}
	}
	return -1
}

func (j *Join) Schema() *value.Schema { return j.outSchema }
func (j *Join) NumInputs() int        { return len(j.atoms) }

// Consume applies delta (arriving on the slot identifying which atom
// changed) per the LFTJ+ algorithm of spec §4.7.2: removes are processed
// (against the pre-removal trie state of every other atom) before adds,
// each via leapfrog enumeration over the unbound VO suffix, maintaining
// the witness table W.
func (j *Join) Consume(slot int, delta value.Delta) (value.Delta, error) {
	if slot < 0 || slot >= len(j.atoms) {
		panic("operator: join slot out of range")
	}
	var adds, removes []value.Tuple

	removeTuples := sortByKeyOrder(delta.Removes(), j.keyOrder[slot])
	for _, t := range removeTuples {
		bound := j.boundPrefix(slot, t)
		j.enumerate(bound, slot, func(full map[string]value.Atom) {
			out := j.project(full)
			key := out.Key()
			j.witness[key]--
			if j.witness[key] <= 0 {
				delete(j.witness, key)
				delete(j.tuples, key)
				removes = append(removes, out)
			}
		})
		j.tries[slot].Remove(t.Project(j.keyOrder[slot]))
	}

	addTuples := sortByKeyOrder(delta.Adds(), j.keyOrder[slot])
	for _, t := range addTuples {
		j.tries[slot].Add(t.Project(j.keyOrder[slot]))
		bound := j.boundPrefix(slot, t)
		j.enumerate(bound, slot, func(full map[string]value.Atom) {
			out := j.project(full)
			key := out.Key()
			before := j.witness[key]
			j.witness[key] = before + 1
			j.tuples[key] = out
			if before == 0 {
				adds = append(adds, out)
			}
		})
	}

	return value.NewDelta(adds, removes), nil
}

// sortByKeyOrder sorts tuples by the atom's VO-prefix key order for cache
// locality (spec §4.7.2 step 1). Correctness does not depend on this
// order; it is preserved as a faithful rendition of the algorithm.
func sortByKeyOrder(tuples []value.Tuple, order []int) []value.Tuple {
	out := append([]value.Tuple(nil), tuples...)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Project(order).CompareTo(out[j].Project(order)) == value.Less
	})
	return out
}

// boundPrefix derives β, the bound-variable assignment implied by tuple t
// arriving on atoms[slot] (spec §4.7.2.a).
func (j *Join) boundPrefix(slot int, t value.Tuple) map[string]value.Atom {
	bound := make(map[string]value.Atom, len(j.atoms[slot].Vars))
	for li, v := range j.atoms[slot].Vars {
		bound[v] = t.AtomAt(li)
	}
	return bound
}

// project reads the output projection from a fully (or partially, for
// cold-start full enumeration) bound assignment.
func (j *Join) project(bound map[string]value.Atom) value.Tuple {
	atoms := make([]value.Atom, len(j.outVars))
	for i, v := range j.outVars {
		atoms[i] = bound[v]
	}
	return value.NewTuple(atoms...)
}

// enumerate performs recursive leapfrog intersection over the unbound
// suffix of the Variable Order, starting from a pre-bound assignment
// (spec §4.7.1, §4.7.2.b-c). excludeAtom (-1 for none, used by the
// cold-start full join) is skipped when building level groups, since its
// contribution is already fixed via bound.
func (j *Join) enumerate(bound map[string]value.Atom, excludeAtom int, emit func(map[string]value.Atom)) {
	j.enumerateLevel(0, bound, excludeAtom, emit)
}

func (j *Join) enumerateLevel(level int, bound map[string]value.Atom, excludeAtom int, emit func(map[string]value.Atom)) {
	if level == len(j.vo) {
		emit(bound)
		return
	}
	v := j.vo[level]
	if _, ok := bound[v]; ok {
		j.enumerateLevel(level+1, bound, excludeAtom, emit)
		return
	}

	type participant struct {
		atomIdx int
		iter    *valueIterator
	}
	var group []participant
	for ai, a := range j.atoms {
		if ai == excludeAtom {
			continue
		}
		if indexOf(a.Vars, v) < 0 {
			continue
		}
		prefix := j.atomPrefix(ai, bound)
		it := newValueIterator(j.tries[ai], prefix)
		if it.atEnd() {
			return // this atom has no values extending the current bound prefix
		}
		group = append(group, participant{ai, it})
	}
	if len(group) == 0 {
		// Dynamically empty (no other atom currently constrains v under
		// this prefix); structurally this cannot happen for a validated
		// join (every VO variable is bound by some atom), so it means no
		// tuples match this branch.
		return
	}

	for {
		max := group[0].iter.key()
		for _, p := range group[1:] {
			if p.iter.key().CompareTo(max) == value.Greater {
				max = p.iter.key()
			}
		}
		allEqual := true
		for _, p := range group {
			p.iter.seekGE(max)
			if p.iter.atEnd() {
				return
			}
			if !p.iter.key().Equal(max) {
				allEqual = false
			}
		}
		if allEqual {
			bound[v] = max
			j.enumerateLevel(level+1, bound, excludeAtom, emit)
			delete(bound, v)
			group[0].iter.next()
			if group[0].iter.atEnd() {
				return
			}
		}
	}
}

// atomPrefix builds the physical trie prefix for atom ai from bound,
// following that atom's key order (its variables restricted to VO order).
func (j *Join) atomPrefix(ai int, bound map[string]value.Atom) []value.Atom {
	a := j.atoms[ai]
	order := j.keyOrder[ai]
	prefix := make([]value.Atom, 0, len(order))
	for _, localIdx := range order {
		v := a.Vars[localIdx]
		val, ok := bound[v]
		if !ok {
			break // stop at the first not-yet-bound position in this atom's key order
		}
		prefix = append(prefix, val)
	}
	return prefix
}

// Materialized returns the join's current output set.
func (j *Join) Materialized() []value.Tuple {
	out := make([]value.Tuple, 0, len(j.tuples))
	for _, t := range j.tuples {
		out = append(out, t)
	}
	return out
}

// ColdStart materializes the join output from scratch against the atoms'
// current trie contents, which SeedAdd fills. The engine does not call
// it: it cold-starts a graph by propagating each relation's current
// contents as adds through Consume.
func (j *Join) ColdStart() value.Delta {
	var adds []value.Tuple
	j.enumerateLevel(0, map[string]value.Atom{}, -1, func(full map[string]value.Atom) {
		out := j.project(full)
		key := out.Key()
		before := j.witness[key]
		j.witness[key] = before + 1
		j.tuples[key] = out
		if before == 0 {
			adds = append(adds, out)
		}
	})
	return value.AddOnly(adds...)
}

// SeedAdd inserts t directly into atom atomIdx's trie, reordered to the
// atom's VO-consistent physical key order, without touching the witness
// table, so that a following ColdStart enumerates the seeded data.
func (j *Join) SeedAdd(atomIdx int, t value.Tuple) {
	j.tries[atomIdx].Add(t.Project(j.keyOrder[atomIdx]))
}

// valueIterator adapts trie.LevelIterator to the small cursor surface the
// leapfrog loop needs, naming its operations after spec §4.7.1's seek_ge/
// key/next/at_end rather than the trie package's exported names, so the
// join algorithm above reads close to the specification text.
type valueIterator struct{ it *trie.LevelIterator }

func newValueIterator(tr *trie.Trie, prefix []value.Atom) *valueIterator {
	return &valueIterator{it: tr.LevelIterator(prefix)}
}
func (v *valueIterator) atEnd() bool                { return v.it.AtEnd() }
func (v *valueIterator) key() value.Atom            { return v.it.Key() }
func (v *valueIterator) next()                      { v.it.Next() }
func (v *valueIterator) seekGE(target value.Atom)   { v.it.SeekGE(target) }
