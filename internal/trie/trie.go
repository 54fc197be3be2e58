// Package trie implements the per-relation multi-level index described in
// spec §3.5: for each level i, a mapping from every distinct prefix to the
// sorted set of values occurring at position i, with reference counts so
// that concurrent tuples sharing a prefix-value are tracked correctly
// through adds and removes.
package trie

import (
	"sort"

	"github.com/codenerd/lftjengine/pkg/value"
)

// node is one level of the trie: the set of distinct atoms reachable from
// this point, kept sorted (invariant I-T1), each with a reference count of
// how many tuples in the current relation pass through it, and a pointer
// to the subtree for that atom.
type node struct {
	atoms    []value.Atom          // sorted, parallel to children/refCount keys
	children map[string]*node      // atom.Bytes() key -> child (nil at leaf level)
	refCount map[string]int        // atom.Bytes() key -> tuples sharing this prefix-value
}

func newNode() *node {
	return &node{children: map[string]*node{}, refCount: map[string]int{}}
}

// insert adds atom a as a child of n if not already present, keeping
// n.atoms sorted, and returns the (possibly new) child node. leaf
// indicates whether this child is the terminal level (no further
// descent), in which case no child node is allocated.
func (n *node) insert(a value.Atom, leaf bool) *node {
	key := string(a.Bytes())
	if _, ok := n.refCount[key]; !ok {
		n.refCount[key] = 0
		idx := sort.Search(len(n.atoms), func(i int) bool { return n.atoms[i].CompareTo(a) != value.Less })
		n.atoms = append(n.atoms, value.Atom{})
		copy(n.atoms[idx+1:], n.atoms[idx:])
		n.atoms[idx] = a
		if !leaf {
			n.children[key] = newNode()
		}
	}
	n.refCount[key]++
	if leaf {
		return nil
	}
	return n.children[key]
}

// remove decrements the reference count for atom a and, on a 1->0
// crossing, deletes it from n.atoms/children/refCount (invariant I-T2: no
// empty bucket persists). Callers that need the child node must fetch it
// with child before calling remove.
func (n *node) remove(a value.Atom, leaf bool) {
	key := string(a.Bytes())
	count, ok := n.refCount[key]
	if !ok {
		return
	}
	count--
	if count <= 0 {
		delete(n.refCount, key)
		delete(n.children, key)
		idx := sort.Search(len(n.atoms), func(i int) bool { return n.atoms[i].CompareTo(a) != value.Less })
		if idx < len(n.atoms) && n.atoms[idx].Equal(a) {
			n.atoms = append(n.atoms[:idx], n.atoms[idx+1:]...)
		}
		return
	}
	n.refCount[key] = count
}

func (n *node) child(a value.Atom) *node {
	return n.children[string(a.Bytes())]
}

// Trie indexes a set of tuples of fixed arity by materializing, level by
// level, the sorted value sets described in spec §3.5. It tracks tuple
// presence directly (relations are sets, spec §3.4) so Add/Remove are
// idempotent/no-ops on an already-present/absent tuple.
type Trie struct {
	arity   int
	root    *node
	present map[string]value.Tuple
}

// New creates an empty Trie for tuples of the given arity.
func New(arity int) *Trie {
	return &Trie{arity: arity, root: newNode(), present: map[string]value.Tuple{}}
}

// Arity returns the tuple arity this trie is keyed for.
func (t *Trie) Arity() int { return t.arity }

// Len returns the number of tuples currently indexed.
func (t *Trie) Len() int { return len(t.present) }

// Contains reports whether tup is currently indexed.
func (t *Trie) Contains(tup value.Tuple) bool {
	_, ok := t.present[tup.Key()]
	return ok
}

// Add inserts tup into the trie, returning true if it was not already
// present (i.e. the underlying set actually changed).
func (t *Trie) Add(tup value.Tuple) bool {
	if tup.Arity() != t.arity {
		panic("trie: tuple arity does not match trie arity")
	}
	key := tup.Key()
	if _, ok := t.present[key]; ok {
		return false
	}
	t.present[key] = tup
	cur := t.root
	for i := 0; i < t.arity; i++ {
		cur = cur.insert(tup.AtomAt(i), i == t.arity-1)
	}
	return true
}

// Remove deletes tup from the trie, returning true if it was present.
func (t *Trie) Remove(tup value.Tuple) bool {
	if tup.Arity() != t.arity {
		panic("trie: tuple arity does not match trie arity")
	}
	key := tup.Key()
	if _, ok := t.present[key]; !ok {
		return false
	}
	delete(t.present, key)
	cur := t.root
	for i := 0; i < t.arity; i++ {
		leaf := i == t.arity-1
		next := cur.child(tup.AtomAt(i))
		cur.remove(tup.AtomAt(i), leaf)
		cur = next
	}
	return true
}

// Tuples returns all indexed tuples in unspecified order.
func (t *Trie) Tuples() []value.Tuple {
	out := make([]value.Tuple, 0, len(t.present))
	for _, tup := range t.present {
		out = append(out, tup)
	}
	return out
}

// descend walks prefix (a sequence of bound atom values for levels
// 0..len(prefix)-1) and returns the node reached, or nil if no tuple
// extends that prefix.
func (t *Trie) descend(prefix []value.Atom) *node {
	cur := t.root
	for _, a := range prefix {
		if cur == nil {
			return nil
		}
		cur = cur.child(a)
	}
	return cur
}

// LevelIterator returns a level iterator over the distinct values at
// position len(prefix) for tuples extending prefix (spec §3.5, §4.7.1).
// If no tuple extends prefix, the returned iterator is immediately AtEnd.
func (t *Trie) LevelIterator(prefix []value.Atom) *LevelIterator {
	n := t.descend(prefix)
	if n == nil {
		return &LevelIterator{}
	}
	return &LevelIterator{atoms: n.atoms, pos: 0}
}
