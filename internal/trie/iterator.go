package trie

import (
	"sort"

	"github.com/codenerd/lftjengine/pkg/value"
)

// LevelIterator is the leapfrog primitive described in spec §3.5/§4.7.1: a
// cursor over a sorted set of atoms supporting SeekGE, Key, Next and
// AtEnd. The zero value is an empty, immediately-exhausted iterator.
type LevelIterator struct {
	atoms []value.Atom
	pos   int
}

// AtEnd reports whether the cursor has been advanced past the last atom.
func (it *LevelIterator) AtEnd() bool {
	return it.pos >= len(it.atoms)
}

// Key returns the atom at the current cursor position. Panics if AtEnd().
func (it *LevelIterator) Key() value.Atom {
	if it.AtEnd() {
		panic("trie: Key called on exhausted level iterator")
	}
	return it.atoms[it.pos]
}

// Next advances the cursor by one position.
func (it *LevelIterator) Next() {
	if !it.AtEnd() {
		it.pos++
	}
}

// SeekGE advances the cursor to the first atom >= target, using binary
// search since the level's value set is maintained sorted (invariant
// I-T1). It never moves the cursor backwards.
func (it *LevelIterator) SeekGE(target value.Atom) {
	if it.AtEnd() {
		return
	}
	// Binary search within the remaining [pos, len) window.
	offset := sort.Search(len(it.atoms)-it.pos, func(i int) bool {
		return it.atoms[it.pos+i].CompareTo(target) != value.Less
	})
	it.pos += offset
}
