package value

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Tuple is an immutable, fixed-arity sequence of Atoms (spec §3.2). Tuples
// are identified and hashed by their canonical Bytes() encoding.
type Tuple struct {
	atoms []Atom
	// key caches Bytes(); computed lazily and shared across copies since
	// Tuple is treated as an immutable value type.
	key *string
}

// NewTuple builds a Tuple from the given atoms. The slice is copied so the
// caller may reuse its backing array.
func NewTuple(atoms ...Atom) Tuple {
	cp := make([]Atom, len(atoms))
	copy(cp, atoms)
	return Tuple{atoms: cp}
}

// Arity returns the number of positions in the tuple.
func (t Tuple) Arity() int { return len(t.atoms) }

// AtomAt returns the atom at position i, panicking if i is out of range.
func (t Tuple) AtomAt(i int) Atom {
	if i < 0 || i >= len(t.atoms) {
		panic(fmt.Sprintf("value: tuple index %d out of range [0,%d)", i, len(t.atoms)))
	}
	return t.atoms[i]
}

// Atoms returns a defensive copy of the tuple's atoms.
func (t Tuple) Atoms() []Atom {
	cp := make([]Atom, len(t.atoms))
	copy(cp, t.atoms)
	return cp
}

// Project returns a new Tuple containing only the positions named by
// indices, in the given order. Indices may repeat or permute.
func (t Tuple) Project(indices []int) Tuple {
	out := make([]Atom, len(indices))
	for i, idx := range indices {
		out[i] = t.AtomAt(idx)
	}
	return NewTuple(out...)
}

// CompareTo implements the lexicographic order over atom_at(0..k) described
// in spec §3.2. Tuples of differing arity compare as if the shorter one
// were a prefix of the longer (shorter < longer when all shared positions
// are equal); the engine never compares tuples of differing arity in
// practice since operators are arity-checked against their schema.
func (t Tuple) CompareTo(other Tuple) Order {
	n := len(t.atoms)
	if len(other.atoms) < n {
		n = len(other.atoms)
	}
	for i := 0; i < n; i++ {
		if c := t.atoms[i].CompareTo(other.atoms[i]); c != Equal {
			return c
		}
	}
	switch {
	case len(t.atoms) < len(other.atoms):
		return Less
	case len(t.atoms) > len(other.atoms):
		return Greater
	default:
		return Equal
	}
}

// Equal reports whether two tuples have identical atoms in the same order.
func (t Tuple) Equal(other Tuple) bool {
	if len(t.atoms) != len(other.atoms) {
		return false
	}
	for i := range t.atoms {
		if !t.atoms[i].Equal(other.atoms[i]) {
			return false
		}
	}
	return true
}

// Bytes returns the tuple's canonical identity key: the length-framed
// concatenation of each atom's Bytes(), so that u.Bytes() == v.Bytes() iff
// u.Equal(v) (spec §3.2). The framing makes concatenation injective; it is
// not required to (and does not) preserve tuple ordering.
func (t Tuple) Bytes() []byte {
	var buf []byte
	var lenPrefix [4]byte
	for _, a := range t.atoms {
		ab := a.Bytes()
		binary.BigEndian.PutUint32(lenPrefix[:], uint32(len(ab)))
		buf = append(buf, lenPrefix[:]...)
		buf = append(buf, ab...)
	}
	return buf
}

// Key returns Bytes() as a string, suitable for use as a map key. The
// result is cached on first use per the ownership note in spec §3.7 (large
// tuples may be interned by canonical bytes without changing semantics).
func (t *Tuple) Key() string {
	if t.key == nil {
		k := string(t.Bytes())
		t.key = &k
	}
	return *t.key
}

// String renders the tuple for debugging/logging.
func (t Tuple) String() string {
	parts := make([]string, len(t.atoms))
	for i, a := range t.atoms {
		parts[i] = a.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
