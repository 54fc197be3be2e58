package value

import (
	"fmt"
	"strings"
)

// TypePredicate validates a single atom against a declared position type.
// A nil TypePredicate accepts any atom.
type TypePredicate func(Atom) bool

// KindPredicate returns a TypePredicate that accepts atoms of exactly the
// given Kind; this is the common case for NewSchema's types argument.
func KindPredicate(k Kind) TypePredicate {
	return func(a Atom) bool { return a.Kind() == k }
}

// Schema names the k positions of a relation with unique variable names
// and, optionally, per-position type predicates (spec §3.3). Schemas are
// immutable once built.
type Schema struct {
	name  string
	vars  []string
	types []TypePredicate // parallel to vars; entries may be nil
}

// NewSchema builds a Schema from parallel name/predicate slices. Predicate
// entries may be nil to accept any atom at that position. Panics if names
// are not unique or the slices' lengths differ — this is a construction-
// time programmer error, not a validation error surfaced to callers.
func NewSchema(name string, vars []string, types []TypePredicate) *Schema {
	if len(types) != 0 && len(types) != len(vars) {
		panic("value: schema types length must match vars length or be empty")
	}
	seen := make(map[string]struct{}, len(vars))
	for _, v := range vars {
		if _, ok := seen[v]; ok {
			panic(fmt.Sprintf("value: schema %q has duplicate variable %q", name, v))
		}
		seen[v] = struct{}{}
	}
	vcopy := append([]string(nil), vars...)
	var tcopy []TypePredicate
	if len(types) > 0 {
		tcopy = append([]TypePredicate(nil), types...)
	} else {
		tcopy = make([]TypePredicate, len(vars))
	}
	return &Schema{name: name, vars: vcopy, types: tcopy}
}

// Name returns the schema's relation name.
func (s *Schema) Name() string { return s.name }

// Arity returns the number of positions.
func (s *Schema) Arity() int { return len(s.vars) }

// Vars returns a copy of the positional variable names.
func (s *Schema) Vars() []string { return append([]string(nil), s.vars...) }

// IndexOf returns the position of var name, or -1 if not present.
func (s *Schema) IndexOf(name string) int {
	for i, v := range s.vars {
		if v == name {
			return i
		}
	}
	return -1
}

// Validate checks a tuple's arity and, where declared, each position's
// type predicate. It returns a descriptive error rather than panicking
// since schema mismatches are a validation-class error (spec §7).
func (s *Schema) Validate(t Tuple) error {
	if t.Arity() != s.Arity() {
		return fmt.Errorf("value: schema %q expects arity %d, got %d", s.name, s.Arity(), t.Arity())
	}
	for i, pred := range s.types {
		if pred == nil {
			continue
		}
		if !pred(t.AtomAt(i)) {
			return fmt.Errorf("value: schema %q: atom at position %d (%s=%s) fails type predicate", s.name, i, s.vars[i], t.AtomAt(i))
		}
	}
	return nil
}

// Project returns a new Schema restricted to the named positions, in the
// given order. Panics if a name is not present (a programmer error: the
// caller should validate names against the graph before building).
func (s *Schema) Project(names []string) *Schema {
	vars := make([]string, len(names))
	types := make([]TypePredicate, len(names))
	for i, n := range names {
		idx := s.IndexOf(n)
		if idx < 0 {
			panic(fmt.Sprintf("value: schema %q has no variable %q", s.name, n))
		}
		vars[i] = n
		types[i] = s.types[idx]
	}
	return NewSchema(s.name+"."+strings.Join(names, ","), vars, types)
}

// CompatibleWith reports whether two schemas have the same arity, the same
// variable names in the same order, and (structurally) the same type
// predicates being present/absent at each position. Predicate functions
// cannot be compared for behavioral equality in Go, so two declared
// predicates at the same position are treated as compatible by name
// presence; callers that need stricter checks should share predicate
// values rather than re-declaring them.
func (s *Schema) CompatibleWith(other *Schema) bool {
	if s.Arity() != other.Arity() {
		return false
	}
	for i := range s.vars {
		if s.vars[i] != other.vars[i] {
			return false
		}
		if (s.types[i] == nil) != (other.types[i] == nil) {
			return false
		}
	}
	return true
}

// Rename returns a new Schema with positions relabeled per the given
// old->new mapping; names not present in the map are kept as-is.
func (s *Schema) Rename(mapping map[string]string) *Schema {
	vars := make([]string, len(s.vars))
	for i, v := range s.vars {
		if nv, ok := mapping[v]; ok {
			vars[i] = nv
		} else {
			vars[i] = v
		}
	}
	return NewSchema(s.name, vars, s.types)
}

// String renders the schema for debugging/logging, e.g. R[x, y].
func (s *Schema) String() string {
	return fmt.Sprintf("%s[%s]", s.name, strings.Join(s.vars, ", "))
}
