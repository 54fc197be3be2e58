package engine

import "github.com/codenerd/lftjengine/pkg/value"

// relation tracks one named base relation's schema and its current
// materialized contents, independent of any particular query graph
// (spec §3.3, §6.1). New graphs cold-start their Scan nodes from this
// state rather than requiring every query to be built before data
// arrives.
type relation struct {
	schema  *value.Schema
	current map[string]value.Tuple // tuple key -> tuple
}

func newRelation(schema *value.Schema) *relation {
	return &relation{schema: schema, current: map[string]value.Tuple{}}
}

// apply folds delta into the relation's materialized state (removes
// before adds, spec §5) and returns the normalized delta unchanged, for
// convenience at call sites that want to both mutate and forward it.
func (r *relation) apply(delta value.Delta) value.Delta {
	for _, t := range delta.Removes() {
		delete(r.current, t.Key())
	}
	for _, t := range delta.Adds() {
		r.current[t.Key()] = t
	}
	return delta
}

func (r *relation) snapshot() []value.Tuple {
	out := make([]value.Tuple, 0, len(r.current))
	for _, t := range r.current {
		out = append(out, t)
	}
	return out
}
