package operator

import "github.com/codenerd/lftjengine/pkg/value"

// Union computes the disjunction of two or more schema-compatible inputs,
// maintaining a per-tuple input-contribution count so that 0<->1
// transitions are the only emissions (spec §4.3).
type Union struct {
	schema    *value.Schema
	numInputs int
	counts    map[string]int
	tuples    map[string]value.Tuple
}

// NewUnion builds a Union node over numInputs inputs of the given schema.
// numInputs must be >= 2; NewUnion panics otherwise.
func NewUnion(schema *value.Schema, numInputs int) *Union {
	if numInputs < 2 {
		panic("operator: union requires at least 2 inputs")
	}
	return &Union{schema: schema, numInputs: numInputs, counts: map[string]int{}, tuples: map[string]value.Tuple{}}
}

func (u *Union) Schema() *value.Schema { return u.schema }
func (u *Union) NumInputs() int        { return u.numInputs }

func (u *Union) Consume(_ int, delta value.Delta) (value.Delta, error) {
	var adds, removes []value.Tuple
	for _, t := range delta.Removes() {
		key := t.Key()
		u.counts[key]--
		if u.counts[key] <= 0 {
			delete(u.counts, key)
			delete(u.tuples, key)
			removes = append(removes, t)
		}
	}
	for _, t := range delta.Adds() {
		key := t.Key()
		before := u.counts[key]
		u.counts[key]++
		u.tuples[key] = t
		if before == 0 {
			adds = append(adds, t)
		}
	}
	return value.NewDelta(adds, removes), nil
}

func (u *Union) Materialized() []value.Tuple {
	out := make([]value.Tuple, 0, len(u.tuples))
	for _, t := range u.tuples {
		out = append(out, t)
	}
	return out
}
