package operator

import "github.com/codenerd/lftjengine/pkg/value"

// Project emits tuples projected onto a subset/permutation of the input's
// positions, maintaining a reference count per projected tuple so that
// 0<->1 transitions are the only emissions (spec §4.2, invariant I-P1).
type Project struct {
	inSchema  *value.Schema
	outSchema *value.Schema
	indices   []int // positions of inSchema that make up the projection, in order
	counts    map[string]int
	tuples    map[string]value.Tuple
}

// NewProject builds a Project node over inSchema, projecting onto the
// positions named by vars (in the given order).
func NewProject(inSchema *value.Schema, vars []string) *Project {
	indices := make([]int, len(vars))
	for i, v := range vars {
		idx := inSchema.IndexOf(v)
		if idx < 0 {
			panic("operator: project variable not present in input schema: " + v)
		}
		indices[i] = idx
	}
	return &Project{
		inSchema:  inSchema,
		outSchema: inSchema.Project(vars),
		indices:   indices,
		counts:    map[string]int{},
		tuples:    map[string]value.Tuple{},
	}
}

func (p *Project) Schema() *value.Schema { return p.outSchema }
func (p *Project) NumInputs() int        { return 1 }

func (p *Project) Consume(_ int, delta value.Delta) (value.Delta, error) {
	var adds, removes []value.Tuple

	// Removes before adds (spec §5, invariant 7).
	for _, t := range delta.Removes() {
		proj := t.Project(p.indices)
		key := proj.Key()
		p.counts[key]--
		if p.counts[key] <= 0 {
			delete(p.counts, key)
			delete(p.tuples, key)
			removes = append(removes, proj)
		}
	}
	for _, t := range delta.Adds() {
		proj := t.Project(p.indices)
		key := proj.Key()
		before := p.counts[key]
		p.counts[key]++
		p.tuples[key] = proj
		if before == 0 {
			adds = append(adds, proj)
		}
	}
	return value.NewDelta(adds, removes), nil
}

func (p *Project) Materialized() []value.Tuple {
	out := make([]value.Tuple, 0, len(p.tuples))
	for _, t := range p.tuples {
		out = append(out, t)
	}
	return out
}
