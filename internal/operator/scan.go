package operator

import "github.com/codenerd/lftjengine/pkg/value"

// Scan exposes an external base relation to downstream operators (spec
// §4.1). It is a graph source: NumInputs() is 0, and the batch manager
// feeds it external deltas directly rather than routing them from another
// node's output.
type Scan struct {
	schema   *value.Schema
	maintain bool
	current  map[string]value.Tuple // present only if maintain is true
}

// NewScan creates a Scan over schema. If maintain is true, the Scan also
// keeps S_R, its current materialized set, available via Materialized().
func NewScan(schema *value.Schema, maintain bool) *Scan {
	s := &Scan{schema: schema, maintain: maintain}
	if maintain {
		s.current = map[string]value.Tuple{}
	}
	return s
}

func (s *Scan) Schema() *value.Schema { return s.schema }
func (s *Scan) NumInputs() int        { return 0 }

// Consume normalizes delta, updates S_R if maintained (removes, then
// adds, per spec §4.1), and emits the normalized delta unless it is
// empty.
func (s *Scan) Consume(_ int, delta value.Delta) (value.Delta, error) {
	if delta.IsEmpty() {
		return value.EmptyDelta(), nil
	}
	if s.maintain {
		for _, t := range delta.Removes() {
			delete(s.current, t.Key())
		}
		for _, t := range delta.Adds() {
			s.current[t.Key()] = t
		}
	}
	return delta, nil
}

// Materialized returns S_R, the current materialized set, if maintained;
// otherwise it returns nil.
func (s *Scan) Materialized() []value.Tuple {
	if !s.maintain {
		return nil
	}
	out := make([]value.Tuple, 0, len(s.current))
	for _, t := range s.current {
		out = append(out, t)
	}
	return out
}
