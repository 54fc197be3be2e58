package operator

import "github.com/codenerd/lftjengine/pkg/value"

// Rename re-labels variable names in the schema; the tuple payload is
// unchanged (spec §4.4). It is stateless and could be compiled away, but
// is kept as an explicit node so the graph layer can route through it
// uniformly with the other operators.
type Rename struct {
	schema *value.Schema
}

// NewRename builds a Rename node applying mapping to inSchema.
func NewRename(inSchema *value.Schema, mapping map[string]string) *Rename {
	return &Rename{schema: inSchema.Rename(mapping)}
}

func (r *Rename) Schema() *value.Schema { return r.schema }
func (r *Rename) NumInputs() int        { return 1 }

func (r *Rename) Consume(_ int, delta value.Delta) (value.Delta, error) {
	return delta, nil
}
