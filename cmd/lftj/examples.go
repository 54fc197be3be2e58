package main

import (
	"github.com/codenerd/lftjengine/internal/engine"
	"github.com/codenerd/lftjengine/pkg/query"
	"github.com/codenerd/lftjengine/pkg/value"
)

// exampleSpec bundles one spec.md §8 example query: the relations it
// needs defined and the query shape itself, so both demo and watch can
// share the same wiring.
type exampleSpec struct {
	name      string
	relations map[string]*value.Schema
	build     func() *query.Builder
}

// binaryJoinExample reproduces scenario S4: A(x,y) ⋈ B(y,z) with Variable
// Order ⟨y,x,z⟩.
func binaryJoinExample() exampleSpec {
	aSchema := value.NewSchema("A", []string{"x", "y"}, nil)
	bSchema := value.NewSchema("B", []string{"y", "z"}, nil)
	return exampleSpec{
		name:      "s4-binary-join",
		relations: map[string]*value.Schema{"A": aSchema, "B": bSchema},
		build: func() *query.Builder {
			return query.Join(
				[]string{"y", "x", "z"},
				[]query.JoinInput{
					{Input: query.Scan("A", aSchema, false), Vars: []string{"x", "y"}},
					{Input: query.Scan("B", bSchema, false), Vars: []string{"y", "z"}},
				},
				[]string{"x", "y", "z"},
			)
		},
	}
}

// triangleExample reproduces scenario S5: the triangle join E(x,y),
// E(y,z), E(z,x) over a single relation E, three self-join occurrences.
func triangleExample() exampleSpec {
	eSchema := value.NewSchema("E", []string{"a", "b"}, nil)
	return exampleSpec{
		name:      "s5-triangle",
		relations: map[string]*value.Schema{"E": eSchema},
		build: func() *query.Builder {
			return query.Join(
				[]string{"x", "y", "z"},
				[]query.JoinInput{
					{Input: query.Scan("E", eSchema, false), Vars: []string{"x", "y"}},
					{Input: query.Scan("E", eSchema, false), Vars: []string{"y", "z"}},
					{Input: query.Scan("E", eSchema, false), Vars: []string{"z", "x"}},
				},
				[]string{"x", "y", "z"},
			)
		},
	}
}

var examples = map[string]exampleSpec{
	"s4": binaryJoinExample(),
	"s5": triangleExample(),
}

// setup builds an Engine with ex's relations defined and its query graph
// registered under ex.name.
func setup(ex exampleSpec) (*engine.Engine, *engine.QueryHandle, error) {
	e := engine.New(engine.WithLogger(logger))
	for name, schema := range ex.relations {
		if err := e.DefineRelation(name, schema); err != nil {
			return nil, nil, err
		}
	}
	handle, err := e.BuildQuery(ex.name, ex.build().Output())
	if err != nil {
		return nil, nil, err
	}
	return e, handle, nil
}
