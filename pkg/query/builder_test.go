package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codenerd/lftjengine/internal/engine"
	"github.com/codenerd/lftjengine/pkg/value"
)

func sym(s string) value.Atom { return value.Symbol(s) }

// TestBuilderJoinEndToEnd follows spec.md §8 scenario S4 (A(x,y) ⋈ B(y,z))
// but wires the query through the fluent Builder and a real Engine
// instead of constructing the Join operator directly.
func TestBuilderJoinEndToEnd(t *testing.T) {
	aSchema := value.NewSchema("A", []string{"x", "y"}, nil)
	bSchema := value.NewSchema("B", []string{"y", "z"}, nil)

	e := engine.New()
	require.NoError(t, e.DefineRelation("A", aSchema))
	require.NoError(t, e.DefineRelation("B", bSchema))

	q := Join(
		[]string{"y", "x", "z"},
		[]JoinInput{
			{Input: Scan("A", aSchema, false), Vars: []string{"x", "y"}},
			{Input: Scan("B", bSchema, false), Vars: []string{"y", "z"}},
		},
		[]string{"x", "y", "z"},
	)

	handle, err := e.BuildQuery("s4", q.Output())
	require.NoError(t, err)

	require.NoError(t, e.Insert("A", value.NewTuple(sym("a"), value.Int(1))))
	require.NoError(t, e.Insert("B", value.NewTuple(value.Int(1), sym("p"))))
	require.NoError(t, e.FlushAll())

	results, ok := handle.GetResults()
	require.True(t, ok)
	assert.ElementsMatch(t, []value.Tuple{value.NewTuple(sym("a"), value.Int(1), sym("p"))}, results)
}

// TestBuilderSelfJoinRoutesToEveryOccurrence follows spec.md §8 scenario
// S5: the triangle join E(x,y), E(y,z), E(z,x), three self-join
// occurrences of the same relation. A single Insert on E must reach every
// occurrence's Scan node.
func TestBuilderSelfJoinRoutesToEveryOccurrence(t *testing.T) {
	eSchema := value.NewSchema("E", []string{"a", "b"}, nil)

	e := engine.New()
	require.NoError(t, e.DefineRelation("E", eSchema))

	q := Join(
		[]string{"x", "y", "z"},
		[]JoinInput{
			{Input: Scan("E", eSchema, false), Vars: []string{"x", "y"}},
			{Input: Scan("E", eSchema, false), Vars: []string{"y", "z"}},
			{Input: Scan("E", eSchema, false), Vars: []string{"z", "x"}},
		},
		[]string{"x", "y", "z"},
	)
	handle, err := e.BuildQuery("s5", q.Output())
	require.NoError(t, err)

	require.NoError(t, e.Insert("E",
		value.NewTuple(sym("a"), sym("b")),
		value.NewTuple(sym("b"), sym("c")),
		value.NewTuple(sym("c"), sym("a")),
	))
	require.NoError(t, e.FlushAll())

	results, ok := handle.GetResults()
	require.True(t, ok)
	// Every occurrence scans the full E relation, so the cyclic triangle
	// a->b->c->a satisfies (x,y,z) under all three rotations: the output
	// projection keeps x, y, z as distinct columns, so the three rotations
	// are genuinely distinct tuples, not duplicates of one canonical
	// triangle.
	assert.ElementsMatch(t, []value.Tuple{
		value.NewTuple(sym("a"), sym("b"), sym("c")),
		value.NewTuple(sym("b"), sym("c"), sym("a")),
		value.NewTuple(sym("c"), sym("a"), sym("b")),
	}, results)
}

// TestBuilderProjectUnionDiff wires Scan -> Project into a Union of two
// relations, then Diffs a third relation against it.
func TestBuilderProjectUnionDiff(t *testing.T) {
	rSchema := value.NewSchema("R", []string{"x", "y"}, nil)
	sSchema := value.NewSchema("S", []string{"x", "y"}, nil)
	tSchema := value.NewSchema("T", []string{"x"}, nil)

	e := engine.New()
	require.NoError(t, e.DefineRelation("R", rSchema))
	require.NoError(t, e.DefineRelation("S", sSchema))
	require.NoError(t, e.DefineRelation("T", tSchema))

	left := Union(
		Scan("R", rSchema, false).Project("x"),
		Scan("S", sSchema, false).Project("x"),
	)
	right := Scan("T", tSchema, false)
	q := Diff(left, right, []string{"x"}, []string{"x"})

	handle, err := e.BuildQuery("diffq", q.Output())
	require.NoError(t, err)

	require.NoError(t, e.Insert("R", value.NewTuple(sym("a"), value.Int(1))))
	require.NoError(t, e.Insert("S", value.NewTuple(sym("b"), value.Int(2))))
	require.NoError(t, e.Insert("T", value.NewTuple(sym("b"))))
	require.NoError(t, e.FlushAll())

	results, ok := handle.GetResults()
	require.True(t, ok)
	assert.ElementsMatch(t, []value.Tuple{value.NewTuple(sym("a"))}, results,
		"b is excluded by T's matching key, a survives")
}
