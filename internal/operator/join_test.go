package operator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codenerd/lftjengine/pkg/value"
)

func sym(s string) value.Atom { return value.Symbol(s) }

// TestJoinScenarioS4 follows spec.md §8 scenario S4: A(x,y) ⋈ B(y,z) with
// VO ⟨y,x,z⟩.
func TestJoinScenarioS4(t *testing.T) {
	aSchema := value.NewSchema("A", []string{"x", "y"}, nil)
	bSchema := value.NewSchema("B", []string{"y", "z"}, nil)

	atomA := &JoinAtom{Schema: aSchema, Vars: []string{"x", "y"}}
	atomB := &JoinAtom{Schema: bSchema, Vars: []string{"y", "z"}}
	j := NewJoin([]string{"y", "x", "z"}, []*JoinAtom{atomA, atomB}, []string{"x", "y", "z"})

	aTuples := []value.Tuple{
		value.NewTuple(sym("a"), value.Int(1)),
		value.NewTuple(sym("a"), value.Int(2)),
		value.NewTuple(sym("b"), value.Int(1)),
	}
	bTuples := []value.Tuple{
		value.NewTuple(value.Int(1), sym("p")),
		value.NewTuple(value.Int(1), sym("q")),
		value.NewTuple(value.Int(3), sym("r")),
	}

	out, err := j.Consume(0, value.AddOnly(aTuples...))
	require.NoError(t, err)
	assert.True(t, out.IsEmpty(), "no B tuples yet, nothing to join")

	out, err = j.Consume(1, value.AddOnly(bTuples...))
	require.NoError(t, err)

	expected := []value.Tuple{
		value.NewTuple(sym("a"), value.Int(1), sym("p")),
		value.NewTuple(sym("a"), value.Int(1), sym("q")),
		value.NewTuple(sym("b"), value.Int(1), sym("p")),
		value.NewTuple(sym("b"), value.Int(1), sym("q")),
	}
	assert.ElementsMatch(t, expected, out.Adds())
	assert.ElementsMatch(t, expected, j.Materialized())

	out, err = j.Consume(1, value.RemoveOnly(value.NewTuple(value.Int(1), sym("p"))))
	require.NoError(t, err)
	assert.ElementsMatch(t, []value.Tuple{
		value.NewTuple(sym("a"), value.Int(1), sym("p")),
		value.NewTuple(sym("b"), value.Int(1), sym("p")),
	}, out.Removes())
}

// TestJoinScenarioS5 follows spec.md §8 scenario S5: the triangle join
// E(x,y), E(y,z), E(z,x) with VO ⟨x,y,z⟩, three self-join occurrences.
func TestJoinScenarioS5(t *testing.T) {
	eSchema := value.NewSchema("E", []string{"a", "b"}, nil)
	occXY := &JoinAtom{Schema: eSchema, Vars: []string{"x", "y"}}
	occYZ := &JoinAtom{Schema: eSchema, Vars: []string{"y", "z"}}
	occZX := &JoinAtom{Schema: eSchema, Vars: []string{"z", "x"}}
	j := NewJoin([]string{"x", "y", "z"}, []*JoinAtom{occXY, occYZ, occZX}, []string{"x", "y", "z"})

	ab := value.NewTuple(sym("a"), sym("b"))
	bc := value.NewTuple(sym("b"), sym("c"))
	ca := value.NewTuple(sym("c"), sym("a"))

	// Seed the two edges that do not complete a triangle by themselves.
	_, err := j.Consume(1, value.AddOnly(bc))
	require.NoError(t, err)
	_, err = j.Consume(2, value.AddOnly(ca))
	require.NoError(t, err)

	// Adding (a,b) to occurrence E(x,y) completes the triangle.
	out, err := j.Consume(0, value.AddOnly(ab))
	require.NoError(t, err)
	assert.ElementsMatch(t, []value.Tuple{value.NewTuple(sym("a"), sym("b"), sym("c"))}, out.Adds())

	// Removing (c,a) from occurrence E(z,x) must remove the triangle.
	out, err = j.Consume(2, value.RemoveOnly(ca))
	require.NoError(t, err)
	assert.ElementsMatch(t, []value.Tuple{value.NewTuple(sym("a"), sym("b"), sym("c"))}, out.Removes())
	assert.Empty(t, j.Materialized())
}

func TestJoinColdStart(t *testing.T) {
	aSchema := value.NewSchema("A", []string{"x", "y"}, nil)
	bSchema := value.NewSchema("B", []string{"y", "z"}, nil)
	atomA := &JoinAtom{Schema: aSchema, Vars: []string{"x", "y"}}
	atomB := &JoinAtom{Schema: bSchema, Vars: []string{"y", "z"}}
	j := NewJoin([]string{"y", "x", "z"}, []*JoinAtom{atomA, atomB}, []string{"x", "y", "z"})

	j.SeedAdd(0, value.NewTuple(sym("a"), value.Int(1)))
	j.SeedAdd(1, value.NewTuple(value.Int(1), sym("p")))

	delta := j.ColdStart()
	assert.ElementsMatch(t, []value.Tuple{value.NewTuple(sym("a"), value.Int(1), sym("p"))}, delta.Adds())
}

func TestJoinEmptyLevelGroupPanics(t *testing.T) {
	aSchema := value.NewSchema("A", []string{"x"}, nil)
	atomA := &JoinAtom{Schema: aSchema, Vars: []string{"x"}}
	assert.Panics(t, func() {
		NewJoin([]string{"x", "y"}, []*JoinAtom{atomA}, []string{"x"})
	})
}
