package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codenerd/lftjengine/internal/operator"
	"github.com/codenerd/lftjengine/pkg/value"
)

func sym(s string) value.Atom { return value.Symbol(s) }

// TestPropagateScanProjectUnion wires Scan(A) into two Projects onto x,
// both feeding a two-input Union, and checks a single external batch flows
// end to end.
func TestPropagateScanProjectUnion(t *testing.T) {
	schema := value.NewSchema("R", []string{"x", "y"}, nil)
	b := NewBuilder()

	scan := operator.NewScan(schema, true)
	scanID := b.AddNode("scan", scan)

	proj := operator.NewProject(schema, []string{"x"})
	projID := b.AddNode("project", proj)
	b.Connect(scanID, projID, 0)

	proj2 := operator.NewProject(schema, []string{"x"})
	proj2ID := b.AddNode("project2", proj2)
	b.Connect(scanID, proj2ID, 0)

	union := operator.NewUnion(proj.Schema(), 2)
	unionID := b.AddNode("union", union)
	b.Connect(projID, unionID, 0)
	b.Connect(proj2ID, unionID, 1)
	b.MarkOutput(unionID)

	g, err := b.Build()
	require.NoError(t, err)

	t1 := value.NewTuple(sym("a"), value.Int(1))
	t2 := value.NewTuple(sym("a"), value.Int(2))
	results, err := g.Propagate(map[NodeID]value.Delta{
		scanID: value.AddOnly(t1, t2),
	})
	require.NoError(t, err)

	out, ok := results[unionID]
	require.True(t, ok)
	assert.ElementsMatch(t, []value.Tuple{value.NewTuple(sym("a"))}, out.Adds(),
		"both source tuples project to the same x=a, Union must emit it only once")
}

// TestPropagateCycleRejected checks that Build() rejects a graph with a
// cycle between two nodes.
func TestPropagateCycleRejected(t *testing.T) {
	schema := value.NewSchema("R", []string{"x"}, nil)
	b := NewBuilder()

	u1 := operator.NewUnion(schema, 2)
	id1 := b.AddNode("u1", u1)
	u2 := operator.NewUnion(schema, 2)
	id2 := b.AddNode("u2", u2)

	b.Connect(id1, id2, 0)
	b.Connect(id2, id1, 1)
	b.MarkOutput(id2)

	_, err := b.Build()
	assert.Error(t, err)
}

// TestPropagateUnwiredSlotRejected checks that Build() rejects a graph
// with an unconnected required input slot.
func TestPropagateUnwiredSlotRejected(t *testing.T) {
	schema := value.NewSchema("R", []string{"x"}, nil)
	b := NewBuilder()
	id := b.AddNode("u", operator.NewUnion(schema, 2))
	b.MarkOutput(id)
	_, err := b.Build()
	assert.Error(t, err)
}

// TestPropagateRemoveBeforeAdd checks that when a single batch carries a
// remove on one Diff input slot and an add on the other, the graph applies
// all removes (across every touched slot) before any add, per the global
// remove-before-add ordering invariant.
func TestPropagateRemoveBeforeAdd(t *testing.T) {
	leftSchema := value.NewSchema("L", []string{"k"}, nil)
	rightSchema := value.NewSchema("Rt", []string{"k"}, nil)
	b := NewBuilder()

	leftScan := operator.NewScan(leftSchema, false)
	leftID := b.AddNode("left", leftScan)
	rightScan := operator.NewScan(rightSchema, false)
	rightID := b.AddNode("right", rightScan)

	diff := operator.NewDiff(leftSchema, rightSchema, []string{"k"}, []string{"k"})
	diffID := b.AddNode("diff", diff)
	b.Connect(leftID, diffID, 0)
	b.Connect(rightID, diffID, 1)
	b.MarkOutput(diffID)

	g, err := b.Build()
	require.NoError(t, err)

	l1 := value.NewTuple(value.Int(1))
	_, err = g.Propagate(map[NodeID]value.Delta{
		leftID:  value.AddOnly(l1),
		rightID: value.AddOnly(value.NewTuple(value.Int(1))),
	})
	require.NoError(t, err)
	assert.Empty(t, diff.Materialized(), "l1 has right support, must not surface")

	// A batch that removes the only right-side support for key 1 and adds
	// a new left tuple with an unsupported key surfaces both left tuples.
	l2 := value.NewTuple(value.Int(2))
	results, err := g.Propagate(map[NodeID]value.Delta{
		rightID: value.RemoveOnly(value.NewTuple(value.Int(1))),
		leftID:  value.AddOnly(l2),
	})
	require.NoError(t, err)
	out := results[diffID]
	assert.ElementsMatch(t, []value.Tuple{l1, l2}, out.Adds(), "losing right support must surface l1, and l2 has no support")
}
