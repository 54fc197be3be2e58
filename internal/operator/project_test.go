package operator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codenerd/lftjengine/pkg/value"
)

// TestProjectScenarioS2 follows spec.md §8 scenario S2 exactly.
func TestProjectScenarioS2(t *testing.T) {
	inSchema := value.NewSchema("T", []string{"a", "b"}, nil)
	p := NewProject(inSchema, []string{"a"})

	t1x := value.NewTuple(value.Int(1), value.Symbol("x"))
	t1y := value.NewTuple(value.Int(1), value.Symbol("y"))
	t2z := value.NewTuple(value.Int(2), value.Symbol("z"))

	out, err := p.Consume(0, value.AddOnly(t1x, t1y, t2z))
	require.NoError(t, err)
	assert.ElementsMatch(t, []value.Tuple{value.NewTuple(value.Int(1)), value.NewTuple(value.Int(2))}, out.Adds())

	out, err = p.Consume(0, value.RemoveOnly(t1x))
	require.NoError(t, err)
	assert.True(t, out.IsEmpty(), "count 2->1 must not emit")

	out, err = p.Consume(0, value.RemoveOnly(t1y))
	require.NoError(t, err)
	assert.ElementsMatch(t, []value.Tuple{value.NewTuple(value.Int(1))}, out.Removes())
}

func TestProjectDuplicateKeyDeduplicates(t *testing.T) {
	inSchema := value.NewSchema("T", []string{"a", "b"}, nil)
	p := NewProject(inSchema, []string{"a"})
	out, err := p.Consume(0, value.AddOnly(
		value.NewTuple(value.Int(1), value.Symbol("x")),
		value.NewTuple(value.Int(1), value.Symbol("y")),
	))
	require.NoError(t, err)
	assert.Len(t, out.Adds(), 1)
}
