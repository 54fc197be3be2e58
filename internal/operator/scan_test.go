package operator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codenerd/lftjengine/pkg/value"
)

func TestScanPassesDeltaThroughUnchanged(t *testing.T) {
	schema := value.NewSchema("R", []string{"x"}, nil)
	s := NewScan(schema, false)

	in := value.NewDelta(
		[]value.Tuple{value.NewTuple(value.Int(1))},
		[]value.Tuple{value.NewTuple(value.Int(2))},
	)
	out, err := s.Consume(0, in)
	require.NoError(t, err)
	assert.ElementsMatch(t, in.Adds(), out.Adds())
	assert.ElementsMatch(t, in.Removes(), out.Removes())

	assert.Nil(t, s.Materialized(), "a non-maintaining Scan exposes no materialized set")
}

func TestScanMaintainsMaterializedSet(t *testing.T) {
	schema := value.NewSchema("R", []string{"x"}, nil)
	s := NewScan(schema, true)

	a := value.NewTuple(value.Int(1))
	b := value.NewTuple(value.Int(2))

	_, err := s.Consume(0, value.AddOnly(a, b))
	require.NoError(t, err)
	assert.ElementsMatch(t, []value.Tuple{a, b}, s.Materialized())

	_, err = s.Consume(0, value.RemoveOnly(a))
	require.NoError(t, err)
	assert.ElementsMatch(t, []value.Tuple{b}, s.Materialized())
}

func TestScanEmptyDeltaConsumeIsNoop(t *testing.T) {
	schema := value.NewSchema("R", []string{"x"}, nil)
	s := NewScan(schema, true)
	out, err := s.Consume(0, value.EmptyDelta())
	require.NoError(t, err)
	assert.True(t, out.IsEmpty())
}
