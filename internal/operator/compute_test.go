package operator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codenerd/lftjengine/pkg/value"
)

type fakeEnumerable struct {
	initial []value.Tuple
	adds    []value.Tuple
	removes []value.Tuple
}

func (f *fakeEnumerable) Enumerate(ctx context.Context) ([]value.Tuple, Handle, error) {
	return f.initial, 0, nil
}

func (f *fakeEnumerable) DeltaSince(ctx context.Context, handle Handle) ([]value.Tuple, []value.Tuple, Handle, error) {
	h := handle.(int)
	return f.adds, f.removes, h + 1, nil
}

func TestComputeEnumerableColdStartThenDelta(t *testing.T) {
	schema := value.NewSchema("R", []string{"x"}, nil)
	a := value.NewTuple(value.Symbol("a"))
	b := value.NewTuple(value.Symbol("b"))
	provider := &fakeEnumerable{initial: []value.Tuple{a}, adds: []value.Tuple{b}, removes: []value.Tuple{a}}

	c := NewEnumerableCompute(schema, provider)
	assert.Equal(t, 0, c.NumInputs())
	assert.True(t, c.IsEnumerable())

	delta, err := c.PullProvider(context.Background())
	require.NoError(t, err)
	_, err = c.Consume(0, delta)
	require.NoError(t, err)
	assert.ElementsMatch(t, []value.Tuple{a}, c.Materialized())

	delta, err = c.PullProvider(context.Background())
	require.NoError(t, err)
	_, err = c.Consume(0, delta)
	require.NoError(t, err)
	assert.ElementsMatch(t, []value.Tuple{b}, c.Materialized())
}

type fakePointwise struct {
	truth map[string]bool
}

func (f *fakePointwise) EvalMany(ctx context.Context, candidates []value.Tuple) (map[string]bool, error) {
	out := make(map[string]bool, len(candidates))
	for _, t := range candidates {
		out[t.Key()] = f.truth[t.Key()]
	}
	return out, nil
}

func (f *fakePointwise) SupportsFlips() bool { return false }

func (f *fakePointwise) FlipsSince(ctx context.Context, handle Handle, watched []value.Tuple) ([]value.Tuple, []value.Tuple, Handle, error) {
	return nil, nil, handle, nil
}

func TestComputePointwiseEmitsOnlyTrueCandidates(t *testing.T) {
	schema := value.NewSchema("R", []string{"x"}, nil)
	pass := value.NewTuple(value.Int(1))
	fail := value.NewTuple(value.Int(2))
	provider := &fakePointwise{truth: map[string]bool{pass.Key(): true, fail.Key(): false}}

	c := NewPointwiseCompute(schema, provider)
	assert.Equal(t, 1, c.NumInputs())

	out, err := c.Consume(0, value.AddOnly(pass, fail))
	require.NoError(t, err)
	assert.ElementsMatch(t, []value.Tuple{pass}, out.Adds())
	assert.ElementsMatch(t, []value.Tuple{pass}, c.Materialized())

	out, err = c.Consume(0, value.RemoveOnly(pass))
	require.NoError(t, err)
	assert.ElementsMatch(t, []value.Tuple{pass}, out.Removes())
	assert.Empty(t, c.Materialized())
}

func TestComputePointwiseNoFlipsIsNoop(t *testing.T) {
	schema := value.NewSchema("R", []string{"x"}, nil)
	c := NewPointwiseCompute(schema, &fakePointwise{truth: map[string]bool{}})
	out, err := c.PullFlips(context.Background())
	require.NoError(t, err)
	assert.True(t, out.IsEmpty())
}
