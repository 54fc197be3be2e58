package operator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codenerd/lftjengine/pkg/value"
)

func TestUnionSupportCounting(t *testing.T) {
	schema := value.NewSchema("R", []string{"x"}, nil)
	u := NewUnion(schema, 2)

	a := value.NewTuple(value.Int(1))
	out, err := u.Consume(0, value.AddOnly(a))
	require.NoError(t, err)
	assert.ElementsMatch(t, []value.Tuple{a}, out.Adds())

	out, err = u.Consume(1, value.AddOnly(a))
	require.NoError(t, err)
	assert.True(t, out.IsEmpty(), "second input's add of an already-present tuple must not re-emit")

	out, err = u.Consume(0, value.RemoveOnly(a))
	require.NoError(t, err)
	assert.True(t, out.IsEmpty(), "removing one supporting input must not emit while the other still supports it")

	out, err = u.Consume(1, value.RemoveOnly(a))
	require.NoError(t, err)
	assert.ElementsMatch(t, []value.Tuple{a}, out.Removes())
}

func TestUnionIntraBatchCancellation(t *testing.T) {
	schema := value.NewSchema("R", []string{"x"}, nil)
	u := NewUnion(schema, 2)
	a := value.NewTuple(value.Int(2))

	out1, err := u.Consume(0, value.AddOnly(a))
	require.NoError(t, err)
	out2, err := u.Consume(0, value.RemoveOnly(a))
	require.NoError(t, err)

	merged := value.Merge(out1, out2)
	assert.True(t, merged.IsEmpty())
}
