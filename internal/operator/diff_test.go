package operator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codenerd/lftjengine/pkg/value"
)

func usersSchema() *value.Schema {
	return value.NewSchema("Users", []string{"uid", "name"}, nil)
}

func ordersSchema() *value.Schema {
	return value.NewSchema("Orders", []string{"oid", "uid", "amt"}, nil)
}

// TestDiffScenarioS1 follows spec.md §8 scenario S1 exactly.
func TestDiffScenarioS1(t *testing.T) {
	d := NewDiff(usersSchema(), ordersSchema(), []string{"uid"}, []string{"uid"})

	u1 := value.NewTuple(value.ID("u1"), value.Str("Alice"))
	u2 := value.NewTuple(value.ID("u2"), value.Str("Bob"))
	u3 := value.NewTuple(value.ID("u3"), value.Str("Charlie"))

	out, err := d.Consume(0, value.AddOnly(u1, u2, u3))
	require.NoError(t, err)
	assert.ElementsMatch(t, []value.Tuple{u1, u2, u3}, out.Adds())

	o1 := value.NewTuple(value.ID("o1"), value.ID("u1"), value.Int(100))
	o2 := value.NewTuple(value.ID("o2"), value.ID("u2"), value.Int(200))
	out, err = d.Consume(1, value.AddOnly(o1, o2))
	require.NoError(t, err)
	assert.ElementsMatch(t, []value.Tuple{u1, u2}, out.Removes())
	assert.ElementsMatch(t, []value.Tuple{u3}, d.Materialized())

	out, err = d.Consume(1, value.RemoveOnly(o1))
	require.NoError(t, err)
	assert.ElementsMatch(t, []value.Tuple{u1}, out.Adds())
	assert.Empty(t, out.Removes())
	assert.ElementsMatch(t, []value.Tuple{u1, u3}, d.Materialized())
}
