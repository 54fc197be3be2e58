package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaValidateArityAndType(t *testing.T) {
	s := NewSchema("Users", []string{"uid", "name"}, []TypePredicate{KindPredicate(KindID), KindPredicate(KindString)})
	require.NoError(t, s.Validate(NewTuple(ID("u1"), Str("Alice"))))
	require.Error(t, s.Validate(NewTuple(ID("u1"))))
	require.Error(t, s.Validate(NewTuple(Str("u1"), Str("Alice"))))
}

func TestSchemaProjectAndCompatible(t *testing.T) {
	s := NewSchema("T", []string{"a", "b", "c"}, nil)
	p := s.Project([]string{"c", "a"})
	assert.Equal(t, []string{"c", "a"}, p.Vars())

	other := NewSchema("U", []string{"a", "b", "c"}, nil)
	assert.True(t, s.CompatibleWith(other))
}

func TestSchemaDuplicateVarsPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewSchema("Bad", []string{"a", "a"}, nil)
	})
}
