package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTupleCompareToLexicographic(t *testing.T) {
	a := NewTuple(Int(1), Str("x"))
	b := NewTuple(Int(1), Str("y"))
	c := NewTuple(Int(2), Str("a"))
	assert.Equal(t, Less, a.CompareTo(b))
	assert.Equal(t, Less, b.CompareTo(c))
	assert.Equal(t, Equal, a.CompareTo(NewTuple(Int(1), Str("x"))))
}

func TestTupleBytesInjective(t *testing.T) {
	u := NewTuple(Str("a"), Str("bc"))
	v := NewTuple(Str("ab"), Str("c"))
	assert.False(t, u.Equal(v))
	assert.NotEqual(t, string(u.Bytes()), string(v.Bytes()))
}

func TestTupleProject(t *testing.T) {
	tup := NewTuple(Int(1), Str("x"), Bool(true))
	p := tup.Project([]int{2, 0})
	assert.Equal(t, 2, p.Arity())
	assert.Equal(t, Bool(true), p.AtomAt(0))
	assert.Equal(t, Int(1), p.AtomAt(1))
}

func TestTupleKeyStable(t *testing.T) {
	tup := NewTuple(Int(1), Str("x"))
	k1 := tup.Key()
	k2 := tup.Key()
	assert.Equal(t, k1, k2)
	other := NewTuple(Int(1), Str("x"))
	assert.Equal(t, tup.Key(), other.Key())
}
