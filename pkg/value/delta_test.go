package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeltaCancellation(t *testing.T) {
	tup := NewTuple(Int(2))
	d := NewDelta([]Tuple{tup}, []Tuple{tup})
	assert.True(t, d.IsEmpty(), "S3: add and remove of the same tuple must cancel")
}

func TestDeltaIdempotentNormalization(t *testing.T) {
	a := NewTuple(Int(1))
	b := NewTuple(Int(2))
	d := NewDelta([]Tuple{a, a}, []Tuple{b})
	d2 := NewDelta(d.Adds(), d.Removes())
	assert.ElementsMatch(t, d.Adds(), d2.Adds())
	assert.ElementsMatch(t, d.Removes(), d2.Removes())
}

func TestDeltaMergeCancelsAcrossBatch(t *testing.T) {
	tup := NewTuple(Int(5))
	first := AddOnly(tup)
	second := RemoveOnly(tup)
	merged := Merge(first, second)
	assert.True(t, merged.IsEmpty())
}

func TestDeltaMergeUnion(t *testing.T) {
	a, b := NewTuple(Int(1)), NewTuple(Int(2))
	merged := Merge(AddOnly(a), AddOnly(b))
	assert.ElementsMatch(t, []Tuple{a, b}, merged.Adds())
}

func TestDeltaMergeCancelsAcrossBatchSymmetric(t *testing.T) {
	tup := NewTuple(Int(5))
	merged := Merge(RemoveOnly(tup), AddOnly(tup))
	assert.True(t, merged.IsEmpty(), "a remove then a re-add of the same tuple must cancel")
}

func TestDeltaMergeChainSettlesOnLastOp(t *testing.T) {
	tup := NewTuple(Int(5))
	merged := Merge(RemoveOnly(tup), AddOnly(tup), RemoveOnly(tup))
	assert.ElementsMatch(t, []Tuple{tup}, merged.Removes())
	assert.Empty(t, merged.Adds())
}
