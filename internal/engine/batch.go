package engine

import "github.com/codenerd/lftjengine/pkg/value"

// batchManager accumulates per-relation deltas between flushes (spec
// §6.1's batch coalescing): repeated Insert/Delete calls against the same
// relation before a Flush merge into one normalized Delta, so an
// add-then-remove of the same tuple within a batch produces no
// propagation at all (spec §8, property 3 / scenario S3), without the
// graph layer ever seeing the intermediate state.
type batchManager struct {
	pending map[string]value.Delta // relation name -> accumulated delta
}

func newBatchManager() *batchManager {
	return &batchManager{pending: map[string]value.Delta{}}
}

// add merges delta into relation's pending batch.
func (b *batchManager) add(relationName string, delta value.Delta) {
	b.pending[relationName] = value.Merge(b.pending[relationName], delta)
}

// drain returns the accumulated per-relation deltas and resets the batch
// manager to empty. Relations whose accumulated delta normalized to empty
// are omitted.
func (b *batchManager) drain() map[string]value.Delta {
	out := make(map[string]value.Delta, len(b.pending))
	for name, d := range b.pending {
		if !d.IsEmpty() {
			out[name] = d
		}
	}
	b.pending = map[string]value.Delta{}
	return out
}

// isEmpty reports whether every pending relation's accumulated delta is
// empty.
func (b *batchManager) isEmpty() bool {
	for _, d := range b.pending {
		if !d.IsEmpty() {
			return false
		}
	}
	return true
}

// discard clears the batch without returning it (used by transaction
// rollback).
func (b *batchManager) discard() {
	b.pending = map[string]value.Delta{}
}
