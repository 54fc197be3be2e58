// Package operator implements the stateful dataflow nodes described in
// spec §4: Scan, Project, Union, Rename, Diff, Compute and Join. Each node
// owns its own support structures and communicates only via immutable
// Delta messages (spec §3.6-3.7): operator state is never shared.
package operator

import "github.com/codenerd/lftjengine/pkg/value"

// Node is the tagged-variant dispatch surface described in spec §9: a
// single method that consumes a delta tagged by input slot and returns the
// delta to propagate downstream. Every concrete operator in this package
// implements Node.
type Node interface {
	// Schema returns the schema of the node's output relation.
	Schema() *value.Schema

	// NumInputs returns how many distinct input slots this node accepts.
	// Scan and enumerable Compute nodes return 0 (they are graph sources,
	// fed directly by the batch manager). Project, Rename and pointwise
	// Compute return 1. Diff returns 2 (0=left, 1=right). Union and Join
	// return the number of their respective inputs/atoms.
	NumInputs() int

	// Consume applies delta, which arrives on the given input slot, to
	// this node's internal state and returns the (normalized) delta to
	// emit downstream. Implementations must process delta.Removes()
	// before delta.Adds() (spec §5, invariant 7).
	Consume(slot int, delta value.Delta) (value.Delta, error)
}

// Materializer is implemented by nodes that maintain their current result
// set (Scan, and any operator built to expose one), used by QueryHandle to
// answer GetResults() without replaying the whole graph.
type Materializer interface {
	Materialized() []value.Tuple
}
