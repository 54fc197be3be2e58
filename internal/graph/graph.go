// Package graph implements the validated DAG of operator instances
// described in spec §4.8: construction, cycle detection, topological
// execution order, and batch propagation with remove-before-add ordering
// (spec §5).
package graph

import (
	"fmt"
	"sort"

	"go.uber.org/multierr"

	"github.com/codenerd/lftjengine/internal/operator"
	"github.com/codenerd/lftjengine/pkg/value"
)

// NodeID identifies a node within a single Graph.
type NodeID int

type edge struct {
	to     NodeID
	toSlot int
}

// Graph is a validated DAG of operator.Node instances with a declared set
// of output nodes (spec §4.8). Build one with NewBuilder, then Build().
type Graph struct {
	nodes   []operator.Node
	names   []string
	outEdges map[NodeID][]edge
	inCount map[NodeID]int // number of distinct (slot) inputs wired so far, for validation
	outputs map[NodeID]bool
	topo    []NodeID
}

// Builder accumulates nodes and edges for one Graph.
type Builder struct {
	nodes    []operator.Node
	names    []string
	outEdges map[NodeID][]edge
	wired    map[NodeID]map[int]bool // node -> slot -> wired
	outputs  map[NodeID]bool
	errs     error
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		outEdges: map[NodeID][]edge{},
		wired:    map[NodeID]map[int]bool{},
		outputs:  map[NodeID]bool{},
	}
}

// AddNode registers node under name (used only for diagnostics) and
// returns its NodeID.
func (b *Builder) AddNode(name string, node operator.Node) NodeID {
	id := NodeID(len(b.nodes))
	b.nodes = append(b.nodes, node)
	b.names = append(b.names, name)
	b.wired[id] = map[int]bool{}
	return id
}

// Connect wires an edge from 'from's output to 'to's input slot toSlot.
// Errors accumulate (multierr) and surface from Build(), collecting all
// configuration problems in one pass (spec §7, validation errors).
func (b *Builder) Connect(from, to NodeID, toSlot int) {
	if int(from) < 0 || int(from) >= len(b.nodes) {
		b.errs = multierr.Append(b.errs, fmt.Errorf("graph: Connect: invalid source node %d", from))
		return
	}
	if int(to) < 0 || int(to) >= len(b.nodes) {
		b.errs = multierr.Append(b.errs, fmt.Errorf("graph: Connect: invalid destination node %d", to))
		return
	}
	if toSlot < 0 || toSlot >= b.nodes[to].NumInputs() {
		b.errs = multierr.Append(b.errs, fmt.Errorf("graph: Connect: node %q has no input slot %d", b.names[to], toSlot))
		return
	}
	if b.wired[to][toSlot] {
		b.errs = multierr.Append(b.errs, fmt.Errorf("graph: Connect: node %q input slot %d is already wired", b.names[to], toSlot))
		return
	}
	b.wired[to][toSlot] = true
	b.outEdges[from] = append(b.outEdges[from], edge{to: to, toSlot: toSlot})
}

// MarkOutput declares id as an output node of the graph (spec §4.8).
func (b *Builder) MarkOutput(id NodeID) {
	b.outputs[id] = true
}

// Build validates the accumulated graph (every input slot wired, no
// cycles) and returns a Graph with a stable topological execution order.
// All validation problems found are joined into a single returned error
// via go.uber.org/multierr, matching the ambient error-aggregation style
// used elsewhere in this codebase.
func (b *Builder) Build() (*Graph, error) {
	errs := b.errs
	for id, node := range b.nodes {
		for slot := 0; slot < node.NumInputs(); slot++ {
			if !b.wired[NodeID(id)][slot] {
				errs = multierr.Append(errs, fmt.Errorf("graph: node %q input slot %d is unwired", b.names[id], slot))
			}
		}
	}

	topo, cycleErr := topoSort(len(b.nodes), b.outEdges)
	if cycleErr != nil {
		errs = multierr.Append(errs, cycleErr)
	}
	if len(b.outputs) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("graph: at least one output node must be declared"))
	}
	if errs != nil {
		return nil, errs
	}

	return &Graph{
		nodes:    b.nodes,
		names:    b.names,
		outEdges: b.outEdges,
		outputs:  b.outputs,
		topo:     topo,
	}, nil
}

// topoSort performs Kahn's algorithm over the edge list, returning a
// stable node order or an error naming a detected cycle.
func topoSort(n int, outEdges map[NodeID][]edge) ([]NodeID, error) {
	indeg := make([]int, n)
	for _, edges := range outEdges {
		for _, e := range edges {
			indeg[e.to]++
		}
	}
	var queue []NodeID
	for i := 0; i < n; i++ {
		if indeg[i] == 0 {
			queue = append(queue, NodeID(i))
		}
	}
	sort.Slice(queue, func(i, j int) bool { return queue[i] < queue[j] })

	var order []NodeID
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		next := outEdges[id]
		sort.Slice(next, func(i, j int) bool { return next[i].to < next[j].to })
		for _, e := range next {
			indeg[e.to]--
			if indeg[e.to] == 0 {
				queue = append(queue, e.to)
				sort.Slice(queue, func(i, j int) bool { return queue[i] < queue[j] })
			}
		}
	}
	if len(order) != n {
		return nil, fmt.Errorf("graph: cycle detected among operator nodes")
	}
	return order, nil
}

// Node returns node id's operator.Node.
func (g *Graph) Node(id NodeID) operator.Node { return g.nodes[id] }

// Name returns the diagnostic name given to node id at AddNode time.
func (g *Graph) Name(id NodeID) string { return g.names[id] }

// NumNodes returns the number of nodes in the graph.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// Outputs returns the declared output node ids, sorted for determinism.
func (g *Graph) Outputs() []NodeID {
	out := make([]NodeID, 0, len(g.outputs))
	for id := range g.outputs {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsOutput reports whether id is a declared output node.
func (g *Graph) IsOutput(id NodeID) bool { return g.outputs[id] }

// sources returns the node ids with NumInputs() == 0: Scans and
// enumerable Compute nodes, the graph's entry points.
func (g *Graph) sources() []NodeID {
	var out []NodeID
	for i, node := range g.nodes {
		if node.NumInputs() == 0 {
			out = append(out, NodeID(i))
		}
	}
	return out
}

// Propagate drives one batch through the graph in topological order
// (spec §2, §4.8): external deltas land on source nodes (sourceDeltas,
// keyed by node id); every other node's inputs are the merged outputs of
// its upstream edges. Within each node's turn, every touched input slot's
// removes are applied (in slot order) before any slot's adds (spec §5,
// invariant 7), matching the two-phase dispatch used uniformly across all
// multi-input operators. Returns the normalized delta for every declared
// output node that changed.
func (g *Graph) Propagate(sourceDeltas map[NodeID]value.Delta) (map[NodeID]value.Delta, error) {
	pending := make(map[NodeID]map[int]value.Delta, len(g.nodes))
	results := make(map[NodeID]value.Delta)

	for _, id := range g.topo {
		node := g.nodes[id]
		var out value.Delta

		if node.NumInputs() == 0 {
			d, ok := sourceDeltas[id]
			if !ok || d.IsEmpty() {
				continue
			}
			res, err := node.Consume(0, d)
			if err != nil {
				return nil, fmt.Errorf("graph: node %q: %w", g.names[id], err)
			}
			out = res
		} else {
			slots := pending[id]
			if len(slots) == 0 {
				continue
			}
			var slotIDs []int
			for s := range slots {
				slotIDs = append(slotIDs, s)
			}
			sort.Ints(slotIDs)

			var phaseResults []value.Delta
			for _, s := range slotIDs {
				res, err := node.Consume(s, slots[s].RemovesOnlyDelta())
				if err != nil {
					return nil, fmt.Errorf("graph: node %q slot %d (removes): %w", g.names[id], s, err)
				}
				phaseResults = append(phaseResults, res)
			}
			for _, s := range slotIDs {
				res, err := node.Consume(s, slots[s].AddsOnlyDelta())
				if err != nil {
					return nil, fmt.Errorf("graph: node %q slot %d (adds): %w", g.names[id], s, err)
				}
				phaseResults = append(phaseResults, res)
			}
			out = value.Merge(phaseResults...)
		}

		if out.IsEmpty() {
			continue
		}
		if g.outputs[id] {
			results[id] = value.Merge(results[id], out)
		}
		for _, e := range g.outEdges[id] {
			if pending[e.to] == nil {
				pending[e.to] = map[int]value.Delta{}
			}
			pending[e.to][e.toSlot] = value.Merge(pending[e.to][e.toSlot], out)
		}
	}
	return results, nil
}

// Materialized returns node id's current result set if it implements
// operator.Materializer, or nil/false otherwise.
func (g *Graph) Materialized(id NodeID) ([]value.Tuple, bool) {
	m, ok := g.nodes[id].(operator.Materializer)
	if !ok {
		return nil, false
	}
	return m.Materialized(), true
}
