// Package engine implements the top-level façade described in spec §6
// and §9: relation registration, batch coalescing, transactional grouping
// of edits, and driving one or many registered query graphs through a
// shared batch via golang.org/x/sync/errgroup, one goroutine per query
// graph.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/codenerd/lftjengine/internal/graph"
	"github.com/codenerd/lftjengine/internal/operator"
	"github.com/codenerd/lftjengine/pkg/value"
)

// Engine is the top-level entry point: define relations, build query
// graphs against them, then drive data in via Insert/Delete/Update/
// ApplyDelta and Flush/FlushAll (spec §6, §9).
type Engine struct {
	cfg    Config
	logger *zap.Logger

	mu        sync.RWMutex
	relations map[string]*relation
	handles   map[string]*QueryHandle
	batch     *batchManager
	inTxn     bool
}

// New builds an Engine from DefaultConfig with opts applied.
func New(opts ...Option) *Engine {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Engine{
		cfg:       cfg,
		logger:    cfg.Logger,
		relations: map[string]*relation{},
		handles:   map[string]*QueryHandle{},
		batch:     newBatchManager(),
	}
}

// DefineRelation registers a named base relation's schema (spec §3.3).
// It returns a StateError if name is already defined.
func (e *Engine) DefineRelation(name string, schema *value.Schema) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.relations[name]; exists {
		return &StateError{Op: "DefineRelation", Reason: fmt.Sprintf("relation %q is already defined", name)}
	}
	e.relations[name] = newRelation(schema)
	e.logger.Debug("relation defined", zap.String("relation", name), zap.Int("arity", schema.Arity()))
	return nil
}

// BuildQuery constructs a new query graph via build, registers it under
// name, cold-starts it against any already-present relation data (if
// Config.ColdStartByDefault), and returns a handle to it. BuildQuery
// returns a ValidationError if build's graph.Builder fails to Build.
func (e *Engine) BuildQuery(name string, build BuildFunc) (*QueryHandle, error) {
	e.mu.Lock()
	if _, exists := e.handles[name]; exists {
		e.mu.Unlock()
		return nil, &StateError{Op: "BuildQuery", Reason: fmt.Sprintf("query %q is already registered", name)}
	}

	b := graph.NewBuilder()
	spec, err := build(b)
	if err != nil {
		e.mu.Unlock()
		return nil, &ValidationError{Query: name, Reason: err.Error()}
	}
	g, err := b.Build()
	if err != nil {
		e.mu.Unlock()
		return nil, &ValidationError{Query: name, Reason: err.Error()}
	}

	h := &QueryHandle{
		engine:      e,
		id:          uuid.NewString(),
		name:        name,
		build:       build,
		g:           g,
		spec:        spec,
		subscribers: map[string]subscription{},
		active:      true,
	}
	e.handles[name] = h

	var coldStart map[graph.NodeID]value.Delta
	if e.cfg.ColdStartByDefault {
		coldStart = e.coldStartDeltasLocked(g, spec)
	}
	e.mu.Unlock()

	if len(coldStart) > 0 {
		results, err := g.Propagate(coldStart)
		if err != nil {
			return nil, fmt.Errorf("engine: BuildQuery %q: cold start: %w", name, err)
		}
		if out, ok := results[spec.Output]; ok {
			h.notify(out)
		}
	}
	e.logger.Debug("query registered", zap.String("query", name), zap.String("query_id", h.id))
	return h, nil
}

// coldStartDeltasLocked builds the source-delta map for seeding a freshly
// built graph against currently materialized relation data and pulling
// every enumerable Compute source's initial enumeration (spec §4.6's cold
// start pulls the full enumeration). Callers must hold e.mu.
func (e *Engine) coldStartDeltasLocked(g *graph.Graph, spec GraphSpec) map[graph.NodeID]value.Delta {
	out := map[graph.NodeID]value.Delta{}
	for name, scanIDs := range spec.RelationScans {
		rel, ok := e.relations[name]
		if !ok {
			continue
		}
		tuples := rel.snapshot()
		if len(tuples) == 0 {
			continue
		}
		for _, scanID := range scanIDs {
			out[scanID] = value.AddOnly(tuples...)
		}
	}
	for _, id := range spec.ComputeSources {
		compute := g.Node(id).(*operator.Compute)
		delta, err := compute.PullProvider(context.Background())
		if err != nil {
			e.logger.Warn("enumerable provider cold start failed", zap.Error(err))
			continue
		}
		out[id] = value.Merge(out[id], delta)
	}
	return out
}

// Insert adds tuples to relationName's batch (spec §6.1).
func (e *Engine) Insert(relationName string, tuples ...value.Tuple) error {
	return e.applyDelta(relationName, value.AddOnly(tuples...))
}

// Delete removes tuples from relationName's batch.
func (e *Engine) Delete(relationName string, tuples ...value.Tuple) error {
	return e.applyDelta(relationName, value.RemoveOnly(tuples...))
}

// Update applies a combined add/remove set to relationName's batch in one
// call, so the two sides coalesce before any opposite-cancellation check
// (spec §3.4, I-D1).
func (e *Engine) Update(relationName string, adds, removes []value.Tuple) error {
	return e.applyDelta(relationName, value.NewDelta(adds, removes))
}

// ApplyDelta merges an already-built Delta into relationName's batch.
func (e *Engine) ApplyDelta(relationName string, delta value.Delta) error {
	return e.applyDelta(relationName, delta)
}

func (e *Engine) applyDelta(relationName string, delta value.Delta) error {
	e.mu.Lock()
	if _, ok := e.relations[relationName]; !ok {
		e.mu.Unlock()
		return &StateError{Op: "applyDelta", Reason: fmt.Sprintf("relation %q is not defined", relationName)}
	}
	e.batch.add(relationName, delta)
	autoFlush := e.cfg.AutoFlush && !e.inTxn
	e.mu.Unlock()

	if autoFlush {
		return e.Flush(relationName)
	}
	return nil
}

// Flush propagates only relationName's pending batch through every
// registered query graph that scans it.
func (e *Engine) Flush(relationName string) error {
	e.mu.Lock()
	delta, ok := e.batch.pending[relationName]
	delete(e.batch.pending, relationName)
	if ok && !delta.IsEmpty() {
		e.relations[relationName].apply(delta)
	}
	handles := e.handleSnapshotLocked()
	e.mu.Unlock()

	pending := map[string]value.Delta{}
	if ok && !delta.IsEmpty() {
		pending[relationName] = delta
	}
	return e.propagateAll(handles, pending)
}

// FlushAll propagates every relation's pending batch through every
// registered query graph, running each query's propagation concurrently
// via errgroup (spec §5's multi-graph parallelism).
func (e *Engine) FlushAll() error {
	e.mu.Lock()
	pending := e.batch.drain()
	for name, d := range pending {
		e.relations[name].apply(d)
	}
	handles := e.handleSnapshotLocked()
	e.mu.Unlock()

	return e.propagateAll(handles, pending)
}

func (e *Engine) handleSnapshotLocked() []*QueryHandle {
	out := make([]*QueryHandle, 0, len(e.handles))
	for _, h := range e.handles {
		out = append(out, h)
	}
	return out
}

func (e *Engine) propagateAll(handles []*QueryHandle, pending map[string]value.Delta) error {
	var eg errgroup.Group
	for _, h := range handles {
		h := h
		eg.Go(func() error { return e.propagateHandle(h, pending) })
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	return nil
}

func (e *Engine) propagateHandle(h *QueryHandle, pending map[string]value.Delta) error {
	h.mu.Lock()
	if !h.active {
		h.mu.Unlock()
		return nil
	}
	g := h.g
	spec := h.spec
	h.mu.Unlock()

	sourceDeltas := map[graph.NodeID]value.Delta{}
	for name, scanIDs := range spec.RelationScans {
		d, ok := pending[name]
		if !ok {
			continue
		}
		for _, scanID := range scanIDs {
			sourceDeltas[scanID] = d
		}
	}
	for _, id := range spec.ComputeSources {
		compute := g.Node(id).(*operator.Compute)
		delta, err := compute.PullProvider(context.Background())
		if err != nil {
			return fmt.Errorf("engine: query %q: enumerable provider: %w", h.name, err)
		}
		if !delta.IsEmpty() {
			sourceDeltas[id] = value.Merge(sourceDeltas[id], delta)
		}
	}
	if len(sourceDeltas) == 0 {
		return nil
	}
	results, err := g.Propagate(sourceDeltas)
	if err != nil {
		return fmt.Errorf("engine: query %q: %w", h.name, err)
	}
	emitted := results[spec.Output]
	e.logger.Debug("batch flushed", zap.String("query", h.name),
		zap.Int("output_adds", emitted.NumAdds()), zap.Int("output_removes", emitted.NumRemoves()))
	if out, ok := results[spec.Output]; ok {
		h.notify(out)
	}
	return nil
}

// resetHandleLocked rebuilds q's graph from scratch and cold-starts it.
// Callers must hold q.mu for the duration (Reset does).
func (e *Engine) resetHandleLocked(q *QueryHandle) error {
	b := graph.NewBuilder()
	spec, err := q.build(b)
	if err != nil {
		return &ValidationError{Query: q.name, Reason: err.Error()}
	}
	g, err := b.Build()
	if err != nil {
		return &ValidationError{Query: q.name, Reason: err.Error()}
	}

	q.g = g
	q.spec = spec
	q.active = true
	q.numUpdates, q.lastAdds, q.lastRems = 0, 0, 0

	e.mu.RLock()
	coldStart := e.coldStartDeltasLocked(g, spec)
	e.mu.RUnlock()
	if len(coldStart) == 0 {
		return nil
	}
	results, err := g.Propagate(coldStart)
	if err != nil {
		return fmt.Errorf("engine: reset query %q: %w", q.name, err)
	}
	if out, ok := results[spec.Output]; ok {
		q.notifyLocked(out)
	}
	return nil
}

// BeginTransaction opens a new Transaction. Only one transaction may be
// open at a time; a second call before the first ends returns a
// StateError.
func (e *Engine) BeginTransaction() (*Transaction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inTxn {
		return nil, &StateError{Op: "BeginTransaction", Reason: "a transaction is already open"}
	}
	e.inTxn = true
	txn := &Transaction{engine: e, id: uuid.NewString(), status: TxnOpen}
	e.logger.Debug("transaction opened", zap.String("txn_id", txn.id))
	return txn, nil
}

// EndTransaction commits txn (equivalent to txn.End()).
func (e *Engine) EndTransaction(txn *Transaction) error { return txn.End() }

// Transaction runs fn within a transaction: fn's edits are batched, then
// committed (flushed) if fn returns nil, or rolled back (discarded) if fn
// returns an error. The encountered error, if any, is returned, joined
// with a rollback failure via multierr should one also occur.
func (e *Engine) Transaction(fn func(txn *Transaction) error) error {
	txn, err := e.BeginTransaction()
	if err != nil {
		return err
	}
	if err := fn(txn); err != nil {
		return multierr.Append(err, txn.Rollback())
	}
	return txn.End()
}
