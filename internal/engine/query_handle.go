package engine

import (
	"sync"

	"github.com/google/uuid"

	"github.com/codenerd/lftjengine/internal/graph"
	"github.com/codenerd/lftjengine/pkg/value"
)

// SubscribeOptions selects which optional fields accompany a notification
// (spec §6.1's subscribe(cb, {include_deltas, include_stats})).
type SubscribeOptions struct {
	IncludeDeltas bool
	IncludeStats  bool
}

// Subscriber is invoked once per flush that affects this query (spec
// §6.2). results holds the post-flush materialized set of the query's
// output node, keyed by its node id; it is empty when that node does not
// implement operator.Materializer. delta and stats are non-nil
// only when the corresponding SubscribeOptions field was set to true at
// Subscribe time. It is called synchronously from Flush/FlushAll;
// subscribers that need to do slow work should hand off to their own
// goroutine.
type Subscriber func(results map[graph.NodeID][]value.Tuple, delta *value.Delta, stats *Statistics)

type subscription struct {
	fn   Subscriber
	opts SubscribeOptions
}

// GraphSpec is what a query-building function hands back to BuildQuery:
// the output node to watch, and which of this graph's Scan nodes feed
// which named relation, so the engine knows how to route Insert/Delete
// calls and cold-start the graph against already-present base data. A
// relation may map to more than one Scan node id: a self-join (spec
// §4.7.3) scans the same relation once per logical occurrence, and every
// occurrence must receive the same external delta.
type GraphSpec struct {
	Output        graph.NodeID
	RelationScans map[string][]graph.NodeID
	// ComputeSources names every enumerable operator.Compute source node in
	// the graph (spec §4.6): on every cold start and flush the engine asks
	// each for its delta since the last pull and feeds it in as that
	// node's external source delta, the same role RelationScans plays for
	// named base relations.
	ComputeSources []graph.NodeID
}

// BuildFunc constructs one query graph against a fresh graph.Builder. It
// is retained by the resulting QueryHandle so Reset can rebuild the graph
// from scratch.
type BuildFunc func(b *graph.Builder) (GraphSpec, error)

// QueryHandle is the engine's handle to one registered query graph (spec
// §6.2, §9): subscribe to its output, read its current materialized
// results, or deactivate/reset it.
type QueryHandle struct {
	engine *Engine
	id     string
	name   string
	build  BuildFunc

	mu          sync.Mutex
	g           *graph.Graph
	spec        GraphSpec
	subscribers map[string]subscription
	active      bool

	numUpdates int
	lastAdds   int
	lastRems   int
}

// ID returns the handle's unique identifier, assigned at BuildQuery time
// (spec §6.1-6.2 ambient identification), independent of its human-chosen
// query name.
func (q *QueryHandle) ID() string { return q.id }

// Subscribe registers fn to be called with this query's post-flush
// results after every batch that changes it; opts controls whether the
// aggregated delta and/or statistics accompany each notification (spec
// §6.1). It returns a subscription id usable with Unsubscribe.
func (q *QueryHandle) Subscribe(fn Subscriber, opts SubscribeOptions) string {
	q.mu.Lock()
	defer q.mu.Unlock()
	id := uuid.NewString()
	q.subscribers[id] = subscription{fn: fn, opts: opts}
	return id
}

// Unsubscribe removes a previously registered subscriber by the id
// Subscribe returned. Unsubscribing an unknown id is a no-op.
func (q *QueryHandle) Unsubscribe(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.subscribers, id)
}

// GetResults returns the query's current materialized output set. It
// requires the output node to implement operator.Materializer; non-
// materializing outputs return (nil, false).
func (q *QueryHandle) GetResults() ([]value.Tuple, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.g.Materialized(q.spec.Output)
}

// Statistics reports simple counters about a query's observed activity,
// the supplemented-feature analogue of spec §6's result set (cheap
// operational visibility, not query planning statistics).
type Statistics struct {
	NumBatchesApplied int
	LastBatchAdds     int
	LastBatchRemoves  int
	CurrentSize       int
}

// GetStatistics returns the query's current Statistics snapshot.
func (q *QueryHandle) GetStatistics() Statistics {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.statisticsLocked()
}

// resultsLocked builds the required output_node_id -> materialized_set map
// (spec §6.2). Callers must hold q.mu.
func (q *QueryHandle) resultsLocked() map[graph.NodeID][]value.Tuple {
	out := map[graph.NodeID][]value.Tuple{}
	if results, ok := q.g.Materialized(q.spec.Output); ok {
		out[q.spec.Output] = results
	}
	return out
}

// statisticsLocked computes the current Statistics snapshot. Callers must
// hold q.mu.
func (q *QueryHandle) statisticsLocked() Statistics {
	size := 0
	if results, ok := q.g.Materialized(q.spec.Output); ok {
		size = len(results)
	}
	return Statistics{
		NumBatchesApplied: q.numUpdates,
		LastBatchAdds:     q.lastAdds,
		LastBatchRemoves:  q.lastRems,
		CurrentSize:       size,
	}
}

// Reset rebuilds the query graph from scratch (discarding all operator
// state) and cold-starts it against the engine's current relation data.
func (q *QueryHandle) Reset() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.engine.resetHandleLocked(q)
}

// Deactivate stops this query from receiving further batches. Its last
// GetResults/GetStatistics snapshot remains readable.
func (q *QueryHandle) Deactivate() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.active = false
}

// notify records batch statistics and invokes subscribers with the
// post-flush results (plus delta/stats per each subscriber's
// SubscribeOptions), if delta is non-empty. Callers must not be holding
// q.mu.
func (q *QueryHandle) notify(delta value.Delta) {
	if delta.IsEmpty() {
		return
	}
	q.mu.Lock()
	q.recordLocked(delta)
	results := q.resultsLocked()
	stats := q.statisticsLocked()
	subs := make([]subscription, 0, len(q.subscribers))
	for _, s := range q.subscribers {
		subs = append(subs, s)
	}
	q.mu.Unlock()

	dispatch(subs, results, delta, stats)
}

// notifyLocked is notify's equivalent for callers (Reset) that already
// hold q.mu for the duration of a rebuild.
func (q *QueryHandle) notifyLocked(delta value.Delta) {
	if delta.IsEmpty() {
		return
	}
	q.recordLocked(delta)
	results := q.resultsLocked()
	stats := q.statisticsLocked()
	subs := make([]subscription, 0, len(q.subscribers))
	for _, s := range q.subscribers {
		subs = append(subs, s)
	}
	dispatch(subs, results, delta, stats)
}

// dispatch invokes each subscription's callback with the results map
// every subscriber always receives, plus delta/stats gated on that
// subscription's SubscribeOptions (spec §6.1-6.2).
func dispatch(subs []subscription, results map[graph.NodeID][]value.Tuple, delta value.Delta, stats Statistics) {
	for _, s := range subs {
		var deltaArg *value.Delta
		if s.opts.IncludeDeltas {
			d := delta
			deltaArg = &d
		}
		var statsArg *Statistics
		if s.opts.IncludeStats {
			st := stats
			statsArg = &st
		}
		s.fn(results, deltaArg, statsArg)
	}
}

func (q *QueryHandle) recordLocked(delta value.Delta) {
	q.numUpdates++
	q.lastAdds = delta.NumAdds()
	q.lastRems = delta.NumRemoves()
}
