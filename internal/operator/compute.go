package operator

import (
	"context"
	"fmt"

	"github.com/codenerd/lftjengine/pkg/value"
)

// Handle is the opaque, monotonically non-decreasing cursor a Compute
// provider hands back to the engine so it can ask for "what changed since
// handle" (spec §4.6, §6.4). Providers are free to use whatever concrete
// comparable type suits them (an integer sequence number, a timestamp, an
// ETag); the engine never inspects a handle's structure, only stores and
// replays it.
type Handle any

// EnumerableProvider owns an external, observable set and publishes its
// contents and deltas (spec §4.6). A Compute node wrapping an
// EnumerableProvider behaves like a Scan whose base relation is the
// provider's current set.
type EnumerableProvider interface {
	// Enumerate returns the provider's full current set and a handle
	// representing that state, used for cold start.
	Enumerate(ctx context.Context) (tuples []value.Tuple, handle Handle, err error)
	// DeltaSince returns what changed since handle, plus the new handle.
	DeltaSince(ctx context.Context, handle Handle) (adds, removes []value.Tuple, next Handle, err error)
}

// PointwiseProvider is a predicate over candidate tuples (spec §4.6).
type PointwiseProvider interface {
	// EvalMany evaluates the predicate over candidates, returning the
	// truth value for each (keyed by Tuple.Key()).
	EvalMany(ctx context.Context, candidates []value.Tuple) (truth map[string]bool, err error)
	// SupportsFlips reports whether this provider can report independent
	// truth changes via FlipsSince.
	SupportsFlips() bool
	// FlipsSince returns tuples (restricted to watched) whose truth value
	// changed independently of any upstream delta since handle.
	FlipsSince(ctx context.Context, handle Handle, watched []value.Tuple) (trueFlips, falseFlips []value.Tuple, next Handle, err error)
}

// Compute is the engine's bridge to an external provider (spec §4.6),
// operating in exactly one of two modes depending on which constructor
// built it.
type Compute struct {
	schema *value.Schema

	enumerable   EnumerableProvider
	pointwise    PointwiseProvider
	handle       Handle
	coldStarted  bool

	// Enumerable-mode state: the provider's current set.
	current map[string]value.Tuple

	// Pointwise-mode state: the watch set derived from upstream input,
	// and the truth map W (invariant I-C1).
	watch map[string]value.Tuple
	truth map[string]bool
}

// NewEnumerableCompute builds a Compute node in enumerable mode. It is a
// graph source (NumInputs() == 0); the engine drives it via PullProvider
// before each propagation.
func NewEnumerableCompute(schema *value.Schema, provider EnumerableProvider) *Compute {
	return &Compute{schema: schema, enumerable: provider, current: map[string]value.Tuple{}}
}

// NewPointwiseCompute builds a Compute node in pointwise mode. It has one
// upstream input (the candidate stream) on slot 0.
func NewPointwiseCompute(schema *value.Schema, provider PointwiseProvider) *Compute {
	return &Compute{
		schema:    schema,
		pointwise: provider,
		watch:     map[string]value.Tuple{},
		truth:     map[string]bool{},
	}
}

func (c *Compute) Schema() *value.Schema { return c.schema }

func (c *Compute) NumInputs() int {
	if c.enumerable != nil {
		return 0
	}
	return 1
}

// IsEnumerable reports whether this node wraps an EnumerableProvider.
func (c *Compute) IsEnumerable() bool { return c.enumerable != nil }

// PullProvider asks an enumerable provider for the delta since the last
// pull (cold-starting via Enumerate on first call) and returns it as a
// Delta ready to be fed to Consume as this node's external source delta.
// It advances the stored provider handle but does not touch the node's
// current set; Consume does that, matching how a Scan's external delta
// flows through the graph.
func (c *Compute) PullProvider(ctx context.Context) (value.Delta, error) {
	if c.enumerable == nil {
		panic("operator: PullProvider called on a pointwise Compute node")
	}
	if !c.coldStarted {
		tuples, handle, err := c.enumerable.Enumerate(ctx)
		if err != nil {
			return value.EmptyDelta(), fmt.Errorf("operator: enumerable provider cold start: %w", err)
		}
		c.handle = handle
		c.coldStarted = true
		return value.AddOnly(tuples...), nil
	}
	adds, removes, next, err := c.enumerable.DeltaSince(ctx, c.handle)
	if err != nil {
		return value.EmptyDelta(), fmt.Errorf("operator: enumerable provider delta_since: %w", err)
	}
	c.handle = next
	return value.NewDelta(adds, removes), nil
}

// Consume implements Node. In enumerable mode it behaves exactly like
// Scan.Consume over the provider-derived external delta (slot is
// ignored). In pointwise mode it processes the upstream candidate delta
// per spec §4.6: removes drop watched/truth entries and emit iff
// previously true; adds extend the watch set, evaluate the predicate, and
// emit iff true.
func (c *Compute) Consume(_ int, delta value.Delta) (value.Delta, error) {
	if c.enumerable != nil {
		if delta.IsEmpty() {
			return value.EmptyDelta(), nil
		}
		for _, t := range delta.Removes() {
			delete(c.current, t.Key())
		}
		for _, t := range delta.Adds() {
			c.current[t.Key()] = t
		}
		return delta, nil
	}
	return c.consumePointwise(context.Background(), delta)
}

func (c *Compute) consumePointwise(ctx context.Context, delta value.Delta) (value.Delta, error) {
	var adds, removes []value.Tuple

	for _, t := range delta.Removes() {
		key := t.Key()
		if c.truth[key] {
			removes = append(removes, t)
		}
		delete(c.watch, key)
		delete(c.truth, key)
	}

	addTuples := delta.Adds()
	if len(addTuples) > 0 {
		for _, t := range addTuples {
			c.watch[t.Key()] = t
		}
		truth, err := c.pointwise.EvalMany(ctx, addTuples)
		if err != nil {
			return value.EmptyDelta(), fmt.Errorf("operator: pointwise provider eval_many: %w", err)
		}
		for _, t := range addTuples {
			key := t.Key()
			isTrue := truth[key]
			c.truth[key] = isTrue
			if isTrue {
				adds = append(adds, t)
			}
		}
	}
	return value.NewDelta(adds, removes), nil
}

// PullFlips asks a flip-capable pointwise provider for truth changes
// unrelated to upstream deltas and applies them to the truth map,
// returning the resulting Delta (spec §4.6). It is a no-op, returning an
// empty delta, if the provider does not support flips.
func (c *Compute) PullFlips(ctx context.Context) (value.Delta, error) {
	if c.pointwise == nil || !c.pointwise.SupportsFlips() {
		return value.EmptyDelta(), nil
	}
	watched := make([]value.Tuple, 0, len(c.watch))
	for _, t := range c.watch {
		watched = append(watched, t)
	}
	trueFlips, falseFlips, next, err := c.pointwise.FlipsSince(ctx, c.handle, watched)
	if err != nil {
		return value.EmptyDelta(), fmt.Errorf("operator: pointwise provider flips_since: %w", err)
	}
	c.handle = next

	var adds, removes []value.Tuple
	for _, t := range trueFlips {
		key := t.Key()
		if _, watched := c.watch[key]; !watched {
			continue
		}
		if !c.truth[key] {
			c.truth[key] = true
			adds = append(adds, t)
		}
	}
	for _, t := range falseFlips {
		key := t.Key()
		if _, watched := c.watch[key]; !watched {
			continue
		}
		if c.truth[key] {
			c.truth[key] = false
			removes = append(removes, t)
		}
	}
	return value.NewDelta(adds, removes), nil
}

// Materialized returns the node's current output set.
func (c *Compute) Materialized() []value.Tuple {
	if c.enumerable != nil {
		out := make([]value.Tuple, 0, len(c.current))
		for _, t := range c.current {
			out = append(out, t)
		}
		return out
	}
	out := make([]value.Tuple, 0, len(c.truth))
	for key, isTrue := range c.truth {
		if isTrue {
			out = append(out, c.watch[key])
		}
	}
	return out
}
