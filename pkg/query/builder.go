// Package query is a thin fluent façade over internal/graph and
// internal/operator. It lives outside the engine's hard core and only
// calls public graph/engine construction APIs, so that building a query
// graph reads like the shape of the query instead of a sequence of
// node/edge calls.
package query

import (
	"github.com/codenerd/lftjengine/internal/engine"
	"github.com/codenerd/lftjengine/internal/graph"
	"github.com/codenerd/lftjengine/internal/operator"
	"github.com/codenerd/lftjengine/pkg/value"
)

// buildCtx accumulates the engine-facing bookkeeping a graph build
// discovers along the way: which Scan nodes feed which named relation,
// and which enumerable Compute nodes the engine must poll on cold start
// and every flush.
type buildCtx struct {
	relScans       map[string][]graph.NodeID
	computeSources []graph.NodeID
}

// step builds one subtree's node against a fresh graph.Builder, recording
// any Scan or enumerable Compute source it introduces into ctx. It is
// re-invoked on every build (including engine.QueryHandle.Reset
// rebuilds), so it must construct fresh operator instances each time
// rather than closing over mutable state from a prior build.
type step interface {
	build(b *graph.Builder, ctx *buildCtx) (graph.NodeID, *value.Schema)
}

// Builder accumulates a query shape via method chaining, terminating in
// Output(), which compiles the accumulated shape into an engine.BuildFunc
// suitable for Engine.BuildQuery.
type Builder struct {
	step   step
	schema *value.Schema
}

// Scan starts a new Builder reading from relationName, declared with
// schema. If maintain is true the resulting Scan node also exposes its
// current materialized set.
func Scan(relationName string, schema *value.Schema, maintain bool) *Builder {
	return &Builder{step: &scanStep{relation: relationName, schema: schema, maintain: maintain}, schema: schema}
}

type scanStep struct {
	relation string
	schema   *value.Schema
	maintain bool
}

func (s *scanStep) build(b *graph.Builder, ctx *buildCtx) (graph.NodeID, *value.Schema) {
	node := operator.NewScan(s.schema, s.maintain)
	id := b.AddNode("scan:"+s.relation, node)
	ctx.relScans[s.relation] = append(ctx.relScans[s.relation], id)
	return id, s.schema
}

// Project narrows the builder's current schema to vars, in order.
func (b *Builder) Project(vars ...string) *Builder {
	return &Builder{step: &projectStep{input: b.step, vars: vars}, schema: b.schema.Project(vars)}
}

type projectStep struct {
	input step
	vars  []string
}

func (s *projectStep) build(b *graph.Builder, ctx *buildCtx) (graph.NodeID, *value.Schema) {
	inID, inSchema := s.input.build(b, ctx)
	node := operator.NewProject(inSchema, s.vars)
	id := b.AddNode("project", node)
	b.Connect(inID, id, 0)
	return id, node.Schema()
}

// Rename relabels the builder's current schema's variables per mapping.
func (b *Builder) Rename(mapping map[string]string) *Builder {
	return &Builder{step: &renameStep{input: b.step, mapping: mapping}, schema: b.schema.Rename(mapping)}
}

type renameStep struct {
	input   step
	mapping map[string]string
}

func (s *renameStep) build(b *graph.Builder, ctx *buildCtx) (graph.NodeID, *value.Schema) {
	inID, inSchema := s.input.build(b, ctx)
	node := operator.NewRename(inSchema, s.mapping)
	id := b.AddNode("rename", node)
	b.Connect(inID, id, 0)
	return id, node.Schema()
}

// Union merges two or more same-shaped branches' outputs (spec §4.3).
func Union(branches ...*Builder) *Builder {
	steps := make([]step, len(branches))
	for i, br := range branches {
		steps[i] = br.step
	}
	return &Builder{step: &unionStep{inputs: steps, schema: branches[0].schema}, schema: branches[0].schema}
}

type unionStep struct {
	inputs []step
	schema *value.Schema
}

func (s *unionStep) build(b *graph.Builder, ctx *buildCtx) (graph.NodeID, *value.Schema) {
	node := operator.NewUnion(s.schema, len(s.inputs))
	id := b.AddNode("union", node)
	for i, in := range s.inputs {
		inID, _ := in.build(b, ctx)
		b.Connect(inID, id, i)
	}
	return id, node.Schema()
}

// Diff builds the anti-join left ▷ right (spec §4.5).
func Diff(left, right *Builder, leftVars, rightVars []string) *Builder {
	return &Builder{
		step: &diffStep{
			left: left.step, right: right.step,
			leftSchema: left.schema, rightSchema: right.schema,
			leftVars: leftVars, rightVars: rightVars,
		},
		schema: left.schema,
	}
}

type diffStep struct {
	left, right                 step
	leftSchema, rightSchema     *value.Schema
	leftVars, rightVars         []string
}

func (s *diffStep) build(b *graph.Builder, ctx *buildCtx) (graph.NodeID, *value.Schema) {
	leftID, _ := s.left.build(b, ctx)
	rightID, _ := s.right.build(b, ctx)
	node := operator.NewDiff(s.leftSchema, s.rightSchema, s.leftVars, s.rightVars)
	id := b.AddNode("diff", node)
	b.Connect(leftID, id, 0)
	b.Connect(rightID, id, 1)
	return id, node.Schema()
}

// JoinInput names one atom's participation in a Join: the branch feeding
// it and the subset of the join's Variable Order its positions bind to,
// in that branch's schema-position order (spec §4.7).
type JoinInput struct {
	Input *Builder
	Vars  []string
}

// Join builds the n-ary worst-case-optimal join of inputs under Variable
// Order vo, projecting the result onto outVars (spec §4.7).
func Join(vo []string, inputs []JoinInput, outVars []string) *Builder {
	atoms := make([]*operator.JoinAtom, len(inputs))
	steps := make([]step, len(inputs))
	for i, in := range inputs {
		atoms[i] = &operator.JoinAtom{Schema: in.Input.schema, Vars: in.Vars}
		steps[i] = in.Input.step
	}
	return &Builder{
		step:   &joinStep{vo: vo, inputs: steps, atoms: atoms, outVars: outVars},
		schema: value.NewSchema("join", outVars, nil),
	}
}

type joinStep struct {
	vo      []string
	inputs  []step
	atoms   []*operator.JoinAtom
	outVars []string
}

func (s *joinStep) build(b *graph.Builder, ctx *buildCtx) (graph.NodeID, *value.Schema) {
	node := operator.NewJoin(s.vo, s.atoms, s.outVars)
	id := b.AddNode("join", node)
	for i, in := range s.inputs {
		inID, _ := in.build(b, ctx)
		b.Connect(inID, id, i)
	}
	return id, node.Schema()
}

// EnumerableCompute wraps an EnumerableProvider as a graph source (spec
// §4.6).
func EnumerableCompute(schema *value.Schema, provider operator.EnumerableProvider) *Builder {
	return &Builder{step: &enumerableComputeStep{schema: schema, provider: provider}, schema: schema}
}

type enumerableComputeStep struct {
	schema   *value.Schema
	provider operator.EnumerableProvider
}

func (s *enumerableComputeStep) build(b *graph.Builder, ctx *buildCtx) (graph.NodeID, *value.Schema) {
	node := operator.NewEnumerableCompute(s.schema, s.provider)
	id := b.AddNode("enumerable-compute", node)
	ctx.computeSources = append(ctx.computeSources, id)
	return id, node.Schema()
}

// PointwiseCompute wraps a PointwiseProvider as a filter over the
// builder's current candidate stream (spec §4.6).
func (b *Builder) PointwiseCompute(schema *value.Schema, provider operator.PointwiseProvider) *Builder {
	return &Builder{step: &pointwiseComputeStep{input: b.step, schema: schema, provider: provider}, schema: schema}
}

type pointwiseComputeStep struct {
	input    step
	schema   *value.Schema
	provider operator.PointwiseProvider
}

func (s *pointwiseComputeStep) build(b *graph.Builder, ctx *buildCtx) (graph.NodeID, *value.Schema) {
	inID, _ := s.input.build(b, ctx)
	node := operator.NewPointwiseCompute(s.schema, s.provider)
	id := b.AddNode("pointwise-compute", node)
	b.Connect(inID, id, 0)
	return id, node.Schema()
}

// Schema returns the builder's current output schema, useful when wiring
// a branch into Join/Union/Diff manually.
func (b *Builder) Schema() *value.Schema { return b.schema }

// Output compiles the accumulated query shape into an engine.BuildFunc,
// marking the builder's current node as the graph's output.
func (b *Builder) Output() engine.BuildFunc {
	step := b.step
	return func(gb *graph.Builder) (engine.GraphSpec, error) {
		ctx := &buildCtx{relScans: map[string][]graph.NodeID{}}
		id, _ := step.build(gb, ctx)
		gb.MarkOutput(id)
		return engine.GraphSpec{Output: id, RelationScans: ctx.relScans, ComputeSources: ctx.computeSources}, nil
	}
}
