package eval

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/kessler-tait/reactorgraph/graph"
	"github.com/kessler-tait/reactorgraph/internal/bitset"
	"github.com/kessler-tait/reactorgraph/internal/ctxlog"
)

// Sentinel errors returned by the evaluator's runtime call surface,
// wrapped with %w so callers can use errors.Is, matching kdag's
// sentinel-error convention (github.com/birdayz/kstreams/kdag). Each
// of these leaves the graph's values unchanged.
var (
	ErrUnknownInput         = errors.New("eval: unknown input node")
	ErrBatchLengthMismatch  = errors.New("eval: ids and values length mismatch")
	ErrStatefulRequiresFull = errors.New("eval: graph has stateful compute nodes; INCREMENTAL mode requires WithAllowStatefulIncremental")
)

// Option configures an Evaluator at construction, mirroring the
// functional-options pattern used throughout
// github.com/birdayz/kstreams (its Option/WithXxx convention).
type Option func(*Evaluator)

// WithLogger overrides the *slog.Logger used for evaluator
// diagnostics. Defaults to ctxlog's fallback (slog.Default()).
func WithLogger(log *slog.Logger) Option {
	return func(e *Evaluator) { e.log = log }
}

// WithAllowStatefulIncremental opts out of the reject-at-construction
// guard for INCREMENTAL mode on graphs containing stateful compute
// nodes. Rejecting by default and requiring this explicit override
// (recorded in DESIGN.md) trades a construction-time error for
// avoiding a silently-stale stateful node under partial recomputation.
func WithAllowStatefulIncremental() Option {
	return func(e *Evaluator) { e.allowStatefulIncremental = true }
}

// stats holds the mutable counters reported by Stats.
type stats struct {
	evaluationCount    uint64
	totalNodesComputed uint64
	totalElapsedNanos  uint64
}

// Stats is a snapshot of an Evaluator's counters: how many
// evaluations have run, how many nodes they recomputed in total, and
// how much wall-clock time they consumed.
type Stats struct {
	EvaluationCount    uint64
	TotalNodesComputed uint64
	TotalElapsedNanos  uint64
	Mode               Mode
}

// Evaluator owns a CompiledGraph's values buffer and drives FULL or
// INCREMENTAL evaluation over it. It is single-writer and single-
// threaded: one Evaluator must never be shared across goroutines, but
// independent graphs may each be driven from their own goroutine (see
// cmd/reactorgraph's runMany).
type Evaluator struct {
	g    *graph.CompiledGraph
	mode Mode
	log  *slog.Logger

	allowStatefulIncremental bool

	// INCREMENTAL-only scratch structures, sized at construction and
	// reused for the evaluator's lifetime.
	dirtyInputs    *bitset.Set
	needsRecompute *bitset.Set
	dfsStack       []int

	// raw bit pattern of every node's value as of construction or the
	// last write through SetInput/SetInputByID, used for the NaN-safe
	// change comparison in SetInput.
	lastBits []uint64

	stats stats
}

// New constructs an Evaluator over g in the given mode. Returns
// ErrStatefulRequiresFull if mode is Incremental and g contains any
// stateful compute node, unless WithAllowStatefulIncremental is
// passed.
func New(g *graph.CompiledGraph, mode Mode, opts ...Option) (*Evaluator, error) {
	e := &Evaluator{
		g:        g,
		mode:     mode,
		log:      ctxlog.FromContext(nil),
		lastBits: make([]uint64, g.NodeCount()),
	}
	for _, opt := range opts {
		opt(e)
	}

	if mode == Incremental {
		if !e.allowStatefulIncremental && hasStatefulComputeNode(g) {
			return nil, ErrStatefulRequiresFull
		}
		e.dirtyInputs = bitset.New(g.NodeCount())
		e.needsRecompute = bitset.New(g.NodeCount())
		e.dfsStack = make([]int, 0, g.NodeCount())
	}

	for id := 0; id < g.NodeCount(); id++ {
		e.lastBits[id] = math.Float64bits(g.Value(id))
	}

	return e, nil
}

func hasStatefulComputeNode(g *graph.CompiledGraph) bool {
	for _, id := range g.ComputeOrder() {
		if _, ok := g.Kernel(id).(interface{ IsReady() bool }); ok {
			return true
		}
	}
	return false
}

// Mode returns the evaluator's configured mode.
func (e *Evaluator) Mode() Mode { return e.mode }

// Graph returns the underlying compiled graph.
func (e *Evaluator) Graph() *graph.CompiledGraph { return e.g }

// GetValue returns the current value of the node with the given name.
func (e *Evaluator) GetValue(name string) (float64, error) {
	return e.g.GetValue(name)
}

// IsInput reports whether name identifies an input node.
func (e *Evaluator) IsInput(name string) bool {
	id, ok := e.g.NodeID(name)
	return ok && e.g.IsInputID(id)
}

// SetInput writes the input node name's value. In Incremental mode,
// if the new value's raw IEEE-754 bit pattern differs from the
// current one, the node is marked dirty for the next evaluate. Unlike
// ==, the raw bit comparison treats rewriting an identical NaN bit
// pattern as unchanged, and treats a switch between +0 and -0 as a
// change, since their bit patterns differ.
func (e *Evaluator) SetInput(name string, value float64) error {
	id, ok := e.g.NodeID(name)
	if !ok || !e.g.IsInputID(id) {
		return fmt.Errorf("%w: %q", ErrUnknownInput, name)
	}
	e.setInputByID(id, value)
	return nil
}

// SetInputByID is the ID-keyed counterpart to SetInput, for hot loops
// that resolved node ids once via graph.NodeID.
func (e *Evaluator) SetInputByID(id int, value float64) error {
	if id < 0 || id >= e.g.NodeCount() || !e.g.IsInputID(id) {
		return fmt.Errorf("%w: id %d", ErrUnknownInput, id)
	}
	e.setInputByID(id, value)
	return nil
}

func (e *Evaluator) setInputByID(id int, value float64) {
	if e.mode == Incremental {
		newBits := math.Float64bits(value)
		if newBits != e.lastBits[id] {
			e.dirtyInputs.SetBit(id)
		}
		e.lastBits[id] = newBits
	}
	e.g.SetInputByID(id, value)
}

// SetInputs is the batch counterpart to SetInput: ids and values must
// have equal length. Every id is validated before any value is
// written.
func (e *Evaluator) SetInputs(ids []int, values []float64) error {
	if len(ids) != len(values) {
		return fmt.Errorf("%w: %d ids, %d values", ErrBatchLengthMismatch, len(ids), len(values))
	}
	for _, id := range ids {
		if id < 0 || id >= e.g.NodeCount() || !e.g.IsInputID(id) {
			return fmt.Errorf("%w: id %d", ErrUnknownInput, id)
		}
	}
	for i, id := range ids {
		e.setInputByID(id, values[i])
	}
	return nil
}

// MarkDirty explicitly marks name's node dirty for the next
// Incremental evaluate. No-op in Full mode.
func (e *Evaluator) MarkDirty(name string) error {
	id, ok := e.g.NodeID(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownInput, name)
	}
	if e.mode == Incremental {
		e.dirtyInputs.SetBit(id)
	}
	return nil
}

// Evaluate runs one evaluation pass and returns the number of compute
// nodes recomputed. Its own wall-clock cost is accumulated into
// Stats().TotalElapsedNanos.
func (e *Evaluator) Evaluate() int {
	start := time.Now()
	var computed int
	switch e.mode {
	case Full:
		computed = e.evaluateFull()
	case Incremental:
		computed = e.evaluateIncremental()
	}
	e.stats.totalElapsedNanos += uint64(time.Since(start).Nanoseconds())
	e.stats.evaluationCount++
	e.stats.totalNodesComputed += uint64(computed)
	return computed
}

func (e *Evaluator) evaluateFull() int {
	order := e.g.ComputeOrder()
	for _, id := range order {
		e.g.SetInputByID(id, e.g.Kernel(id).Compute(id, e.g))
	}
	return len(order)
}

// evaluateIncremental performs a two-phase Mark & Sweep pass: mark
// every descendant of a dirty input, then sweep compute_order
// recomputing marked nodes only.
func (e *Evaluator) evaluateIncremental() int {
	if e.dirtyInputs.IsEmpty() {
		return 0
	}

	e.needsRecompute.Clear()
	stack := e.dfsStack[:0]

	e.dirtyInputs.ForEachSet(func(dirtyID int) {
		start, end := e.g.ChildRange(dirtyID)
		for i := end - 1; i >= start; i-- {
			child := e.g.ChildID(i)
			if !e.needsRecompute.Test(child) {
				stack = append(stack, child)
			}
		}
	})

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if e.needsRecompute.Test(n) {
			continue
		}
		e.needsRecompute.SetBit(n)

		start, end := e.g.ChildRange(n)
		for i := end - 1; i >= start; i-- {
			child := e.g.ChildID(i)
			if !e.needsRecompute.Test(child) {
				stack = append(stack, child)
			}
		}
	}
	e.dfsStack = stack[:0]
	e.dirtyInputs.Clear()

	var computed int
	for _, id := range e.g.ComputeOrder() {
		if e.needsRecompute.Test(id) {
			e.g.SetInputByID(id, e.g.Kernel(id).Compute(id, e.g))
			computed++
		}
	}
	return computed
}

// ResetStats zeroes the evaluator's counters without touching the
// graph's values.
func (e *Evaluator) ResetStats() {
	e.stats = stats{}
}

// Stats returns a snapshot of the evaluator's counters.
func (e *Evaluator) Stats() Stats {
	return Stats{
		EvaluationCount:    e.stats.evaluationCount,
		TotalNodesComputed: e.stats.totalNodesComputed,
		TotalElapsedNanos:  e.stats.totalElapsedNanos,
		Mode:               e.mode,
	}
}
