// Package ringintake is a single-producer, single-consumer event
// intake for driving an eval.Evaluator, grounded on the LMAX
// Disruptor-based com.lowlatency.graph.disruptor package in the
// original hybrid graph engine (GraphEvent, GraphEventHandler,
// DisruptorGraphProcessor): a fixed-capacity ring of pre-allocated,
// reusable event slots feeding one consumer goroutine that applies
// updates and triggers evaluation.
//
// This is explicitly ambient/driving infrastructure, not part of the
// evaluator's own correctness surface: the evaluator remains a
// single-writer, single-threaded unit (see eval.Evaluator's doc
// comment) and Processor's consumer goroutine is that one writer.
// Go has no direct LMAX Disruptor equivalent in the reference corpus,
// so the queue itself is a fixed-size slice ring guarded by a mutex
// and condition variable rather than a lock-free structure; the
// wait-free property the original chases is not a goal here.
package ringintake

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kessler-tait/reactorgraph/eval"
	"github.com/kessler-tait/reactorgraph/internal/ctxlog"
	"github.com/kessler-tait/reactorgraph/internal/metrics"
)

// EventType mirrors GraphEvent.EventType in the original hybrid graph
// engine.
type EventType int

const (
	// SingleUpdate sets one input node then evaluates.
	SingleUpdate EventType = iota
	// BatchUpdate sets several input nodes then evaluates once.
	BatchUpdate
	// EvaluateOnly triggers an evaluation without changing any input.
	EvaluateOnly
)

// Event is a single ring-buffer slot, grounded on GraphEvent's
// mutable, reusable field layout. Slots are reused across the ring's
// lifetime; Clear resets one for reuse.
type Event struct {
	Type      EventType
	NodeID    int
	Value     float64
	NodeIDs   []int
	Values    []float64
	Timestamp int64 // caller-supplied send time in UnixNano, 0 if unused
}

// Clear resets e to its zero value for reuse.
func (e *Event) Clear() {
	*e = Event{}
}

// ErrBatchLengthMismatch is returned when a BatchUpdate event's
// NodeIDs and Values slices differ in length.
var ErrBatchLengthMismatch = errors.New("ringintake: NodeIDs and Values length mismatch")

// ErrClosed is returned by Submit after the Processor has stopped
// accepting events.
var ErrClosed = errors.New("ringintake: processor is closed")

// Processor is a single-consumer event loop over one eval.Evaluator.
// Submit is safe to call from any number of producer goroutines;
// exactly one goroutine (started by Run) ever calls into the
// Evaluator, preserving its single-writer contract.
type Processor struct {
	evaluator *eval.Evaluator
	latency   *metrics.LatencyHistogram

	mu      sync.Mutex
	cond    *sync.Cond
	ring    []Event
	head    int
	tail    int
	count   int
	closed  bool

	eventCount uint64
}

// NewProcessor creates a Processor with a ring of the given capacity
// feeding evaluator. latency may be nil to disable per-event latency
// tracking.
func NewProcessor(evaluator *eval.Evaluator, capacity int, latency *metrics.LatencyHistogram) *Processor {
	p := &Processor{
		evaluator: evaluator,
		latency:   latency,
		ring:      make([]Event, capacity),
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Submit enqueues an event, blocking while the ring is full. Returns
// ErrClosed if the processor has stopped.
func (p *Processor) Submit(e Event) error {
	if e.Type == BatchUpdate && len(e.NodeIDs) != len(e.Values) {
		return fmt.Errorf("%w: %d ids, %d values", ErrBatchLengthMismatch, len(e.NodeIDs), len(e.Values))
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for p.count == len(p.ring) && !p.closed {
		p.cond.Wait()
	}
	if p.closed {
		return ErrClosed
	}

	p.ring[p.tail] = e
	p.tail = (p.tail + 1) % len(p.ring)
	p.count++
	p.cond.Signal()
	return nil
}

// Close stops the processor: pending events already queued are still
// drained by Run, but no further Submit calls succeed.
func (p *Processor) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.cond.Broadcast()
}

// EventCount returns the number of events processed so far.
func (p *Processor) EventCount() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.eventCount
}

// Latency returns the per-event latency histogram passed to
// NewProcessor, or nil if latency tracking was disabled.
func (p *Processor) Latency() *metrics.LatencyHistogram {
	return p.latency
}

func (p *Processor) dequeue(ctx context.Context) (Event, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.count == 0 && !p.closed && ctx.Err() == nil {
		p.cond.Wait()
	}
	if p.count == 0 {
		return Event{}, false
	}
	e := p.ring[p.head]
	p.ring[p.head].Clear()
	p.head = (p.head + 1) % len(p.ring)
	p.count--
	p.cond.Signal()
	return e, true
}

// Run drains events until ctx is cancelled or Close is called and the
// ring empties. It is intended to be launched via an
// golang.org/x/sync/errgroup.Group, matching kstreams's App.Run
// worker-loop convention (github.com/birdayz/kstreams).
func (p *Processor) Run(ctx context.Context) error {
	log := ctxlog.FromContext(ctx)
	// Wake a Run blocked waiting for events when ctx is cancelled.
	stop := context.AfterFunc(ctx, func() {
		p.mu.Lock()
		p.cond.Broadcast()
		p.mu.Unlock()
	})
	defer stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		event, ok := p.dequeue(ctx)
		if !ok {
			return ctx.Err()
		}
		if err := p.handle(event); err != nil {
			log.Error("ringintake: event handling failed", "error", err)
			return err
		}
	}
}

func (p *Processor) handle(e Event) error {
	start := time.Now()
	switch e.Type {
	case SingleUpdate:
		if err := p.evaluator.SetInputByID(e.NodeID, e.Value); err != nil {
			return err
		}
		p.evaluator.Evaluate()
	case BatchUpdate:
		if err := p.evaluator.SetInputs(e.NodeIDs, e.Values); err != nil {
			return err
		}
		p.evaluator.Evaluate()
	case EvaluateOnly:
		p.evaluator.Evaluate()
	default:
		return fmt.Errorf("ringintake: unknown event type %d", e.Type)
	}
	if p.latency != nil {
		p.latency.Record(time.Since(start).Nanoseconds())
	}
	p.eventCountIncrement()
	return nil
}

func (p *Processor) eventCountIncrement() {
	p.mu.Lock()
	p.eventCount++
	p.mu.Unlock()
}

// RunProcessors starts every processor's Run loop under one
// errgroup.Group and blocks until all of them have exited, returning
// the first error; that first error cancels the shared context, which
// stops the remaining processors. This matches kstreams's App.Run
// pattern of fanning out worker
// goroutines under a shared errgroup
// (github.com/birdayz/kstreams/app.go).
func RunProcessors(ctx context.Context, processors ...*Processor) error {
	grp, ctx := errgroup.WithContext(ctx)
	for _, p := range processors {
		p := p
		grp.Go(func() error { return p.Run(ctx) })
	}
	return grp.Wait()
}
