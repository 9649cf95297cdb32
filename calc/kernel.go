// Package calc provides the operation registry and computation kernels
// that a compiled graph binds to its nodes: stateless arithmetic
// kernels and the stateful-calculator contract (see calc.Stateful),
// grounded on the same jump-table design as kdag's RuntimeBuilder
// (github.com/birdayz/kstreams/kdag): a registry of named factories
// produces per-node instances at compile time, never at evaluation
// time.
package calc

// GraphView is the read-only surface a Kernel needs to compute a
// node's value. It is the only legal path a Kernel may use to reach
// another node's value: CompiledGraph implements it, but a Kernel
// never receives arbitrary pointers into the graph's arrays.
type GraphView interface {
	// Value returns the current value of the node with the given id.
	Value(id int) float64
	// ParentRange returns the half-open [start, end) range into the
	// parent-id array for the node with the given id.
	ParentRange(id int) (start, end int)
	// ParentID returns the node id stored at the given index of the
	// flat parent-id array. Valid indices come from ParentRange.
	ParentID(index int) int
}

// Kernel computes the value of one compute node from the current
// values of its parents. Compute must be non-blocking and
// allocation-free on the hot path.
type Kernel interface {
	Compute(nodeID int, g GraphView) float64
}

// Stateful is a Kernel that carries state across evaluations, such as
// a moving average's ring buffer. The compiler instantiates one
// Stateful instance per node that uses a stateful operation; instances
// are never shared across nodes.
type Stateful interface {
	Kernel

	// Reset clears all accumulated state.
	Reset()
	// IsReady reports whether the kernel has seen enough evaluations
	// to produce a meaningful result (e.g. an SMA past its warmup).
	IsReady() bool
	// EvaluationCount returns how many times Compute has run.
	EvaluationCount() int
}

// Factory produces a Kernel instance. For stateless operations a
// factory may return a shared instance on every call. For stateful
// operations the factory must return a fresh instance per call so
// that no two nodes alias the same state.
type Factory func() Kernel

// KernelFunc adapts a plain function to the Kernel interface for
// stateless operations.
type KernelFunc func(nodeID int, g GraphView) float64

func (f KernelFunc) Compute(nodeID int, g GraphView) float64 {
	return f(nodeID, g)
}
