// Package eval implements the Evaluator: the mutable owner of a
// compiled graph's values buffer, exposing input setters and the
// FULL / INCREMENTAL evaluate strategies, grounded on
// HybridGraphEvaluator in the original hybrid graph engine and on
// kdag's task-level single-writer contract
// (github.com/birdayz/kstreams/kdag).
package eval

// Mode selects between the two evaluation strategies.
type Mode int

const (
	// Full traverses every compute node in topological order on every
	// evaluate call: deterministic latency, correct for stateful
	// kernels.
	Full Mode = iota
	// Incremental recomputes only the descendants of inputs that
	// changed since the last evaluate, using a two-phase Mark & Sweep
	// pass over bitsets.
	Incremental
)

func (m Mode) String() string {
	switch m {
	case Full:
		return "FULL"
	case Incremental:
		return "INCREMENTAL"
	default:
		return "UNKNOWN"
	}
}
