// Package graph compiles NodeDefinitions into a CompiledGraph: a flat,
// Struct-of-Arrays runtime representation with CSR (Compressed Sparse
// Row) parent/child topology, grounded on kdag's build-time-vs-runtime
// split (github.com/birdayz/kstreams/kdag) and on the CSR compiler
// pass structure of the original hybrid graph engine.
package graph

import "fmt"

// NodeKind distinguishes input nodes, whose value is set externally,
// from compute nodes, whose value is derived from parents by a
// calc.Kernel.
type NodeKind int

const (
	// KindInput marks a node whose value is set by SetInput and never
	// computed by a kernel.
	KindInput NodeKind = iota
	// KindCompute marks a node whose value is derived from its parents
	// by the operation named in NodeDefinition.Operation.
	KindCompute
)

func (k NodeKind) String() string {
	switch k {
	case KindInput:
		return "Input"
	case KindCompute:
		return "Compute"
	default:
		return "Unknown"
	}
}

// NodeDefinition is the immutable, user-facing description of one node,
// grounded on NodeDefinition in the original hybrid graph engine. A
// slice of NodeDefinitions is the input to Compile.
type NodeDefinition struct {
	// Name uniquely identifies the node within a graph.
	Name string
	// Kind is KindInput or KindCompute.
	Kind NodeKind
	// Operation names the registered calc operation for compute nodes.
	// Ignored for input nodes.
	Operation string
	// Parents lists the names of nodes this node depends on, in order.
	// Must be empty for input nodes.
	Parents []string
	// InitialValue seeds the node's value before the first evaluation.
	// A compute node's value is overwritten whenever its kernel runs;
	// until then (for example under Incremental evaluation with no
	// dirty ancestor) it reads as this value.
	InitialValue float64
}

// Input returns an input node definition with the given initial value.
func Input(name string, initialValue float64) NodeDefinition {
	return NodeDefinition{Name: name, Kind: KindInput, InitialValue: initialValue}
}

// Compute returns a compute node definition.
func Compute(name, operation string, parents ...string) NodeDefinition {
	return NodeDefinition{Name: name, Kind: KindCompute, Operation: operation, Parents: parents}
}

func (d NodeDefinition) String() string {
	if d.Kind == KindInput {
		return fmt.Sprintf("Input[%s = %g]", d.Name, d.InitialValue)
	}
	return fmt.Sprintf("Compute[%s = %s(%v)]", d.Name, d.Operation, d.Parents)
}
