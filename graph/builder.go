package graph

import "github.com/kessler-tait/reactorgraph/calc"

// Builder is a fluent API for assembling NodeDefinitions before
// compiling them, grounded on GraphBuilder in the original hybrid
// graph engine and on kdag.Builder's single-writer, not-safe-for-
// concurrent-use contract (github.com/birdayz/kstreams/kdag).
//
// Example:
//
//	g, err := graph.NewBuilder().
//	    AddInput("x", 0).
//	    AddInput("y", 0).
//	    AddCompute("sum", "SUM", "x", "y").
//	    Compile(calc.NewStandard())
type Builder struct {
	definitions []NodeDefinition
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddInput adds an input node with the given initial value.
func (b *Builder) AddInput(name string, initialValue float64) *Builder {
	b.definitions = append(b.definitions, Input(name, initialValue))
	return b
}

// AddCompute adds a compute node bound to operation over parents.
func (b *Builder) AddCompute(name, operation string, parents ...string) *Builder {
	b.definitions = append(b.definitions, Compute(name, operation, parents...))
	return b
}

// AddNode appends a pre-built NodeDefinition.
func (b *Builder) AddNode(def NodeDefinition) *Builder {
	b.definitions = append(b.definitions, def)
	return b
}

// AddNodes appends multiple pre-built NodeDefinitions.
func (b *Builder) AddNodes(defs ...NodeDefinition) *Builder {
	b.definitions = append(b.definitions, defs...)
	return b
}

// Definitions returns a copy of the node definitions accumulated so
// far.
func (b *Builder) Definitions() []NodeDefinition {
	out := make([]NodeDefinition, len(b.definitions))
	copy(out, b.definitions)
	return out
}

// Size returns the number of node definitions accumulated so far.
func (b *Builder) Size() int {
	return len(b.definitions)
}

// Compile compiles the accumulated definitions against registry.
func (b *Builder) Compile(registry *calc.Registry) (*CompiledGraph, error) {
	return Compile(b.definitions, registry)
}

// CompileStandard compiles the accumulated definitions against the
// standard operation registry (calc.NewStandard).
func (b *Builder) CompileStandard() (*CompiledGraph, error) {
	return Compile(b.definitions, calc.NewStandard())
}

// Reset clears all accumulated node definitions.
func (b *Builder) Reset() *Builder {
	b.definitions = nil
	return b
}
