package graph

import (
	"errors"
	"fmt"
	"math"

	"github.com/kessler-tait/reactorgraph/calc"
)

// Sentinel errors surfaced by CompiledGraph's query API, wrapped with
// %w so callers can use errors.Is, matching kdag's sentinel-error
// convention (github.com/birdayz/kstreams/kdag).
var (
	ErrUnknownNode = errors.New("graph: unknown node")
	ErrNotInput    = errors.New("graph: node is not an input")
)

// CompiledGraph is the immutable, Struct-of-Arrays runtime
// representation produced by Compile. Its topology is stored in CSR
// (Compressed Sparse Row) form: parentValues/parentIndex for a node's
// parents, childValues/childIndex for its children. All arrays are
// fixed-size and allocation-free to index, grounded on
// HybridCompiledGraph in the original hybrid graph engine.
//
// A CompiledGraph is safe for concurrent reads but, per the
// single-writer principle, only one goroutine may call SetInput or
// drive evaluation against it at a time.
type CompiledGraph struct {
	nodeCount    int
	inputCount   int
	computeCount int

	names    []string
	nameToID map[string]int
	inputIDs map[string]int

	values      []float64
	kernels     []calc.Kernel
	kinds       []NodeKind
	operations  []string

	parentCounts []int
	parentValues []int
	parentIndex  []int

	childValues []int
	childIndex  []int

	computeOrder []int
	topoOrder    []int

	edgeCount int
}

// compile-time assertion that CompiledGraph implements calc.GraphView.
var _ calc.GraphView = (*CompiledGraph)(nil)

// Value returns node id's current value. Implements calc.GraphView.
func (g *CompiledGraph) Value(id int) float64 { return g.values[id] }

// ParentRange returns the half-open range into the flat parent-id
// array for node id. Implements calc.GraphView.
func (g *CompiledGraph) ParentRange(id int) (start, end int) {
	return g.parentIndex[id], g.parentIndex[id+1]
}

// ParentID returns the node id stored at index of the flat parent-id
// array. Implements calc.GraphView.
func (g *CompiledGraph) ParentID(index int) int { return g.parentValues[index] }

// ChildRange returns the half-open range into the flat child-id array
// for node id.
func (g *CompiledGraph) ChildRange(id int) (start, end int) {
	return g.childIndex[id], g.childIndex[id+1]
}

// ChildID returns the node id stored at index of the flat child-id
// array.
func (g *CompiledGraph) ChildID(index int) int { return g.childValues[index] }

// NodeCount returns the total number of nodes (inputs + compute).
func (g *CompiledGraph) NodeCount() int { return g.nodeCount }

// InputCount returns the number of input nodes.
func (g *CompiledGraph) InputCount() int { return g.inputCount }

// ComputeCount returns the number of compute nodes.
func (g *CompiledGraph) ComputeCount() int { return g.computeCount }

// EdgeCount returns the total number of parent edges in the graph.
func (g *CompiledGraph) EdgeCount() int { return g.edgeCount }

// NodeName returns the name of node id.
func (g *CompiledGraph) NodeName(id int) string { return g.names[id] }

// NodeID returns the id of the node with the given name.
func (g *CompiledGraph) NodeID(name string) (int, bool) {
	id, ok := g.nameToID[name]
	return id, ok
}

// IsInputID reports whether id names an input node.
func (g *CompiledGraph) IsInputID(id int) bool {
	return g.kinds[id] == KindInput
}

// Kind returns the NodeKind of node id.
func (g *CompiledGraph) Kind(id int) NodeKind { return g.kinds[id] }

// Operation returns the operation name bound to compute node id, or
// the empty string for input nodes.
func (g *CompiledGraph) Operation(id int) string { return g.operations[id] }

// Kernel returns the calc.Kernel bound to compute node id, or nil for
// input nodes.
func (g *CompiledGraph) Kernel(id int) calc.Kernel { return g.kernels[id] }

// ComputeOrder returns the precomputed evaluation order: compute
// nodes only, topologically sorted.
func (g *CompiledGraph) ComputeOrder() []int { return g.computeOrder }

// TopologicalOrder returns the full topological order, inputs
// included.
func (g *CompiledGraph) TopologicalOrder() []int { return g.topoOrder }

// GetValue returns the current value of the node with the given name.
func (g *CompiledGraph) GetValue(name string) (float64, error) {
	id, ok := g.nameToID[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownNode, name)
	}
	return g.values[id], nil
}

// SetInput sets the value of the input node with the given name.
func (g *CompiledGraph) SetInput(name string, value float64) error {
	id, ok := g.inputIDs[name]
	if !ok {
		if _, exists := g.nameToID[name]; exists {
			return fmt.Errorf("%w: %q", ErrNotInput, name)
		}
		return fmt.Errorf("%w: %q", ErrUnknownNode, name)
	}
	g.values[id] = value
	return nil
}

// SetInputByID sets the value of the input node with the given id.
// Direct array access, no validation that id names an input node:
// the fastest path, intended for hot loops driven by IDs obtained
// once via NodeID.
func (g *CompiledGraph) SetInputByID(id int, value float64) {
	g.values[id] = value
}

// Result returns the value of the last node in the compute order,
// matching HybridCompiledGraph.getResult in the original hybrid
// graph engine: the conventional "final output" of a graph whose
// nodes were declared in dependency order. Returns NaN if the graph
// has no compute nodes.
func (g *CompiledGraph) Result() float64 {
	if len(g.computeOrder) == 0 {
		return math.NaN()
	}
	return g.values[g.computeOrder[len(g.computeOrder)-1]]
}

// FootprintReport summarizes a CompiledGraph's memory usage, grounded
// on HybridCompiledGraph.getMemoryFootprint/printStats.
type FootprintReport struct {
	NodeCount        int
	InputCount       int
	ComputeCount     int
	EdgeCount        int
	ApproximateBytes int64
}

// MemoryFootprint estimates the CompiledGraph's resident memory in
// bytes: exact for the primitive arrays, approximate for maps and
// slice/interface headers.
func (g *CompiledGraph) MemoryFootprint() FootprintReport {
	const wordBytes = 8
	const float64Bytes = 8
	const intBytes = 8 // Go int is platform-word-sized; assume 64-bit.
	const mapEntryBytes = 48

	var bytes int64
	bytes += int64(len(g.values)) * float64Bytes
	bytes += int64(len(g.parentCounts)) * intBytes
	bytes += int64(len(g.parentValues)) * intBytes
	bytes += int64(len(g.parentIndex)) * intBytes
	bytes += int64(len(g.childValues)) * intBytes
	bytes += int64(len(g.childIndex)) * intBytes
	bytes += int64(len(g.computeOrder)) * intBytes
	bytes += int64(len(g.topoOrder)) * intBytes
	bytes += int64(len(g.names)) * wordBytes
	bytes += int64(len(g.kernels)) * wordBytes * 2 // interface header
	bytes += int64(len(g.nameToID)) * mapEntryBytes
	bytes += int64(len(g.inputIDs)) * mapEntryBytes

	return FootprintReport{
		NodeCount:        g.nodeCount,
		InputCount:       g.inputCount,
		ComputeCount:     g.computeCount,
		EdgeCount:        g.edgeCount,
		ApproximateBytes: bytes,
	}
}

func (r FootprintReport) String() string {
	return fmt.Sprintf(
		"CompiledGraph[nodes=%d (inputs=%d, compute=%d), edges=%d, memory=%d bytes]",
		r.NodeCount, r.InputCount, r.ComputeCount, r.EdgeCount, r.ApproximateBytes,
	)
}
