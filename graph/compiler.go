package graph

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/kessler-tait/reactorgraph/calc"
)

// Sentinel errors returned by Compile, wrapped with %w so callers can
// use errors.Is.
var (
	ErrEmptyGraph       = errors.New("graph: cannot compile an empty graph")
	ErrDuplicateName    = errors.New("graph: duplicate node name")
	ErrUnknownParent    = errors.New("graph: node references unknown parent")
	ErrUnknownOperation = errors.New("graph: node uses unregistered operation")
	ErrArityMismatch    = errors.New("graph: operation arity mismatch")
	ErrCycle            = errors.New("graph: cycle detected")
	ErrInputHasParents  = errors.New("graph: input node cannot have parents")
)

// Compile turns a list of NodeDefinitions into an immutable
// CompiledGraph, resolving names to integer ids, building CSR parent
// and child topology, validating operation arity against registry,
// computing a deterministic topological order via Kahn's algorithm,
// and binding a calc.Kernel instance to every compute node.
//
// This mirrors the six-pass structure of GraphCompiler.compile in the
// original hybrid graph engine: assign ids, build parent CSR (with
// arity validation), build child CSR by transposing the parent CSR,
// topologically sort, bind kernels and derive the compute-only order,
// and initialize the values array.
func Compile(definitions []NodeDefinition, registry *calc.Registry) (*CompiledGraph, error) {
	if len(definitions) == 0 {
		return nil, ErrEmptyGraph
	}

	nodeCount := len(definitions)

	// Pass 1: assign ids, reject duplicate names. Every duplicate is
	// reported, not just the first, via go.uber.org/multierr the way
	// internal/task_manager.go's Close accumulates per-task errors
	// rather than stopping at the first failure.
	var errs error
	nameToID := make(map[string]int, nodeCount)
	names := make([]string, nodeCount)
	kinds := make([]NodeKind, nodeCount)
	operations := make([]string, nodeCount)

	for i, def := range definitions {
		if _, exists := nameToID[def.Name]; exists {
			errs = multierr.Append(errs, fmt.Errorf("%w: %q", ErrDuplicateName, def.Name))
			continue
		}
		nameToID[def.Name] = i
		names[i] = def.Name
		kinds[i] = def.Kind
		operations[i] = def.Operation
	}

	// Pass 2: build parent CSR, validate parent references and
	// operation arity as we go, again collecting every failure found
	// rather than bailing out on the first.
	parentCounts := make([]int, nodeCount)
	parentIndex := make([]int, nodeCount+1)
	var parentValues []int
	inputIDs := make(map[string]int)
	inputCount := 0
	computeCount := 0

	for i, def := range definitions {
		parentCounts[i] = len(def.Parents)

		switch def.Kind {
		case KindInput:
			if len(def.Parents) > 0 {
				errs = multierr.Append(errs, fmt.Errorf("%w: %q", ErrInputHasParents, def.Name))
			}
			inputIDs[def.Name] = i
			inputCount++
		case KindCompute:
			computeCount++
			if err := validateOperation(registry, def); err != nil {
				errs = multierr.Append(errs, err)
			}
		}

		for _, parentName := range def.Parents {
			parentID, ok := nameToID[parentName]
			if !ok {
				errs = multierr.Append(errs, fmt.Errorf("%w: node %q references %q", ErrUnknownParent, def.Name, parentName))
				continue
			}
			parentValues = append(parentValues, parentID)
		}
		parentIndex[i+1] = len(parentValues)
	}

	if errs != nil {
		return nil, errs
	}

	// Pass 3: build child CSR by transposing the parent CSR.
	childCounts := make([]int, nodeCount)
	for _, parentID := range parentValues {
		childCounts[parentID]++
	}
	childIndex := make([]int, nodeCount+1)
	for i := 0; i < nodeCount; i++ {
		childIndex[i+1] = childIndex[i] + childCounts[i]
	}
	childValues := make([]int, len(parentValues))
	cursor := append([]int(nil), childIndex[:nodeCount]...)
	for childID := 0; childID < nodeCount; childID++ {
		start, end := parentIndex[childID], parentIndex[childID+1]
		for i := start; i < end; i++ {
			parentID := parentValues[i]
			childValues[cursor[parentID]] = childID
			cursor[parentID]++
		}
	}

	// Pass 4: Kahn's algorithm, FIFO tie-breaking by ascending id,
	// matching topologicalSort in the original hybrid graph engine
	// exactly (a plain queue seeded in id order, not a sorted-insert
	// queue).
	topoOrder, err := kahnSort(nodeCount, parentCounts, childValues, childIndex)
	if err != nil {
		return nil, err
	}

	// Pass 5: bind kernels and derive the compute-only order.
	kernels := make([]calc.Kernel, nodeCount)
	computeOrder := make([]int, 0, computeCount)
	for _, id := range topoOrder {
		if kinds[id] != KindCompute {
			continue
		}
		kernel, err := registry.CreateKernel(operations[id])
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", names[id], err)
		}
		kernels[id] = kernel
		computeOrder = append(computeOrder, id)
	}

	// Pass 6: initialize the values array.
	values := make([]float64, nodeCount)
	for i, def := range definitions {
		values[i] = def.InitialValue
	}

	g := &CompiledGraph{
		nodeCount:    nodeCount,
		inputCount:   inputCount,
		computeCount: computeCount,
		names:        names,
		nameToID:     nameToID,
		inputIDs:     inputIDs,
		values:       values,
		kernels:      kernels,
		kinds:        kinds,
		operations:   operations,
		parentCounts: parentCounts,
		parentValues: parentValues,
		parentIndex:  parentIndex,
		childValues:  childValues,
		childIndex:   childIndex,
		computeOrder: computeOrder,
		topoOrder:    topoOrder,
		edgeCount:    len(parentValues),
	}
	return g, nil
}

func validateOperation(registry *calc.Registry, def NodeDefinition) error {
	if !registry.Has(def.Operation) {
		return fmt.Errorf("%w: node %q uses %q", ErrUnknownOperation, def.Name, def.Operation)
	}
	arity, _ := registry.Arity(def.Operation)
	if arity != calc.Variadic && arity != len(def.Parents) {
		return fmt.Errorf("%w: node %q: operation %q expects %d inputs but found %d",
			ErrArityMismatch, def.Name, def.Operation, arity, len(def.Parents))
	}
	return nil
}

// kahnSort computes a topological order over all nodeCount nodes using
// Kahn's algorithm with a plain FIFO queue seeded in ascending id
// order, so that ties among simultaneously-ready nodes resolve by
// insertion order. Returns ErrCycle if any node is left with nonzero
// in-degree.
func kahnSort(nodeCount int, parentCounts []int, childValues, childIndex []int) ([]int, error) {
	inDegree := append([]int(nil), parentCounts...)

	queue := make([]int, 0, nodeCount)
	for i := 0; i < nodeCount; i++ {
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	result := make([]int, 0, nodeCount)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		result = append(result, id)

		start, end := childIndex[id], childIndex[id+1]
		for i := start; i < end; i++ {
			childID := childValues[i]
			inDegree[childID]--
			if inDegree[childID] == 0 {
				queue = append(queue, childID)
			}
		}
	}

	if len(result) != nodeCount {
		var stuck []int
		for i := 0; i < nodeCount; i++ {
			if inDegree[i] > 0 {
				stuck = append(stuck, i)
			}
		}
		return nil, fmt.Errorf("%w: nodes %v are involved in a cycle", ErrCycle, stuck)
	}
	return result, nil
}
