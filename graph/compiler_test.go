package graph

import (
	"errors"
	"math"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/kessler-tait/reactorgraph/calc"
)

func TestCompileEmptyGraph(t *testing.T) {
	_, err := Compile(nil, calc.NewStandard())
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyGraph))
}

func TestCompileTrivialSum(t *testing.T) {
	g, err := NewBuilder().
		AddInput("x", 2).
		AddInput("y", 3).
		AddCompute("sum", "SUM", "x", "y").
		CompileStandard()
	assert.NoError(t, err)

	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 2, g.InputCount())
	assert.Equal(t, 1, g.ComputeCount())
	assert.Equal(t, 2, g.EdgeCount())

	sumID, ok := g.NodeID("sum")
	assert.True(t, ok)
	assert.False(t, g.IsInputID(sumID))

	// Compute order should place "sum" last since it depends on both inputs.
	order := g.ComputeOrder()
	assert.Equal(t, 1, len(order))
	assert.Equal(t, sumID, order[0])
}

func TestCompileDuplicateName(t *testing.T) {
	_, err := NewBuilder().
		AddInput("x", 0).
		AddInput("x", 1).
		CompileStandard()
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateName))
}

func TestCompileUnknownParent(t *testing.T) {
	_, err := NewBuilder().
		AddInput("x", 0).
		AddCompute("y", "NEG", "ghost").
		CompileStandard()
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownParent))
}

func TestCompileUnknownOperation(t *testing.T) {
	_, err := NewBuilder().
		AddInput("x", 0).
		AddCompute("y", "NOT_AN_OP", "x").
		CompileStandard()
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownOperation))
}

func TestCompileArityMismatch(t *testing.T) {
	_, err := NewBuilder().
		AddInput("x", 0).
		AddCompute("y", "ADD", "x").
		CompileStandard()
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrArityMismatch))
}

func TestCompileInputWithParentsRejected(t *testing.T) {
	defs := []NodeDefinition{
		Input("x", 0),
		{Name: "bad", Kind: KindInput, Parents: []string{"x"}},
	}
	_, err := Compile(defs, calc.NewStandard())
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInputHasParents))
}

func TestCompileCycleRejected(t *testing.T) {
	defs := []NodeDefinition{
		Compute("a", "NEG", "b"),
		Compute("b", "NEG", "a"),
	}
	_, err := Compile(defs, calc.NewStandard())
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrCycle))
}

func TestCompileDeterministicTieBreaking(t *testing.T) {
	// b and c are both ready as soon as a is; FIFO tie-breaking must
	// place them in declaration order regardless of graph shape.
	g, err := NewBuilder().
		AddInput("a", 1).
		AddCompute("b", "NEG", "a").
		AddCompute("c", "NEG", "a").
		AddCompute("d", "SUM", "b", "c").
		CompileStandard()
	assert.NoError(t, err)

	order := g.TopologicalOrder()
	bID, _ := g.NodeID("b")
	cID, _ := g.NodeID("c")

	bPos, cPos := -1, -1
	for i, id := range order {
		if id == bID {
			bPos = i
		}
		if id == cID {
			cPos = i
		}
	}
	assert.True(t, bPos < cPos)
}

func TestCompileValueAccess(t *testing.T) {
	g, err := NewBuilder().
		AddInput("x", 4).
		AddCompute("sq", "MUL", "x", "x").
		CompileStandard()
	assert.NoError(t, err)

	v, err := g.GetValue("x")
	assert.NoError(t, err)
	assert.Equal(t, 4.0, v)

	_, err = g.GetValue("nope")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownNode))

	err = g.SetInput("x", 5)
	assert.NoError(t, err)
	v, _ = g.GetValue("x")
	assert.Equal(t, 5.0, v)

	err = g.SetInput("sq", 1)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotInput))

	err = g.SetInput("nope", 1)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownNode))
}

func TestCompileResultIsLastComputeNode(t *testing.T) {
	g, err := NewBuilder().
		AddInput("x", 2).
		AddInput("y", 3).
		AddCompute("sum", "SUM", "x", "y").
		AddCompute("doubled", "MUL", "sum", "sum").
		CompileStandard()
	assert.NoError(t, err)

	for _, id := range g.ComputeOrder() {
		g.values[id] = g.kernels[id].Compute(id, g)
	}

	sumID, ok := g.NodeID("sum")
	assert.True(t, ok)
	doubledID, ok := g.NodeID("doubled")
	assert.True(t, ok)
	assert.Equal(t, 5.0, g.Value(sumID))
	assert.Equal(t, 25.0, g.Value(doubledID))
	assert.Equal(t, 25.0, g.Result())
}

func TestCompileEmptyComputeOrderResultIsNaN(t *testing.T) {
	g, err := NewBuilder().AddInput("x", 1).CompileStandard()
	assert.NoError(t, err)
	assert.True(t, math.IsNaN(g.Result()))
}

func TestCompileMemoryFootprint(t *testing.T) {
	g, err := NewBuilder().
		AddInput("x", 0).
		AddCompute("y", "NEG", "x").
		CompileStandard()
	assert.NoError(t, err)

	report := g.MemoryFootprint()
	assert.Equal(t, 2, report.NodeCount)
	assert.Equal(t, 1, report.InputCount)
	assert.Equal(t, 1, report.ComputeCount)
	assert.True(t, report.ApproximateBytes > 0)
}

func TestCompileStatefulKernelsAreIndependentPerNode(t *testing.T) {
	registry := calc.NewStandard()
	factory, err := calc.NewSMAFactory(2)
	assert.NoError(t, err)
	assert.NoError(t, registry.RegisterFixed("SMA2", 1, factory, true, "SMA(2)"))

	g, err := NewBuilder().
		AddInput("x", 0).
		AddCompute("a", "SMA2", "x").
		AddCompute("b", "SMA2", "x").
		Compile(registry)
	assert.NoError(t, err)

	aID, _ := g.NodeID("a")
	bID, _ := g.NodeID("b")
	assert.True(t, g.kernels[aID] != g.kernels[bID])
}
