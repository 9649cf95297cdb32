// Package integrationtest exercises graph, eval, internal/ringintake,
// and internal/metrics together, the way integrationtest/eos_test.go
// exercises kstreams's App/Task/Worker stack end to end rather than
// one package at a time.
package integrationtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kessler-tait/reactorgraph/calc"
	"github.com/kessler-tait/reactorgraph/eval"
	"github.com/kessler-tait/reactorgraph/graph"
	"github.com/kessler-tait/reactorgraph/internal/metrics"
	"github.com/kessler-tait/reactorgraph/internal/ringintake"
)

// TestRingIntakeDrivesEvaluatorAcrossManyTicks builds a small
// portfolio-style graph (two prices feeding a weighted sum, feeding a
// moving average), submits a sequence of single-update and
// batch-update events through a ringintake.Processor, and checks that
// the evaluator's own counters and the observed graph values agree
// after every event has drained.
func TestRingIntakeDrivesEvaluatorAcrossManyTicks(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping multi-tick integration test in short mode")
	}

	registry := calc.NewStandard()
	sma3, err := calc.NewSMAFactory(3)
	require.NoError(t, err)
	require.NoError(t, registry.RegisterFixed("SMA3", 1, sma3, true, "3-tick moving average"))

	defs := []graph.NodeDefinition{
		graph.Input("priceA", 10),
		graph.Input("priceB", 20),
		graph.Compute("weighted", "SUM", "priceA", "priceB"),
		graph.Compute("smoothed", "SMA3", "weighted"),
	}

	g, err := graph.Compile(defs, registry)
	require.NoError(t, err)

	evaluator, err := eval.New(g, eval.Full)
	require.NoError(t, err)

	hist := metrics.NewLatencyHistogram(16)
	proc := ringintake.NewProcessor(evaluator, 8, hist)

	priceAID, ok := g.NodeID("priceA")
	require.True(t, ok)
	priceBID, ok := g.NodeID("priceB")
	require.True(t, ok)

	ticks := []ringintake.Event{
		{Type: ringintake.SingleUpdate, NodeID: priceAID, Value: 11},
		{Type: ringintake.SingleUpdate, NodeID: priceBID, Value: 21},
		{Type: ringintake.BatchUpdate, NodeIDs: []int{priceAID, priceBID}, Values: []float64{12, 22}},
		{Type: ringintake.EvaluateOnly},
	}
	for _, tick := range ticks {
		require.NoError(t, proc.Submit(tick))
	}
	proc.Close()

	require.NoError(t, ringintake.RunProcessors(context.Background(), proc))
	require.Equal(t, uint64(len(ticks)), proc.EventCount())

	weighted, err := evaluator.GetValue("weighted")
	require.NoError(t, err)
	require.Equal(t, 34.0, weighted) // 12 + 22, from the last batch update

	stats := evaluator.Stats()
	require.Equal(t, uint64(len(ticks)), stats.EvaluationCount)
}
