package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kessler-tait/reactorgraph/eval"
	"github.com/kessler-tait/reactorgraph/graph"
	"github.com/kessler-tait/reactorgraph/internal/metrics"
)

var (
	benchIterations int
	benchIncr       bool
)

// benchCmd repeatedly evaluates one or more topologies and reports
// latency percentiles, grounded on ComparisonBenchmark and
// GraphEvaluationBenchmark in the original hybrid graph engine and on
// internal/metrics's LatencyHistogram (itself grounded on
// LatencyTracker.java). Multiple topology files are benchmarked
// concurrently via runMany, one goroutine per file: distinct graphs
// may be evaluated concurrently as long as each runs on its own
// goroutine.
var benchCmd = &cobra.Command{
	Use:   "bench <topology.yaml> [more.yaml ...]",
	Short: "Repeatedly evaluate one or more topologies and report latency percentiles",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := eval.Full
		if benchIncr {
			mode = eval.Incremental
		}

		evaluators := make([]*eval.Evaluator, len(args))
		hists := make([]*metrics.LatencyHistogram, len(args))
		for i, path := range args {
			defs, registry, err := loadTopology(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			g, err := graph.Compile(defs, registry)
			if err != nil {
				return fmt.Errorf("%s: compile failed: %w", path, err)
			}
			e, err := eval.New(g, mode)
			if err != nil {
				return fmt.Errorf("%s: evaluator construction failed: %w", path, err)
			}
			evaluators[i] = e
			hists[i] = metrics.NewLatencyHistogram(benchIterations)
		}

		err := runMany(context.Background(), evaluators, func(e *eval.Evaluator) error {
			hist := hists[indexOf(evaluators, e)]
			for i := 0; i < benchIterations; i++ {
				start := time.Now()
				e.Evaluate()
				hist.Record(time.Since(start).Nanoseconds())
			}
			return nil
		})
		if err != nil {
			return err
		}

		for i, path := range args {
			hist := hists[i]
			fmt.Printf("%s: iterations=%d avg=%.0fns p50=%dns p95=%dns p99=%dns max=%dns\n",
				path, hist.Count(), hist.AverageNanos(), hist.P50(), hist.P95(), hist.P99(), hist.MaxNanos())
		}
		return nil
	},
}

func indexOf(evaluators []*eval.Evaluator, target *eval.Evaluator) int {
	for i, e := range evaluators {
		if e == target {
			return i
		}
	}
	return -1
}

func init() {
	benchCmd.Flags().IntVar(&benchIterations, "iterations", 10000, "number of evaluate() calls to time per topology")
	benchCmd.Flags().BoolVar(&benchIncr, "incremental", false, "use INCREMENTAL evaluation instead of FULL")
}
