// Package metrics wires reactorgraph's compile and evaluate paths
// into Prometheus, grounded on the promauto.With(registry) wiring
// style in dd0wney-graphdb's pkg/metrics package, and provides
// LatencyHistogram, a percentile tracker that records without
// allocating, grounded on
// LatencyTracker in the original hybrid graph engine, for callers
// that want in-process percentile queries without scraping
// Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every Prometheus collector reactorgraph exposes,
// backed by its own *prometheus.Registry so a caller can mount it on
// any HTTP path without colliding with the global default registry.
type Registry struct {
	registry *prometheus.Registry

	CompilesTotal      *prometheus.CounterVec
	CompileDuration    prometheus.Histogram
	EvaluationsTotal   *prometheus.CounterVec
	EvaluateDuration   *prometheus.HistogramVec
	NodesComputedTotal *prometheus.CounterVec
}

// NewRegistry builds a Registry with all collectors registered.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.init()
	return r
}

// Prometheus returns the underlying *prometheus.Registry for mounting
// behind an HTTP handler (see cmd/reactorgraph).
func (r *Registry) Prometheus() *prometheus.Registry { return r.registry }

func (r *Registry) init() {
	r.CompilesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "reactorgraph_compiles_total",
			Help: "Total number of graph compilations, by outcome.",
		},
		[]string{"outcome"},
	)

	r.CompileDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reactorgraph_compile_duration_seconds",
			Help:    "Graph compilation duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)

	r.EvaluationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "reactorgraph_evaluations_total",
			Help: "Total number of evaluate() calls, by mode.",
		},
		[]string{"mode"},
	)

	r.EvaluateDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reactorgraph_evaluate_duration_seconds",
			Help:    "evaluate() duration in seconds, by mode.",
			Buckets: []float64{0.000001, 0.00001, 0.0001, 0.001, 0.01, 0.1},
		},
		[]string{"mode"},
	)

	r.NodesComputedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "reactorgraph_nodes_computed_total",
			Help: "Total number of compute-node recomputations, by mode.",
		},
		[]string{"mode"},
	)
}

// RecordCompile records the outcome and duration of one compilation.
func (r *Registry) RecordCompile(outcome string, seconds float64) {
	r.CompilesTotal.WithLabelValues(outcome).Inc()
	r.CompileDuration.Observe(seconds)
}

// RecordEvaluate records one evaluate() call: its mode, duration, and
// how many compute nodes it recomputed.
func (r *Registry) RecordEvaluate(mode string, seconds float64, nodesComputed int) {
	r.EvaluationsTotal.WithLabelValues(mode).Inc()
	r.EvaluateDuration.WithLabelValues(mode).Observe(seconds)
	r.NodesComputedTotal.WithLabelValues(mode).Add(float64(nodesComputed))
}
