// Package metrics exposes Prometheus collectors for HTTP traffic and the
// analysis pipeline on a private registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestCounter counts HTTP requests by method, route and status.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration observes HTTP latency by method and route.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// AnalysisOutcomes counts finished analyses by outcome: parsed or the fallback reason.
	AnalysisOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_analysis_outcomes_total",
			Help: "Finished photo analyses by outcome",
		},
		[]string{"outcome"},
	)

	// AnalysisTransitions counts analysis state machine transitions by state.
	AnalysisTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_analysis_transitions_total",
			Help: "Analysis state transitions",
		},
		[]string{"state"},
	)

	// AnalysisConflicts counts requests rejected because the photo was already in progress.
	AnalysisConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_analysis_conflicts_total",
			Help: "Analysis requests rejected with 409",
		},
	)

	// ModelLatency observes model round trips by operation (analyze, translate, genre).
	ModelLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "model_request_duration_seconds",
			Help:    "Generative model request duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 45, 60},
		},
		[]string{"operation"},
	)

	registry = prometheus.NewRegistry()
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		RequestCounter,
		RequestDuration,
		AnalysisOutcomes,
		AnalysisTransitions,
		AnalysisConflicts,
		ModelLatency,
	)
}

// Registry returns the registry all collectors are registered on.
func Registry() *prometheus.Registry {
	return registry
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
