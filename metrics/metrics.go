// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Lookups counts service operations by operation and outcome
	Lookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "genuverity_lookups_total",
		Help: "Fact-check lookups by operation and outcome",
	}, []string{"operation", "status"})

	// AnalysisDuration tracks how long a result took to build
	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "genuverity_analysis_duration_seconds",
		Help:    "Analysis duration in seconds by analysis mode",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 13), // 50ms to ~200s
	}, []string{"mode"})

	// ModelFallbacks counts model calls that degraded to the mock result
	ModelFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "genuverity_model_fallbacks_total",
		Help: "Model calls answered by the fallback generator, by reason",
	}, []string{"reason"})

	// RateLimited counts rejected requests per tier
	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "genuverity_rate_limited_total",
		Help: "Requests rejected by the rate limiter, by tier",
	}, []string{"tier"})

	// ArchiveErrors counts snapshot writes that failed
	ArchiveErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "genuverity_snapshot_archive_errors_total",
		Help: "Result snapshots that could not be archived",
	})
)

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
