package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Failure reasons used as the reason label of ProviderFailuresTotal.
const (
	ReasonTimeout = "timeout"
	ReasonError   = "error"
)

// Search and provider metrics.
var (
	ProviderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Provider search duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 1.5, 2.5, 5},
		},
		[]string{"provider"},
	)

	ProviderFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_failures_total",
			Help:      "Provider searches that timed out or failed",
		},
		[]string{"provider", "reason"},
	)

	ProviderResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_results_total",
			Help:      "Results returned by providers before deduplication",
		},
		[]string{"provider"},
	)

	ProviderUp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "provider_up",
			Help:      "Whether the provider answered its last availability probe (1) or not (0)",
		},
		[]string{"provider"},
	)

	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Completed searches by kind and mode",
		},
		[]string{"kind", "mode"},
	)
)

func init() {
	prometheus.MustRegister(ProviderRequestDuration, ProviderFailuresTotal, ProviderResultsTotal, ProviderUp, SearchesTotal)
}

// ObserveProvider records one provider call. failure is "" on success,
// otherwise ReasonTimeout or ReasonError.
func ObserveProvider(provider string, took time.Duration, results int, failure string) {
	ProviderRequestDuration.WithLabelValues(provider).Observe(took.Seconds())
	ProviderResultsTotal.WithLabelValues(provider).Add(float64(results))
	if failure != "" {
		ProviderFailuresTotal.WithLabelValues(provider, failure).Inc()
	}
}

// ObserveSearch counts one completed search.
func ObserveSearch(kind, mode string) {
	SearchesTotal.WithLabelValues(kind, mode).Inc()
}

// SetProviderUp records the outcome of an availability probe.
func SetProviderUp(provider string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	ProviderUp.WithLabelValues(provider).Set(v)
}
