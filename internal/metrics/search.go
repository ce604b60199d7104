package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search outcome labels.
const (
	OutcomeStructured     = "structured"
	OutcomeVector         = "vector"
	OutcomeRejected       = "rejected"
	OutcomeEmptyQuery     = "empty_query"
	OutcomeInvalidRequest = "invalid_request"
	OutcomeUnprocessable  = "unprocessable"
	OutcomeNotFound       = "continuation_not_found"
	OutcomeDatabaseError  = "database_error"
	OutcomeProviderError  = "provider_error"
	OutcomeInternalError  = "internal_error"
)

// Search pipeline Prometheus metrics.
var (
	SearchOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_outcomes_total",
			Help:      "Search requests by terminal outcome",
		},
		[]string{"outcome"},
	)

	SearchArtifactReuseTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_artifact_reuse_total",
			Help:      "Pages served from a carried descriptor or embedding, by source",
		},
		[]string{"source"}, // "cursor" / "echo"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers search pipeline metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchOutcomesTotal)
	prometheus.MustRegister(SearchArtifactReuseTotal)
	searchMetricsRegistered = true
}
