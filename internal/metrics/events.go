package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search event publishing metrics.
var (
	EventsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Search events handed to the broker, by status",
		},
		[]string{"status"}, // "queued" / "dropped" / "failed"
	)
)

var eventMetricsRegistered bool

// RegisterEventMetrics registers event publishing metrics. Must be called once from main.
func RegisterEventMetrics() {
	if eventMetricsRegistered {
		return
	}
	prometheus.MustRegister(EventsPublishedTotal)
	eventMetricsRegistered = true
}
