package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metrics for the event choreography layer.
var (
	EventsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of events published, by topic and event type",
		},
		[]string{"topic", "event_type"},
	)

	EventsConsumedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_consumed_total",
			Help: "Total number of events handled to completion, by topic and event type",
		},
		[]string{"topic", "event_type"},
	)

	EventsDuplicateTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_duplicate_total",
			Help: "Total number of events skipped by the idempotency store",
		},
		[]string{"service"},
	)

	EventsSelfSuppressedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_self_suppressed_total",
			Help: "Total number of self-originated events suppressed by the origin filter",
		},
		[]string{"service"},
	)

	EventsMalformedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_malformed_total",
			Help: "Total number of undecodable event payloads dropped",
		},
		[]string{"service"},
	)

	EventHandlerFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_handler_failures_total",
			Help: "Total number of handler executions that returned an error",
		},
		[]string{"service"},
	)

	EventHandleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "event_handle_duration_seconds",
			Help:    "Duration of consumer event handling",
			Buckets: prometheus.DefBuckets,
		},
	)
)

var registerOnce sync.Once

// Register registers all metrics with the default registry. Repeated calls
// are no-ops.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			EventsPublishedTotal,
			EventsConsumedTotal,
			EventsDuplicateTotal,
			EventsSelfSuppressedTotal,
			EventsMalformedTotal,
			EventHandlerFailuresTotal,
			EventHandleDuration,
		)
	})
}
