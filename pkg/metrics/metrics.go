// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// MessagesTotal tracks messages sent, labeled by kind (message or reply).
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Total chat messages recorded",
		},
		[]string{"workspace_id", "kind"},
	)

	// ReactionsTotal tracks reaction add/remove operations.
	ReactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_reactions_total",
			Help: "Total reaction mutations",
		},
		[]string{"workspace_id", "op"},
	)

	// ChannelsTotal tracks channels created.
	ChannelsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_channels_total",
			Help: "Total channels created",
		},
		[]string{"workspace_id", "visibility"},
	)

	// StoreWriteDuration tracks persistent store write latency.
	StoreWriteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_write_duration_seconds",
			Help:    "Persistent store write duration",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		},
		[]string{"scope"},
	)

	// StoreErrorsTotal tracks swallowed store failures.
	StoreErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_errors_total",
			Help: "Store failures recovered by fail-soft handling",
		},
		[]string{"op"},
	)

	// AssistRequestsTotal tracks composition assistance calls by operation and outcome.
	AssistRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assist_requests_total",
			Help: "Composition assistance requests",
		},
		[]string{"op", "outcome"},
	)

	// AssistDuration tracks upstream completion latency per operation.
	AssistDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assist_duration_seconds",
			Help:    "Composition assistance upstream latency",
			Buckets: []float64{.1, .25, .5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"op", "provider"},
	)

	// AssistSuperseded tracks debounced results discarded because a newer
	// request was already issued.
	AssistSuperseded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assist_superseded_total",
			Help: "Assistance results discarded as stale",
		},
	)

	// SSEConnectionsActive tracks active SSE connections.
	SSEConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sse_connections_active",
			Help: "Number of active SSE connections",
		},
	)

	// EventsPublishedTotal tracks channel change events published to NATS.
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_events_published_total",
			Help: "Channel change events published",
		},
		[]string{"kind"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordAssist records an assistance call outcome.
func RecordAssist(op, outcome string) {
	AssistRequestsTotal.WithLabelValues(op, outcome).Inc()
}

// IncrementSSEConnections increments the active SSE connection count.
func IncrementSSEConnections() {
	SSEConnectionsActive.Inc()
}

// DecrementSSEConnections decrements the active SSE connection count.
func DecrementSSEConnections() {
	SSEConnectionsActive.Dec()
}
