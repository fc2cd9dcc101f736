// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks gateway HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_request_duration_seconds",
			Help:    "Gateway HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total gateway HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "Total gateway HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// UpstreamDuration tracks calls made by the SDK to the chat service.
	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "claude_upstream_duration_seconds",
			Help:    "Chat service call duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"operation", "outcome"},
	)

	// UpstreamErrorsTotal counts failed upstream calls by error code.
	UpstreamErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claude_upstream_errors_total",
			Help: "Failed chat service calls by error code",
		},
		[]string{"operation", "code"},
	)

	// CompletionFramesTotal counts decoded completion frames.
	CompletionFramesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claude_completion_frames_total",
			Help: "Completion frames decoded from append_message bodies",
		},
		[]string{"kind"},
	)

	// AttachmentBytesTotal counts attachment bytes streamed to the service.
	AttachmentBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "claude_attachment_bytes_total",
			Help: "Attachment bytes uploaded",
		},
	)

	// SSEConnectionsActive tracks active SSE connections.
	SSEConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sse_connections_active",
			Help: "Number of active SSE connections",
		},
	)

	// ConversationsTotal tracks conversations created through the gateway.
	ConversationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "conversations_created_total",
			Help: "Total conversations created",
		},
	)

	// MessagesTotal tracks messages sent through the gateway.
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_total",
			Help: "Total messages sent",
		},
		[]string{"status"},
	)
)

// RecordRequest records metrics for a gateway HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordUpstream records one SDK call. An empty code means success.
func RecordUpstream(operation, code string, duration float64) {
	outcome := "success"
	if code != "" {
		outcome = "error"
		UpstreamErrorsTotal.WithLabelValues(operation, code).Inc()
	}
	UpstreamDuration.WithLabelValues(operation, outcome).Observe(duration)
}

// RecordFrames records the frames seen by one decode.
func RecordFrames(completion, other int) {
	CompletionFramesTotal.WithLabelValues("completion").Add(float64(completion))
	CompletionFramesTotal.WithLabelValues("other").Add(float64(other))
}

// IncrementSSEConnections increments the active SSE connection count.
func IncrementSSEConnections() {
	SSEConnectionsActive.Inc()
}

// DecrementSSEConnections decrements the active SSE connection count.
func DecrementSSEConnections() {
	SSEConnectionsActive.Dec()
}
