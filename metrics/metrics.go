// Package metrics provides Prometheus metrics collection for the prescription assistant.
// It exports HTTP server metrics:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//
// and assistant metrics:
//   - assistant_queries_total: Counter of answered questions by intent
//   - assistant_entity_match_total: Counter of entity resolutions by match tier
//   - assistant_prescriptions_active: Gauge of stored prescriptions
//   - assistant_prescriptions_evicted_total: Counter of idle prescriptions removed
//   - assistant_chat_connections: Gauge of open chat websockets
//
// All metrics are automatically registered with the Prometheus default registry
// during package initialization.
package metrics

import (
	"github.com/giygas/prescription-assistant/assistant"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (IPs seen in last ~5 minutes)",
		},
	)

	AssistantQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_queries_total",
			Help: "Answered questions by classified intent",
		},
		[]string{"intent"},
	)

	AssistantEntityMatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_entity_match_total",
			Help: "Entity resolutions by match tier",
		},
		[]string{"tier"},
	)

	PrescriptionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "assistant_prescriptions_active",
			Help: "Prescriptions currently held in memory",
		},
	)

	PrescriptionsEvictedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_prescriptions_evicted_total",
			Help: "Idle prescriptions removed by the eviction job",
		},
	)

	ChatConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "assistant_chat_connections",
			Help: "Open chat websocket connections",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(AssistantQueriesTotal)
	prometheus.MustRegister(AssistantEntityMatchTotal)
	prometheus.MustRegister(PrescriptionsActive)
	prometheus.MustRegister(PrescriptionsEvictedTotal)
	prometheus.MustRegister(ChatConnections)
}

// ObserveAnswer records one resolved question. It is meant to be passed to
// assistant.WithObserver.
func ObserveAnswer(a assistant.Answer) {
	AssistantQueriesTotal.WithLabelValues(string(a.Intent)).Inc()
	AssistantEntityMatchTotal.WithLabelValues(a.Tier.String()).Inc()
}
