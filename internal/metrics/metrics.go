// Package metrics registers the Prometheus collectors for HTTP traffic and
// store operations.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spatial_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spatial_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		},
		[]string{"method", "route", "status"},
	)

	storeOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spatial_store_operations_total",
			Help: "Store operations by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	storeLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spatial_store_latency_seconds",
			Help:    "Latency of store operations in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{"operation"},
	)

	eventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spatial_events_published_total",
			Help: "Change events handed to the publisher, by outcome.",
		},
		[]string{"action", "outcome"},
	)
)

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

func ObserveStore(operation string, err error, durationSeconds float64) {
	storeOperationsTotal.WithLabelValues(operation, outcome(err)).Inc()
	storeLatencySeconds.WithLabelValues(operation).Observe(durationSeconds)
}

func ObserveEvent(action string, err error) {
	eventsPublishedTotal.WithLabelValues(action, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
