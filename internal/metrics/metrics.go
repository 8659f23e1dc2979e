// Package metrics exposes Prometheus collectors for the backend service.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	extensionChecksTotal       *prometheus.CounterVec
	supportRequestsTotal       *prometheus.CounterVec
	supportEmailsTotal         *prometheus.CounterVec
	documentCountDroppedTotal  prometheus.Counter

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clausea_http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "clausea_http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)

		extensionChecksTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clausea_extension_checks_total",
				Help: "Total extension check lookups, labeled by result.",
			},
			[]string{"result"},
		)

		supportRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clausea_support_requests_total",
				Help: "Total extension support requests, labeled by status.",
			},
			[]string{"status"},
		)

		supportEmailsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clausea_support_emails_total",
				Help: "Total support notification emails, labeled by status.",
			},
			[]string{"status"},
		)

		documentCountDroppedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "clausea_document_count_dropped_records_total",
				Help: "Documents dropped from the per-product count aggregation for lacking a product_id.",
			},
		)
	})
}

// ObserveHTTPRequest records one served request.
func ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveExtensionCheck records a check lookup outcome ("found", "not_found"
// or "error").
func ObserveExtensionCheck(result string) {
	if extensionChecksTotal == nil {
		return
	}
	extensionChecksTotal.WithLabelValues(result).Inc()
}

// ObserveSupportRequest records a request-support outcome.
func ObserveSupportRequest(status string) {
	if supportRequestsTotal == nil {
		return
	}
	supportRequestsTotal.WithLabelValues(status).Inc()
}

// ObserveSupportEmail records an email dispatch outcome.
func ObserveSupportEmail(status string) {
	if supportEmailsTotal == nil {
		return
	}
	supportEmailsTotal.WithLabelValues(status).Inc()
}

// AddDroppedDocumentCounts records documents skipped by the count
// aggregation because their product_id was null or absent.
func AddDroppedDocumentCounts(n int64) {
	if documentCountDroppedTotal == nil || n <= 0 {
		return
	}
	documentCountDroppedTotal.Add(float64(n))
}
