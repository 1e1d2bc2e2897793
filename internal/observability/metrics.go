package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	adminRequestsTotal   *prometheus.CounterVec
	adminLatencySeconds  *prometheus.HistogramVec
	adminErrorsTotal     *prometheus.CounterVec
	cafTransitionsTotal  *prometheus.CounterVec
	mockImportRowsTotal  *prometheus.CounterVec
	uploadLatencySeconds prometheus.Histogram
	uploadRejectedTotal  *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		adminRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_requests_total",
			Help: "Total number of admin API requests served.",
		}, []string{"method", "route", "status"})

		adminLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "admin_latency_seconds",
			Help:    "Latency distribution for admin API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		adminErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_errors_total",
			Help: "Total number of error responses returned by admin endpoints.",
		}, []string{"method", "route", "status"})

		cafTransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "caf_transitions_total",
			Help: "Total number of CAF workflow transitions attempted.",
		}, []string{"event", "outcome"})

		mockImportRowsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mock_import_rows_total",
			Help: "Total number of mock interview result rows processed during uploads.",
		}, []string{"result"})

		uploadLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "document_upload_latency_seconds",
			Help:    "Latency distribution for document upload handling.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		})

		uploadRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "document_upload_rejected_total",
			Help: "Total number of document uploads rejected during validation.",
		}, []string{"reason"})

		prometheus.MustRegister(
			adminRequestsTotal,
			adminLatencySeconds,
			adminErrorsTotal,
			cafTransitionsTotal,
			mockImportRowsTotal,
			uploadLatencySeconds,
			uploadRejectedTotal,
		)
	})
}

// AdminRequests exposes the counter for admin requests.
func AdminRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return adminRequestsTotal
}

// AdminLatency exposes the latency histogram for admin requests.
func AdminLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return adminLatencySeconds
}

// AdminErrors exposes the counter for admin error responses.
func AdminErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return adminErrorsTotal
}

// CafTransitions exposes the counter for workflow transitions.
func CafTransitions() *prometheus.CounterVec {
	RegisterMetrics()
	return cafTransitionsTotal
}

// MockImportRows exposes the counter for bulk-imported result rows.
func MockImportRows() *prometheus.CounterVec {
	RegisterMetrics()
	return mockImportRowsTotal
}

// UploadLatency exposes the histogram for document upload latency.
func UploadLatency() prometheus.Histogram {
	RegisterMetrics()
	return uploadLatencySeconds
}

// UploadRejected exposes the counter for rejected document uploads.
func UploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRejectedTotal
}
