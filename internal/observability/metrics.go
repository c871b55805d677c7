package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	apiRequestsTotal    *prometheus.CounterVec
	apiLatencySeconds   *prometheus.HistogramVec
	apiErrorsTotal      *prometheus.CounterVec
	activityEventsTotal *prometheus.CounterVec
	sessionsOpenedTotal prometheus.Counter
	sessionsClosedTotal prometheus.Counter
	exportRowsTotal     *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the service.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		activityEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "activity_events_total",
			Help: "Activity events handled by the recorder, by kind and outcome.",
		}, []string{"kind", "outcome"})

		sessionsOpenedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "activity_sessions_opened_total",
			Help: "Session records opened by the session tracker.",
		})

		sessionsClosedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "activity_sessions_closed_total",
			Help: "Session records closed on logout.",
		})

		exportRowsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "activity_export_rows_total",
			Help: "Rows emitted by activity exports, by export format.",
		}, []string{"format"})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			activityEventsTotal,
			sessionsOpenedTotal,
			sessionsClosedTotal,
			exportRowsTotal,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// ActivityEvents exposes the recorder outcome counter.
func ActivityEvents() *prometheus.CounterVec {
	RegisterMetrics()
	return activityEventsTotal
}

// SessionsOpened exposes the session-open counter.
func SessionsOpened() prometheus.Counter {
	RegisterMetrics()
	return sessionsOpenedTotal
}

// SessionsClosed exposes the session-close counter.
func SessionsClosed() prometheus.Counter {
	RegisterMetrics()
	return sessionsClosedTotal
}

// ExportRows exposes the export row counter.
func ExportRows() *prometheus.CounterVec {
	RegisterMetrics()
	return exportRowsTotal
}
