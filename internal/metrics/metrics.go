// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

// Package metrics exposes Prometheus instrumentation for:
// - Query engine latency (filter, sort, summarize)
// - API endpoint latency and throughput
// - Export submissions and delivery outcomes
// - Scheduled export runs
// - Event store loads
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Query Engine Metrics
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "query_duration_seconds",
			Help:    "Duration of query engine operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "filter", "sort", "summarize"
	)

	QueryResultSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "query_result_events",
			Help:    "Number of events returned by query operations",
			Buckets: []float64{0, 10, 50, 100, 500, 1000, 5000, 10000, 50000},
		},
		[]string{"operation"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Export Pipeline Metrics
	ExportsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exports_submitted_total",
			Help: "Total number of export jobs accepted onto the bus",
		},
		[]string{"format"}, // "csv", "json", "pdf"
	)

	ExportsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exports_delivered_total",
			Help: "Total number of export jobs rendered and delivered",
		},
		[]string{"format"},
	)

	ExportFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "export_failures_total",
			Help: "Total number of export jobs that failed",
		},
		[]string{"format", "stage"}, // stage: "decode", "render", "journal", "email"
	)

	ExportRenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "export_render_duration_seconds",
			Help:    "Duration of export rendering in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"format"},
	)

	ExportRenderBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "export_render_bytes",
			Help:    "Size of rendered export documents in bytes",
			Buckets: []float64{1024, 10240, 102400, 1048576, 10485760, 104857600},
		},
		[]string{"format"},
	)

	// Email Delivery Metrics
	EmailsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "export_emails_sent_total",
			Help: "Total number of export notification emails sent",
		},
	)

	EmailFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "export_email_failures_total",
			Help: "Total number of export email send failures",
		},
	)

	// Scheduler Metrics
	ScheduledRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduled_export_runs_total",
			Help: "Total number of scheduled export executions",
		},
		[]string{"frequency", "result"}, // result: "success", "failure"
	)

	ScheduledJobsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheduled_export_jobs",
			Help: "Current number of registered recurring exports",
		},
	)

	ScheduleLastRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheduled_export_last_run_timestamp",
			Help: "Unix timestamp of the last scheduled export run",
		},
	)

	// Event Store Metrics
	StoreEvents = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "store_events",
			Help: "Current number of audit events in the store",
		},
	)

	StoreLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_load_duration_seconds",
			Help:    "Duration of event store loads in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"source"}, // "seed", "duckdb"
	)

	StoreQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_query_errors_total",
			Help: "Total number of event store query errors",
		},
		[]string{"source", "operation"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordQuery records a query engine operation.
func RecordQuery(operation string, duration time.Duration, resultSize int) {
	QueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	QueryResultSize.WithLabelValues(operation).Observe(float64(resultSize))
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordExportSubmitted records a job accepted onto the bus.
func RecordExportSubmitted(format string) {
	ExportsSubmitted.WithLabelValues(format).Inc()
}

// RecordExportDelivered records a completed render and delivery.
func RecordExportDelivered(format string, duration time.Duration, size int) {
	ExportsDelivered.WithLabelValues(format).Inc()
	ExportRenderDuration.WithLabelValues(format).Observe(duration.Seconds())
	ExportRenderBytes.WithLabelValues(format).Observe(float64(size))
}

// RecordExportFailure records a failed job and the stage it failed in.
func RecordExportFailure(format, stage string) {
	ExportFailures.WithLabelValues(format, stage).Inc()
}

// RecordEmailSend records the outcome of one email delivery attempt.
func RecordEmailSend(err error) {
	if err != nil {
		EmailFailures.Inc()
		return
	}
	EmailsSent.Inc()
}

// RecordScheduledRun records a scheduled export execution.
func RecordScheduledRun(frequency string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	ScheduledRuns.WithLabelValues(frequency, result).Inc()
	ScheduleLastRun.Set(float64(time.Now().Unix()))
}

// RecordStoreLoad records an event store load.
func RecordStoreLoad(source string, duration time.Duration, eventCount int) {
	StoreLoadDuration.WithLabelValues(source).Observe(duration.Seconds())
	StoreEvents.Set(float64(eventCount))
}

// RecordStoreError records an event store query error.
func RecordStoreError(source, operation string) {
	StoreQueryErrors.WithLabelValues(source, operation).Inc()
}
