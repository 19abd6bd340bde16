// Package metrics provides Prometheus metrics for the userpulse report
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// defaultBuckets suit the pipeline's millisecond-scale latencies.
var defaultBuckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000} //nolint:gochecknoglobals // shared bucket layout for all managers

// Manager manages all Prometheus metrics for the pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Fetch Metrics - API request behavior
	fetchRequests    *prometheus.CounterVec
	fetchFailures    *prometheus.CounterVec
	fetchRetries     *prometheus.CounterVec
	fetchLatency     *prometheus.HistogramVec
	recordsFetched   *prometheus.GaugeVec
	recordsDuplicate *prometheus.CounterVec

	// Validation Metrics - Data quality indicators
	recordsValid    *prometheus.CounterVec
	recordsRejected *prometheus.CounterVec

	// Aggregation Metrics
	orphansDropped     prometheus.Counter
	usersAggregated    prometheus.Gauge
	aggregationLatency prometheus.Histogram

	// Report Metrics - Artifact generation
	reportDuration *prometheus.HistogramVec
	reportsWritten *prometheus.CounterVec
	reportErrors   *prometheus.CounterVec

	// Notification Metrics
	emailsSent prometheus.Counter

	// Run Metrics - Whole pipeline outcomes
	runsTotal   prometheus.Counter
	runFailures prometheus.Counter
	runDuration prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "userpulse",
		subsystem:        "pipeline",
		histogramBuckets: defaultBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Fetch Metrics - API request behavior
	m.fetchRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "fetch_requests_total",
			Help:      "Total number of fetch requests by resource and status code",
		},
		[]string{"resource", "status_code"},
	)

	m.fetchFailures = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "fetch_failures_total",
			Help:      "Total number of fetch attempts that produced no HTTP response",
		},
		[]string{"resource"},
	)

	m.fetchRetries = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "fetch_retries_total",
			Help:      "Total number of fetch retry attempts by resource",
		},
		[]string{"resource"},
	)

	m.fetchLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "fetch_request_duration_milliseconds",
			Help:      "Fetch request duration in milliseconds by resource",
			Buckets:   m.histogramBuckets,
		},
		[]string{"resource"},
	)

	m.recordsFetched = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "records_fetched",
			Help:      "Number of records returned by the last completed fetch",
		},
		[]string{"resource"},
	)

	m.recordsDuplicate = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "records_duplicate_total",
			Help:      "Total number of duplicate records skipped across page boundaries",
		},
		[]string{"resource"},
	)

	// Validation Metrics - Data quality indicators
	m.recordsValid = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "records_valid_total",
			Help:      "Total number of records that passed validation",
		},
		[]string{"resource"},
	)

	m.recordsRejected = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "records_rejected_total",
			Help:      "Total number of records rejected by validation (data quality)",
		},
		[]string{"resource"},
	)

	// Aggregation Metrics
	m.orphansDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "orphan_posts_dropped_total",
		Help:      "Total number of posts dropped for referencing an unknown user",
	})

	m.usersAggregated = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "users_aggregated",
		Help:      "Number of users in the last computed metrics set",
	})

	m.aggregationLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "aggregation_duration_milliseconds",
		Help:      "Histogram of metric aggregation duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// Report Metrics - Artifact generation
	m.reportDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "report_render_duration_milliseconds",
			Help:      "Report render duration in milliseconds by format",
			Buckets:   m.histogramBuckets,
		},
		[]string{"format"},
	)

	m.reportsWritten = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "reports_written_total",
			Help:      "Total number of report files written by format",
		},
		[]string{"format"},
	)

	m.reportErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "report_errors_total",
			Help:      "Total number of report render or write failures by format",
		},
		[]string{"format"},
	)

	// Notification Metrics
	m.emailsSent = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "emails_sent_total",
		Help:      "Total number of report notification emails sent",
	})

	// Run Metrics - Whole pipeline outcomes
	m.runsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_total",
		Help:      "Total number of pipeline runs",
	})

	m.runFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_failures_total",
		Help:      "Total number of pipeline runs that ended in an error",
	})

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_milliseconds",
		Help:      "Histogram of whole-run duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// Package-level convenience functions that record on the global manager.

// RecordFetchRequest counts one completed HTTP request.
func RecordFetchRequest(resource, statusCode string) {
	globalManager.fetchRequests.WithLabelValues(resource, statusCode).Inc()
}

// RecordFetchFailure counts a request attempt that produced no response.
func RecordFetchFailure(resource string) {
	globalManager.fetchFailures.WithLabelValues(resource).Inc()
}

// RecordFetchRetry counts one retry attempt.
func RecordFetchRetry(resource string) {
	globalManager.fetchRetries.WithLabelValues(resource).Inc()
}

// RecordFetchLatency records the duration of one request in milliseconds.
func RecordFetchLatency(resource string, latencyMs float64) {
	globalManager.fetchLatency.WithLabelValues(resource).Observe(latencyMs)
}

// UpdateRecordsFetched sets the record count of the last completed fetch.
func UpdateRecordsFetched(resource string, count int) {
	globalManager.recordsFetched.WithLabelValues(resource).Set(float64(count))
}

// RecordRecordDuplicate counts a record skipped as a cross-page repeat.
func RecordRecordDuplicate(resource string) {
	globalManager.recordsDuplicate.WithLabelValues(resource).Inc()
}

// RecordRecordsValid counts records that passed validation.
func RecordRecordsValid(resource string, count int) {
	globalManager.recordsValid.WithLabelValues(resource).Add(float64(count))
}

// RecordRecordsRejected counts records rejected by validation.
func RecordRecordsRejected(resource string, count int) {
	globalManager.recordsRejected.WithLabelValues(resource).Add(float64(count))
}

// RecordOrphansDropped counts posts dropped for referencing unknown users.
func RecordOrphansDropped(count int) {
	globalManager.orphansDropped.Add(float64(count))
}

// UpdateUsersAggregated sets the size of the last computed metrics set.
func UpdateUsersAggregated(count int) {
	globalManager.usersAggregated.Set(float64(count))
}

// RecordAggregationLatency records one aggregation pass in milliseconds.
func RecordAggregationLatency(latencyMs float64) {
	globalManager.aggregationLatency.Observe(latencyMs)
}

// RecordReportDuration records one report render in milliseconds.
func RecordReportDuration(format string, latencyMs float64) {
	globalManager.reportDuration.WithLabelValues(format).Observe(latencyMs)
}

// RecordReportWritten counts one report file landed on disk.
func RecordReportWritten(format string) {
	globalManager.reportsWritten.WithLabelValues(format).Inc()
}

// RecordReportError counts one failed report render or write.
func RecordReportError(format string) {
	globalManager.reportErrors.WithLabelValues(format).Inc()
}

// RecordEmailSent counts one delivered notification.
func RecordEmailSent() {
	globalManager.emailsSent.Inc()
}

// RecordRunCompleted counts a successful run and records its duration.
func RecordRunCompleted(durationMs float64) {
	globalManager.runsTotal.Inc()
	globalManager.runDuration.Observe(durationMs)
}

// RecordRunFailure counts a run that ended in an error.
func RecordRunFailure() {
	globalManager.runsTotal.Inc()
	globalManager.runFailures.Inc()
}

// GetRegistry returns the custom registry for metrics exposure.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
