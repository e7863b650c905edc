// Package metrics provides Prometheus metrics for the sheetboard service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the sheetboard service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Backend metrics - every grid call is a network round trip
	backendCalls   *prometheus.CounterVec
	backendErrors  *prometheus.CounterVec
	backendLatency prometheus.Histogram

	// Scoreboard cache metrics
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter

	// Core business metrics
	teamsTotal       prometheus.Gauge
	eventsTotal      prometheus.Gauge
	scoreAdjustments prometheus.Counter
	judgements       *prometheus.CounterVec
	awardsGranted    prometheus.Counter
	awardsSkipped    prometheus.Counter
	tokensIssued     prometheus.Counter
	tokenRetries     prometheus.Counter
	activityRecords  prometheus.Counter

	// HTTP performance metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorRateByEndpoint *prometheus.CounterVec
	errorRateByType     *prometheus.CounterVec

	// System performance metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
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
		namespace:        "sheetboard",
		subsystem:        "core",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
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
func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	m.backendCalls = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "backend_calls_total",
			Help:      "Total number of tabular-backend round trips by operation",
		},
		[]string{"op"},
	)

	m.backendErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "backend_errors_total",
			Help:      "Total number of failed tabular-backend calls by operation",
		},
		[]string{"op"},
	)

	m.backendLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "backend_latency_milliseconds",
		Help:      "Histogram of tabular-backend call latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoreboard_cache_hits_total",
		Help:      "Scoreboard reads served from the time-boxed snapshot cache",
	})

	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoreboard_cache_misses_total",
		Help:      "Scoreboard reads that performed a fresh full-grid read",
	})

	m.teamsTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "teams_total",
		Help:      "Number of team columns on the scoreboard",
	})

	m.eventsTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_total",
		Help:      "Number of event rows on the scoreboard",
	})

	m.scoreAdjustments = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "score_adjustments_total",
		Help:      "Total number of read-modify-write score adjustments",
	})

	m.judgements = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "judgements_total",
			Help:      "Total number of judged submissions by kind and outcome",
		},
		[]string{"kind", "result"},
	)

	m.awardsGranted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "awards_granted_total",
		Help:      "Total number of one-time point awards granted",
	})

	m.awardsSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "awards_skipped_total",
		Help:      "Correct submissions that did not result in an award",
	})

	m.tokensIssued = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tokens_issued_total",
		Help:      "Total number of team tokens issued",
	})

	m.tokenRetries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "token_retries_total",
		Help:      "Token generations that re-salted after a ledger collision",
	})

	m.activityRecords = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "activity_records_total",
		Help:      "Total number of rows appended to the activity log",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "Total errors by endpoint, method, and error type",
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.errorRateByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_type_total",
			Help:      "Total errors by type and severity",
		},
		[]string{"error_type", "severity"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})
}

// Package-level helper functions that use the global manager.

// RecordBackendCall increments the backend round-trip counter for op.
func RecordBackendCall(op string) {
	globalManager.backendCalls.WithLabelValues(op).Inc()
}

// RecordBackendError increments the backend error counter for op.
func RecordBackendError(op string) {
	globalManager.backendErrors.WithLabelValues(op).Inc()
}

// RecordBackendLatency records one backend call latency in milliseconds.
func RecordBackendLatency(latencyMs float64) {
	globalManager.backendLatency.Observe(latencyMs)
}

// RecordCacheHit increments the scoreboard cache hit counter.
func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

// RecordCacheMiss increments the scoreboard cache miss counter.
func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

// UpdateTeamsTotal sets the number of teams on the scoreboard.
func UpdateTeamsTotal(count int) {
	globalManager.teamsTotal.Set(float64(count))
}

// UpdateEventsTotal sets the number of events on the scoreboard.
func UpdateEventsTotal(count int) {
	globalManager.eventsTotal.Set(float64(count))
}

// RecordScoreAdjustment increments the score adjustment counter.
func RecordScoreAdjustment() {
	globalManager.scoreAdjustments.Inc()
}

// RecordJudgement records one judged submission.
// kind is "answer" or "flag"; result is "correct" or "incorrect".
func RecordJudgement(kind string, correct bool) {
	result := "incorrect"
	if correct {
		result = "correct"
	}
	globalManager.judgements.WithLabelValues(kind, result).Inc()
}

// RecordAwardGranted increments the granted-award counter.
func RecordAwardGranted() {
	globalManager.awardsGranted.Inc()
}

// RecordAwardSkipped increments the skipped-award counter.
func RecordAwardSkipped() {
	globalManager.awardsSkipped.Inc()
}

// RecordTokenIssued increments the issued-token counter.
func RecordTokenIssued() {
	globalManager.tokensIssued.Inc()
}

// RecordTokenRetry increments the token collision-retry counter.
func RecordTokenRetry() {
	globalManager.tokenRetries.Inc()
}

// RecordActivityRecord increments the activity log row counter.
func RecordActivityRecord() {
	globalManager.activityRecords.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error for a specific endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByType records an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// UpdateSystemMemoryUsage sets the current memory usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the current goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
