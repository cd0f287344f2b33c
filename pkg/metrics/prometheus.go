// Package metrics provides Prometheus metrics for the congress planner.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the planner.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Fetch Metrics - conference API downloads
	fetchedItems *prometheus.CounterVec
	fetchLatency *prometheus.HistogramVec
	fetchErrors  *prometheus.CounterVec

	// Cache Metrics - local store contents
	cachedEvents    prometheus.Gauge
	cachedRooms     prometheus.Gauge
	storedRatings   prometheus.Gauge
	ratingsRecorded prometheus.Counter

	// Optimizer Metrics
	optimizeRuns      *prometheus.CounterVec
	optimizeLatency   *prometheus.HistogramVec
	scheduledEvents   prometheus.Gauge
	scheduleScore     prometheus.Gauge
	candidateEvents   prometheus.Gauge
	problemConstraint prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Repository Metrics
	repositoryUpdateLatency prometheus.Histogram
	repositoryQueryLatency  prometheus.Histogram

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec

	// System Metrics
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
		namespace:        "congress",
		subsystem:        "planner",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		enabled:          true,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
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

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	m.fetchedItems = auto.NewCounterVec(
		m.counterOpts("fetched_items_total", "Total number of items downloaded from the conference API"),
		[]string{"resource"},
	)
	m.fetchLatency = auto.NewHistogramVec(
		m.histogramOpts("fetch_latency_milliseconds", "Conference API request latency in milliseconds"),
		[]string{"resource"},
	)
	m.fetchErrors = auto.NewCounterVec(
		m.counterOpts("fetch_errors_total", "Total number of failed conference API requests"),
		[]string{"resource"},
	)

	m.cachedEvents = auto.NewGauge(m.gaugeOpts("cached_events", "Number of events in the local cache"))
	m.cachedRooms = auto.NewGauge(m.gaugeOpts("cached_rooms", "Number of rooms in the local cache"))
	m.storedRatings = auto.NewGauge(m.gaugeOpts("stored_ratings", "Number of ratings in the rating history"))
	m.ratingsRecorded = auto.NewCounter(m.counterOpts("ratings_recorded_total", "Total number of ratings recorded"))

	m.optimizeRuns = auto.NewCounterVec(
		m.counterOpts("optimize_runs_total", "Total number of schedule optimizations by solver and status"),
		[]string{"solver", "status"},
	)
	m.optimizeLatency = auto.NewHistogramVec(
		m.histogramOpts("optimize_latency_milliseconds", "Schedule optimization latency in milliseconds"),
		[]string{"solver"},
	)
	m.scheduledEvents = auto.NewGauge(m.gaugeOpts("scheduled_events", "Number of events in the last optimal schedule"))
	m.scheduleScore = auto.NewGauge(m.gaugeOpts("schedule_score", "Total score of the last optimal schedule"))
	m.candidateEvents = auto.NewGauge(m.gaugeOpts("candidate_events", "Number of rated events offered to the last optimization"))
	m.problemConstraint = auto.NewGauge(m.gaugeOpts("problem_constraints", "Number of overlap constraints in the last optimization"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)

	m.repositoryUpdateLatency = auto.NewHistogram(
		m.histogramOpts("repository_update_latency_milliseconds", "Latency of cache writes in milliseconds"),
	)
	m.repositoryQueryLatency = auto.NewHistogram(
		m.histogramOpts("repository_query_latency_milliseconds", "Latency of cache reads in milliseconds"),
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component and type"),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
}

// Fetch Metrics Functions.

// RecordFetch records a successful download of count items of resource.
func RecordFetch(resource string, count int, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.fetchedItems.WithLabelValues(resource).Add(float64(count))
	globalManager.fetchLatency.WithLabelValues(resource).Observe(latencyMs)
}

// RecordFetchError increments the failed download counter for resource.
func RecordFetchError(resource string) {
	if !globalManager.enabled {
		return
	}
	globalManager.fetchErrors.WithLabelValues(resource).Inc()
}

// Cache Metrics Functions.

// UpdateCachedEvents sets the number of cached events.
func UpdateCachedEvents(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.cachedEvents.Set(float64(count))
}

// UpdateCachedRooms sets the number of cached rooms.
func UpdateCachedRooms(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.cachedRooms.Set(float64(count))
}

// UpdateStoredRatings sets the size of the rating history.
func UpdateStoredRatings(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.storedRatings.Set(float64(count))
}

// RecordRating increments the ratings recorded counter.
func RecordRating() {
	if !globalManager.enabled {
		return
	}
	globalManager.ratingsRecorded.Inc()
}

// Optimizer Metrics Functions.

// RecordOptimization records one optimizer run.
func RecordOptimization(solver, status string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.optimizeRuns.WithLabelValues(solver, status).Inc()
	globalManager.optimizeLatency.WithLabelValues(solver).Observe(latencyMs)
}

// UpdateSchedule publishes the shape of the last optimal schedule.
func UpdateSchedule(candidates, constraints, selected int, score float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.candidateEvents.Set(float64(candidates))
	globalManager.problemConstraint.Set(float64(constraints))
	globalManager.scheduledEvents.Set(float64(selected))
	globalManager.scheduleScore.Set(score)
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Repository Metrics Functions.

// RecordRepositoryUpdateLatency records repository update operation latency.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.repositoryUpdateLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency records repository query operation latency.
func RecordRepositoryQueryLatency(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemGoroutineCount.Set(float64(count))
}

// SetEnabled turns the global recorders on or off.
func SetEnabled(enabled bool) {
	globalManager.enabled = enabled
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
