// Package metrics provides Prometheus metrics for the workmap service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector exposed by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Ingestion
	snapshotsSubmitted prometheus.Counter
	snapshotsDuplicate prometheus.Counter
	snapshotsApplied   prometheus.Counter
	itemsApplied       prometheus.Counter
	ingestErrors       prometheus.Counter
	weeksTotal         prometheus.Gauge

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueTotal  prometheus.Counter
	queueDequeueTotal  prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Repository
	repositoryQueryLatency  prometheus.Histogram
	repositoryUpdateLatency prometheus.Histogram

	// Views
	viewComputeDuration *prometheus.HistogramVec
	cacheHits           *prometheus.CounterVec
	cacheMisses         *prometheus.CounterVec
	layoutIterations    prometheus.Histogram
	layoutUnconverged   prometheus.Counter
	continuityStatus    *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by the package-level helpers

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "workmap",
		subsystem:        "service",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.snapshotsSubmitted = auto.NewCounter(m.counterOpts("snapshots_submitted_total", "Week snapshots accepted for ingestion"))
	m.snapshotsDuplicate = auto.NewCounter(m.counterOpts("snapshots_duplicate_total", "Week snapshots rejected as duplicate submissions"))
	m.snapshotsApplied = auto.NewCounter(m.counterOpts("snapshots_applied_total", "Week snapshots written to the store"))
	m.itemsApplied = auto.NewCounter(m.counterOpts("snapshot_items_applied_total", "Snapshot items written to the store"))
	m.ingestErrors = auto.NewCounter(m.counterOpts("ingest_errors_total", "Snapshots that failed to apply"))
	m.weeksTotal = auto.NewGauge(m.gaugeOpts("weeks_total", "Number of weeks held in the store"))

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Batches waiting in the ingest queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Capacity of the ingest queue"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("queue_utilization_ratio", "Ingest queue size over capacity"))
	m.queueEnqueueTotal = auto.NewCounter(m.counterOpts("queue_enqueue_total", "Batches enqueued"))
	m.queueDequeueTotal = auto.NewCounter(m.counterOpts("queue_dequeue_total", "Batches dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Enqueue attempts rejected (full, closed or cancelled)"))

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Number of ingest workers"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogramOpts("worker_processing_latency_milliseconds", "Time to apply one batch", m.histogramBuckets))
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total", "Batches a worker failed to apply"))

	m.repositoryQueryLatency = auto.NewHistogram(m.histogramOpts("repository_query_latency_milliseconds", "Store read latency", m.histogramBuckets))
	m.repositoryUpdateLatency = auto.NewHistogram(m.histogramOpts("repository_update_latency_milliseconds", "Store write latency", m.histogramBuckets))

	m.viewComputeDuration = auto.NewHistogramVec(m.histogramOpts("view_compute_duration_milliseconds", "Time to compute a view on a cache miss", m.histogramBuckets), []string{"view"})
	m.cacheHits = auto.NewCounterVec(m.counterOpts("view_cache_hits_total", "View cache hits"), []string{"view"})
	m.cacheMisses = auto.NewCounterVec(m.counterOpts("view_cache_misses_total", "View cache misses"), []string{"view"})
	m.layoutIterations = auto.NewHistogram(m.histogramOpts("layout_iterations", "Relaxation passes per graph layout", []float64{1, 2, 5, 10, 20, 30, 40, 50}))
	m.layoutUnconverged = auto.NewCounter(m.counterOpts("layout_unconverged_total", "Layouts that hit the iteration cap"))
	m.continuityStatus = auto.NewCounterVec(m.counterOpts("continuity_status_total", "Week-to-week comparisons by status"), []string{"status"})

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total", "HTTP requests by endpoint and method"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets), []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = auto.NewCounterVec(m.counterOpts("errors_by_component_total", "Errors by component"), []string{"component", "error_type"})
	m.errorRateByType = auto.NewCounterVec(m.counterOpts("errors_by_type_total", "Errors by type and severity"), []string{"error_type", "severity"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total", "Errors by HTTP endpoint"), []string{"endpoint", "method", "error_type"})
	m.errorLatency = auto.NewHistogramVec(m.histogramOpts("error_latency_milliseconds", "Latency of failed operations", m.histogramBuckets), []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes", "Allocated heap bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_milliseconds", "Average GC pause",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// RecordSnapshotSubmitted counts a batch accepted by the API or the loader.
func RecordSnapshotSubmitted() { globalManager.snapshotsSubmitted.Inc() }

// RecordSnapshotDuplicate counts a batch rejected as a duplicate submission.
func RecordSnapshotDuplicate() { globalManager.snapshotsDuplicate.Inc() }

// RecordSnapshotApplied counts a batch written to the store.
func RecordSnapshotApplied(items int) {
	globalManager.snapshotsApplied.Inc()
	globalManager.itemsApplied.Add(float64(items))
}

// RecordIngestError counts a batch that failed to apply.
func RecordIngestError() { globalManager.ingestErrors.Inc() }

// UpdateWeeksTotal sets the number of stored weeks.
func UpdateWeeksTotal(n int) { globalManager.weeksTotal.Set(float64(n)) }

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) { globalManager.queueUtilization.Set(utilization) }

// RecordQueueEnqueue counts an enqueued batch.
func RecordQueueEnqueue() { globalManager.queueEnqueueTotal.Inc() }

// RecordQueueDequeue counts a dequeued batch.
func RecordQueueDequeue() { globalManager.queueDequeueTotal.Inc() }

// RecordQueueEnqueueError counts a rejected enqueue.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// UpdateWorkerCount sets the number of workers.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// RecordWorkerProcessingLatency records how long a batch took to apply.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError counts a failed batch.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// RecordRepositoryQueryLatency records a store read.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// RecordRepositoryUpdateLatency records a store write.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	globalManager.repositoryUpdateLatency.Observe(latencyMs)
}

// RecordViewCompute records the time to compute a view.
func RecordViewCompute(view string, durationMs float64) {
	globalManager.viewComputeDuration.WithLabelValues(view).Observe(durationMs)
}

// RecordCacheHit counts a memoized view served from cache.
func RecordCacheHit(view string) { globalManager.cacheHits.WithLabelValues(view).Inc() }

// RecordCacheMiss counts a view that had to be computed.
func RecordCacheMiss(view string) { globalManager.cacheMisses.WithLabelValues(view).Inc() }

// RecordLayout records the relaxation passes of one layout.
func RecordLayout(iterations int, converged bool) {
	globalManager.layoutIterations.Observe(float64(iterations))
	if !converged {
		globalManager.layoutUnconverged.Inc()
	}
}

// RecordContinuityStatus adds n comparisons with the given status.
func RecordContinuityStatus(status string, n int) {
	globalManager.continuityStatus.WithLabelValues(status).Add(float64(n))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error raised by a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an HTTP error.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of a failed operation.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// UpdateSystemMemoryUsage sets allocated heap bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records the average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPauseTime.Observe(pauseMs) }

// GetRegistry returns the registry the global manager writes to.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
