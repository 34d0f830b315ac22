// Package metrics provides Prometheus metrics for the pulse clustering service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by pulse.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	iterationBuckets []float64
	registry         prometheus.Registerer

	// Ingestion
	rowsAccepted  prometheus.Counter
	rowsDuplicate prometheus.Counter
	rowsRejected  prometheus.Counter

	// Queue
	queueSize         prometheus.Gauge
	queueCapacity     prometheus.Gauge
	queueUtilization  prometheus.Gauge
	queueEnqueued     prometheus.Counter
	queueDequeued     prometheus.Counter
	queueEnqueueError prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Repository
	studentsTotal        prometheus.Gauge
	riskIndexSize        prometheus.Gauge
	repositoryUpsertTime prometheus.Histogram
	repositoryQueryTime  prometheus.Histogram

	// Clustering
	clusteringRuns         prometheus.Counter
	clusteringConfigErrors prometheus.Counter
	clusteringNonConverged prometheus.Counter
	clusteringIterations   prometheus.Histogram
	clusteringDuration     prometheus.Histogram
	clusteringPopulation   prometheus.Gauge

	// Projection
	projectionCacheHits    prometheus.Counter
	projectionCacheMisses  prometheus.Counter
	projectionCacheEntries prometheus.Gauge
	projectionsComputed    *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByType      *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// customRegistry keeps the default Go collectors out of /healthz.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pulse",
		subsystem:        "clustering",
		histogramBuckets: prometheus.DefBuckets,
		iterationBuckets: []float64{1, 2, 3, 5, 8, 13, 21, 34, 55, 100, 250},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	m.rowsAccepted = m.counter("rows_accepted_total", "Survey rows accepted for ingestion")
	m.rowsDuplicate = m.counter("rows_duplicate_total", "Survey rows skipped because their id was already seen")
	m.rowsRejected = m.counter("rows_rejected_total", "Survey rows rejected by validation or backpressure")

	m.queueSize = m.gauge("queue_size", "Current number of rows waiting for normalisation")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum number of queued rows")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue size divided by capacity")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Rows enqueued")
	m.queueDequeued = m.counter("queue_dequeued_total", "Rows dequeued by workers")
	m.queueEnqueueError = m.counter("queue_enqueue_errors_total", "Rows that could not be enqueued")

	m.workerCount = m.gauge("worker_count", "Number of ingestion workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds",
		"Time to normalise and store one row", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Rows a worker failed to store")

	m.studentsTotal = m.gauge("students_total", "Students held by the repository")
	m.riskIndexSize = m.gauge("risk_index_size", "Entries in the risk ranking index")
	m.repositoryUpsertTime = m.histogram("repository_upsert_latency_milliseconds",
		"Repository upsert latency", m.histogramBuckets)
	m.repositoryQueryTime = m.histogram("repository_query_latency_milliseconds",
		"Repository read latency", m.histogramBuckets)

	m.clusteringRuns = m.counter("runs_total", "Completed k-means runs")
	m.clusteringConfigErrors = m.counter("config_errors_total", "K-means runs rejected for invalid configuration")
	m.clusteringNonConverged = m.counter("non_converged_total", "K-means runs that hit max iterations")
	m.clusteringIterations = m.histogram("iterations", "Assignment passes per k-means run", m.iterationBuckets)
	m.clusteringDuration = m.histogram("run_duration_milliseconds", "Wall time per clustering run", m.histogramBuckets)
	m.clusteringPopulation = m.gauge("population", "Number of students in the latest clustering run")

	m.projectionCacheHits = m.counter("projection_cache_hits_total", "Coordinates served from the cache")
	m.projectionCacheMisses = m.counter("projection_cache_misses_total", "Coordinates computed by the projector")
	m.projectionCacheEntries = m.gauge("projection_cache_entries", "Entries held by the coordinate cache")
	m.projectionsComputed = m.counterVec("projections_total", "Projections computed by scheme", "scheme")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = m.counterVec("errors_by_component_total", "Errors by component", "component", "error_type")
	m.errorsByType = m.counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")
	m.errorsByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by HTTP endpoint",
		"endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "Average GC pause time",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// Ingestion.

// RecordRowAccepted counts a row accepted for ingestion.
func RecordRowAccepted() { globalManager.rowsAccepted.Inc() }

// RecordRowDuplicate counts a row skipped as duplicate.
func RecordRowDuplicate() { globalManager.rowsDuplicate.Inc() }

// RecordRowRejected counts a row rejected before enqueueing.
func RecordRowRejected() { globalManager.rowsRejected.Inc() }

// Queue.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(ratio float64) { globalManager.queueUtilization.Set(ratio) }

// RecordQueueEnqueue counts an enqueued row.
func RecordQueueEnqueue() { globalManager.queueEnqueued.Inc() }

// RecordQueueDequeue counts a dequeued row.
func RecordQueueDequeue() { globalManager.queueDequeued.Inc() }

// RecordQueueEnqueueError counts a failed enqueue.
func RecordQueueEnqueueError() { globalManager.queueEnqueueError.Inc() }

// Workers.

// UpdateWorkerCount sets the number of ingestion workers.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// RecordWorkerProcessingLatency observes per-row processing time.
func RecordWorkerProcessingLatency(ms float64) { globalManager.workerProcessingLatency.Observe(ms) }

// RecordWorkerError counts a row a worker failed to store.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// Repository.

// UpdateStudentsTotal sets the repository size.
func UpdateStudentsTotal(count int) { globalManager.studentsTotal.Set(float64(count)) }

// UpdateRiskIndexSize sets the risk index size.
func UpdateRiskIndexSize(count int) { globalManager.riskIndexSize.Set(float64(count)) }

// RecordRepositoryUpsertLatency observes an upsert.
func RecordRepositoryUpsertLatency(ms float64) { globalManager.repositoryUpsertTime.Observe(ms) }

// RecordRepositoryQueryLatency observes a read.
func RecordRepositoryQueryLatency(ms float64) { globalManager.repositoryQueryTime.Observe(ms) }

// Clustering.

// RecordClusteringRun records a finished k-means run.
func RecordClusteringRun(population, iterations int, converged bool, durationMs float64) {
	globalManager.clusteringRuns.Inc()
	globalManager.clusteringIterations.Observe(float64(iterations))
	globalManager.clusteringDuration.Observe(durationMs)
	globalManager.clusteringPopulation.Set(float64(population))
	if !converged {
		globalManager.clusteringNonConverged.Inc()
	}
}

// RecordClusteringConfigError counts a rejected clustering request.
func RecordClusteringConfigError() { globalManager.clusteringConfigErrors.Inc() }

// Projection.

// RecordProjectionCacheHit counts a cached coordinate lookup.
func RecordProjectionCacheHit() { globalManager.projectionCacheHits.Inc() }

// RecordProjectionCacheMiss counts a computed coordinate for the scheme.
func RecordProjectionCacheMiss(scheme string) {
	globalManager.projectionCacheMisses.Inc()
	globalManager.projectionsComputed.WithLabelValues(scheme).Inc()
}

// UpdateProjectionCacheEntries sets the coordinate cache size.
func UpdateProjectionCacheEntries(count int) { globalManager.projectionCacheEntries.Set(float64(count)) }

// HTTP.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms)
}

// Errors.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method and type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System.

// UpdateSystemMemoryUsage sets heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// RecordSystemGCPauseTime observes an average GC pause in milliseconds.
func RecordSystemGCPauseTime(ms float64) { globalManager.systemGCPauseTime.Observe(ms) }

// GetRegistry returns the registry served on /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
