// Package metrics provides Prometheus metrics for the matchday simulation service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager holds every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Simulation
	matchesSimulated prometheus.Counter
	matchesFailed    *prometheus.CounterVec
	matchDuration    prometheus.Histogram
	eventsDispatched *prometheus.CounterVec
	stoppageMinutes  *prometheus.HistogramVec

	// Batches
	batchesTotal    prometheus.Counter
	batchDuration   prometheus.Histogram
	batchFixtures   prometheus.Gauge
	pooledRows      prometheus.Gauge
	narrativeEvents *prometheus.CounterVec
	bansIssued      *prometheus.CounterVec
	fixturesClaimed prometheus.Gauge

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueTotal  prometheus.Counter
	queueDequeueTotal  prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            *prometheus.CounterVec

	// Repository
	repositoryCopies       *prometheus.CounterVec
	repositoryOpenCopies   prometheus.Gauge
	repositoryWriteLatency prometheus.Histogram
	repositoryRowsWritten  prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "matchday",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
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

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
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

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.matchesSimulated = m.counter("matches_simulated_total", "Total number of matches simulated to completion")
	m.matchesFailed = m.counterVec("matches_failed_total", "Total number of matches whose simulation failed", "reason")
	m.matchDuration = m.histogram("match_duration_milliseconds", "Wall time of one match simulation in milliseconds", m.histogramBuckets)
	m.eventsDispatched = m.counterVec("events_dispatched_total", "Match events dispatched by the clock", "type")
	m.stoppageMinutes = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stoppage_minutes",
		Help:      "Stoppage minutes added per half",
		Buckets:   []float64{0, 1, 2, 3, 4, 5},
	}, []string{"half"})

	m.batchesTotal = m.counter("batches_total", "Total number of batches run")
	m.batchDuration = m.histogram("batch_duration_milliseconds", "Wall time of one batch in milliseconds",
		[]float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000})
	m.batchFixtures = m.gauge("batch_fixtures", "Fixtures in the last batch")
	m.pooledRows = m.gauge("pooled_payload_rows", "Rows in the last pooled payload")
	m.narrativeEvents = m.counterVec("narrative_events_total", "League narratives detected", "kind")
	m.bansIssued = m.counterVec("bans_issued_total", "Player bans issued", "type")
	m.fixturesClaimed = m.gauge("fixtures_in_flight", "Fixtures currently claimed by a running batch")

	m.queueSize = m.gauge("queue_size", "Current size of the fixture queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum fixture queue capacity")
	m.queueEnqueueTotal = m.counter("queue_enqueue_total", "Total number of fixtures enqueued")
	m.queueDequeueTotal = m.counter("queue_dequeue_total", "Total number of fixtures dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of enqueue errors")

	m.workerActiveCount = m.gauge("worker_active_count", "Number of active simulation workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds",
		"Worker processing latency per fixture in milliseconds", m.histogramBuckets)
	m.workerErrors = m.counterVec("worker_errors_total", "Worker errors by reason", "reason")

	m.repositoryCopies = m.counterVec("repository_copies_total", "Repository copy lifecycle operations", "op")
	m.repositoryOpenCopies = m.gauge("repository_open_copies", "Repository copies currently open")
	m.repositoryWriteLatency = m.histogram("repository_write_latency_milliseconds",
		"Payload write latency in milliseconds", m.histogramBuckets)
	m.repositoryRowsWritten = m.counter("repository_rows_written_total", "Payload rows written")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component",
		"component", "error_type")
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// RecordMatchSimulated counts a completed match and its wall time.
func RecordMatchSimulated(d time.Duration) {
	globalManager.matchesSimulated.Inc()
	globalManager.matchDuration.Observe(ms(d))
}

// RecordMatchFailed counts a failed match.
func RecordMatchFailed(reason string) {
	globalManager.matchesFailed.WithLabelValues(reason).Inc()
}

// RecordEventDispatched counts a dispatched match event.
func RecordEventDispatched(eventType string) {
	globalManager.eventsDispatched.WithLabelValues(eventType).Inc()
}

// RecordStoppage observes the stoppage minutes of half 1 or 2.
func RecordStoppage(half, minutes int) {
	globalManager.stoppageMinutes.WithLabelValues(strconv.Itoa(half)).Observe(float64(minutes))
}

// RecordBatch observes a finished batch.
func RecordBatch(d time.Duration, fixtures, rows int) {
	globalManager.batchesTotal.Inc()
	globalManager.batchDuration.Observe(ms(d))
	globalManager.batchFixtures.Set(float64(fixtures))
	globalManager.pooledRows.Set(float64(rows))
}

// RecordNarrative counts a detected league narrative.
func RecordNarrative(kind string) {
	globalManager.narrativeEvents.WithLabelValues(kind).Inc()
}

// RecordBan counts an issued ban.
func RecordBan(banType string) {
	globalManager.bansIssued.WithLabelValues(banType).Inc()
}

// UpdateFixturesInFlight sets the number of claimed fixtures.
func UpdateFixturesInFlight(n int) {
	globalManager.fixturesClaimed.Set(float64(n))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueTotal.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueTotal.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(d time.Duration) {
	globalManager.workerProcessingLatency.Observe(ms(d))
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError(reason string) {
	globalManager.workerErrors.WithLabelValues(reason).Inc()
}

// RecordRepositoryCopy counts a copy lifecycle operation (begin, commit, discard)
// and tracks how many copies are open.
func RecordRepositoryCopy(op string) {
	globalManager.repositoryCopies.WithLabelValues(op).Inc()
	switch op {
	case "begin":
		globalManager.repositoryOpenCopies.Inc()
	case "commit", "discard":
		globalManager.repositoryOpenCopies.Dec()
	}
}

// RecordRepositoryWrite observes a payload write.
func RecordRepositoryWrite(d time.Duration, rows int) {
	globalManager.repositoryWriteLatency.Observe(ms(d))
	globalManager.repositoryRowsWritten.Add(float64(rows))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
