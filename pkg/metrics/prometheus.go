// Package metrics provides Prometheus metrics for the pickpool seeder.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector the seeder records into.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Generation
	entitiesGenerated *prometheus.GaugeVec
	completedGames    prometheus.Gauge

	// Batch persistence
	batchRequests    *prometheus.CounterVec
	batchUnprocessed *prometheus.CounterVec
	batchRetries     *prometheus.CounterVec
	batchExhausted   *prometheus.CounterVec
	itemsWritten     *prometheus.CounterVec
	backoffWait      *prometheus.HistogramVec
	requestLatency   *prometheus.HistogramVec

	// Runs
	runsTotal   *prometheus.CounterVec
	runDuration prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // isolated from default Go collectors

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pickpool",
		subsystem:        "seed",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // flat list of collectors
	auto := promauto.With(m.registry)

	m.entitiesGenerated = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "entities_generated",
		Help:        "Number of entities generated in the last run by kind",
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.completedGames = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "completed_games",
		Help:        "Number of completed games in the last generated dataset",
		ConstLabels: m.constLabels,
	})

	m.batchRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "batch_requests_total",
		Help:        "Total batch write requests issued to the store",
		ConstLabels: m.constLabels,
	}, []string{"partition"})

	m.batchUnprocessed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "batch_unprocessed_items_total",
		Help:        "Items the store reported as unprocessed",
		ConstLabels: m.constLabels,
	}, []string{"partition"})

	m.batchRetries = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "batch_retries_total",
		Help:        "Retry attempts issued for partially failed chunks",
		ConstLabels: m.constLabels,
	}, []string{"partition"})

	m.batchExhausted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "batch_exhausted_total",
		Help:        "Chunks aborted after exhausting retries",
		ConstLabels: m.constLabels,
	}, []string{"partition"})

	m.itemsWritten = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "items_written_total",
		Help:        "Items committed by the store",
		ConstLabels: m.constLabels,
	}, []string{"partition"})

	m.backoffWait = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "backoff_wait_milliseconds",
		Help:        "Backoff wait before a retry attempt in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"partition"})

	m.requestLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "batch_request_latency_milliseconds",
		Help:        "Latency of a single batch write request in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"partition"})

	m.runsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "runs_total",
		Help:        "Seed runs by outcome",
		ConstLabels: m.constLabels,
	}, []string{"outcome"})

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "run_duration_milliseconds",
		Help:        "Wall time of a complete seed run in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})
}

// RecordEntitiesGenerated sets the generated count for an entity kind.
func RecordEntitiesGenerated(kind string, count int) {
	globalManager.entitiesGenerated.WithLabelValues(kind).Set(float64(count))
}

// UpdateCompletedGames sets the completed game count of the last dataset.
func UpdateCompletedGames(count int) {
	globalManager.completedGames.Set(float64(count))
}

// RecordBatchRequest counts one store request and observes its latency.
func RecordBatchRequest(partition string, latencyMs float64) {
	globalManager.batchRequests.WithLabelValues(partition).Inc()
	globalManager.requestLatency.WithLabelValues(partition).Observe(latencyMs)
}

// RecordUnprocessed adds items reported unprocessed by the store.
func RecordUnprocessed(partition string, count int) {
	if count > 0 {
		globalManager.batchUnprocessed.WithLabelValues(partition).Add(float64(count))
	}
}

// RecordRetry counts a retry and observes the wait that preceded it.
func RecordRetry(partition string, waitMs float64) {
	globalManager.batchRetries.WithLabelValues(partition).Inc()
	globalManager.backoffWait.WithLabelValues(partition).Observe(waitMs)
}

// RecordExhausted counts a chunk aborted after its last retry.
func RecordExhausted(partition string) {
	globalManager.batchExhausted.WithLabelValues(partition).Inc()
}

// RecordItemsWritten adds committed items for a partition.
func RecordItemsWritten(partition string, count int) {
	if count > 0 {
		globalManager.itemsWritten.WithLabelValues(partition).Add(float64(count))
	}
}

// RecordRun counts a run outcome ("success" or "failure") and its duration.
func RecordRun(outcome string, durationMs float64) {
	globalManager.runsTotal.WithLabelValues(outcome).Inc()
	globalManager.runDuration.Observe(durationMs)
}

// WriteTextfile writes the current registry contents to path in the
// node-exporter textfile collector format.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteTextfile, err)
	}
	return nil
}
