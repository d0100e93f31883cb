package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the crash map service.
type Metrics struct {
	// Dataset loading.
	DatasetLoads        *prometheus.CounterVec // labels: outcome={success,error}
	DatasetLoadDuration prometheus.Histogram
	DatasetRecords      *prometheus.GaugeVec // labels: set={all,fatal}
	DatasetRejected     prometheus.Gauge

	// Map page rendering.
	MapRenders        *prometheus.CounterVec // labels: outcome={success,unavailable,error}
	MapRenderDuration prometheus.Histogram

	// Optional Kafka export.
	ExportRecords *prometheus.CounterVec // labels: outcome={success,error}
}

func newMetrics() *Metrics {
	return &Metrics{
		DatasetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crashmap",
			Name:      "dataset_loads_total",
			Help:      "Dataset load attempts by outcome.",
		}, []string{"outcome"}),
		DatasetLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "crashmap",
			Name:      "dataset_load_duration_seconds",
			Help:      "Duration of reading, parsing and filtering the crash dataset.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		DatasetRecords: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "crashmap",
			Name:      "dataset_records",
			Help:      "Records in the current snapshot, all rows and fatal only.",
		}, []string{"set"}),
		DatasetRejected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "crashmap",
			Name:      "dataset_rejected_records",
			Help:      "Rows skipped in the last successful load because they could not be plotted.",
		}),
		MapRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crashmap",
			Name:      "map_renders_total",
			Help:      "Crash map page requests by outcome.",
		}, []string{"outcome"}),
		MapRenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "crashmap",
			Name:      "map_render_duration_seconds",
			Help:      "Time to build and serialize the crash map layers.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		ExportRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crashmap",
			Name:      "export_records_total",
			Help:      "Fatal crash records published to Kafka by outcome.",
		}, []string{"outcome"}),
	}
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.DatasetLoads,
		m.DatasetLoadDuration,
		m.DatasetRecords,
		m.DatasetRejected,
		m.MapRenders,
		m.MapRenderDuration,
		m.ExportRecords,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
