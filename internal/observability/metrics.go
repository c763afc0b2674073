package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mwac"

// Metrics holds the Prometheus counters, histograms, and gauges for the snapshot loader.
type Metrics struct {
	LoadsTotal        *prometheus.CounterVec // labels: outcome={success,error}
	LoadDuration      prometheus.Histogram
	RowsLoaded        prometheus.Gauge
	RowIssues         *prometheus.CounterVec // labels: kind
	LastLoadTimestamp prometheus.Gauge
	LoaderRunning     prometheus.Gauge

	// Reload trigger metrics.
	ReloadTriggers *prometheus.CounterVec // labels: source={watch,schedule}

	// Publication metrics.
	PublishTotal   *prometheus.CounterVec // labels: outcome={success,error}
	PublishEnabled prometheus.Gauge
}

// NewMetrics creates and registers all loader metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.LoadsTotal,
		m.LoadDuration,
		m.RowsLoaded,
		m.RowIssues,
		m.LastLoadTimestamp,
		m.LoaderRunning,
		m.ReloadTriggers,
		m.PublishTotal,
		m.PublishEnabled,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		LoadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_total",
			Help:      "Source loads by outcome.",
		}, []string{"outcome"}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Duration of a complete load-normalize-swap cycle.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		}),
		RowsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows_loaded",
			Help:      "Rows in the current snapshot.",
		}),
		RowIssues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "row_issues_total",
			Help:      "Row-scoped data issues found while normalizing, by kind.",
		}, []string{"kind"}),
		LastLoadTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_load_timestamp_seconds",
			Help:      "Unix time of the last successful load.",
		}),
		LoaderRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "loader_running",
			Help:      "1 when the loader is active, 0 when shut down.",
		}),
		ReloadTriggers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reload_triggers_total",
			Help:      "Reload requests received, by trigger source.",
		}, []string{"source"}),
		PublishTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_total",
			Help:      "Snapshot publications to Kafka by outcome.",
		}, []string{"outcome"}),
		PublishEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "publish_enabled",
			Help:      "1 when Kafka publication is enabled, 0 otherwise.",
		}),
	}
}
