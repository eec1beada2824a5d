package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "auditoria"

// Metrics holds the collectors for audit runs on a private registry, so a
// run can be written to a node_exporter textfile without global state.
type Metrics struct {
	Registry *prometheus.Registry

	// RunsTotal counts audit runs by outcome
	RunsTotal *prometheus.CounterVec

	// RowsProcessed counts table rows fed to the aggregator
	RowsProcessed prometheus.Counter

	// UnparsedCells counts non-empty cells that fell back to zero
	UnparsedCells prometheus.Counter

	// StageDuration tracks how long each pipeline stage took
	StageDuration *prometheus.HistogramVec

	// NetTotal is the net balance of the last successful run
	NetTotal prometheus.Gauge
}

// NewMetrics registers the audit collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of audit runs",
			},
			[]string{"outcome"},
		),
		RowsProcessed: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_processed_total",
				Help:      "Total number of table rows aggregated",
			},
		),
		UnparsedCells: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "unparsed_cells_total",
				Help:      "Non-empty cells that could not be parsed and counted as zero",
			},
		),
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Pipeline stage duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		NetTotal: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "net_total",
				Help:      "Net balance of the last successful audit run",
			},
		),
	}
}

// ObserveStage records the time elapsed since start for a stage.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// WriteTextfile writes all collected metrics in the Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
