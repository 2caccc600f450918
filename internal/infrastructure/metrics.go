package infrastructure

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const metricsNamespace = "sucursales"

// RunMetrics collects counters for a single pipeline run. The registry is
// private to the run so tests and repeated runs never share state.
type RunMetrics struct {
	Registry *prometheus.Registry

	RowsLoaded       prometheus.Gauge
	RowsDropped      prometheus.Gauge
	RowsReconciled   *prometheus.GaugeVec
	BranchesUnmapped prometheus.Gauge
	Groups           prometheus.Gauge
	StageDuration    *prometheus.GaugeVec
	ChartsRendered   *prometheus.CounterVec
	RenderFailures   *prometheus.CounterVec
}

// NewRunMetrics creates and registers the run metrics, along with the Go
// runtime and process collectors.
func NewRunMetrics() *RunMetrics {
	m := &RunMetrics{
		Registry: prometheus.NewRegistry(),
		RowsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "rows_loaded",
			Help:      "Records read from the input workbook",
		}),
		RowsDropped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "rows_dropped",
			Help:      "Records removed by the balance filter",
		}),
		RowsReconciled: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "rows_reconciled",
			Help:      "FPD rate cells filled with 0 or cleared to missing by reconciliation",
		}, []string{"period"}),
		BranchesUnmapped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "branches_unmapped",
			Help:      "Records whose branch is not in the hierarchy table",
		}),
		Groups: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "groups",
			Help:      "Groups in the aggregated output",
		}),
		StageDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of each pipeline stage",
		}, []string{"stage"}),
		ChartsRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "charts_rendered_total",
			Help:      "Charts rendered, by renderer variant",
		}, []string{"variant"}),
		RenderFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "render_failures_total",
			Help:      "Chart renderer failures, by renderer variant",
		}, []string{"variant"}),
	}

	m.Registry.MustRegister(
		m.RowsLoaded,
		m.RowsDropped,
		m.RowsReconciled,
		m.BranchesUnmapped,
		m.Groups,
		m.StageDuration,
		m.ChartsRendered,
		m.RenderFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveStage records the duration of a pipeline stage started at start
func (m *RunMetrics) ObserveStage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Set(time.Since(start).Seconds())
}

// WriteTextfile writes every registered metric to path in the Prometheus
// text exposition format.
func (m *RunMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile %s: %w", path, err)
	}
	return nil
}
