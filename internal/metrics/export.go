// Package metrics records export run metrics in a private Prometheus registry
// and writes them to a node_exporter textfile.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"prodexport/internal/etl"
)

const namespace = "prodexport"

// ExportMetrics tracks export runs.
//
// Metrics:
//   - prodexport_runs_total: runs by status
//   - prodexport_records_read_total / records_skipped_total / rows_written_total
//   - prodexport_name_lookups_total: NameCache activity by domain and result
//   - prodexport_last_run_duration_seconds
//   - prodexport_last_success_timestamp_seconds
type ExportMetrics struct {
	registry *prometheus.Registry

	runsTotal      *prometheus.CounterVec
	recordsRead    prometheus.Counter
	recordsSkipped prometheus.Counter
	rowsWritten    prometheus.Counter
	nameLookups    *prometheus.CounterVec
	lastDuration   prometheus.Gauge
	lastSuccess    prometheus.Gauge
}

// New creates and registers the export metrics. A nil registry gets a fresh one.
func New(registry *prometheus.Registry) *ExportMetrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	m := &ExportMetrics{
		registry: registry,
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of export runs by status",
		}, []string{"status"}),
		recordsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_read_total",
			Help:      "Raw records pulled from the product pool",
		}),
		recordsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_skipped_total",
			Help:      "Raw records that produced no row",
		}),
		rowsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_written_total",
			Help:      "Data rows written to export files",
		}),
		nameLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "name_lookups_total",
			Help:      "Reference name resolutions by domain and result (hit, store_call, unresolved)",
		}, []string{"domain", "result"}),
		lastDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Duration of the last export run",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful export run",
		}),
	}
	registry.MustRegister(
		m.runsTotal, m.recordsRead, m.recordsSkipped, m.rowsWritten,
		m.nameLookups, m.lastDuration, m.lastSuccess,
	)
	return m
}

// Registry returns the registry the metrics are registered with.
func (m *ExportMetrics) Registry() *prometheus.Registry { return m.registry }

// RecordRun adds one finished run. res may be nil when the run failed early.
func (m *ExportMetrics) RecordRun(status string, res *etl.Result, stats etl.CacheStats, finishedAt time.Time) {
	m.runsTotal.WithLabelValues(status).Inc()
	if res != nil {
		m.recordsRead.Add(float64(res.RecordsRead))
		m.recordsSkipped.Add(float64(res.RecordsSkipped))
		m.rowsWritten.Add(float64(res.RowsWritten))
		m.lastDuration.Set(res.Duration.Seconds())
	}
	for d, st := range stats {
		m.nameLookups.WithLabelValues(string(d), "hit").Add(float64(st.Hits))
		m.nameLookups.WithLabelValues(string(d), "store_call").Add(float64(st.Lookups))
		m.nameLookups.WithLabelValues(string(d), "unresolved").Add(float64(st.Unresolved))
	}
	if status == etl.RunStatusSuccess {
		m.lastSuccess.Set(float64(finishedAt.Unix()))
	}
}

// WriteTextfile writes the registry in text exposition format to path.
func (m *ExportMetrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
