package logger

import (
	"github.com/prometheus/client_golang/prometheus"

	"squadhq/workflow-logger/pkg/config"
)

// Metrics tracks facade activity on a Prometheus registry.
//
// Metrics:
//   - <ns>_<sub>_entries_total: envelopes built, by level
//   - <ns>_<sub>_sink_dispatch_total: per-sink dispatch outcomes
//   - <ns>_<sub>_suppressed_notifications_total: debounced error entries
//   - <ns>_<sub>_audit_pruned_rows_total: audit rows removed by pruning
type Metrics struct {
	enabled bool

	entriesTotal      *prometheus.CounterVec
	sinkDispatchTotal *prometheus.CounterVec
	suppressedTotal   prometheus.Counter
	prunedRowsTotal   prometheus.Counter
}

// NewMetrics creates and registers facade metrics. When disabled, all
// record methods are no-ops. If registry is nil, a private registry is
// used so construction never double-registers.
func NewMetrics(cfg config.MetricsConfig, registry *prometheus.Registry) *Metrics {
	m := &Metrics{enabled: cfg.Enabled}
	if !cfg.Enabled {
		return m
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m.entriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "entries_total",
			Help:      "Total number of log envelopes built",
		},
		[]string{"level"},
	)
	m.sinkDispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "sink_dispatch_total",
			Help:      "Per-sink dispatch outcomes",
		},
		[]string{"sink", "status"},
	)
	m.suppressedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "suppressed_notifications_total",
			Help:      "Error entries flagged to suppress downstream notifications",
		},
	)
	m.prunedRowsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "audit_pruned_rows_total",
			Help:      "Audit rows removed by retention pruning",
		},
	)

	registry.MustRegister(
		m.entriesTotal,
		m.sinkDispatchTotal,
		m.suppressedTotal,
		m.prunedRowsTotal,
	)
	return m
}

// RecordEntry counts one built envelope.
func (m *Metrics) RecordEntry(level string) {
	if !m.enabled {
		return
	}
	m.entriesTotal.WithLabelValues(level).Inc()
}

// RecordDispatch counts one per-sink dispatch outcome.
func (m *Metrics) RecordDispatch(sink, status string) {
	if !m.enabled {
		return
	}
	m.sinkDispatchTotal.WithLabelValues(sink, status).Inc()
}

// RecordSuppressed counts one debounced error entry.
func (m *Metrics) RecordSuppressed() {
	if !m.enabled {
		return
	}
	m.suppressedTotal.Inc()
}

// RecordPruned counts audit rows removed by pruning.
func (m *Metrics) RecordPruned(n int64) {
	if !m.enabled || n <= 0 {
		return
	}
	m.prunedRowsTotal.Add(float64(n))
}
