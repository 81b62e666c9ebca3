// Package metrics registers prometheus instruments for engine operations.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

var Module = fx.Module("metrics",
	fx.Provide(NewRegistry),
	fx.Provide(New),
)

func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

type Metrics struct {
	operations      *prometheus.CounterVec
	reconcileRuns   prometheus.Counter
	reconcileTime   prometheus.Histogram
	auditDropped    prometheus.Counter
	auditWriteFails prometheus.Counter
}

func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "supplytrack_operations_total",
			Help: "Lifecycle operations by name and outcome.",
		}, []string{"operation", "success"}),
		reconcileRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "supplytrack_reconcile_runs_total",
			Help: "Reconciliation comparisons executed.",
		}),
		reconcileTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "supplytrack_reconcile_duration_seconds",
			Help:    "Wall time of one reconciliation comparison.",
			Buckets: prometheus.DefBuckets,
		}),
		auditDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "supplytrack_audit_dropped_total",
			Help: "Audit entries dropped because the queue was full.",
		}),
		auditWriteFails: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "supplytrack_audit_write_failures_total",
			Help: "Audit entries that failed to persist.",
		}),
	}

	reg.MustRegister(m.operations, m.reconcileRuns, m.reconcileTime, m.auditDropped, m.auditWriteFails)
	return m
}

func (m *Metrics) IncOperation(operation string, success bool) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, strconv.FormatBool(success)).Inc()
}

func (m *Metrics) ObserveReconcile(d time.Duration) {
	if m == nil {
		return
	}
	m.reconcileRuns.Inc()
	m.reconcileTime.Observe(d.Seconds())
}

func (m *Metrics) IncAuditDropped() {
	if m == nil {
		return
	}
	m.auditDropped.Inc()
}

func (m *Metrics) IncAuditWriteFailure() {
	if m == nil {
		return
	}
	m.auditWriteFails.Inc()
}
