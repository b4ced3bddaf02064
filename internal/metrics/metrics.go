// Package metrics exposes scheduler run metrics via Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Run results, used as the "result" label.
const (
	ResultOK      = "ok"
	ResultError   = "error"
	ResultTimeout = "timeout"
)

type Metrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New registers the scheduler collectors on reg (pass
// prometheus.DefaultRegisterer for the ambient registry).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "periodical_runs_total",
			Help: "Task executions by result (ok, error, timeout).",
		}, []string{"task", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "periodical_run_duration_seconds",
			Help:    "Wall-clock duration of task executions.",
			Buckets: prometheus.DefBuckets,
		}, []string{"task"}),
	}
	reg.MustRegister(m.runs, m.duration)
	return m
}

// ObserveRun records one settled execution.
func (m *Metrics) ObserveRun(task, result string, took time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(task, result).Inc()
	m.duration.WithLabelValues(task).Observe(took.Seconds())
}
