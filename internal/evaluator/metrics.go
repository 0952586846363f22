package evaluator

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics for evaluator sweeps.
type Metrics struct {
	evaluated   prometheus.Counter
	transitions *prometheus.CounterVec
	errors      prometheus.Counter
	duration    prometheus.Histogram
}

// NewMetrics creates sweep metrics registered on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		evaluated: factory.NewCounter(prometheus.CounterOpts{
			Name: "sla_sweep_records_evaluated_total",
			Help: "Total number of applied SLA records inspected by sweeps",
		}),
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sla_transitions_total",
			Help: "Total number of terminal status transitions applied",
		}, []string{"status"}),
		errors: factory.NewCounter(prometheus.CounterOpts{
			Name: "sla_sweep_errors_total",
			Help: "Total number of per-record evaluation failures",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sla_sweep_duration_seconds",
			Help:    "Duration of full evaluator sweeps",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) recordEvaluated() {
	if m != nil {
		m.evaluated.Inc()
	}
}

func (m *Metrics) recordTransition(status string) {
	if m != nil {
		m.transitions.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) recordError() {
	if m != nil {
		m.errors.Inc()
	}
}

func (m *Metrics) observeSweep(d time.Duration) {
	if m != nil {
		m.duration.Observe(d.Seconds())
	}
}
