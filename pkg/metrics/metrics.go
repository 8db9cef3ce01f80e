package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	OpsTotal  *prometheus.CounterVec   // op, result
	OpLatency *prometheus.HistogramVec // op
	Retries   *prometheus.CounterVec   // op
	Sweeps    *prometheus.CounterVec   // kind=activated|completed|failed
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lending_ops_total",
				Help: "Lifecycle operations by result",
			},
			[]string{"op", "result"},
		),
		OpLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lending_op_latency_seconds",
				Help:    "Latency of lifecycle operations",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
			},
			[]string{"op"},
		),
		Retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lending_store_conflict_retries_total",
				Help: "Store conflicts retried by operation",
			},
			[]string{"op"},
		),
		Sweeps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lending_sweep_requests_total",
				Help: "Requests moved by the return-date sweep",
			},
			[]string{"kind"},
		),
	}
	reg.MustRegister(m.OpsTotal, m.OpLatency, m.Retries, m.Sweeps)
	return m
}

// Observe records one finished operation. A nil receiver is a no-op.
func (m *Metrics) Observe(op string, started time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.OpsTotal.WithLabelValues(op, result).Inc()
	m.OpLatency.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

func (m *Metrics) Retry(op string) {
	if m == nil {
		return
	}
	m.Retries.WithLabelValues(op).Inc()
}

func (m *Metrics) Swept(kind string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.Sweeps.WithLabelValues(kind).Add(float64(n))
}
