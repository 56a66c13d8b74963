package esxi

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records operation counts and latencies. A nil *Metrics is a no-op.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "esxi",
			Name:      "operations_total",
			Help:      "ESXi host operations by name and result.",
		}, []string{"operation", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "esxi",
			Name:      "operation_duration_seconds",
			Help:      "Wall time of ESXi host operations.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"operation"}),
	}
	if reg != nil {
		reg.MustRegister(m.operations, m.duration)
	}
	return m
}

func (m *Metrics) observe(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.operations.WithLabelValues(op, result).Inc()
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// track starts timing op. The returned func records the outcome held in *errp:
//
//	defer m.track("list_pkgs")(&err)
func (m *Manager) track(op string) func(errp *error) {
	start := time.Now()
	return func(errp *error) {
		m.metrics.observe(op, start, *errp)
	}
}
