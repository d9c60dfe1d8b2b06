package harness

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds the two vectors the harness publishes for a single run: an
// operation counter broken down by kind/outcome, and a latency histogram.
// Both are registered against their own local registry rather than the
// default global one, so two concurrent Run calls (e.g. from a test) don't
// collide on duplicate registration.
type metrics struct {
	registry *prometheus.Registry
	ops      *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func newMetrics(_ string) *metrics {
	reg := prometheus.NewRegistry()
	ops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ckv_harness_operations_total",
		Help: "Operations performed by the workload harness, by structure, kind and outcome.",
	}, []string{"structure", "op", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ckv_harness_operation_latency_seconds",
		Help:    "Per-operation latency observed by the workload harness.",
		Buckets: prometheus.DefBuckets,
	}, []string{"structure", "op"})

	reg.MustRegister(ops, latency)

	return &metrics{registry: reg, ops: ops, latency: latency}
}

func (m *metrics) observe(structure, op string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "miss"
	}
	m.ops.WithLabelValues(structure, op, outcome).Inc()
}

func (m *metrics) timed(structure, op string, fn func() bool) bool {
	start := time.Now()
	ok := fn()
	m.latency.WithLabelValues(structure, op).Observe(time.Since(start).Seconds())
	m.observe(structure, op, ok)
	return ok
}

// Registry returns the run's local prometheus registry. Run does not return
// its metrics value, so only code inside this package can reach it; no HTTP
// server is started for it.
func (m *metrics) Registry() *prometheus.Registry { return m.registry }
