package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's optional Prometheus collectors, instance-
// scoped (registered against a caller-supplied Registerer) rather than
// package-level globals like the teacher's internal/server/metrics.go —
// a server process has exactly one set of handlers so package globals are
// harmless there, but an engine can be constructed more than once in a
// test process, and package-level promauto vars would panic on double
// registration.
type Metrics struct {
	inferenceDuration prometheus.Histogram
	parallelism       prometheus.Gauge
	inFlight          prometheus.Gauge
	inferenceTotal    *prometheus.CounterVec
}

// NewMetrics registers the engine's collectors against reg and returns a
// Metrics ready to pass as Config.Metrics. A nil reg is invalid; callers
// that want metrics disabled should simply leave Config.Metrics nil
// instead of calling NewMetrics.
func NewMetrics(reg prometheus.Registerer, namePrefix string) *Metrics {
	m := &Metrics{
		inferenceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    namePrefix + "_inference_duration_seconds",
			Help:    "Forward-pass duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		parallelism: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: namePrefix + "_parallelism",
			Help: "Current executor admission limit.",
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: namePrefix + "_in_flight",
			Help: "Jobs currently holding an executor slot.",
		}),
		inferenceTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: namePrefix + "_inference_total",
			Help: "Total forward passes, by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.inferenceDuration, m.parallelism, m.inFlight, m.inferenceTotal)
	return m
}

func (m *Metrics) observe(d time.Duration, parallelism, inFlight int, ok bool) {
	m.inferenceDuration.Observe(d.Seconds())
	m.parallelism.Set(float64(parallelism))
	m.inFlight.Set(float64(inFlight))
	outcome := "success"
	if !ok {
		outcome = "error"
	}
	m.inferenceTotal.WithLabelValues(outcome).Inc()
}
