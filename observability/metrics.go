package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics records marketplace call activity: one counter per method and
// outcome, a latency histogram, and a dedicated counter for invariant
// violations so operators can alert on what should never happen.
type EngineMetrics struct {
	requests   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	violations prometheus.Counter
}

var (
	engineMetricsOnce sync.Once
	engineRegistry    *EngineMetrics
)

// Metrics returns the lazily-initialised metrics registry used to record
// marketplace call activity.
func Metrics() *EngineMetrics {
	engineMetricsOnce.Do(func() {
		engineRegistry = &EngineMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "escrowmarket",
				Subsystem: "engine",
				Name:      "requests_total",
				Help:      "Total marketplace calls segmented by method and outcome.",
			}, []string{"method", "outcome"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "escrowmarket",
				Subsystem: "engine",
				Name:      "request_duration_seconds",
				Help:      "Latency distribution for marketplace call handlers.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"method"}),
			violations: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "escrowmarket",
				Subsystem: "engine",
				Name:      "invariant_violations_total",
				Help:      "Count of solvency invariant violations detected by the escrow ledger.",
			}),
		}
		prometheus.MustRegister(
			engineRegistry.requests,
			engineRegistry.latency,
			engineRegistry.violations,
		)
	})
	return engineRegistry
}

// ObserveRequest records one completed call.
func (m *EngineMetrics) ObserveRequest(method, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, outcome).Inc()
	m.latency.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordInvariantViolation counts a detected solvency invariant break.
func (m *EngineMetrics) RecordInvariantViolation() {
	if m == nil {
		return
	}
	m.violations.Inc()
}
