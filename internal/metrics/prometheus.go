package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ib-77/gridsum/pkg/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
// Collectors are registered lazily on first use.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	reductions       *prometheus.CounterVec
	reductionLatency *prometheus.HistogramVec
	partitions       *prometheus.GaugeVec
	degraded         *prometheus.CounterVec
	counterTicks     prometheus.Counter
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "gridsum" if empty)
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "gridsum"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.reductions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "reduce",
			Name:      "reductions_total",
			Help:      "Total reductions by strategy and result (success,failure).",
		}, []string{"strategy", "result"})

		p.reductionLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "reduce",
			Name:      "duration_seconds",
			Help:      "Wall time of reductions in seconds by strategy.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10), // 100us .. ~26s
		}, []string{"strategy"})

		p.partitions = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "reduce",
			Name:      "partitions",
			Help:      "Partitions used by the last reduction by strategy and kind (total,active).",
		}, []string{"strategy", "kind"})

		p.degraded = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "reduce",
			Name:      "degraded_partials_total",
			Help:      "Partials replaced by zero after a worker failure, by strategy.",
		}, []string{"strategy"})

		p.counterTicks = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "counter",
			Name:      "ticks_total",
			Help:      "Total background counter ticks.",
		})

		p.reg.MustRegister(p.reductions)
		p.reg.MustRegister(p.reductionLatency)
		p.reg.MustRegister(p.partitions)
		p.reg.MustRegister(p.degraded)
		p.reg.MustRegister(p.counterTicks)
	})
}

// RecordReduction increments the outcome counter and observes the duration.
func (p *PrometheusCollector) RecordReduction(strategy string, success bool, duration float64) {
	p.ensureRegistered()
	result := "success"
	if !success {
		result = "failure"
	}
	p.reductions.WithLabelValues(strategy, result).Inc()
	p.reductionLatency.WithLabelValues(strategy).Observe(duration)
}

// RecordPartitions sets the partition gauges.
func (p *PrometheusCollector) RecordPartitions(strategy string, total, active int) {
	p.ensureRegistered()
	p.partitions.WithLabelValues(strategy, "total").Set(float64(total))
	p.partitions.WithLabelValues(strategy, "active").Set(float64(active))
}

// IncrementDegradedPartial increments the degraded partial counter.
func (p *PrometheusCollector) IncrementDegradedPartial(strategy string) {
	p.ensureRegistered()
	p.degraded.WithLabelValues(strategy).Inc()
}

// RecordCounterTick increments the counter tick total.
func (p *PrometheusCollector) RecordCounterTick() {
	p.ensureRegistered()
	p.counterTicks.Inc()
}
