// Package metrics provides types.MetricsCollector implementations.
package metrics

import "github.com/ib-77/gridsum/pkg/types"

// NopMetrics implements a no-op metrics collector.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// RecordReduction discards the reduction metric.
func (n *NopMetrics) RecordReduction(_ /* strategy */ string, _ /* success */ bool, _ /* duration */ float64) {
	// No-op
}

// RecordPartitions discards the partition metric.
func (n *NopMetrics) RecordPartitions(_ /* strategy */ string, _ /* total */, _ /* active */ int) {
	// No-op
}

// IncrementDegradedPartial discards the degraded partial counter.
func (n *NopMetrics) IncrementDegradedPartial(_ /* strategy */ string) {
	// No-op
}

// RecordCounterTick discards the tick counter.
func (n *NopMetrics) RecordCounterTick() {
	// No-op
}
