package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusCollector_RecordReduction(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "test")

	p.RecordReduction("explicit-thread", true, 0.01)
	p.RecordReduction("explicit-thread", true, 0.02)
	p.RecordReduction("fully-parallel", false, 0.5)

	assert.InDelta(t, 2, testutil.ToFloat64(p.reductions.WithLabelValues("explicit-thread", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(p.reductions.WithLabelValues("fully-parallel", "failure")), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(p.reductionLatency))
}

func TestPrometheusCollector_PartitionsAndDegraded(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "")

	p.RecordPartitions("bounded-pipeline", 3, 2)
	p.IncrementDegradedPartial("bounded-pipeline")
	p.RecordCounterTick()
	p.RecordCounterTick()

	assert.InDelta(t, 3, testutil.ToFloat64(p.partitions.WithLabelValues("bounded-pipeline", "total")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(p.partitions.WithLabelValues("bounded-pipeline", "active")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(p.degraded.WithLabelValues("bounded-pipeline")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(p.counterTicks), 0)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "gridsum_reduce_degraded_partials_total")
	assert.Contains(t, names, "gridsum_counter_ticks_total")
}

func TestNopMetrics(t *testing.T) {
	n := NewNop()
	require.NotPanics(t, func() {
		n.RecordReduction("x", true, 1)
		n.RecordPartitions("x", 1, 1)
		n.IncrementDegradedPartial("x")
		n.RecordCounterTick()
	})
}
