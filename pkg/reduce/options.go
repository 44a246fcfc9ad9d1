package reduce

import (
	"fmt"

	"github.com/ib-77/gridsum/internal/logging"
	"github.com/ib-77/gridsum/internal/metrics"
	"github.com/ib-77/gridsum/pkg/partition"
	"github.com/ib-77/gridsum/pkg/types"
	"github.com/ib-77/gridsum/pkg/worker"
)

type options struct {
	logger        types.Logger
	metrics       types.MetricsCollector
	policy        partition.Policy
	unit          worker.Unit
	pipelineDepth int
}

// Option configures a Reducer.
type Option func(*options)

// WithLogger sets the logger. Unit diagnostics are logged at debug level and
// degraded partials at warn level.
func WithLogger(l types.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m types.MetricsCollector) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithPolicy selects the partitioning policy. The default is
// partition.PolicyRemainderFirst.
func WithPolicy(p partition.Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithUnit replaces the worker unit. The unit is always wrapped with
// worker.Safe.
func WithUnit(u worker.Unit) Option {
	return func(o *options) {
		if u != nil {
			o.unit = u
		}
	}
}

// WithPipelineDepth sets how many units BoundedPipeline may run at once. It
// is capped at the worker count. Zero falls back to the worker options in
// the context, then to 1.
func WithPipelineDepth(n int) Option {
	return func(o *options) {
		o.pipelineDepth = n
	}
}

func newOptions(opts []Option) (options, error) {
	o := options{
		logger:  logging.NewNop(),
		metrics: metrics.NewNop(),
		policy:  partition.PolicyRemainderFirst,
		unit:    worker.Default,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.pipelineDepth < 0 {
		return o, fmt.Errorf("%w: pipeline depth must not be negative, got %d", ErrInvalidArgument, o.pipelineDepth)
	}
	if !o.policy.Valid() {
		return o, fmt.Errorf("%w: unknown partition policy %v", ErrInvalidArgument, o.policy)
	}
	o.unit = worker.Safe(o.unit)
	return o, nil
}
