package reduce

import (
	"context"
	"fmt"

	"github.com/ib-77/gridsum/pkg/partition"
	"github.com/ib-77/gridsum/pkg/rop/rail"
)

// boundedPipeline feeds partitions lazily onto a rail driven by depth
// locomotives. Each locomotive starts a unit and joins it before taking the
// next partition, so with the default depth of 1 units run one after the
// other. Failed or cancelled units contribute zero.
func boundedPipeline(ctx context.Context, j *job) (float64, []Degraded, error) {
	depth := j.opts.pipelineDepth
	if depth == 0 {
		depth = rail.GetWorkerMaxCount(ctx, 1)
	}
	depth = min(max(depth, 1), j.workers)

	feed := rail.FeedSeq(ctx, rail.FeedHandlers[partition.Partition]{
		OnBreak: func(_ context.Context, seq int, p partition.Partition) {
			j.log.Debug("partition skipped", "run", j.id, "partition", p.Index)
		},
	}, j.seq)

	partials := rail.Run(rail.WithProcessOptions(ctx, true), feed,
		rail.Try(j.compute, nil),
		rail.CancelRemaining[partition.Partition, float64](), nil, depth)

	degrade := func(_ context.Context, seq int, err error) outcome {
		return outcome{degraded: &Degraded{
			Partition: j.parts[seq],
			Err:       fmt.Errorf("%w: %w", ErrDegradedPartial, err),
		}}
	}
	outcomes := rail.Finally(ctx, partials, rail.FinallyHandlers[float64, outcome]{
		OnSuccess: func(_ context.Context, _ int, v float64) outcome { return outcome{partial: v} },
		OnError:   degrade,
		OnCancel:  degrade,
	})

	var total float64
	var degraded []Degraded
	for o := range outcomes {
		total += o.partial
		if o.degraded != nil {
			degraded = append(degraded, *o.degraded)
		}
	}
	return total, degraded, nil
}

// outcome is a partial sum or the reason it was replaced by zero.
type outcome struct {
	partial  float64
	degraded *Degraded
}
