package reduce

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ib-77/gridsum/pkg/rop"
)

// explicitThread runs one task per partition in a task group capped at the
// worker count. The first failure cancels the others. Partials are read only
// after the group's barrier and folded in partition order.
func explicitThread(ctx context.Context, j *job) (float64, []Degraded, error) {
	results := make([]rop.Result[float64], len(j.parts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.workers)

	for i, p := range j.parts {
		g.Go(func() error {
			v, err := j.compute(gctx, p)
			if err != nil {
				results[i] = rop.FromError[float64](err).WithSeq(i)
				return err
			}
			results[i] = rop.Success(v).WithSeq(i)
			return nil
		})
	}

	// barrier: every task has returned before any partial is read
	_ = g.Wait()

	if cause := firstFailure(results); cause != nil {
		return 0, nil, aborted(ExplicitThread, "join", cause.Seq(), cause.Err())
	}
	if err := ctx.Err(); err != nil {
		return 0, nil, aborted(ExplicitThread, "join", NoPartition, err)
	}

	var total float64
	for _, r := range results {
		total += r.Result()
	}
	return total, nil, nil
}

// firstFailure returns the lowest-index failed result, preferring real
// failures over the cancellations they caused.
func firstFailure(results []rop.Result[float64]) *rop.Result[float64] {
	var cancelled *rop.Result[float64]
	for i := range results {
		switch {
		case results[i].IsFailure():
			return &results[i]
		case results[i].IsCancel() && cancelled == nil:
			cancelled = &results[i]
		}
	}
	return cancelled
}
