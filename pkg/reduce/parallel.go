package reduce

import (
	"context"

	"github.com/destel/rill"

	"github.com/ib-77/gridsum/pkg/partition"
)

// fullyParallel maps every partition to its partial on an unordered pool of
// workers goroutines and adds the partials with an associative reduction.
// The first failure cancels the remaining units and ends the reduction.
// No unit is running once fullyParallel returns.
func fullyParallel(ctx context.Context, j *job) (float64, []Degraded, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	parts := rill.FromSlice(j.parts, nil)

	partials := rill.Map(parts, j.workers, func(p partition.Partition) (float64, error) {
		return j.compute(ctx, p)
	})

	total, _, err := rill.Reduce(partials, j.workers, func(a, b float64) (float64, error) {
		return a + b, nil
	})
	if err != nil {
		cancel()
		// partials is closed only after every mapping goroutine has returned
		rill.Drain(partials)
		return 0, nil, aborted(FullyParallel, "fold", NoPartition, err)
	}
	return total, nil, nil
}
