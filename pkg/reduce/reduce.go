package reduce

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"

	"github.com/ib-77/gridsum/pkg/grid"
	"github.com/ib-77/gridsum/pkg/partition"
	"github.com/ib-77/gridsum/pkg/types"
)

// Reducer sums a grid with one strategy.
type Reducer interface {
	Strategy() Strategy
	Reduce(ctx context.Context, g *grid.Grid, workerCount int) (Report, error)
}

// job is the state of one Reduce call. Nothing in it is written after the
// strategy starts.
type job struct {
	id      uuid.UUID
	grid    *grid.Grid
	workers int
	parts   []partition.Partition
	seq     iter.Seq[partition.Partition]
	opts    options
	log     types.Logger
}

// compute runs the configured unit for p.
func (j *job) compute(ctx context.Context, p partition.Partition) (float64, error) {
	j.log.Debug("working on partition", "run", j.id, "partition", p.Index,
		"from", p.Start, "to", p.End()-1)
	return j.opts.unit(ctx, j.grid, p)
}

type runFunc func(ctx context.Context, j *job) (float64, []Degraded, error)

type reducer struct {
	strategy Strategy
	opts     options
	run      runFunc
}

// New returns the Reducer for strategy.
func New(strategy Strategy, opts ...Option) (Reducer, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, &Error{Strategy: strategy, Op: "validate", Partition: NoPartition, Err: err}
	}

	var run runFunc
	switch strategy {
	case ExplicitThread:
		run = explicitThread
	case BoundedPipeline:
		run = boundedPipeline
	case FullyParallel:
		run = fullyParallel
	default:
		_, err := ParseStrategy(string(strategy))
		return nil, &Error{Strategy: strategy, Op: "validate", Partition: NoPartition, Err: err}
	}

	return &reducer{strategy: strategy, opts: o, run: run}, nil
}

// Reduce is a shortcut for New followed by Reducer.Reduce that returns only
// the total.
func Reduce(ctx context.Context, g *grid.Grid, workerCount int, strategy Strategy, opts ...Option) (float64, error) {
	r, err := New(strategy, opts...)
	if err != nil {
		return 0, err
	}
	report, err := r.Reduce(ctx, g, workerCount)
	if err != nil {
		return 0, err
	}
	return report.Total, nil
}

// Compare runs every strategy on the same input, one after the other, and
// returns a report per strategy in Strategies() order. Reports of failed
// strategies are left zero and their errors are joined.
func Compare(ctx context.Context, g *grid.Grid, workerCount int, opts ...Option) ([]Report, error) {
	strategies := Strategies()
	reports := make([]Report, len(strategies))

	var errs []error
	for i, s := range strategies {
		r, err := New(s, opts...)
		if err != nil {
			return nil, err
		}
		reports[i], err = r.Reduce(ctx, g, workerCount)
		if err != nil {
			if errors.Is(err, ErrInvalidArgument) {
				return nil, err
			}
			errs = append(errs, err)
		}
	}
	return reports, errors.Join(errs...)
}

func (r *reducer) Strategy() Strategy {
	return r.strategy
}

func (r *reducer) Reduce(ctx context.Context, g *grid.Grid, workerCount int) (Report, error) {
	j, err := r.prepare(g, workerCount)
	if err != nil {
		return Report{}, err
	}

	active := 0
	for _, p := range j.parts {
		if p.Active(g.Rows()) {
			active++
		}
	}
	r.opts.metrics.RecordPartitions(string(r.strategy), len(j.parts), active)
	j.log.Debug("reduction started", "run", j.id, "strategy", r.strategy,
		"rows", g.Rows(), "workers", workerCount, "partitions", len(j.parts), "active", active)

	start := time.Now()
	total, degraded, err := r.run(ctx, j)
	elapsed := time.Since(start)

	r.opts.metrics.RecordReduction(string(r.strategy), err == nil, elapsed.Seconds())
	if err != nil {
		j.log.Error("reduction failed", "run", j.id, "strategy", r.strategy, "err", err)
		return Report{}, err
	}

	for _, d := range degraded {
		r.opts.metrics.IncrementDegradedPartial(string(r.strategy))
		j.log.Warn("partial degraded to zero", "run", j.id, "strategy", r.strategy,
			"partition", d.Partition.Index, "err", d.Err)
	}
	j.log.Info("reduction finished", "run", j.id, "strategy", r.strategy,
		"total", total, "degraded", len(degraded), "elapsed", elapsed)

	return Report{
		RunID:      j.id,
		Strategy:   r.strategy,
		Workers:    workerCount,
		Rows:       g.Rows(),
		Total:      total,
		Partitions: j.parts,
		Active:     active,
		Degraded:   degraded,
		Elapsed:    elapsed,
	}, nil
}

func (r *reducer) prepare(g *grid.Grid, workerCount int) (*job, error) {
	if g == nil {
		return nil, &Error{Strategy: r.strategy, Op: "validate", Partition: NoPartition,
			Err: fmt.Errorf("%w: grid is nil", ErrInvalidArgument)}
	}

	seq, err := partition.Seq(r.opts.policy, g.Rows(), workerCount)
	if err != nil {
		return nil, &Error{Strategy: r.strategy, Op: "partition", Partition: NoPartition, Err: err}
	}

	parts := make([]partition.Partition, 0, workerCount)
	for p := range seq {
		parts = append(parts, p)
	}

	return &job{
		id:      uuid.New(),
		grid:    g,
		workers: workerCount,
		parts:   parts,
		seq:     seq,
		opts:    r.opts,
		log:     r.opts.logger,
	}, nil
}
