// Package worker computes the partial sum of one partition.
package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/ib-77/gridsum/pkg/grid"
	"github.com/ib-77/gridsum/pkg/partition"
)

var ErrPanicked = errors.New("worker panicked")

// Unit computes the partial sum of p over g. Units for different partitions
// run concurrently and must not share mutable state.
type Unit func(ctx context.Context, g *grid.Grid, p partition.Partition) (float64, error)

// Compute sums every element of the rows of g that fall inside p. Rows past
// the end of g are ignored.
func Compute(g *grid.Grid, p partition.Partition) float64 {
	lo, hi := p.Clamp(g.Rows())

	var res float64
	for i := lo; i < hi; i++ {
		for _, e := range g.Row(i) {
			res += e
		}
	}
	return res
}

// Default is the Unit used by every strategy unless overridden.
func Default(ctx context.Context, g *grid.Grid, p partition.Partition) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return Compute(g, p), nil
}

// Safe wraps u so that a panic inside it is returned as an error wrapping
// ErrPanicked.
func Safe(u Unit) Unit {
	return func(ctx context.Context, g *grid.Grid, p partition.Partition) (res float64, err error) {
		defer func() {
			if r := recover(); r != nil {
				res, err = 0, fmt.Errorf("%w: partition %v: %v", ErrPanicked, p, r)
			}
		}()
		return u(ctx, g, p)
	}
}
