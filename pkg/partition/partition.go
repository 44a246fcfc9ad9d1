// Package partition splits a row count into contiguous row ranges, one per
// worker.
package partition

import (
	"fmt"
	"iter"

	"github.com/ib-77/gridsum/pkg/types"
)

// Partition is the half-open row range [Start, Start+Count) owned by worker
// Index. Its end may lie past the grid; use Clamp before reading rows.
type Partition struct {
	Index int
	Start int
	Count int
}

// End returns Start+Count.
func (p Partition) End() int {
	return p.Start + p.Count
}

// Clamp returns the part of p that lies inside [0, rowCount). The result is
// empty (lo == hi) when p is entirely out of range.
func (p Partition) Clamp(rowCount int) (lo, hi int) {
	lo = min(max(p.Start, 0), rowCount)
	hi = min(max(p.End(), lo), rowCount)
	return lo, hi
}

// Active reports whether p has at least one row inside [0, rowCount).
func (p Partition) Active(rowCount int) bool {
	lo, hi := p.Clamp(rowCount)
	return hi > lo
}

func (p Partition) String() string {
	return fmt.Sprintf("#%d[%d,%d)", p.Index, p.Start, p.End())
}

// Policy selects how rows are divided between workers.
type Policy int

const (
	// PolicyRemainderFirst gives every partition rowCount%workers +
	// rowCount/workers rows. Early partitions absorb the whole remainder and
	// trailing ones may fall past the last row.
	PolicyRemainderFirst Policy = iota
	// PolicyEven gives the first rowCount%workers partitions one extra row.
	PolicyEven
)

func (p Policy) String() string {
	switch p {
	case PolicyRemainderFirst:
		return "remainder-first"
	case PolicyEven:
		return "even"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// Valid reports whether p is a known policy.
func (p Policy) Valid() bool {
	return p == PolicyRemainderFirst || p == PolicyEven
}

// ParsePolicy is the inverse of Policy.String.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "remainder-first":
		return PolicyRemainderFirst, nil
	case "even":
		return PolicyEven, nil
	default:
		return 0, fmt.Errorf("%w: unknown partition policy %q", types.ErrInvalidArgument, s)
	}
}

// Size returns the per-partition row count used by PolicyRemainderFirst.
func Size(rowCount, workerCount int) int {
	return rowCount%workerCount + rowCount/workerCount
}

// MaxWorkers is the largest worker count Split and Seq accept.
const MaxWorkers = 1 << 16

func validate(rowCount, workerCount int) error {
	if workerCount <= 0 {
		return fmt.Errorf("%w: worker count must be positive, got %d", types.ErrInvalidArgument, workerCount)
	}
	if workerCount > MaxWorkers {
		return fmt.Errorf("%w: worker count %d exceeds %d", types.ErrInvalidArgument, workerCount, MaxWorkers)
	}
	if rowCount < 0 {
		return fmt.Errorf("%w: row count must not be negative, got %d", types.ErrInvalidArgument, rowCount)
	}
	return nil
}

// Split returns exactly workerCount partitions in ascending start order,
// using PolicyRemainderFirst.
func Split(rowCount, workerCount int) ([]Partition, error) {
	return SplitWith(PolicyRemainderFirst, rowCount, workerCount)
}

// SplitEven returns exactly workerCount partitions using PolicyEven.
func SplitEven(rowCount, workerCount int) ([]Partition, error) {
	return SplitWith(PolicyEven, rowCount, workerCount)
}

// SplitWith returns exactly workerCount partitions built with policy.
func SplitWith(policy Policy, rowCount, workerCount int) ([]Partition, error) {
	seq, err := Seq(policy, rowCount, workerCount)
	if err != nil {
		return nil, err
	}

	parts := make([]Partition, 0, workerCount)
	for p := range seq {
		parts = append(parts, p)
	}
	return parts, nil
}

// Seq validates its arguments and returns a lazy generator of the same
// partitions SplitWith would build.
func Seq(policy Policy, rowCount, workerCount int) (iter.Seq[Partition], error) {
	if err := validate(rowCount, workerCount); err != nil {
		return nil, err
	}

	switch policy {
	case PolicyRemainderFirst:
		size := Size(rowCount, workerCount)
		return func(yield func(Partition) bool) {
			for i := range workerCount {
				if !yield(Partition{Index: i, Start: i * size, Count: size}) {
					return
				}
			}
		}, nil
	case PolicyEven:
		base, extra := rowCount/workerCount, rowCount%workerCount
		return func(yield func(Partition) bool) {
			start := 0
			for i := range workerCount {
				count := base
				if i < extra {
					count++
				}
				if !yield(Partition{Index: i, Start: start, Count: count}) {
					return
				}
				start += count
			}
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown partition policy %d", types.ErrInvalidArgument, int(policy))
	}
}
