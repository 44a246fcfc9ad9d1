package types

import "errors"

// Sentinel errors shared by the grid, partition, worker and reduce packages.
//
// Check them with errors.Is; callers wrap them with context using
// fmt.Errorf("%s: %w", msg, err).
var (
	// ErrInvalidArgument is returned for a non-positive worker count, a nil
	// grid, an absent row or an unknown strategy. It is always reported before
	// any goroutine is started.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrExecutionAborted is returned when a worker unit was cancelled or
	// failed under a strategy that treats that as fatal.
	ErrExecutionAborted = errors.New("execution aborted")

	// ErrDegradedPartial marks a partition whose partial sum was replaced by
	// zero. It never fails a reduction; it only appears in reports.
	ErrDegradedPartial = errors.New("degraded partial")
)
