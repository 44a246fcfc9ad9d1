package reduce

import (
	"fmt"

	"github.com/ib-77/gridsum/pkg/types"
)

var (
	ErrInvalidArgument  = types.ErrInvalidArgument
	ErrExecutionAborted = types.ErrExecutionAborted
	ErrDegradedPartial  = types.ErrDegradedPartial
)

// NoPartition is used in Error.Partition when the error is not tied to a
// single partition.
const NoPartition = -1

// Error describes a failed reduction step.
type Error struct {
	// Strategy that was running.
	Strategy Strategy

	// Op is the step that failed: "validate", "partition", "join" or "fold".
	Op string

	// Partition is the index of the partition at fault, or NoPartition.
	Partition int

	Err error
}

func (e *Error) Error() string {
	if e.Partition != NoPartition {
		return fmt.Sprintf("reduce %s: %s partition %d: %v", e.Strategy, e.Op, e.Partition, e.Err)
	}
	return fmt.Sprintf("reduce %s: %s: %v", e.Strategy, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func aborted(s Strategy, op string, partition int, cause error) *Error {
	return &Error{Strategy: s, Op: op, Partition: partition, Err: fmt.Errorf("%w: %w", ErrExecutionAborted, cause)}
}
