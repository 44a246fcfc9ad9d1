package rop

import (
	"time"

	"github.com/google/uuid"
)

// Result carries either a value, a failure or a cancellation through a rail.
// Seq tags the result with the position of the item that produced it so
// unordered stages can still be folded back in input order.
type Result[T any] struct {
	id        uuid.UUID
	createdAt time.Time
	result    T
	err       error
	seq       int
	isSuccess bool
	isCancel  bool
	hasResult bool
}

func Success[T any](r T) Result[T] {
	return Result[T]{
		result:    r,
		isSuccess: true,
		hasResult: true,
		createdAt: time.Now().UTC(),
		id:        uuid.New(),
	}
}

func Fail[T any](err error) Result[T] {
	return Result[T]{
		err:       err,
		createdAt: time.Now().UTC(),
		id:        uuid.New(),
	}
}

func Cancel[T any](err error) Result[T] {
	return Result[T]{
		err:       err,
		isCancel:  true,
		createdAt: time.Now().UTC(),
		id:        uuid.New(),
	}
}

// FromError builds a Cancel result for context errors and a Fail result for
// everything else.
func FromError[T any](err error) Result[T] {
	if IsCancellationError(err) {
		return Cancel[T](err)
	}
	return Fail[T](err)
}

// CancelFrom converts a non-successful result to another value type, keeping
// its identity, error and sequence number.
func CancelFrom[In, Out any](from Result[In]) Result[Out] {
	return Result[Out]{
		err:       from.err,
		isSuccess: false,
		isCancel:  from.isCancel,
		createdAt: from.createdAt,
		seq:       from.seq,
		id:        from.id,
	}
}

// WithSeq returns a copy of r tagged with seq.
func (r Result[T]) WithSeq(seq int) Result[T] {
	r.seq = seq
	return r
}

func (r Result[T]) Result() T {
	return r.result
}

func (r Result[T]) Err() error {
	return r.err
}

func (r Result[T]) Seq() int {
	return r.seq
}

func (r Result[T]) IsSuccess() bool {
	return r.isSuccess
}

// IsFailure reports a non-cancel failure.
func (r Result[T]) IsFailure() bool {
	return !r.isSuccess && !r.isCancel && r.err != nil
}

func (r Result[T]) IsCancel() bool {
	return r.isCancel
}

func (r Result[T]) HasResult() bool {
	return r.hasResult
}

func (r Result[T]) CreatedAt() time.Time {
	return r.createdAt
}

func (r Result[T]) IsEmpty() bool {
	return r.err == nil && !r.isCancel && !r.isSuccess
}

func (r Result[T]) Id() uuid.UUID {
	return r.id
}
