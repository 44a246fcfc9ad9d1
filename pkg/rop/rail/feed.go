package rail

import (
	"context"
	"errors"
	"iter"
	"slices"

	"github.com/ib-77/gridsum/pkg/rop"
)

var ErrCancelled = errors.New("operation cancelled")

type FeedHandlers[T any] struct {
	OnStartFail func(ctx context.Context)
	OnSuccess   func(ctx context.Context, input T)
	OnBreak     func(ctx context.Context, seq int, input T)
}

// FeedSeq pulls values from values one at a time, only when a consumer is
// ready to receive, and emits them as successful results tagged with their
// position. When ctx ends, the values not yet emitted are either reported as
// cancellations (process-remaining enabled, the default) or dropped.
func FeedSeq[T any](ctx context.Context, handlers FeedHandlers[T], values iter.Seq[T]) <-chan rop.Result[T] {
	in := make(chan rop.Result[T])

	go func() {
		defer close(in)

		if ctx.Err() != nil && handlers.OnStartFail != nil {
			handlers.OnStartFail(ctx)
		}

		remaining := IsProcessRemainingEnabled(ctx, true)
		broken := false
		i := 0
		for v := range values {
			seq := i
			i++

			if !broken && ctx.Err() == nil {
				select {
				case in <- rop.Success(v).WithSeq(seq):
					if handlers.OnSuccess != nil {
						handlers.OnSuccess(ctx, v)
					}
					continue
				case <-ctx.Done():
				}
			}

			broken = true
			if handlers.OnBreak != nil {
				handlers.OnBreak(ctx, seq, v)
			}
			if !remaining {
				return
			}
			in <- rop.Cancel[T](ctx.Err()).WithSeq(seq)
		}
	}()

	return in
}

func Feed[T any](ctx context.Context, handlers FeedHandlers[T], values []T) <-chan rop.Result[T] {
	return FeedSeq(ctx, handlers, slices.Values(values))
}

// Collect reads out until it is closed or ctx ends.
func Collect[T any](ctx context.Context, out <-chan T) []T {
	res := make([]T, 0)
	for {
		select {
		case v, ok := <-out:
			if !ok {
				return res
			}
			res = append(res, v)
		case <-ctx.Done():
			return res
		}
	}
}
