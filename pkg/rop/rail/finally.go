package rail

import (
	"context"

	"github.com/ib-77/gridsum/pkg/rop"
)

// FinallyHandlers turn each kind of result into a final value. A nil
// handler yields the zero Out.
type FinallyHandlers[In, Out any] struct {
	OnSuccess func(ctx context.Context, seq int, v In) Out
	OnError   func(ctx context.Context, seq int, err error) Out
	OnCancel  func(ctx context.Context, seq int, err error) Out
}

// Finally converts every result read from in, in arrival order. It keeps
// reading after ctx ends so results emitted by cancellation handlers are
// converted too; the caller must drain the returned channel.
func Finally[In, Out any](ctx context.Context, in <-chan rop.Result[In],
	handlers FinallyHandlers[In, Out]) <-chan Out {

	out := make(chan Out)
	go func() {
		defer close(out)
		for r := range in {
			out <- finalize(ctx, r, handlers)
		}
	}()
	return out
}

func finalize[In, Out any](ctx context.Context, r rop.Result[In], handlers FinallyHandlers[In, Out]) Out {
	var zero Out
	switch {
	case r.IsSuccess():
		if handlers.OnSuccess != nil {
			return handlers.OnSuccess(ctx, r.Seq(), r.Result())
		}
	case r.IsCancel():
		if handlers.OnCancel != nil {
			return handlers.OnCancel(ctx, r.Seq(), r.Err())
		}
	default:
		if handlers.OnError != nil {
			return handlers.OnError(ctx, r.Seq(), r.Err())
		}
	}
	return zero
}
