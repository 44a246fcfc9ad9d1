package rail

import (
	"context"
	"fmt"

	"github.com/ib-77/gridsum/pkg/rop"
)

// Try lifts onTryExecute into an Engine. The work runs in its own goroutine;
// a returned error becomes a failed (or, for context errors, cancelled)
// result and a panic becomes a failed result. The output keeps the input's
// sequence number.
func Try[In, Out any](onTryExecute func(ctx context.Context, r In) (Out, error),
	onCancel func(ctx context.Context, in rop.Result[In])) Engine[In, Out] {
	return func(ctx context.Context, input rop.Result[In]) <-chan rop.Result[Out] {
		return trying(ctx, input, onTryExecute, onCancel)
	}
}

func trying[In, Out any](ctx context.Context, input rop.Result[In],
	onTryExecute func(ctx context.Context, r In) (Out, error),
	onCancel func(ctx context.Context, in rop.Result[In])) <-chan rop.Result[Out] {

	ch := make(chan rop.Result[Out], 1)
	out := make(chan rop.Result[Out], 1)

	go func() {
		defer close(ch)

		if ctx.Err() == nil {
			ch <- try(ctx, input, onTryExecute).WithSeq(input.Seq())
		}
	}()

	go func() {
		defer close(out)

		select {
		case pr, ok := <-ch:
			if ok {
				out <- pr
			} else if onCancel != nil {
				onCancel(ctx, input)
			}
		case <-ctx.Done():
			if onCancel != nil {
				onCancel(ctx, input)
			}
		}
	}()

	return out
}

func try[In, Out any](ctx context.Context, input rop.Result[In],
	onTryExecute func(ctx context.Context, r In) (Out, error)) (res rop.Result[Out]) {

	if !input.IsSuccess() {
		return rop.CancelFrom[In, Out](input)
	}

	defer func() {
		if p := recover(); p != nil {
			res = rop.Fail[Out](fmt.Errorf("%w: %v", ErrPanicked, p))
		}
	}()

	out, err := onTryExecute(ctx, input.Result())
	if err != nil {
		return rop.FromError[Out](err)
	}
	return rop.Success(out)
}
