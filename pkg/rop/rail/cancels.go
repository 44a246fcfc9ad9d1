package rail

import (
	"context"
	"errors"

	"github.com/ib-77/gridsum/pkg/rop"
)

var ErrPanicked = errors.New("stage panicked")

// CancelRemainingResults drains inputCh and reports every remaining value as
// cancelled, keeping its sequence number.
func CancelRemainingResults[In, Out any](ctx context.Context,
	inputCh <-chan rop.Result[In], outCh chan<- rop.Result[Out]) {

	if !IsProcessRemainingEnabled(ctx, true) {
		return
	}

	for in := range inputCh {
		CancelRemainingResult[In, Out](ctx, in, outCh)
	}
}

func CancelRemainingResult[In, Out any](ctx context.Context, in rop.Result[In],
	outCh chan<- rop.Result[Out]) {

	if !IsProcessRemainingEnabled(ctx, true) {
		return
	}

	if in.IsSuccess() {
		outCh <- rop.Cancel[Out](cancelCause(ctx)).WithSeq(in.Seq())
		return
	}
	outCh <- rop.CancelFrom[In, Out](in)
}

// ForwardProcessed lets a result that finished before the context ended
// through.
func ForwardProcessed[In, Out any](ctx context.Context, _ rop.Result[In], processed rop.Result[Out],
	outCh chan<- rop.Result[Out]) {

	if IsProcessRemainingEnabled(ctx, true) {
		outCh <- processed
	}
}

// CancelRemaining is the handler set that accounts for every input: each one
// comes out either processed or cancelled.
func CancelRemaining[In, Out any]() CancellationHandlers[In, Out] {
	return CancellationHandlers[In, Out]{
		OnCancel:            CancelRemainingResults[In, Out],
		OnCancelUnprocessed: CancelRemainingResult[In, Out],
		OnCancelProcessed:   ForwardProcessed[In, Out],
	}
}

func cancelCause(ctx context.Context) error {
	if err := context.Cause(ctx); err != nil {
		return err
	}
	return ErrCancelled
}
