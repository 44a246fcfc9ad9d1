package rail

import (
	"context"
	"sync"

	"github.com/ib-77/gridsum/pkg/rop"
)

// Engine starts the work for one input and returns a channel that yields at
// most one result. A channel closed without a value means the work was
// abandoned because ctx ended.
type Engine[In, Out any] func(ctx context.Context, input rop.Result[In]) <-chan rop.Result[Out]

type CancellationHandlers[In, Out any] struct {
	OnCancel            func(ctx context.Context, inputCh <-chan rop.Result[In], outCh chan<- rop.Result[Out])
	OnCancelUnprocessed func(ctx context.Context, unprocessed rop.Result[In], outCh chan<- rop.Result[Out])
	OnCancelProcessed   func(ctx context.Context, in rop.Result[In], processed rop.Result[Out], outCh chan<- rop.Result[Out])
}

func (h CancellationHandlers[In, Out]) unprocessed(ctx context.Context, in rop.Result[In],
	inputCh <-chan rop.Result[In], outCh chan<- rop.Result[Out]) {
	if h.OnCancelUnprocessed != nil {
		h.OnCancelUnprocessed(ctx, in, outCh)
	}
	if h.OnCancel != nil {
		h.OnCancel(ctx, inputCh, outCh)
	}
}

// Locomotive takes inputs one by one, starts the engine for each and joins it
// before taking the next. Non-successful inputs skip the engine and are
// forwarded unchanged.
func Locomotive[In, Out any](ctx context.Context, inputCh <-chan rop.Result[In], outCh chan<- rop.Result[Out],
	engine Engine[In, Out],
	handlers CancellationHandlers[In, Out],
	onSuccess func(ctx context.Context, in rop.Result[Out]), wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			if handlers.OnCancel != nil {
				handlers.OnCancel(ctx, inputCh, outCh)
			}
			return
		case in, ok := <-inputCh:
			if !ok {
				return
			}

			if !in.IsSuccess() {
				outCh <- rop.CancelFrom[In, Out](in)
				continue
			}

			select {
			case <-ctx.Done():
				handlers.unprocessed(ctx, in, inputCh, outCh)
				return
			case pr, running := <-engine(ctx, in):
				if !running {
					handlers.unprocessed(ctx, in, inputCh, outCh)
					return
				}

				select {
				case <-ctx.Done():
					if handlers.OnCancelProcessed != nil {
						handlers.OnCancelProcessed(ctx, in, pr, outCh)
					}
					if handlers.OnCancel != nil {
						handlers.OnCancel(ctx, inputCh, outCh)
					}
					return
				case outCh <- pr:
					if onSuccess != nil {
						onSuccess(ctx, pr)
					}
				}
			}
		}
	}
}

// Run drives engine with the given number of locomotives and closes the
// returned channel once all of them have stopped.
func Run[In, Out any](ctx context.Context, inputCh <-chan rop.Result[In],
	engine Engine[In, Out],
	handlers CancellationHandlers[In, Out],
	onSuccess func(ctx context.Context, in rop.Result[Out]), lines int) <-chan rop.Result[Out] {

	if lines < 1 {
		lines = 1
	}

	out := make(chan rop.Result[Out])
	wg := &sync.WaitGroup{}

	for range lines {
		wg.Add(1)
		go Locomotive(ctx, inputCh, out, engine, handlers, onSuccess, wg)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

func RunSingle[In, Out any](ctx context.Context, inputCh <-chan rop.Result[In],
	engine Engine[In, Out],
	handlers CancellationHandlers[In, Out],
	onSuccess func(ctx context.Context, in rop.Result[Out])) <-chan rop.Result[Out] {
	return Run(ctx, inputCh, engine, handlers, onSuccess, 1)
}
