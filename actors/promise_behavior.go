package actors

import (
	"context"
	"sync"

	"github.com/comalice/statechartx/internal/primitives"
)

// PromiseFunc is the Go stand-in for an invoked promise: a one-shot async
// computation that resolves to a value or fails.
type PromiseFunc func(ctx context.Context) (any, error)

// PromiseBehavior invokes a one-shot computation (InvokePromise). It never
// accepts input via Send; it resolves exactly once, emitting
// done.invoke.<id> on success or error.platform.<id> on failure.
type PromiseBehavior struct {
	InvokeID string
	Fn       PromiseFunc

	mu       sync.Mutex
	result   any
	cancel   context.CancelFunc
	resolved bool
}

func NewPromiseBehavior(invokeID string, fn PromiseFunc) *PromiseBehavior {
	return &PromiseBehavior{InvokeID: invokeID, Fn: fn}
}

func (b *PromiseBehavior) Start(ctx context.Context, parent ParentRef) error {
	runCtx, cancel := context.WithCancel(ctx)
	b.mu.Lock()
	b.cancel = cancel
	b.mu.Unlock()

	go func() {
		data, err := b.Fn(runCtx)
		b.mu.Lock()
		if b.resolved {
			b.mu.Unlock()
			return
		}
		b.resolved = true
		b.result = data
		b.mu.Unlock()

		if err != nil {
			parent.Send(primitives.NewEvent(primitives.ErrorPlatformEvent(b.InvokeID), err))
			return
		}
		parent.Send(primitives.NewEvent(primitives.DoneInvokeEvent(b.InvokeID), data))
	}()
	return nil
}

func (b *PromiseBehavior) Send(primitives.Event) {}

func (b *PromiseBehavior) Stop() {
	b.mu.Lock()
	cancel := b.cancel
	b.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (b *PromiseBehavior) Snapshot() any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.result
}
