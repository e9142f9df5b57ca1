package actors

import (
	"context"
	"sync"

	"github.com/comalice/statechartx/internal/primitives"
)

// CallbackFunc is the Go stand-in for an invoked callback actor: given a
// send function (to deliver events to the parent) and a channel of events
// received from the parent/outside, it runs until ctx is canceled.
type CallbackFunc func(ctx context.Context, send func(primitives.Event), receive <-chan primitives.Event)

// CallbackBehavior invokes a long-running callback (InvokeCallback). Send
// forwards events into the callback's receive channel; the callback itself
// decides when (if ever) to call send to deliver events to the parent.
type CallbackBehavior struct {
	Fn CallbackFunc

	mu     sync.Mutex
	cancel context.CancelFunc
	recv   chan primitives.Event
	last   any
}

func NewCallbackBehavior(fn CallbackFunc) *CallbackBehavior {
	return &CallbackBehavior{Fn: fn}
}

func (b *CallbackBehavior) Start(ctx context.Context, parent ParentRef) error {
	runCtx, cancel := context.WithCancel(ctx)
	recv := make(chan primitives.Event, 32)

	b.mu.Lock()
	b.cancel = cancel
	b.recv = recv
	b.mu.Unlock()

	send := func(event primitives.Event) {
		b.mu.Lock()
		b.last = event
		b.mu.Unlock()
		parent.Send(event)
	}

	go b.Fn(runCtx, send, recv)
	return nil
}

func (b *CallbackBehavior) Send(event primitives.Event) {
	b.mu.Lock()
	recv := b.recv
	b.mu.Unlock()
	if recv == nil {
		return
	}
	select {
	case recv <- event:
	default:
	}
}

func (b *CallbackBehavior) Stop() {
	b.mu.Lock()
	cancel := b.cancel
	b.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (b *CallbackBehavior) Snapshot() any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}
