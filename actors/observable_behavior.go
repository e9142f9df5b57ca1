package actors

import (
	"context"
	"sync"

	"github.com/comalice/statechartx/internal/primitives"
)

// ObservableSource is the Go stand-in for an invoked observable: it
// delivers a value via onNext any number of times, then either errors via
// onError or completes via onComplete. Returns an unsubscribe function.
type ObservableSource func(onNext func(any), onError func(error), onComplete func()) (unsubscribe func())

// ObservableBehavior invokes an observable (InvokeObservable). Every
// emitted value is forwarded to the parent as xstate.update; completion
// sends done.invoke.<id>, and error sends error.platform.<id>.
type ObservableBehavior struct {
	InvokeID string
	Source   ObservableSource

	mu          sync.Mutex
	unsubscribe func()
	last         any
}

func NewObservableBehavior(invokeID string, source ObservableSource) *ObservableBehavior {
	return &ObservableBehavior{InvokeID: invokeID, Source: source}
}

func (b *ObservableBehavior) Start(_ context.Context, parent ParentRef) error {
	unsub := b.Source(
		func(v any) {
			b.mu.Lock()
			b.last = v
			b.mu.Unlock()
			parent.Send(primitives.NewEvent(primitives.EventUpdate, v))
		},
		func(err error) {
			parent.Send(primitives.NewEvent(primitives.ErrorPlatformEvent(b.InvokeID), err))
		},
		func() {
			b.mu.Lock()
			last := b.last
			b.mu.Unlock()
			parent.Send(primitives.NewEvent(primitives.DoneInvokeEvent(b.InvokeID), last))
		},
	)
	b.mu.Lock()
	b.unsubscribe = unsub
	b.mu.Unlock()
	return nil
}

func (b *ObservableBehavior) Send(primitives.Event) {}

func (b *ObservableBehavior) Stop() {
	b.mu.Lock()
	unsub := b.unsubscribe
	b.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

func (b *ObservableBehavior) Snapshot() any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}
