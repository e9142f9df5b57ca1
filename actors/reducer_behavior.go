package actors

import (
	"context"
	"sync"

	"github.com/comalice/statechartx/internal/primitives"
)

// ReducerFunc computes the next state from the current state and an
// incoming event, Redux-style.
type ReducerFunc func(state any, event primitives.Event) any

// ReducerSpec is the InvokeDescriptor.Src.Params shape expected for
// InvokeReducer sources.
type ReducerSpec struct {
	Initial any
	Reduce  ReducerFunc
}

// ReducerBehavior invokes a reducer actor (InvokeReducer): synchronous,
// always-on state held in-process, updated by Send and readable via
// Snapshot at any time. It never completes or errors on its own.
type ReducerBehavior struct {
	Reduce ReducerFunc

	mu    sync.Mutex
	state any
}

func NewReducerBehavior(initial any, reduce ReducerFunc) *ReducerBehavior {
	return &ReducerBehavior{Reduce: reduce, state: initial}
}

func (b *ReducerBehavior) Start(context.Context, ParentRef) error { return nil }

func (b *ReducerBehavior) Send(event primitives.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = b.Reduce(b.state, event)
}

func (b *ReducerBehavior) Stop() {}

func (b *ReducerBehavior) Snapshot() any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
