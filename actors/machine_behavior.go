package actors

import (
	"context"
	"sync"

	"github.com/comalice/statechartx/internal/primitives"
)

// MachineRunner is the subset of *statechartx.Interpreter a nested-machine
// invocation needs. The root package's Interpreter satisfies it without
// this package importing the root package.
type MachineRunner interface {
	Start(ctx context.Context) error
	Stop()
	Send(event primitives.Event)
	Subscribe(fn func(value primitives.StateValue, ctx *primitives.Context)) func()
	OnDone(fn func(data any)) func()
	Snapshot() (primitives.StateValue, *primitives.Context)
}

// MachineBehavior invokes a nested machine (InvokeMachine). When Sync is
// set, every snapshot change is re-emitted to the parent as xstate.update,
// per §4.7; on the child reaching a final configuration, done.invoke.<id>
// is sent to the parent carrying the child's final done-data.
type MachineBehavior struct {
	InvokeID string
	Sync     bool
	Factory  func() MachineRunner

	mu      sync.Mutex
	runner  MachineRunner
	unsub   func()
	undone  func()
	stopped bool
}

func NewMachineBehavior(invokeID string, sync bool, factory func() MachineRunner) *MachineBehavior {
	return &MachineBehavior{InvokeID: invokeID, Sync: sync, Factory: factory}
}

func (b *MachineBehavior) Start(ctx context.Context, parent ParentRef) error {
	b.mu.Lock()
	b.runner = b.Factory()
	runner := b.runner
	b.mu.Unlock()

	if aware, ok := runner.(ParentAware); ok {
		aware.SetParent(parent)
	}

	if b.Sync {
		b.unsub = runner.Subscribe(func(value primitives.StateValue, sctx *primitives.Context) {
			parent.Send(primitives.NewEvent(primitives.EventUpdate, value))
		})
	}
	b.undone = runner.OnDone(func(data any) {
		parent.Send(primitives.NewEvent(primitives.DoneInvokeEvent(b.InvokeID), data))
	})

	return runner.Start(ctx)
}

func (b *MachineBehavior) Send(event primitives.Event) {
	b.mu.Lock()
	runner := b.runner
	b.mu.Unlock()
	if runner != nil {
		runner.Send(event)
	}
}

func (b *MachineBehavior) Stop() {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return
	}
	b.stopped = true
	runner := b.runner
	unsub, undone := b.unsub, b.undone
	b.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	if undone != nil {
		undone()
	}
	if runner != nil {
		runner.Stop()
	}
}

func (b *MachineBehavior) Snapshot() any {
	b.mu.Lock()
	runner := b.runner
	b.mu.Unlock()
	if runner == nil {
		return nil
	}
	value, ctx := runner.Snapshot()
	return struct {
		Value   primitives.StateValue
		Context *primitives.Context
	}{value, ctx}
}
