// Package testutil provides a common adapter over the interpreter's two
// dispatch modes so the same scenario can run against both.
package testutil

import (
	"context"
	"time"

	statechartx "github.com/comalice/statechartx"
	"github.com/comalice/statechartx/internal/primitives"
	"github.com/comalice/statechartx/realtime"
)

// RuntimeAdapter provides a common interface for both event-driven and
// tick-based runtimes, so the same test suite can run on both.
type RuntimeAdapter interface {
	Start(ctx context.Context) error
	Stop()
	SendEvent(event primitives.Event) error
	Matches(stateID string) bool
	WaitForStability(timeout time.Duration) error
}

// EventDrivenAdapter wraps the default event-driven Interpreter.
type EventDrivenAdapter struct {
	it *statechartx.Interpreter
}

// NewEventDrivenAdapter creates a new adapter for the event-driven interpreter.
func NewEventDrivenAdapter(m *statechartx.Machine, opts ...statechartx.InterpreterOption) *EventDrivenAdapter {
	return &EventDrivenAdapter{it: statechartx.NewInterpreter(m, opts...)}
}

func (a *EventDrivenAdapter) Start(ctx context.Context) error {
	return a.it.Start(ctx)
}

func (a *EventDrivenAdapter) Stop() {
	a.it.Stop()
}

func (a *EventDrivenAdapter) SendEvent(event primitives.Event) error {
	a.it.Send(event)
	return nil
}

func (a *EventDrivenAdapter) Matches(stateID string) bool {
	return stateIDActive(a.it.CurrentState(), stateID)
}

// WaitForStability sleeps briefly to let the interpreter's goroutine drain
// its queue; the interpreter processes sends immediately, so this is only
// scheduling slack, not a real wait condition.
func (a *EventDrivenAdapter) WaitForStability(timeout time.Duration) error {
	time.Sleep(5 * time.Millisecond)
	return nil
}

// TickBasedAdapter wraps the tick-based RealtimeRuntime.
type TickBasedAdapter struct {
	rt       *realtime.RealtimeRuntime
	tickRate time.Duration
}

// NewTickBasedAdapter creates a new adapter for the tick-based runtime.
func NewTickBasedAdapter(m *statechartx.Machine, tickRate time.Duration) *TickBasedAdapter {
	it := statechartx.NewInterpreter(m)
	return &TickBasedAdapter{
		rt:       realtime.NewRuntime(it, realtime.Config{TickRate: tickRate}),
		tickRate: tickRate,
	}
}

func (a *TickBasedAdapter) Start(ctx context.Context) error {
	return a.rt.Start(ctx)
}

func (a *TickBasedAdapter) Stop() {
	a.rt.Stop()
}

func (a *TickBasedAdapter) SendEvent(event primitives.Event) error {
	return a.rt.SendEvent(event)
}

func (a *TickBasedAdapter) Matches(stateID string) bool {
	return stateIDActive(a.rt.CurrentState(), stateID)
}

// stateIDActive reports whether stateID is among s's currently active node
// ids (§8 active-configuration checks). A nil state (before the first
// transition lands) never matches.
func stateIDActive(s *statechartx.State, stateID string) bool {
	if s == nil {
		return false
	}
	for _, id := range s.StateIDs() {
		if id == stateID {
			return true
		}
	}
	return false
}

// WaitForStability waits for the next tick boundary to process the event.
func (a *TickBasedAdapter) WaitForStability(timeout time.Duration) error {
	time.Sleep(a.tickRate + 5*time.Millisecond)
	return nil
}
