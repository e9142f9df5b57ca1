package realtime

import (
	"context"
	"errors"
	"sync"
	"time"

	statechartx "github.com/comalice/statechartx"
	"github.com/comalice/statechartx/internal/primitives"
)

// RealtimeRuntime provides tick-based deterministic execution by wrapping
// an *Interpreter and replacing its default "process as soon as sent"
// dispatch with fixed-rate batch flushes. All state-transition logic is
// the interpreter's own; this type only changes when events reach it.
type RealtimeRuntime struct {
	it *statechartx.Interpreter

	tickRate time.Duration
	ticker   *time.Ticker
	tickNum  uint64

	eventBatch  []EventWithMeta
	batchMu     sync.Mutex
	sequenceNum uint64

	tickCtx    context.Context
	tickCancel context.CancelFunc
	stopped    chan struct{}
}

// Config configures the real-time runtime.
type Config struct {
	TickRate         time.Duration // Fixed tick rate (e.g., 16.67ms for 60 FPS)
	MaxEventsPerTick int           // Event queue capacity (default: 1000)
}

// NewRuntime wraps it with tick-based batching per cfg.
func NewRuntime(it *statechartx.Interpreter, cfg Config) *RealtimeRuntime {
	if cfg.MaxEventsPerTick == 0 {
		cfg.MaxEventsPerTick = 1000
	}
	if cfg.TickRate == 0 {
		cfg.TickRate = 16667 * time.Microsecond // 60 FPS
	}

	return &RealtimeRuntime{
		it:         it,
		tickRate:   cfg.TickRate,
		eventBatch: make([]EventWithMeta, 0, cfg.MaxEventsPerTick),
		stopped:    make(chan struct{}),
	}
}

// Start begins tick-based execution. It starts the wrapped interpreter
// first, so the interpreter's own macrostep-on-send dispatch is live; the
// tick loop only changes when SendEvent-queued events reach it.
func (rt *RealtimeRuntime) Start(ctx context.Context) error {
	if err := rt.it.Start(ctx); err != nil {
		return err
	}

	rt.tickCtx, rt.tickCancel = context.WithCancel(ctx)
	rt.ticker = time.NewTicker(rt.tickRate)

	go rt.tickLoop()

	return nil
}

// Stop halts the tick loop and the wrapped interpreter.
func (rt *RealtimeRuntime) Stop() {
	if rt.tickCancel != nil {
		rt.tickCancel()
	}
	if rt.ticker != nil {
		rt.ticker.Stop()
	}
	<-rt.stopped
	rt.it.Stop()
}

func (rt *RealtimeRuntime) tickLoop() {
	defer close(rt.stopped)
	for {
		select {
		case <-rt.tickCtx.Done():
			return
		case <-rt.ticker.C:
			rt.processTick()
			rt.batchMu.Lock()
			rt.tickNum++
			rt.batchMu.Unlock()
		}
	}
}

// SendEvent queues an event for the next tick (thread-safe). Unlike
// Interpreter.Send, the event is not dispatched until the tick boundary.
func (rt *RealtimeRuntime) SendEvent(event primitives.Event) error {
	return rt.SendEventWithPriority(event, 0)
}

// SendEventWithPriority queues an event with an explicit priority; higher
// values are flushed earlier within the same tick.
func (rt *RealtimeRuntime) SendEventWithPriority(event primitives.Event, priority int) error {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()

	if len(rt.eventBatch) >= cap(rt.eventBatch) {
		return errors.New("realtime: event queue full")
	}

	rt.eventBatch = append(rt.eventBatch, EventWithMeta{
		Event:       event,
		SequenceNum: rt.sequenceNum,
		Priority:    priority,
	})
	rt.sequenceNum++
	return nil
}

// TickNumber returns the current tick count.
func (rt *RealtimeRuntime) TickNumber() uint64 {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()
	return rt.tickNum
}

// Snapshot exposes the wrapped interpreter's current configuration/context.
func (rt *RealtimeRuntime) Snapshot() (primitives.StateValue, *primitives.Context) {
	return rt.it.Snapshot()
}

// CurrentState exposes the wrapped interpreter's live *State.
func (rt *RealtimeRuntime) CurrentState() *statechartx.State {
	return rt.it.CurrentState()
}
