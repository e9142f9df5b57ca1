package statechartx

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/comalice/statechartx/actors"
	"github.com/comalice/statechartx/internal/primitives"
	"github.com/stretchr/testify/require"
)

// manualClock is a Clock whose timers only fire when the test explicitly
// advances it, so delayed-send scenarios run deterministically instead of
// racing a real timer.
type manualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

type manualTimer struct {
	at      time.Time
	fn      func()
	fired   bool
	stopped bool
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Unix(0, 0)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	t := &manualTimer{at: c.now.Add(d), fn: f}
	c.timers = append(c.timers, t)
	c.mu.Unlock()
	return t
}

// Advance moves the clock forward by d and synchronously fires every timer
// whose deadline that crosses, in the order they were scheduled.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.fired && !t.stopped && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.fn()
	}
}

func (t *manualTimer) Stop() bool {
	already := t.fired || t.stopped
	t.stopped = true
	return !already
}

func buildFetchMachine(t *testing.T) *Machine {
	t.Helper()
	b := NewMachineBuilder("fetcher", "idle")
	b.State("idle").On("FETCH", "loading", nil)
	b.State("loading").Invoke(primitives.InvokeDescriptor{
		ID: "fetch",
		Src: primitives.InvokeSrc{
			Type: string(primitives.InvokePromise),
			Params: actors.PromiseFunc(func(ctx context.Context) (any, error) {
				return "fake data", nil
			}),
		},
		OnDone: &primitives.TransitionConfig{
			Target: []string{"success"},
			Guard: primitives.Guard(func(ctx *primitives.Context, event primitives.Event, state any) bool {
				s, _ := event.Data.(string)
				return len(s) > 0
			}),
			Actions: []primitives.ActionDescriptor{
				primitives.Assign(func(ctx *primitives.Context, event primitives.Event, meta primitives.EventMeta) map[string]any {
					s, _ := event.Data.(string)
					return map[string]any{"data": s}
				}),
			},
		},
	})
	b.State("success")

	m, err := b.BuildMachine()
	require.NoError(t, err)
	return m
}

// TestScenario_Fetch exercises §8's Fetch scenario: idle -FETCH-> loading,
// loading invokes a promise that resolves to non-empty data, landing in
// success with the resolved value assigned into context.
func TestScenario_Fetch(t *testing.T) {
	m := buildFetchMachine(t)
	it := NewInterpreter(m)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, it.Start(ctx))
	defer it.Stop()

	it.Send(primitives.NewEvent("FETCH", nil))
	require.Eventually(t, func() bool {
		return it.CurrentState().Matches(primitives.Atomic("success"))
	}, time.Second, 5*time.Millisecond)

	_, c := it.Snapshot()
	data, _ := c.Get("data")
	require.Equal(t, "fake data", data)
}

// TestScenario_Rehydration exercises §8's Rehydration scenario: a snapshot
// taken after done.invoke resolved reconstructs directly into success with
// the persisted context, without replaying FETCH or the invoke.
func TestScenario_Rehydration(t *testing.T) {
	m := buildFetchMachine(t)

	snap := MachineSnapshot{
		MachineID: "fetcher",
		StateIDs:  []string{"fetcher.success"},
		Context:   map[string]any{"data": "persisted data"},
	}

	state, err := m.Rehydrate(snap)
	require.NoError(t, err)
	require.True(t, state.Matches(primitives.Atomic("success")))

	data, _ := state.Context.Get("data")
	require.Equal(t, "persisted data", data)
}

// TestScenario_EventlessClosure exercises §8's eventless closure scenario: a
// single external event drives two parallel regions through a chain of
// always-transitions gated on each other's state, settling in one
// macrostep.
func TestScenario_EventlessClosure(t *testing.T) {
	inB3 := primitives.Guard(func(ctx *primitives.Context, event primitives.Event, state any) bool {
		s, _ := state.(*State)
		return s != nil && s.Matches(primitives.Atomic("B3"))
	})
	inA2 := primitives.Guard(func(ctx *primitives.Context, event primitives.Event, state any) bool {
		s, _ := state.(*State)
		return s != nil && s.Matches(primitives.Atomic("A2"))
	})
	inA3 := primitives.Guard(func(ctx *primitives.Context, event primitives.Event, state any) bool {
		s, _ := state.(*State)
		return s != nil && s.Matches(primitives.Atomic("A3"))
	})

	b := NewMachineBuilder("parallelClosure", "regions")
	b.State("regions").Parallel()
	b.State("regions.A").Compound("A1")
	b.State("regions.A.A1").On("E", "A2", nil)
	b.State("regions.A.A2").Always("A3", inB3)
	b.State("regions.A.A3").Always("A4", inB3)
	b.State("regions.A.A4")
	b.State("regions.B").Compound("B1")
	b.State("regions.B.B1").On("E", "B2", nil)
	b.State("regions.B.B2").Always("B3", inA2)
	b.State("regions.B.B3").Always("B4", inA3)
	b.State("regions.B.B4")

	m, err := b.BuildMachine()
	require.NoError(t, err)

	it := NewInterpreter(m)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, it.Start(ctx))
	defer it.Stop()

	it.Send(primitives.NewEvent("E", nil))
	require.Eventually(t, func() bool {
		s := it.CurrentState()
		return s.Matches(primitives.Atomic("A4")) && s.Matches(primitives.Atomic("B4"))
	}, time.Second, 5*time.Millisecond)
}

// TestScenario_DelayedSend exercises §8's delayed-send scenario: after(100)
// fires once the clock reaches its deadline, and canceling the delay by
// leaving the state first suppresses it entirely.
func TestScenario_DelayedSend(t *testing.T) {
	b := NewMachineBuilder("delay", "idle")
	b.State("idle").On("START", "doing", nil)
	b.State("doing").After("100", "idle", nil)
	m, err := b.BuildMachine()
	require.NoError(t, err)

	clock := newManualClock()
	it := NewInterpreter(m, WithClock(clock))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, it.Start(ctx))
	defer it.Stop()

	it.Send(primitives.NewEvent("START", nil))
	require.Eventually(t, func() bool {
		return it.CurrentState().Matches(primitives.Atomic("doing"))
	}, time.Second, 5*time.Millisecond)

	clock.Advance(110 * time.Millisecond)
	require.Eventually(t, func() bool {
		return it.CurrentState().Matches(primitives.Atomic("idle"))
	}, time.Second, 5*time.Millisecond)
}

// TestScenario_DelayedSend_CancelSuppressesFire shows that leaving the
// delayed state before the deadline cancels the scheduled after-send, so
// advancing the clock past the deadline afterward has no effect.
func TestScenario_DelayedSend_CancelSuppressesFire(t *testing.T) {
	b := NewMachineBuilder("delayCancel", "idle")
	b.State("idle").On("START", "doing", nil)
	b.State("doing").After("100", "timedOut", nil).On("CANCEL", "canceled", nil)
	b.State("timedOut")
	b.State("canceled")
	m, err := b.BuildMachine()
	require.NoError(t, err)

	clock := newManualClock()
	it := NewInterpreter(m, WithClock(clock))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, it.Start(ctx))
	defer it.Stop()

	it.Send(primitives.NewEvent("START", nil))
	require.Eventually(t, func() bool {
		return it.CurrentState().Matches(primitives.Atomic("doing"))
	}, time.Second, 5*time.Millisecond)

	it.Send(primitives.NewEvent("CANCEL", nil))
	require.Eventually(t, func() bool {
		return it.CurrentState().Matches(primitives.Atomic("canceled"))
	}, time.Second, 5*time.Millisecond)

	clock.Advance(110 * time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	require.True(t, it.CurrentState().Matches(primitives.Atomic("canceled")))
}

// TestScenario_InternalQueueOrdering exercises §8's internal-queue-ordering
// scenario: a raised event sits behind the eventless closure, so b's
// always-transition to c runs before the raised BAR is ever considered.
func TestScenario_InternalQueueOrdering(t *testing.T) {
	b := NewMachineBuilder("queueOrder", "a")
	b.State("a").On("FOO", "b", nil)
	b.State("b").Entry(primitives.Raise("BAR")).Always("c", nil)
	b.State("c").On("BAR", "e", nil)
	b.State("e")
	m, err := b.BuildMachine()
	require.NoError(t, err)

	it := NewInterpreter(m)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, it.Start(ctx))
	defer it.Stop()

	it.Send(primitives.NewEvent("FOO", nil))
	require.Eventually(t, func() bool {
		return it.CurrentState().Matches(primitives.Atomic("e"))
	}, time.Second, 5*time.Millisecond)
}

// TestScenario_ActorEscalate exercises §8's actor-escalate scenario: a
// child's escalate(expr) becomes error.platform.<id> on the parent, and the
// parent's invoke.onError guard routes it to a new state.
func TestScenario_ActorEscalate(t *testing.T) {
	cb := NewMachineBuilder("child", "active")
	cb.State("active").Entry(primitives.Escalate("oops"))
	childMachine, err := cb.BuildMachine()
	require.NoError(t, err)

	pb := NewMachineBuilder("parent", "one")
	pb.State("one").Invoke(primitives.InvokeDescriptor{
		ID: "child1",
		Src: primitives.InvokeSrc{
			Type:   string(primitives.InvokeMachine),
			Params: func() actors.MachineRunner { return NewInterpreter(childMachine) },
		},
		OnError: &primitives.TransitionConfig{
			Target: []string{"two"},
			Guard: primitives.Guard(func(ctx *primitives.Context, event primitives.Event, state any) bool {
				data, _ := event.Data.(string)
				return data == "oops"
			}),
		},
	})
	pb.State("two")
	parentMachine, err := pb.BuildMachine()
	require.NoError(t, err)

	it := NewInterpreter(parentMachine)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, it.Start(ctx))
	defer it.Stop()

	require.Eventually(t, func() bool {
		return it.CurrentState().Matches(primitives.Atomic("two"))
	}, time.Second, 5*time.Millisecond)
}

// TestScenario_AutoforwardOrdering exercises §8's autoforward-ordering
// scenario: an autoForward invoke sees every external event before the
// parent's own macrostep runs it, for every event in sequence.
func TestScenario_AutoforwardOrdering(t *testing.T) {
	var mu sync.Mutex
	var order []string
	record := func(who string) {
		mu.Lock()
		order = append(order, who)
		mu.Unlock()
	}

	b := NewMachineBuilder("autoforward", "active")
	b.State("active").Invoke(primitives.InvokeDescriptor{
		ID: "child2",
		Src: primitives.InvokeSrc{
			Type: string(primitives.InvokeReducer),
			Params: actors.ReducerSpec{
				Initial: 0,
				Reduce: func(state any, event primitives.Event) any {
					if event.Type == "INC" {
						record("child")
						n, _ := state.(int)
						return n + 1
					}
					return state
				},
			},
		},
		AutoForward: true,
	}).On("INC", "", nil, primitives.ExecAction{Exec: func(ctx *primitives.Context, event primitives.Event) error {
		record("parent")
		return nil
	}})

	m, err := b.BuildMachine()
	require.NoError(t, err)

	it := NewInterpreter(m)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, it.Start(ctx))
	defer it.Stop()

	it.Send(primitives.NewEvent("INC", nil))
	it.Send(primitives.NewEvent("INC", nil))
	it.Send(primitives.NewEvent("INC", nil))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 6
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"child", "parent", "child", "parent", "child", "parent"}, order)
}
