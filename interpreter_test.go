package statechartx

import (
	"context"
	"testing"
	"time"

	"github.com/comalice/statechartx/internal/primitives"
	"github.com/stretchr/testify/require"
)

func toggleMachine(t *testing.T) *Machine {
	t.Helper()
	b := NewMachineBuilder("toggle", "off")
	b.State("off").On("FLIP", "on", nil)
	b.State("on").On("FLIP", "off", nil)
	m, err := b.BuildMachine()
	require.NoError(t, err)
	return m
}

func TestInterpreter_SendDrivesTransitions(t *testing.T) {
	it := NewInterpreter(toggleMachine(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, it.Start(ctx))
	defer it.Stop()

	require.True(t, it.CurrentState().Matches(primitives.Atomic("off")))

	it.Send(primitives.NewEvent("FLIP", nil))
	require.Eventually(t, func() bool {
		return it.CurrentState().Matches(primitives.Atomic("on"))
	}, time.Second, 5*time.Millisecond)
}

func TestInterpreter_OnTransition_Fires(t *testing.T) {
	it := NewInterpreter(toggleMachine(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seen := make(chan *State, 4)
	unsubscribe := it.OnTransition(func(s *State) { seen <- s })
	defer unsubscribe()

	require.NoError(t, it.Start(ctx))
	defer it.Stop()

	it.Send(primitives.NewEvent("FLIP", nil))

	select {
	case s := <-seen:
		require.True(t, s.Matches(primitives.Atomic("on")))
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for transition notification")
	}
}

func TestInterpreter_Batch_AppliesInOrder(t *testing.T) {
	it := NewInterpreter(toggleMachine(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, it.Start(ctx))
	defer it.Stop()

	it.Batch([]primitives.Event{
		primitives.NewEvent("FLIP", nil),
		primitives.NewEvent("FLIP", nil),
		primitives.NewEvent("FLIP", nil),
	})

	require.Eventually(t, func() bool {
		return it.CurrentState().Matches(primitives.Atomic("on"))
	}, time.Second, 5*time.Millisecond)
}

func TestInterpreter_Snapshot_ReflectsContext(t *testing.T) {
	b := NewMachineBuilder("ctxmachine", "idle")
	increment := primitives.ExecAction{Exec: func(ctx *primitives.Context, e primitives.Event) error {
		raw, _ := ctx.Get("count")
		n, _ := raw.(int)
		ctx.Set("count", n+1)
		return nil
	}}
	b.State("idle").On("tick", "idle", nil, increment)
	b.WithContext(map[string]any{"count": 0})

	m, err := b.BuildMachine()
	require.NoError(t, err)

	it := NewInterpreter(m)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, it.Start(ctx))
	defer it.Stop()

	it.Send(primitives.NewEvent("tick", nil))
	require.Eventually(t, func() bool {
		_, c := it.Snapshot()
		n, _ := c.Get("count")
		return n == 1
	}, time.Second, 5*time.Millisecond)
}
