package realtime

import (
	"context"
	"testing"
	"time"

	statechartx "github.com/comalice/statechartx"
	"github.com/comalice/statechartx/internal/primitives"
	"github.com/stretchr/testify/require"
)

func toggleMachine(t *testing.T) *statechartx.Machine {
	t.Helper()
	b := statechartx.NewMachineBuilder("toggle", "off")
	b.State("off").On("FLIP", "on", nil)
	b.State("on").On("FLIP", "off", nil)

	m, err := b.BuildMachine()
	require.NoError(t, err)
	return m
}

func TestRealtimeRuntime_FlushesOnTick(t *testing.T) {
	m := toggleMachine(t)
	it := statechartx.NewInterpreter(m)
	rt := NewRuntime(it, Config{TickRate: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, rt.Start(ctx))
	defer rt.Stop()

	require.NoError(t, rt.SendEvent(primitives.NewEvent("FLIP", nil)))

	require.Eventually(t, func() bool {
		s := rt.CurrentState()
		return s != nil && s.Matches(primitives.Atomic("on"))
	}, time.Second, 5*time.Millisecond)
}

func TestRealtimeRuntime_PriorityOrdering(t *testing.T) {
	m := toggleMachine(t)
	it := statechartx.NewInterpreter(m)
	rt := NewRuntime(it, Config{TickRate: time.Hour}) // manual flush via processTick

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, rt.Start(ctx))
	defer rt.Stop()

	require.NoError(t, rt.SendEventWithPriority(primitives.NewEvent("FLIP", nil), 0))
	require.NoError(t, rt.SendEventWithPriority(primitives.NewEvent("FLIP", nil), 10))

	events := rt.collectEvents()
	sortEvents(events)
	require.Len(t, events, 2)
	require.Equal(t, 10, events[0].Priority)
	require.Equal(t, 0, events[1].Priority)
}

func TestRealtimeRuntime_QueueFull(t *testing.T) {
	m := toggleMachine(t)
	it := statechartx.NewInterpreter(m)
	rt := NewRuntime(it, Config{TickRate: time.Hour, MaxEventsPerTick: 1})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, rt.Start(ctx))
	defer rt.Stop()

	require.NoError(t, rt.SendEvent(primitives.NewEvent("FLIP", nil)))
	require.Error(t, rt.SendEvent(primitives.NewEvent("FLIP", nil)))
}

func TestRealtimeRuntime_TickNumberAdvances(t *testing.T) {
	m := toggleMachine(t)
	it := statechartx.NewInterpreter(m)
	rt := NewRuntime(it, Config{TickRate: 5 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, rt.Start(ctx))
	defer rt.Stop()

	require.Eventually(t, func() bool {
		return rt.TickNumber() > 0
	}, time.Second, 5*time.Millisecond)
}
