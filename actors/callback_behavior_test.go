package actors

import (
	"context"
	"testing"
	"time"

	"github.com/comalice/statechartx/internal/primitives"
	"github.com/stretchr/testify/require"
)

func TestCallbackBehavior_SendForwardsIntoReceive(t *testing.T) {
	got := make(chan primitives.Event, 4)
	b := NewCallbackBehavior(func(ctx context.Context, send func(primitives.Event), receive <-chan primitives.Event) {
		for {
			select {
			case <-ctx.Done():
				return
			case e := <-receive:
				got <- e
			}
		}
	})
	parent := newRecordingParent()
	require.NoError(t, b.Start(context.Background(), parent))
	defer b.Stop()

	b.Send(primitives.NewEvent("PING", nil))
	select {
	case e := <-got:
		require.Equal(t, "PING", e.Type)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for callback to observe forwarded event")
	}
}

func TestCallbackBehavior_EmittedEventsReachParentAndSnapshot(t *testing.T) {
	b := NewCallbackBehavior(func(ctx context.Context, send func(primitives.Event), receive <-chan primitives.Event) {
		send(primitives.NewEvent("PONG", 7))
	})
	parent := newRecordingParent()
	require.NoError(t, b.Start(context.Background(), parent))
	defer b.Stop()

	e := parent.expect(t, "PONG")
	require.Equal(t, 7, e.Data)
	require.Eventually(t, func() bool {
		v, ok := b.Snapshot().(primitives.Event)
		return ok && v.Type == "PONG"
	}, time.Second, 5*time.Millisecond)
}

func TestCallbackBehavior_StopCancelsContext(t *testing.T) {
	done := make(chan struct{})
	b := NewCallbackBehavior(func(ctx context.Context, send func(primitives.Event), receive <-chan primitives.Event) {
		<-ctx.Done()
		close(done)
	})
	parent := newRecordingParent()
	require.NoError(t, b.Start(context.Background(), parent))
	b.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for callback context cancellation")
	}
}
