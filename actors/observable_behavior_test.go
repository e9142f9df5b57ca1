package actors

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/comalice/statechartx/internal/primitives"
	"github.com/stretchr/testify/require"
)

func TestObservableBehavior_EmitsUpdatesThenDone(t *testing.T) {
	var onNext func(any)
	var onComplete func()
	b := NewObservableBehavior("o1", func(next func(any), errFn func(error), complete func()) func() {
		onNext = next
		onComplete = complete
		return func() {}
	})
	parent := newRecordingParent()
	require.NoError(t, b.Start(context.Background(), parent))

	onNext(1)
	e := parent.expect(t, primitives.EventUpdate)
	require.Equal(t, 1, e.Data)
	require.Equal(t, 1, b.Snapshot())

	onComplete()
	done := parent.expect(t, primitives.DoneInvokeEvent("o1"))
	require.Equal(t, 1, done.Data)
}

func TestObservableBehavior_ErrorSendsErrorPlatform(t *testing.T) {
	var onError func(error)
	b := NewObservableBehavior("o1", func(next func(any), errFn func(error), complete func()) func() {
		onError = errFn
		return func() {}
	})
	parent := newRecordingParent()
	require.NoError(t, b.Start(context.Background(), parent))

	failure := errors.New("stream broke")
	onError(failure)
	e := parent.expect(t, primitives.ErrorPlatformEvent("o1"))
	require.Equal(t, failure, e.Data)
}

func TestObservableBehavior_StopUnsubscribes(t *testing.T) {
	unsubscribed := false
	b := NewObservableBehavior("o1", func(next func(any), errFn func(error), complete func()) func() {
		return func() { unsubscribed = true }
	})
	parent := newRecordingParent()
	require.NoError(t, b.Start(context.Background(), parent))
	b.Stop()
	require.Eventually(t, func() bool { return unsubscribed }, time.Second, 5*time.Millisecond)
}
