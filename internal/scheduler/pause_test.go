package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPauseGate_AwaitUnarmedReturnsImmediately(t *testing.T) {
	g := newPauseGate()
	require.NoError(t, g.await(context.Background()))
}

func TestPauseGate_TryContinueReleasesWaiter(t *testing.T) {
	g := newPauseGate()
	g.reset()
	require.True(t, g.isPaused())

	done := make(chan error, 1)
	go func() { done <- g.await(context.Background()) }()

	time.Sleep(time.Millisecond)
	g.tryContinue()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("waiter was not released")
	}
	require.False(t, g.isPaused())
}

func TestPauseGate_TryContinueIdempotent(t *testing.T) {
	g := newPauseGate()
	g.tryContinue()
	g.tryContinue()
	g.reset()
	g.tryContinue()
	g.tryContinue()
	require.NoError(t, g.await(context.Background()))
}

func TestPauseGate_ResetAfterContinueArmsFreshChannel(t *testing.T) {
	g := newPauseGate()
	g.reset()
	g.tryContinue()
	g.reset()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	// A release consumed by the previous cycle must not satisfy this one.
	require.ErrorIs(t, g.await(ctx), context.DeadlineExceeded)
}

func TestPauseGate_AwaitObservesCancellation(t *testing.T) {
	g := newPauseGate()
	g.reset()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- g.await(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("await ignored cancellation")
	}
}

func TestPauseGate_ResetWhilePausedKeepsChannel(t *testing.T) {
	g := newPauseGate()
	g.reset()
	ch := g.wake
	g.reset()
	require.Equal(t, ch, g.wake, "re-arming an armed gate must not strand existing waiters")
}
