package scheduler

import (
	"context"
	"sync"
)

// pauseGate is a resettable wait signal. The driver loop arms it with reset
// and parks on await; tryContinue releases every current and future waiter
// until the gate is armed again. Awaiting an unarmed gate returns
// immediately.
type pauseGate struct {
	mu     sync.Mutex
	paused bool
	wake   chan struct{}
}

func newPauseGate() *pauseGate {
	return &pauseGate{wake: make(chan struct{})}
}

// reset arms the gate. A fresh wake channel is installed so that a release
// consumed by a previous round cannot satisfy this one.
func (g *pauseGate) reset() {
	g.mu.Lock()
	if !g.paused {
		g.paused = true
		g.wake = make(chan struct{})
	}
	g.mu.Unlock()
}

// tryContinue releases all waiters and clears the paused state. Calling it
// while the gate is not armed is a no-op.
func (g *pauseGate) tryContinue() {
	g.mu.Lock()
	if g.paused {
		g.paused = false
		close(g.wake)
	}
	g.mu.Unlock()
}

// await blocks until the gate is released or ctx is done. It returns nil
// immediately when the gate is not armed.
func (g *pauseGate) await(ctx context.Context) error {
	g.mu.Lock()
	if !g.paused {
		g.mu.Unlock()
		return nil
	}
	wake := g.wake
	g.mu.Unlock()

	select {
	case <-wake:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *pauseGate) isPaused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paused
}
