// Package batching accumulates data-fetch requests from concurrently
// running resolver tasks and dispatches them in combined batches when the
// scheduler decides no other progress is possible. Dispatcher implements the
// scheduler's BatchDispatcher contract; Loader is the request-side handle
// resolvers block on.
package batching

import (
	"context"
	"sync"
	"time"

	eventbus "github.com/hanpama/queryflow/internal/eventbus"
	events "github.com/hanpama/queryflow/internal/events"
)

// Dispatcher collects armed loader flushes and runs them on demand. One
// Dispatcher serves one evaluation run.
type Dispatcher struct {
	mu          sync.Mutex
	pending     []flushEntry
	parked      int
	onSchedule  bool
	subscribers []func()
}

type flushEntry struct {
	// ctx is the context of the Load call that armed the flush; eager
	// dispatch runs under it.
	ctx context.Context
	run func(ctx context.Context)
}

func NewDispatcher() *Dispatcher { return &Dispatcher{} }

// Subscribe registers f to be invoked whenever new batch work accumulates.
func (d *Dispatcher) Subscribe(f func()) {
	d.mu.Lock()
	d.subscribers = append(d.subscribers, f)
	d.mu.Unlock()
}

// SetDispatchOnSchedule toggles eager mode. While enabled, accumulated and
// newly arriving work is dispatched immediately: the scheduler sets this
// around serial tasks, during which no concurrent task could grow a batch.
func (d *Dispatcher) SetDispatchOnSchedule(enabled bool) {
	d.mu.Lock()
	d.onSchedule = enabled
	var entries []flushEntry
	if enabled {
		entries = d.pending
		d.pending = nil
	}
	d.mu.Unlock()
	for _, e := range entries {
		go e.run(e.ctx)
	}
}

// BeginDispatch asynchronously runs every accumulated flush under ctx.
func (d *Dispatcher) BeginDispatch(ctx context.Context) {
	d.mu.Lock()
	entries := d.pending
	d.pending = nil
	d.mu.Unlock()
	if len(entries) == 0 {
		return
	}
	eventbus.Publish(ctx, events.BatchDispatch{Groups: len(entries), At: time.Now()})
	for _, e := range entries {
		go e.run(ctx)
	}
}

// HasPending reports whether any loader flush is waiting for dispatch.
func (d *Dispatcher) HasPending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending) > 0
}

// Parked reports how many loads are currently suspended awaiting a batch
// result. The scheduler compares it against its running-task count to decide
// whether dispatching now would cut a batch short.
func (d *Dispatcher) Parked() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.parked
}

// waiterParked records one load going to sleep. Subscribers are notified so
// a driver waiting for the last sibling to park re-evaluates.
func (d *Dispatcher) waiterParked() {
	d.mu.Lock()
	d.parked++
	subs := d.snapshotSubscribersLocked()
	d.mu.Unlock()
	for _, f := range subs {
		f()
	}
}

func (d *Dispatcher) waiterResumed() {
	d.mu.Lock()
	d.parked--
	d.mu.Unlock()
}

// enqueue registers a loader flush. In eager mode it runs at once;
// otherwise it is parked and every subscriber is notified that a batch is
// ready.
func (d *Dispatcher) enqueue(ctx context.Context, run func(ctx context.Context)) {
	d.mu.Lock()
	if d.onSchedule {
		d.mu.Unlock()
		go run(ctx)
		return
	}
	d.pending = append(d.pending, flushEntry{ctx: ctx, run: run})
	subs := d.snapshotSubscribersLocked()
	d.mu.Unlock()
	for _, f := range subs {
		f()
	}
}

func (d *Dispatcher) snapshotSubscribersLocked() []func() {
	return append(make([]func(), 0, len(d.subscribers)), d.subscribers...)
}
