package scheduler

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// Scheduler drives one query evaluation run. It owns the parallel and serial
// work queues, the pause gate, and the completion state, and decides per
// round whether to take work, dispatch batches, finish, or sleep.
//
// One Scheduler serves exactly one run: Run is called once, and the instance
// is discarded afterwards.
type Scheduler struct {
	mu         sync.Mutex
	parallel   workQueue
	serial     workQueue
	completed  bool
	hasBatches bool

	pause      *pauseGate
	dispatcher BatchDispatcher
	errs       ErrorSink

	// buffer is the reusable scratch space for burst dequeues. It is owned
	// exclusively by the driver loop and cleared on every exit path.
	buffer []Task
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithBufferSize overrides the scratch buffer capacity, which defaults to
// twice GOMAXPROCS.
func WithBufferSize(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.buffer = make([]Task, n)
		}
	}
}

// New creates a scheduler bound to the given dispatcher and error sink and
// subscribes to the dispatcher's batch-ready signal for the lifetime of the
// run. Both collaborators may be nil, in which case no-op implementations
// are used.
func New(dispatcher BatchDispatcher, errs ErrorSink, opts ...Option) *Scheduler {
	if dispatcher == nil {
		dispatcher = nopDispatcher{}
	}
	if errs == nil {
		errs = nopSink{}
	}
	s := &Scheduler{
		pause:      newPauseGate(),
		dispatcher: dispatcher,
		errs:       errs,
		buffer:     make([]Task, 2*runtime.GOMAXPROCS(0)),
	}
	for _, opt := range opts {
		opt(s)
	}
	dispatcher.Subscribe(s.batchReady)
	return s
}

// Enqueue registers a task for execution. It is safe to call from any
// goroutine at any time, including while the run is in progress.
func (s *Scheduler) Enqueue(t Task) {
	s.mu.Lock()
	if t.Kind() == Serial {
		s.serial.push(t)
	} else {
		s.parallel.push(t)
	}
	s.mu.Unlock()
	s.pause.tryContinue()
}

// Complete records that a previously started task has finished. Every task
// must call it exactly once.
func (s *Scheduler) Complete(t Task) {
	s.mu.Lock()
	if t.Kind() == Serial {
		s.serial.complete()
	} else {
		s.parallel.complete()
	}
	s.mu.Unlock()
	s.pause.tryContinue()
}

// batchReady is invoked by the dispatcher when a batch has accumulated. It
// is the external wake-up source for a parked driver loop.
func (s *Scheduler) batchReady() {
	s.mu.Lock()
	s.hasBatches = true
	s.mu.Unlock()
	s.pause.tryContinue()
}

// Run executes processing rounds until the run completes or ctx is
// canceled. Task failures are absorbed into the error sink; the only error
// Run itself returns is the ctx error on cancellation.
func (s *Scheduler) Run(ctx context.Context) error {
	defer s.clearBuffer()
	for {
		s.processRound(ctx)
		if err := ctx.Err(); err != nil {
			return err
		}
		ok, err := s.shouldContinue(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
}

// processRound drains available work and then evaluates whether to dispatch
// a batch, finish the run, or arm the pause gate. A failure inside the drain
// is reported to the sink and the round still proceeds to the evaluation
// step; one failing task never aborts the loop. A canceled round skips the
// evaluation entirely: the loop is about to exit, and a run abandoned
// mid-flight must never reach the completed state.
func (s *Scheduler) processRound(ctx context.Context) {
	if err := s.drain(ctx); err != nil && ctx.Err() == nil {
		s.report(err)
	}
	if ctx.Err() != nil {
		return
	}
	s.tryDispatchOrComplete(ctx)
}

// drain repeatedly takes bursts of work until none is immediately available
// or ctx is canceled. Parallel bursts are started without waiting; a serial
// burst is executed to completion before the next take.
func (s *Scheduler) drain(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.clearBuffer()
			err = fmt.Errorf("task processing panicked: %v", r)
		}
	}()
	for ctx.Err() == nil {
		n := s.tryTake()
		if n == 0 {
			return nil
		}
		if s.buffer[0].Kind() == Serial {
			serr := s.runSerial(ctx, s.buffer[0])
			s.buffer[0] = nil
			if serr != nil {
				return serr
			}
			continue
		}
		for i := 0; i < n; i++ {
			s.buffer[i].Begin(ctx)
			s.buffer[i] = nil
		}
	}
	return nil
}

// tryTake applies the dequeue policy under the lock and fills the scratch
// buffer. Parallel work is always preferred: a serial task is taken only
// when the parallel queue is empty and no parallel task is running, which
// guarantees serial tasks their exclusivity. The policy deliberately reads
// the running count of the parallel queue only.
func (s *Scheduler) tryTake() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completed {
		return 0
	}
	if !s.parallel.isEmpty() || s.parallel.hasRunning() {
		n := 0
		for n < len(s.buffer) {
			t, ok := s.parallel.pop()
			if !ok {
				break
			}
			s.buffer[n] = t
			n++
		}
		return n
	}
	if t, ok := s.serial.pop(); ok {
		s.buffer[0] = t
		return 1
	}
	return 0
}

// runSerial executes one serial task to completion. Eager batch dispatch is
// enabled for its duration: with the driver suspended on this single task,
// no other task can grow a partially filled batch, so the dispatcher must
// flush immediately. The flag is restored on every exit path.
func (s *Scheduler) runSerial(ctx context.Context, t Task) error {
	s.dispatcher.SetDispatchOnSchedule(true)
	defer s.dispatcher.SetDispatchOnSchedule(false)
	t.Begin(ctx)
	return t.Await(ctx)
}

// tryDispatchOrComplete runs once per round. When the run is stalled on
// running parallel tasks and a batch is pending, it triggers the dispatch;
// when no work exists anywhere it marks the run completed; when no work is
// immediately takeable it arms the pause gate so the loop sleeps until a
// completion, a new task, or a batch signal arrives.
//
// Dispatch additionally requires every running task to be parked on the
// dispatcher. A batch signal arrives as soon as the first sibling of a burst
// reaches its loader; dispatching then would fetch a partial batch while the
// remaining siblings, started but still en route to their own loads, each
// trigger a fetch of their own. Tasks doing unbatched work simply finish and
// drop out of the running count.
func (s *Scheduler) tryDispatchOrComplete(ctx context.Context) {
	s.mu.Lock()
	if s.completed {
		s.mu.Unlock()
		return
	}
	waitingOnRunning := s.parallel.isEmpty() && s.parallel.hasRunning()
	hasQueuedWork := !s.parallel.isEmpty() || !s.serial.isEmpty()

	if waitingOnRunning && s.hasBatches && s.dispatcher.Parked() >= s.parallel.running {
		s.hasBatches = false
		s.pause.reset()
		s.mu.Unlock()
		s.dispatcher.BeginDispatch(ctx)
		return
	}
	if !waitingOnRunning && !s.hasBatches && !hasQueuedWork {
		s.completed = true
		s.mu.Unlock()
		return
	}
	if s.parallel.isEmpty() && (s.parallel.hasRunning() || s.serial.isEmpty()) {
		// Nothing can be taken right now. Arming the gate under the lock
		// pairs with Enqueue/Complete/batchReady, which signal only after
		// mutating the state read above, so no wake-up can be lost.
		s.pause.reset()
	}
	s.mu.Unlock()
}

// shouldContinue reports whether the loop should start another round,
// parking on the pause gate when it is armed. Once the run is completed it
// always reports false regardless of the gate state.
func (s *Scheduler) shouldContinue(ctx context.Context) (bool, error) {
	s.mu.Lock()
	done := s.completed
	s.mu.Unlock()
	if done {
		return false, nil
	}
	if err := s.pause.await(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// report translates a raw drain failure and records it. Composite errors
// are recorded per inner cause so downstream consumers see each failure.
func (s *Scheduler) report(err error) {
	structured := s.errs.CreateError(err)
	if structured == nil {
		return
	}
	if agg, ok := structured.(interface{ Unwrap() []error }); ok {
		for _, inner := range agg.Unwrap() {
			s.errs.ReportError(inner)
		}
		return
	}
	s.errs.ReportError(structured)
}

func (s *Scheduler) clearBuffer() {
	for i := range s.buffer {
		s.buffer[i] = nil
	}
}

// IsCompleted reports whether the run reached its terminal state. A
// canceled run never becomes completed.
func (s *Scheduler) IsCompleted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}
