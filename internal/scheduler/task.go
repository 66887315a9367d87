package scheduler

import "context"

// Kind classifies how a task may run relative to other tasks.
type Kind int

const (
	// Parallel tasks may run concurrently with other parallel tasks.
	Parallel Kind = iota
	// Serial tasks run alone: the scheduler starts a serial task only when
	// no parallel task is queued or running, and waits for it to finish
	// before taking any further work.
	Serial
)

func (k Kind) String() string {
	if k == Serial {
		return "serial"
	}
	return "parallel"
}

// Task is a schedulable unit of work.
//
// Begin must start execution and return without blocking. Await blocks until
// the task has finished or ctx is done; the scheduler calls it only for
// serial tasks. Every task must report its completion exactly once via
// Scheduler.Complete, from whatever goroutine it finishes on.
type Task interface {
	Kind() Kind
	Begin(ctx context.Context)
	Await(ctx context.Context) error
}
