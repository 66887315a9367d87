// Package scheduler contains the execution core of the query engine: it
// decides in what order and with what concurrency each unit of resolution
// work runs, coordinates opportunistic batching of data fetches across
// units, and detects when an evaluation run has finished.
//
// # Model
//
// Work arrives as Tasks, classified parallel or serial. Producers push tasks
// from arbitrary goroutines at arbitrary times; the single driver loop
// (Scheduler.Run) is the only consumer. Each iteration of the loop is a
// processing round:
//
//	A. Drain
//	   - Take a burst of work under one lock acquisition. If the parallel
//	     queue is non-empty or a parallel task is still running, the round is
//	     parallel: up to buffer-capacity tasks are popped into the scratch
//	     buffer. Otherwise at most one serial task is popped.
//	   - A parallel burst is started fire-and-forget, in dequeue order. A
//	     serial task is started with the dispatcher forced into eager mode
//	     and awaited to completion before anything else is taken.
//	   - Repeat until a take yields nothing.
//
//	B. Evaluate
//	   - If the parallel queue is empty but parallel tasks are running, a
//	     batch is pending, and every running task is parked on the
//	     dispatcher, trigger an asynchronous batch dispatch and arm the
//	     pause gate: nothing else can make progress until the batch produces
//	     results. Tasks still en route to their own loads keep the dispatch
//	     held back so the batch they would join is not cut short.
//	   - If no work is queued, running, or batched anywhere, mark the run
//	     completed. This transition is terminal.
//	   - Otherwise, if no work is immediately takeable, arm the pause gate.
//	   The evaluation is skipped entirely once the context is canceled, so a
//	   canceled run can never reach the completed state.
//
//	C. Pause check
//	   - Completed runs stop. Otherwise the loop parks on the gate until a
//	     task completion, a new task, or a batch-ready signal releases it,
//	     then restarts the round from the top; a fresh take re-evaluates
//	     everything, so the reason for the wake-up does not matter.
//
// The serial classification carries a guarantee: a serial task never
// executes concurrently with any parallel task, and serial tasks never
// overlap each other. Parallel work is always preferred over serial work.
//
// # Failure containment
//
// A failure while starting or awaiting a task is translated by the
// ErrorSink into a structured error and recorded; composite failures are
// recorded per inner cause. The round then proceeds to evaluation as usual.
// The run only ends abnormally on context cancellation, which is reported
// as the ctx error and never folded into the sink.
//
// # Locking
//
// Queues and the completed/hasBatches flags share one mutex, held only for
// short non-blocking critical sections and never across a suspension point.
// The scratch buffer belongs to the driver loop alone and is cleared on
// every exit path so no task reference outlives its use.
package scheduler
