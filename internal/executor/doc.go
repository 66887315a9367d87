// Package executor implements a scheduler-driven GraphQL executor with
// runtime hooks for synchronous resolution, task-based asynchronous
// resolution with loader batching, abstract-type resolution, and leaf
// serialization.
//
// # Overview
//
// The executor turns an operation into scheduler tasks:
//   - Synchronous ("physical") fields expand inline during selection set
//     expansion via Runtime.ResolveSync; they never create tasks.
//   - Asynchronous ("remote") fields become Parallel tasks. Each task
//     resolves on its own goroutine via Runtime.ResolveAsync and may park on
//     a batching.Loader until the scheduler dispatches the accumulated
//     batch.
//   - Root mutation fields become Serial tasks, giving mutations their
//     one-at-a-time execution order.
//   - Values are completed according to the GraphQL specification (lists,
//     leafs, objects, abstract types), including Non-Null null propagation.
//   - Errors accumulate as located GraphQL errors, allowing partial success.
//
// # Preparation
//
// Before scheduling, the executor:
//  1. Chooses the operation (by name, or by uniqueness when unnamed).
//  2. Coerces variables against the operation's variable definitions.
//     Errors here stop execution before any task runs.
//  3. Determines the root object type and builds a fresh batching.Dispatcher
//     and, through the RuntimeFactory, a Runtime bound to it.
//
// # Execution Model
//
// The root selection set is expanded under the operation lock: sync fields
// complete inline, async fields leave a pending marker in the response tree
// and enqueue a task. From there the scheduler drives everything:
//
//	A. Started tasks resolve concurrently. Loader-backed resolutions park,
//	   announcing batch readiness to the dispatcher.
//	B. When the scheduler stalls on running tasks with a batch pending, it
//	   dispatches; parked resolutions resume with batched results.
//	C. A completed task re-acquires the operation lock, completes its value
//	   (expanding subselections, which may enqueue further tasks), and
//	   writes the result through the response tree at its path.
//
// The run finishes when the scheduler reports completion: no queued tasks,
// no running tasks, no pending batches.
//
// # Non-Null Propagation
//
// A Non-Null violation at path p nullifies the value of the operation's
// top-level field containing p and tombstones that subtree. Tasks that
// complete under a tombstoned path are dropped; tasks that have not resolved
// yet check the tombstone before doing any work.
//
// # Cancellation
//
// Cancelling the context ends the run without waiting for parked
// resolutions. Response slots still marked pending are scrubbed to null and
// no error is recorded for the cancellation itself, so callers receive
// whatever partial data was produced.
//
// # Runtime Contract
//
// The Runtime interface abstracts host integration: ResolveSync for
// non-blocking field access, ResolveAsync for I/O-backed (optionally
// batched) resolution, ResolveType for abstract types, and
// SerializeLeafValue for scalars and enums. See runtime.go for the detailed
// method contracts.
package executor
