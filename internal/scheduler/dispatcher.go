package scheduler

import "context"

// BatchDispatcher is the scheduler's view of the component that accumulates
// data-fetch requests into batches. The concrete implementation lives in
// internal/batching.
type BatchDispatcher interface {
	// Subscribe registers f to be invoked whenever a batch has accumulated
	// and is ready for dispatch. The scheduler subscribes once for the
	// lifetime of the run; f may be invoked from any goroutine.
	Subscribe(f func())

	// SetDispatchOnSchedule toggles eager dispatch. While enabled, newly
	// accumulated work is dispatched immediately instead of waiting for the
	// scheduler to trigger it. The scheduler enables this around serial
	// tasks, which would otherwise deadlock waiting for batches that no
	// concurrent task can grow.
	SetDispatchOnSchedule(enabled bool)

	// BeginDispatch starts dispatching all accumulated batches. It must not
	// block; the dispatch runs on its own goroutines and observes ctx.
	BeginDispatch(ctx context.Context)

	// Parked reports how many in-flight resolutions are currently suspended
	// awaiting a batch result. A started task that has not yet parked may
	// still add to a batch, so the scheduler dispatches only when every
	// running task is accounted for here. Parking must also fire the
	// Subscribe callback so a waiting driver re-evaluates.
	Parked() int
}

// ErrorSink translates raw task failures into structured errors and
// accumulates them into the run's result.
type ErrorSink interface {
	// CreateError translates a raw failure into a structured error. The
	// returned error may be a composite whose Unwrap() []error exposes
	// independent inner errors; the scheduler reports those individually.
	CreateError(err error) error

	// ReportError records a single structured error.
	ReportError(err error)
}

// nopDispatcher serves runs that never batch.
type nopDispatcher struct{}

func (nopDispatcher) Subscribe(func())              {}
func (nopDispatcher) SetDispatchOnSchedule(bool)    {}
func (nopDispatcher) BeginDispatch(context.Context) {}
func (nopDispatcher) Parked() int                   { return 0 }

// nopSink drops errors; used when the caller provides no sink.
type nopSink struct{}

func (nopSink) CreateError(err error) error { return err }
func (nopSink) ReportError(error)           {}
