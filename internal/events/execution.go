package events

import "time"

// ExecutionStart is emitted before evaluating a query operation.
type ExecutionStart struct {
	Query         string
	OperationName string
	OperationType string
}

// ExecutionFinish is emitted after an operation run ends, whether it
// completed or was canceled.
type ExecutionFinish struct {
	Query         string
	OperationName string
	OperationType string
	Canceled      bool
	ErrorCount    int
	Duration      time.Duration
}
