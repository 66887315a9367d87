package executor

// Error codes attached to structured errors via the extensions map.
const (
	// CodeTaskProcessing marks unexpected failures caught by the scheduler
	// while starting or awaiting a resolver task.
	CodeTaskProcessing = "TASK_PROCESSING_ERROR"
)

// GraphQLError is a located error produced during execution.
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       Path           `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e GraphQLError) Error() string {
	return e.Message
}

// ExecutionResult is the outcome of executing one operation: the response
// tree plus zero or more located errors. A canceled run carries whatever
// partial data was produced and no extra errors for the cancellation.
type ExecutionResult struct {
	Data   any            `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}
