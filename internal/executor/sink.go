package executor

import "errors"

// operation is the scheduler's ErrorSink: raw failures caught while
// starting or awaiting tasks are translated into coded GraphQL errors and
// accumulated into the result.

// CreateError translates a raw failure. Composites keep their structure so
// the scheduler can record each inner cause individually.
func (op *operation) CreateError(err error) error {
	if agg, ok := err.(interface{ Unwrap() []error }); ok {
		inners := agg.Unwrap()
		wrapped := make([]error, len(inners))
		for i, inner := range inners {
			wrapped[i] = taskProcessingError(inner)
		}
		return errors.Join(wrapped...)
	}
	return taskProcessingError(err)
}

// ReportError records one structured error into the result.
func (op *operation) ReportError(err error) {
	var gerr GraphQLError
	switch e := err.(type) {
	case GraphQLError:
		gerr = e
	case *GraphQLError:
		gerr = *e
	default:
		gerr = taskProcessingError(err)
	}
	op.mu.Lock()
	op.errors = append(op.errors, gerr)
	op.mu.Unlock()
}

func taskProcessingError(err error) GraphQLError {
	return GraphQLError{
		Message:    err.Error(),
		Extensions: map[string]any{"code": CodeTaskProcessing},
	}
}
