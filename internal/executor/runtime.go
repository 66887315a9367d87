package executor

import (
	"context"

	batching "github.com/hanpama/queryflow/internal/batching"
)

// Runtime defines the host integration surface for field resolution,
// abstract type resolution, and leaf-value serialization.
//
// Field classification
//   - Fields marked Async in the schema are resolved via ResolveAsync on a
//     scheduler-managed task goroutine. ResolveAsync may block, typically on
//     a batching.Loader: the loader announces batch readiness to the
//     dispatcher, the scheduler dispatches when no other progress is
//     possible, and the blocked call resumes with the batched result.
//   - All other fields are resolved via ResolveSync, inline during selection
//     set expansion. ResolveSync must not perform blocking I/O; it is meant
//     for projection-style fields backed directly by the source value.
//
// ResolveType and SerializeLeafValue are called during value completion
// while the executor holds its response-tree lock, so they must be fast and
// non-blocking as well.
//
// Implementations must be safe for concurrent calls: parallel tasks resolve
// fields concurrently within one operation, and one Runtime instance serves
// exactly one operation (see RuntimeFactory).
//
// Errors returned from any method become located errors in the result. If
// the field's return type is Non-Null the executor propagates the null to
// the operation's top-level field, per GraphQL null propagation.
type Runtime interface {
	// ResolveSync resolves a synchronous field value immediately.
	// Return (nil, nil) to produce a null for nullable fields.
	ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error)

	// ResolveAsync resolves one async field task. It runs on a dedicated
	// goroutine and may block until a batch containing its fetch has been
	// dispatched. It must respect ctx.
	ResolveAsync(ctx context.Context, task AsyncResolveTask) (any, error)

	// ResolveType determines the concrete object type name for a value of
	// an abstract type (interface or union).
	ResolveType(ctx context.Context, abstractType string, value any) (string, error)

	// SerializeLeafValue serializes a scalar or enum value to a JSON-safe Go
	// value. For enums, return the symbolic name as string.
	SerializeLeafValue(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error)
}

// RuntimeFactory creates one Runtime per operation, bound to that
// operation's batch dispatcher so loader state never leaks across requests.
type RuntimeFactory interface {
	NewRuntime(d *batching.Dispatcher) Runtime
}

// RuntimeFactoryFunc adapts a function to the RuntimeFactory interface.
type RuntimeFactoryFunc func(d *batching.Dispatcher) Runtime

func (f RuntimeFactoryFunc) NewRuntime(d *batching.Dispatcher) Runtime { return f(d) }

// StaticRuntime wraps a dispatcher-independent runtime into a factory.
func StaticRuntime(rt Runtime) RuntimeFactory {
	return RuntimeFactoryFunc(func(*batching.Dispatcher) Runtime { return rt })
}

// AsyncResolveTask describes one async field resolution.
type AsyncResolveTask struct {
	// ObjectType is the parent object type name for the field.
	ObjectType string
	// Field is the field name to resolve.
	Field string
	// Source is the parent object value (nil for root fields).
	Source any
	// Args are the field arguments, coerced to Go values per the schema.
	Args map[string]any
}
