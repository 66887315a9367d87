// Package funcrt is an in-process resolver runtime: plain Go functions
// registered per field back the executor's Runtime contract, with optional
// loader-backed batching for async fields.
package funcrt

import (
	"context"
	"fmt"

	batching "github.com/hanpama/queryflow/internal/batching"
	executor "github.com/hanpama/queryflow/internal/executor"
)

// ResolverFunc resolves one field value from its parent source and coerced
// arguments.
type ResolverFunc func(ctx context.Context, source any, args map[string]any) (any, error)

// TypeResolverFunc names the concrete object type for a value of an abstract
// type.
type TypeResolverFunc func(ctx context.Context, value any) (string, error)

// SerializerFunc serializes a custom scalar or enum value to a JSON-safe
// representation.
type SerializerFunc func(ctx context.Context, value any) (any, error)

// BatchKeyFunc derives the batch key for one async resolution from its
// parent source and arguments.
type BatchKeyFunc func(source any, args map[string]any) (string, error)

type fieldKey struct {
	objectType string
	field      string
}

type batchRegistration struct {
	key   BatchKeyFunc
	fetch batching.FetchFunc[string, any]
}

// Registry holds in-process resolver functions keyed by (objectType, field).
// All registration happens before serving; after that the registry is
// read-only and safe for concurrent use.
//
// Invariants mirror the runtime boundary:
//   - Missing async registrations indicate a programming error and cause
//     panic at resolution time.
//   - Sync fields without a registered resolver fall back to projecting the
//     field from a map-shaped source.
type Registry struct {
	sync    map[fieldKey]ResolverFunc
	async   map[fieldKey]ResolverFunc
	batches map[fieldKey]batchRegistration
	types   map[string]TypeResolverFunc
	leaves  map[string]SerializerFunc
}

func NewRegistry() *Registry {
	return &Registry{
		sync:    make(map[fieldKey]ResolverFunc),
		async:   make(map[fieldKey]ResolverFunc),
		batches: make(map[fieldKey]batchRegistration),
		types:   make(map[string]TypeResolverFunc),
		leaves:  make(map[string]SerializerFunc),
	}
}

// RegisterSync registers a non-blocking resolver. Sync resolvers run inline
// during selection set expansion and must not perform I/O.
func (r *Registry) RegisterSync(objectType, field string, fn ResolverFunc) *Registry {
	r.sync[fieldKey{objectType, field}] = fn
	return r
}

// RegisterAsync registers a resolver that may perform I/O. The field runs as
// a parallel task under the scheduler.
func (r *Registry) RegisterAsync(objectType, field string, fn ResolverFunc) *Registry {
	r.async[fieldKey{objectType, field}] = fn
	return r
}

// RegisterBatch registers a batched loader-backed resolver. Concurrent
// resolutions of the field are coalesced into one fetch per dispatch.
func (r *Registry) RegisterBatch(objectType, field string, key BatchKeyFunc, fetch batching.FetchFunc[string, any]) *Registry {
	r.batches[fieldKey{objectType, field}] = batchRegistration{key: key, fetch: fetch}
	return r
}

// RegisterTypeResolver registers the concrete-type resolver for an abstract
// (interface or union) type.
func (r *Registry) RegisterTypeResolver(abstractType string, fn TypeResolverFunc) *Registry {
	r.types[abstractType] = fn
	return r
}

// RegisterSerializer registers serialization for a custom scalar or enum.
func (r *Registry) RegisterSerializer(typeName string, fn SerializerFunc) *Registry {
	r.leaves[typeName] = fn
	return r
}

// IsAsync reports whether the field has an async or batch registration.
// It is the classifier to pair with schema.WithAsyncFields.
func (r *Registry) IsAsync(objectType, field string) bool {
	k := fieldKey{objectType, field}
	if _, ok := r.async[k]; ok {
		return true
	}
	_, ok := r.batches[k]
	return ok
}

// NewRuntime binds the registry to one operation's dispatcher. Each session
// gets fresh loaders so batch state never leaks across requests.
func (r *Registry) NewRuntime(d *batching.Dispatcher) executor.Runtime {
	s := &session{reg: r, loaders: make(map[fieldKey]*batching.Loader[string, any], len(r.batches))}
	for k, b := range r.batches {
		s.loaders[k] = batching.NewLoader(d, k.objectType+"."+k.field, b.fetch)
	}
	return s
}

var _ executor.RuntimeFactory = (*Registry)(nil)

// session is the per-operation runtime over a shared registry.
type session struct {
	reg     *Registry
	loaders map[fieldKey]*batching.Loader[string, any]
}

var _ executor.Runtime = (*session)(nil)

func (s *session) ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error) {
	if fn, ok := s.reg.sync[fieldKey{objectType, field}]; ok {
		return fn(ctx, source, args)
	}
	// Default projection from a map-shaped source.
	if source == nil {
		return nil, nil
	}
	if m, ok := source.(map[string]any); ok {
		return m[field], nil
	}
	return nil, fmt.Errorf("no sync resolver for %s.%s and source %T is not projectable", objectType, field, source)
}

func (s *session) ResolveAsync(ctx context.Context, task executor.AsyncResolveTask) (any, error) {
	k := fieldKey{task.ObjectType, task.Field}
	if b, ok := s.reg.batches[k]; ok {
		key, err := b.key(task.Source, task.Args)
		if err != nil {
			return nil, err
		}
		return s.loaders[k].Load(ctx, key)
	}
	if fn, ok := s.reg.async[k]; ok {
		return fn(ctx, task.Source, task.Args)
	}
	panic(fmt.Sprintf("ResolveAsync: no resolver registered for %s.%s", task.ObjectType, task.Field))
}

func (s *session) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	if fn, ok := s.reg.types[abstractType]; ok {
		return fn(ctx, value)
	}
	if m, ok := value.(map[string]any); ok {
		if tn, ok := m["__typename"].(string); ok {
			return tn, nil
		}
	}
	return "", fmt.Errorf("cannot resolve concrete type of %s value %T", abstractType, value)
}

func (s *session) SerializeLeafValue(ctx context.Context, typeName string, value any) (any, error) {
	if fn, ok := s.reg.leaves[typeName]; ok {
		return fn(ctx, value)
	}
	// Builtin scalars and enums pass through as-is.
	return value, nil
}
