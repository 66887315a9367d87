package executor

import (
	"context"
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"

	scheduler "github.com/hanpama/queryflow/internal/scheduler"
	schema "github.com/hanpama/queryflow/internal/schema"
)

// resolverTask resolves one field group on its own goroutine and writes the
// completed value into the response tree. It is the Task implementation the
// scheduler drives: parallel for async query fields, serial for root
// mutation fields.
type resolverTask struct {
	op         *operation
	kind       scheduler.Kind
	objectType *schema.Type
	fieldDef   *schema.Field
	fields     []*ast.Field
	source     any
	args       map[string]any
	path       Path
	done       chan struct{}
}

func newResolverTask(
	op *operation,
	kind scheduler.Kind,
	objectType *schema.Type,
	fieldDef *schema.Field,
	fields []*ast.Field,
	source any,
	args map[string]any,
	path Path,
) *resolverTask {
	return &resolverTask{
		op:         op,
		kind:       kind,
		objectType: objectType,
		fieldDef:   fieldDef,
		fields:     fields,
		source:     source,
		args:       args,
		path:       path,
		done:       make(chan struct{}),
	}
}

func (t *resolverTask) Kind() scheduler.Kind { return t.kind }

// Begin starts the resolution without blocking. Completion is reported to
// the scheduler before Await observers are released.
func (t *resolverTask) Begin(ctx context.Context) {
	go func() {
		defer close(t.done)
		defer t.op.sched.Complete(t)
		defer func() {
			if r := recover(); r != nil {
				t.op.ReportError(GraphQLError{
					Message:    fmt.Sprintf("resolver for %s.%s panicked: %v", t.objectType.Name, t.fieldDef.Name, r),
					Path:       t.path,
					Extensions: map[string]any{"code": CodeTaskProcessing},
				})
			}
		}()
		t.run(ctx)
	}()
}

func (t *resolverTask) Await(ctx context.Context) error {
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *resolverTask) run(ctx context.Context) {
	op := t.op

	op.mu.Lock()
	pruned := op.hasNullifiedPrefixLocked(t.path)
	op.mu.Unlock()
	if pruned {
		return
	}

	// Resolution happens outside the lock; this is where the task may park
	// on a loader until the scheduler dispatches the batch.
	var value any
	var err error
	if t.fieldDef.Async {
		value, err = op.runtime.ResolveAsync(ctx, AsyncResolveTask{
			ObjectType: t.objectType.Name,
			Field:      t.fieldDef.Name,
			Source:     t.source,
			Args:       t.args,
		})
	} else {
		value, err = op.runtime.ResolveSync(ctx, t.objectType.Name, t.fieldDef.Name, t.source, t.args)
	}

	op.mu.Lock()
	defer op.mu.Unlock()
	if op.hasNullifiedPrefixLocked(t.path) {
		// An ancestor was nullified while we were resolving.
		return
	}
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		op.addErrorLocked(err.Error(), t.path)
		if schema.IsNonNull(t.fieldDef.Type) {
			op.propagateNullLocked(t.path)
		} else {
			op.setValueLocked(t.path, nil)
		}
		return
	}

	completed := op.completeValueLocked(t.fieldDef.Type, t.fields, value, t.path)
	if schema.IsNonNull(t.fieldDef.Type) && isNullish(completed) {
		op.propagateNullLocked(t.path)
		return
	}
	if isNullish(completed) {
		op.setValueLocked(t.path, nil)
	} else {
		op.setValueLocked(t.path, completed)
	}
}
