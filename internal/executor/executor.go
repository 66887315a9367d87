package executor

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/vektah/gqlparser/v2/ast"

	batching "github.com/hanpama/queryflow/internal/batching"
	scheduler "github.com/hanpama/queryflow/internal/scheduler"
	schema "github.com/hanpama/queryflow/internal/schema"
)

type Path []PathElement

type PathElement any

// pendingValue marks a response-tree slot whose task has not completed yet.
// Slots still pending when a run ends (cancellation) are scrubbed to null.
type pendingValue struct{}

// Executor evaluates operations against a schema using a per-operation
// scheduler for concurrency and batching.
type Executor struct {
	factory RuntimeFactory
	schema  *schema.Schema
}

func NewExecutor(factory RuntimeFactory, schema *schema.Schema) *Executor {
	return &Executor{factory: factory, schema: schema}
}

// operation holds the state of one evaluation run. The response tree,
// error list, and tombstones are shared by concurrently completing tasks
// and guarded by mu; methods suffixed Locked require it held.
type operation struct {
	runtime        Runtime
	schema         *schema.Schema
	document       *ast.QueryDocument
	variableValues map[string]any
	ctx            context.Context
	sched          *scheduler.Scheduler

	mu        sync.Mutex
	data      map[string]any
	errors    []GraphQLError
	nullified map[string]struct{}
}

// ExecuteRequest runs the named operation to completion or cancellation.
// All field failures surface through the result's error list; cancellation
// yields whatever partial data was produced, with no extra errors.
func (e *Executor) ExecuteRequest(
	ctx context.Context,
	document *ast.QueryDocument,
	operationName string,
	variableValues map[string]any,
	initialValue any,
) *ExecutionResult {
	operationDef := getOperation(document, operationName)
	if operationDef == nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: "operation not found"}}}
	}

	coercedVariableValues, err := coerceVariableValues(e.schema, operationDef, variableValues)
	if err != nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: err.Error()}}}
	}

	var rootType *schema.Type
	switch operationDef.Operation {
	case ast.Query:
		rootType = e.schema.GetQueryType()
	case ast.Mutation:
		rootType = e.schema.GetMutationType()
	case ast.Subscription:
		rootType = e.schema.GetSubscriptionType()
	default:
		return &ExecutionResult{Errors: []GraphQLError{{Message: fmt.Sprintf("unsupported operation type: %s", operationDef.Operation)}}}
	}
	if rootType == nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: fmt.Sprintf("root type not found for %s operation", operationDef.Operation)}}}
	}

	dispatcher := batching.NewDispatcher()
	op := &operation{
		runtime:        e.factory.NewRuntime(dispatcher),
		schema:         e.schema,
		document:       document,
		variableValues: coercedVariableValues,
		ctx:            ctx,
		data:           make(map[string]any),
		errors:         []GraphQLError{},
		nullified:      make(map[string]struct{}),
	}
	op.sched = scheduler.New(dispatcher, op)

	op.mu.Lock()
	if operationDef.Operation == ast.Mutation {
		// Root mutation fields run as serial tasks, one at a time and never
		// concurrently with parallel work.
		op.enqueueMutationRootsLocked(rootType, operationDef.SelectionSet)
	} else {
		for k, v := range op.executeSelectionSetLocked(rootType, operationDef.SelectionSet, initialValue, Path{}) {
			op.data[k] = v
		}
	}
	op.mu.Unlock()

	// Run returns only on completion or cancellation; cancellation is not
	// an execution error.
	_ = op.sched.Run(ctx)

	op.mu.Lock()
	defer op.mu.Unlock()
	return &ExecutionResult{Data: scrubPending(op.data), Errors: op.errors}
}

// enqueueMutationRootsLocked turns each root field group of a mutation into
// a serial task, preserving document order via the serial queue's FIFO.
func (op *operation) enqueueMutationRootsLocked(rootType *schema.Type, selectionSet ast.SelectionSet) {
	grouped := collectFields(op, rootType, selectionSet)
	for _, cf := range grouped.orderedFields() {
		fieldPath := Path{cf.ResponseName}
		field := cf.Fields[0]

		if field.Name == "__typename" {
			op.data[cf.ResponseName] = rootType.Name
			continue
		}
		fieldDef := getFieldDefinition(rootType, field.Name)
		if fieldDef == nil {
			op.addErrorLocked(fmt.Sprintf("Cannot query field '%s' on type '%s'", field.Name, rootType.Name), fieldPath)
			continue
		}
		args, ok := coerceArgumentValues(fieldDef, field.Arguments, op.variableValues, op, fieldPath)
		if !ok {
			op.data[cf.ResponseName] = nil
			continue
		}

		op.data[cf.ResponseName] = pendingValue{}
		op.sched.Enqueue(newResolverTask(op, scheduler.Serial, rootType, fieldDef, cf.Fields, nil, args, fieldPath))
	}
}

// executeSelectionSetLocked expands a selection set: sync fields resolve and
// complete inline, async fields spawn parallel tasks and leave a pending
// marker that the task later overwrites through the response tree.
func (op *operation) executeSelectionSetLocked(objectType *schema.Type, selectionSet ast.SelectionSet, objectValue any, path Path) map[string]any {
	grouped := collectFields(op, objectType, selectionSet)
	resultMap := make(map[string]any)

	for _, cf := range grouped.orderedFields() {
		fieldPath := appendPath(path, cf.ResponseName)
		fieldResult := op.executeFieldGroupLocked(objectType, objectValue, cf.Fields, fieldPath)

		if cf.Fields[0].Name == "__typename" {
			resultMap[cf.ResponseName] = fieldResult
			continue
		}
		fieldDef := getFieldDefinition(objectType, cf.Fields[0].Name)
		if fieldDef == nil {
			// Unknown field: error already recorded; omit from the result.
			continue
		}

		if schema.IsNonNull(fieldDef.Type) && isNullish(fieldResult) {
			if len(path) > 0 {
				return nil
			}
			// Root level: keep going but write null.
			resultMap[cf.ResponseName] = nil
			continue
		}

		if isNullish(fieldResult) {
			resultMap[cf.ResponseName] = nil
		} else {
			resultMap[cf.ResponseName] = fieldResult
		}
	}
	return resultMap
}

func (op *operation) executeFieldGroupLocked(objectType *schema.Type, objectValue any, fields []*ast.Field, path Path) any {
	field := fields[0]

	if field.Name == "__typename" {
		return objectType.Name
	}

	fieldDef := getFieldDefinition(objectType, field.Name)
	if fieldDef == nil {
		op.addErrorLocked(fmt.Sprintf("Cannot query field '%s' on type '%s'", field.Name, objectType.Name), path)
		return nil
	}

	args, ok := coerceArgumentValues(fieldDef, field.Arguments, op.variableValues, op, path)
	if !ok {
		// The located error is already recorded; the field never resolves.
		return nil
	}

	if !fieldDef.Async {
		value, err := op.runtime.ResolveSync(op.ctx, objectType.Name, field.Name, objectValue, args)
		if err != nil {
			op.addErrorLocked(err.Error(), path)
			return nil
		}
		return op.completeValueLocked(fieldDef.Type, fields, value, path)
	}

	op.sched.Enqueue(newResolverTask(op, scheduler.Parallel, objectType, fieldDef, fields, objectValue, args, path))
	return pendingValue{}
}

// completeValueLocked completes a resolved value per the GraphQL rules.
func (op *operation) completeValueLocked(fieldType *schema.TypeRef, fields []*ast.Field, result any, path Path) any {
	if schema.IsNonNull(fieldType) {
		if isNullish(result) {
			if !op.hasErrorAtPathLocked(path) {
				op.addErrorLocked(fmt.Sprintf("Cannot return null for non-nullable field %s", pathToString(path)), path)
			}
			return nil
		}
		completed := op.completeValueLocked(schema.Unwrap(fieldType), fields, result, path)
		if isNullish(completed) {
			// Error already recorded at the original path; propagate only.
			return nil
		}
		return completed
	}

	if isNullish(result) {
		return nil
	}

	if schema.IsList(fieldType) {
		return op.completeListValueLocked(fieldType, fields, result, path)
	}

	namedType := schema.GetNamedType(fieldType)
	typeObj := op.schema.Types[namedType]
	if typeObj == nil {
		op.addErrorLocked(fmt.Sprintf("Unknown type: %s", namedType), path)
		return nil
	}

	switch typeObj.Kind {
	case schema.TypeKindScalar, schema.TypeKindEnum:
		serialized, err := op.runtime.SerializeLeafValue(op.ctx, namedType, result)
		if err != nil {
			op.addErrorLocked(err.Error(), path)
			return nil
		}
		return serialized
	case schema.TypeKindObject:
		return op.executeSelectionSetLocked(typeObj, mergeSelectionSets(fields), result, path)
	case schema.TypeKindInterface, schema.TypeKindUnion:
		return op.completeAbstractValueLocked(namedType, fields, result, path)
	default:
		op.addErrorLocked(fmt.Sprintf("Cannot complete value of unexpected type: %s", typeObj.Kind), path)
		return nil
	}
}

func (op *operation) completeListValueLocked(listType *schema.TypeRef, fields []*ast.Field, result any, path Path) any {
	var items []any
	if direct, ok := result.([]any); ok {
		items = direct
	} else {
		rv := reflect.ValueOf(result)
		if rv.Kind() != reflect.Slice {
			op.addErrorLocked(fmt.Sprintf("Expected list value, got %T", result), path)
			return nil
		}
		items = make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items[i] = rv.Index(i).Interface()
		}
	}

	inner := schema.Unwrap(listType)
	completed := make([]any, len(items))
	for i, item := range items {
		v := op.completeValueLocked(inner, fields, item, appendPath(path, i))
		if schema.IsNonNull(inner) && isNullish(v) {
			// A null element nullifies the whole list; the inner completion
			// already recorded the error.
			return nil
		}
		completed[i] = v
	}
	return completed
}

func (op *operation) completeAbstractValueLocked(abstractTypeName string, fields []*ast.Field, result any, path Path) any {
	typeName, err := op.runtime.ResolveType(op.ctx, abstractTypeName, result)
	if err != nil {
		op.addErrorLocked(err.Error(), path)
		return nil
	}
	objectType := op.schema.Types[typeName]
	if objectType == nil || objectType.Kind != schema.TypeKindObject {
		op.addErrorLocked(fmt.Sprintf("Abstract type %s must resolve to an Object type at runtime. Got: %s", abstractTypeName, typeName), path)
		return nil
	}
	return op.executeSelectionSetLocked(objectType, mergeSelectionSets(fields), result, path)
}

// propagateNullLocked handles a Non-Null violation at path: the value of the
// operation's top-level field is set to null and the subtree is tombstoned
// so late-completing tasks under it are dropped.
func (op *operation) propagateNullLocked(path Path) {
	top := topLevelFieldPath(path)
	setValueAtPath(op.data, top, nil)
	op.markNullifiedLocked(top)
}

func (op *operation) markNullifiedLocked(p Path) {
	if key := pathToString(p); key != "" {
		op.nullified[key] = struct{}{}
	}
}

// hasNullifiedPrefixLocked reports whether any prefix of p was tombstoned.
func (op *operation) hasNullifiedPrefixLocked(p Path) bool {
	if len(op.nullified) == 0 {
		return false
	}
	cur := Path{}
	for _, elem := range p {
		cur = append(cur, elem)
		if _, ok := op.nullified[pathToString(cur)]; ok {
			return true
		}
	}
	return false
}

func (op *operation) addErrorLocked(message string, path Path) {
	op.errors = append(op.errors, GraphQLError{Message: message, Path: path})
}

func (op *operation) hasErrorAtPathLocked(path Path) bool {
	for _, err := range op.errors {
		if reflect.DeepEqual(err.Path, path) {
			return true
		}
	}
	return false
}

func (op *operation) setValueLocked(path Path, value any) {
	setValueAtPath(op.data, path, value)
}

// getOperation retrieves the operation from the document, by name or by
// uniqueness when unnamed.
func getOperation(document *ast.QueryDocument, operationName string) *ast.OperationDefinition {
	if operationName == "" && len(document.Operations) == 1 {
		for _, o := range document.Operations {
			return o
		}
	}
	for _, o := range document.Operations {
		if o.Name == operationName {
			return o
		}
	}
	return nil
}

func typeRefFromAST(t *ast.Type) *schema.TypeRef {
	if t == nil {
		return nil
	}
	if t.NonNull {
		return schema.NonNullType(typeRefFromAST(&ast.Type{NamedType: t.NamedType, Elem: t.Elem}))
	}
	if t.NamedType != "" {
		return schema.NamedType(t.NamedType)
	}
	if t.Elem != nil {
		return schema.ListType(typeRefFromAST(t.Elem))
	}
	return nil
}

func pathToString(path Path) string {
	result := ""
	for i, elem := range path {
		if i > 0 {
			result += "."
		}
		switch v := elem.(type) {
		case string:
			result += v
		case int:
			result += fmt.Sprintf("[%d]", v)
		}
	}
	return result
}

func appendPath(path Path, elem PathElement) Path {
	newPath := make(Path, len(path)+1)
	copy(newPath, path)
	newPath[len(path)] = elem
	return newPath
}

func topLevelFieldPath(p Path) Path {
	for _, elem := range p {
		if name, ok := elem.(string); ok {
			return Path{name}
		}
	}
	return Path{}
}

// setValueAtPath writes value into the response tree, creating intermediate
// containers as needed.
func setValueAtPath(responseRoot map[string]any, path Path, value any) {
	if len(path) == 0 {
		return
	}
	if len(path) == 1 {
		if key, ok := path[0].(string); ok {
			responseRoot[key] = value
		}
		return
	}
	current := any(responseRoot)
	for _, elem := range path[:len(path)-1] {
		switch e := elem.(type) {
		case string:
			m, ok := current.(map[string]any)
			if !ok {
				return
			}
			next, exists := m[e]
			if !exists {
				next = make(map[string]any)
				m[e] = next
			}
			current = next
		case int:
			slice, ok := current.([]any)
			if !ok {
				return
			}
			if e >= len(slice) {
				return
			}
			if slice[e] == nil {
				slice[e] = make(map[string]any)
			}
			current = slice[e]
		}
	}
	switch fe := path[len(path)-1].(type) {
	case string:
		if m, ok := current.(map[string]any); ok {
			m[fe] = value
		}
	case int:
		if slice, ok := current.([]any); ok && fe < len(slice) {
			slice[fe] = value
		}
	}
}

// scrubPending replaces leftover pending markers with null. Markers survive
// only when a run was canceled before its tasks completed.
func scrubPending(v any) any {
	switch x := v.(type) {
	case pendingValue:
		return nil
	case map[string]any:
		for k, vv := range x {
			x[k] = scrubPending(vv)
		}
		return x
	case []any:
		for i := range x {
			x[i] = scrubPending(x[i])
		}
		return x
	default:
		return v
	}
}

// mergeSelectionSets merges selection sets from multiple fields of one group.
func mergeSelectionSets(fields []*ast.Field) ast.SelectionSet {
	var merged ast.SelectionSet
	for _, f := range fields {
		merged = append(merged, f.SelectionSet...)
	}
	return merged
}

// isNullish returns true for nil interfaces and typed nils.
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
