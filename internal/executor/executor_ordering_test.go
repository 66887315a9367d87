package executor

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Pattern: Result comparison
func TestOrdering_SyncInlineAsyncDeferred(t *testing.T) {
	sch := mustBuildSchema(t, `
		type Query { a: String b: String c: String }
	`, "Query.b")
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.a": NewMockValueResolver("A"),
		"Query.b": NewMockValueResolver("B"),
		"Query.c": NewMockValueResolver("C"),
	})
	exec := NewExecutor(StaticRuntime(rt), sch)
	doc := mustParseQuery(t, "{ a b c }")

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)
	gotCalls := rt.GetCalls()

	wantRes := &ExecutionResult{Data: map[string]any{"a": "A", "b": "B", "c": "C"}, Errors: []GraphQLError{}}
	if diff := cmp.Diff(wantRes, gotRes); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}

	// Sync fields resolve inline during expansion; the async field follows on
	// its task goroutine.
	wantCalls := []Call{
		{Kind: "sync", ObjectType: "Query", Field: "a", Source: nil, Args: map[string]any{}},
		{Kind: "sync", ObjectType: "Query", Field: "c", Source: nil, Args: map[string]any{}},
		{Kind: "async", ObjectType: "Query", Field: "b", Source: nil, Args: map[string]any{}},
	}
	if diff := cmp.Diff(wantCalls, gotCalls); diff != "" {
		t.Fatalf("Runtime calls mismatch (-want +got):\n%s", diff)
	}
}

// Pattern: Result comparison
func TestOrdering_FragmentMergeDuplicateFields(t *testing.T) {
	sch := mustBuildSchema(t, `
		type Query { obj: Obj }
		type Obj { a: Sub }
		type Sub { x: String y: String }
	`)
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.obj": NewMockValueResolver(map[string]any{}),
		"Obj.a":     NewMockValueResolver(map[string]any{}),
		"Sub.x":     NewMockValueResolver("X"),
		"Sub.y":     NewMockValueResolver("Y"),
	})
	exec := NewExecutor(StaticRuntime(rt), sch)
	doc := mustParseQuery(t, "{ obj { a { x } a { y } } }")

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

	wantRes := &ExecutionResult{Data: map[string]any{"obj": map[string]any{"a": map[string]any{"x": "X", "y": "Y"}}}, Errors: []GraphQLError{}}
	if diff := cmp.Diff(wantRes, gotRes); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}

// Pattern: Result comparison
func TestOrdering_NestedAsyncUnderAsync(t *testing.T) {
	sch := mustBuildSchema(t, `
		type Query { user: User }
		type User { name: String team: Team }
		type Team { name: String }
	`, "Query.user", "User.team")
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.user": NewMockValueResolver(map[string]any{"name": "ada"}),
		"User.name": func(ctx context.Context, source any, args map[string]any) (any, error) {
			return source.(map[string]any)["name"], nil
		},
		"User.team": NewMockValueResolver(map[string]any{}),
		"Team.name": NewMockValueResolver("core"),
	})
	exec := NewExecutor(StaticRuntime(rt), sch)
	doc := mustParseQuery(t, "{ user { name team { name } } }")

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

	wantRes := &ExecutionResult{
		Data: map[string]any{"user": map[string]any{
			"name": "ada",
			"team": map[string]any{"name": "core"},
		}},
		Errors: []GraphQLError{},
	}
	if diff := cmp.Diff(wantRes, gotRes); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}

// Pattern: Result comparison
func TestOrdering_AliasedFields(t *testing.T) {
	sch := mustBuildSchema(t, `type Query { a: String }`, "Query.a")
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.a": NewMockValueResolver("A"),
	})
	exec := NewExecutor(StaticRuntime(rt), sch)
	doc := mustParseQuery(t, "{ first: a second: a }")

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

	wantRes := &ExecutionResult{Data: map[string]any{"first": "A", "second": "A"}, Errors: []GraphQLError{}}
	if diff := cmp.Diff(wantRes, gotRes); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}
