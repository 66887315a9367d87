package executor

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Pattern: Result comparison
func TestCompleteValue_ListOfObjects(t *testing.T) {
	sch := mustBuildSchema(t, `
		type Query { users: [User!] }
		type User { name: String }
	`, "Query.users")
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.users": NewMockValueResolver([]any{
			map[string]any{"name": "ada"},
			map[string]any{"name": "grace"},
		}),
		"User.name": func(ctx context.Context, source any, args map[string]any) (any, error) {
			return source.(map[string]any)["name"], nil
		},
	})
	exec := NewExecutor(StaticRuntime(rt), sch)
	doc := mustParseQuery(t, "{ users { name } }")

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

	wantRes := &ExecutionResult{
		Data: map[string]any{"users": []any{
			map[string]any{"name": "ada"},
			map[string]any{"name": "grace"},
		}},
		Errors: []GraphQLError{},
	}
	if diff := cmp.Diff(wantRes, gotRes); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}

// Pattern: Result comparison
func TestCompleteValue_NullElementNullifiesNonNullList(t *testing.T) {
	sch := mustBuildSchema(t, `
		type Query { names: [String!] }
	`, "Query.names")
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.names": NewMockValueResolver([]any{"a", nil, "c"}),
	})
	exec := NewExecutor(StaticRuntime(rt), sch)
	doc := mustParseQuery(t, "{ names }")

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

	wantData := map[string]any{"names": nil}
	if diff := cmp.Diff(wantData, gotRes.Data); diff != "" {
		t.Fatalf("Data mismatch (-want +got):\n%s", diff)
	}
	if !hasErrorContaining(gotRes.Errors, "non-nullable") {
		t.Fatalf("expected non-null violation error, got %v", errorMessages(gotRes.Errors))
	}
}

// Pattern: Result comparison
func TestCompleteValue_TypedSliceCoercedToList(t *testing.T) {
	sch := mustBuildSchema(t, `type Query { nums: [Int] }`, "Query.nums")
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.nums": NewMockValueResolver([]int{1, 2, 3}),
	})
	exec := NewExecutor(StaticRuntime(rt), sch)
	doc := mustParseQuery(t, "{ nums }")

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

	wantData := map[string]any{"nums": []any{1, 2, 3}}
	if diff := cmp.Diff(wantData, gotRes.Data); diff != "" {
		t.Fatalf("Data mismatch (-want +got):\n%s", diff)
	}
}

// Pattern: Result comparison
func TestCompleteValue_AbstractTypeResolvesViaRuntime(t *testing.T) {
	sch := mustBuildSchema(t, `
		type Query { node: Node }
		interface Node { id: ID! }
		type User implements Node { id: ID! name: String }
		type Team implements Node { id: ID! }
	`, "Query.node")
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.node": NewMockValueResolver(map[string]any{"__typename": "User", "id": "u1", "name": "ada"}),
	})
	exec := NewExecutor(StaticRuntime(rt), sch)
	doc := mustParseQuery(t, `{ node { id ... on User { name } } }`)

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

	wantData := map[string]any{"node": map[string]any{"id": "u1", "name": "ada"}}
	if diff := cmp.Diff(wantData, gotRes.Data); diff != "" {
		t.Fatalf("Data mismatch (-want +got):\n%s", diff)
	}
}

// Pattern: Result comparison
func TestCompleteValue_AbstractTypeResolutionFailure(t *testing.T) {
	sch := mustBuildSchema(t, `
		type Query { node: Node }
		interface Node { id: ID! }
		type User implements Node { id: ID! }
	`, "Query.node")
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.node": NewMockValueResolver(map[string]any{"id": "u1"}),
	})
	exec := NewExecutor(StaticRuntime(rt), sch)
	doc := mustParseQuery(t, "{ node { id } }")

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

	wantData := map[string]any{"node": nil}
	if diff := cmp.Diff(wantData, gotRes.Data); diff != "" {
		t.Fatalf("Data mismatch (-want +got):\n%s", diff)
	}
	if !hasErrorContaining(gotRes.Errors, "cannot resolve type") {
		t.Fatalf("expected type-resolution error, got %v", errorMessages(gotRes.Errors))
	}
}

// Pattern: Result comparison
func TestCompleteValue_LeafSerializer(t *testing.T) {
	sch := mustBuildSchema(t, `
		scalar Upper
		type Query { shout: Upper }
	`, "Query.shout")
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.shout": NewMockValueResolver("hello"),
	})
	rt.SetSerializer(func(typeName string, val any) (any, error) {
		if typeName == "Upper" {
			return strings.ToUpper(val.(string)), nil
		}
		return val, nil
	})
	exec := NewExecutor(StaticRuntime(rt), sch)
	doc := mustParseQuery(t, "{ shout }")

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

	wantData := map[string]any{"shout": "HELLO"}
	if diff := cmp.Diff(wantData, gotRes.Data); diff != "" {
		t.Fatalf("Data mismatch (-want +got):\n%s", diff)
	}
}
