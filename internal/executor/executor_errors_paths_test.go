package executor

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Pattern: Result comparison
func TestErrors_NullableAsyncFieldFailureYieldsNull(t *testing.T) {
	sch := mustBuildSchema(t, `
		type Query { good: String bad: String }
	`, "Query.good", "Query.bad")
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.good": NewMockValueResolver("ok"),
		"Query.bad":  NewMockErrorResolver(errBoom),
	})
	exec := NewExecutor(StaticRuntime(rt), sch)
	doc := mustParseQuery(t, "{ good bad }")

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

	wantData := map[string]any{"good": "ok", "bad": nil}
	if diff := cmp.Diff(wantData, gotRes.Data); diff != "" {
		t.Fatalf("Data mismatch (-want +got):\n%s", diff)
	}
	wantErrs := []GraphQLError{{Message: "boom", Path: Path{"bad"}}}
	if diff := cmp.Diff(wantErrs, gotRes.Errors); diff != "" {
		t.Fatalf("Errors mismatch (-want +got):\n%s", diff)
	}
}

// Pattern: Result comparison
func TestErrors_NonNullAsyncFailurePropagatesToTopLevelField(t *testing.T) {
	sch := mustBuildSchema(t, `
		type Query { user: User other: String }
		type User { id: ID! }
	`, "Query.user", "Query.other")
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.user":  NewMockValueResolver(map[string]any{}),
		"Query.other": NewMockValueResolver("fine"),
		"User.id":     NewMockValueResolver(nil),
	})
	exec := NewExecutor(StaticRuntime(rt), sch)
	doc := mustParseQuery(t, "{ user { id } other }")

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

	// The Non-Null violation at user.id nullifies the user subtree; the
	// sibling field is unaffected.
	wantData := map[string]any{"user": nil, "other": "fine"}
	if diff := cmp.Diff(wantData, gotRes.Data); diff != "" {
		t.Fatalf("Data mismatch (-want +got):\n%s", diff)
	}
	if !hasErrorContaining(gotRes.Errors, "non-nullable field user.id") {
		t.Fatalf("expected non-null violation error, got %v", errorMessages(gotRes.Errors))
	}
}

// Pattern: Result comparison
func TestErrors_NonNullAsyncRootFieldFailure(t *testing.T) {
	sch := mustBuildSchema(t, `
		type Query { token: String! other: String }
	`, "Query.token")
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.token": NewMockErrorResolver(errBoom),
		"Query.other": NewMockValueResolver("fine"),
	})
	exec := NewExecutor(StaticRuntime(rt), sch)
	doc := mustParseQuery(t, "{ token other }")

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

	wantData := map[string]any{"token": nil, "other": "fine"}
	if diff := cmp.Diff(wantData, gotRes.Data); diff != "" {
		t.Fatalf("Data mismatch (-want +got):\n%s", diff)
	}
	wantErrs := []GraphQLError{{Message: "boom", Path: Path{"token"}}}
	if diff := cmp.Diff(wantErrs, gotRes.Errors); diff != "" {
		t.Fatalf("Errors mismatch (-want +got):\n%s", diff)
	}
}

// Pattern: Result comparison
func TestErrors_LateCompletionUnderNullifiedAncestorIsDropped(t *testing.T) {
	sch := mustBuildSchema(t, `
		type Query { user: User }
		type User { id: ID! profile: Profile }
		type Profile { bio: String }
	`, "Query.user", "User.id", "User.profile")

	idDone := make(chan struct{})
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.user": NewMockValueResolver(map[string]any{}),
		"User.id": func(ctx context.Context, source any, args map[string]any) (any, error) {
			defer close(idDone)
			return nil, errBoom
		},
		"User.profile": func(ctx context.Context, source any, args map[string]any) (any, error) {
			// Completes only after the sibling failure nullified the subtree.
			<-idDone
			return map[string]any{"bio": "late"}, nil
		},
	})
	exec := NewExecutor(StaticRuntime(rt), sch)
	doc := mustParseQuery(t, "{ user { id profile { bio } } }")

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

	wantData := map[string]any{"user": nil}
	if diff := cmp.Diff(wantData, gotRes.Data); diff != "" {
		t.Fatalf("Data mismatch (-want +got):\n%s", diff)
	}
}

// Pattern: Result comparison
func TestErrors_UnknownFieldRecordedAndOmitted(t *testing.T) {
	sch := mustBuildSchema(t, `type Query { a: String }`)
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.a": NewMockValueResolver("A"),
	})
	exec := NewExecutor(StaticRuntime(rt), sch)
	doc := mustParseQuery(t, "{ a nope }")

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

	wantData := map[string]any{"a": "A"}
	if diff := cmp.Diff(wantData, gotRes.Data); diff != "" {
		t.Fatalf("Data mismatch (-want +got):\n%s", diff)
	}
	wantErrs := []GraphQLError{{Message: "Cannot query field 'nope' on type 'Query'", Path: Path{"nope"}}}
	if diff := cmp.Diff(wantErrs, gotRes.Errors); diff != "" {
		t.Fatalf("Errors mismatch (-want +got):\n%s", diff)
	}
}

// Pattern: Result comparison
func TestErrors_MissingRequiredArgumentSkipsResolution(t *testing.T) {
	sch := mustBuildSchema(t, `
		type Query { user(id: ID!): String greeting: String }
	`)
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.user":     NewMockValueResolver("never"),
		"Query.greeting": NewMockValueResolver("hello"),
	})
	exec := NewExecutor(StaticRuntime(rt), sch)
	doc := mustParseQuery(t, "{ user greeting }")

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

	wantData := map[string]any{"user": nil, "greeting": "hello"}
	if diff := cmp.Diff(wantData, gotRes.Data); diff != "" {
		t.Fatalf("Data mismatch (-want +got):\n%s", diff)
	}
	wantErrs := []GraphQLError{{Message: "argument 'id' of required type was not provided", Path: Path{"user"}}}
	if diff := cmp.Diff(wantErrs, gotRes.Errors); diff != "" {
		t.Fatalf("Errors mismatch (-want +got):\n%s", diff)
	}
	for _, call := range rt.GetCalls() {
		if call.Field == "user" {
			t.Fatalf("resolver must not run after a required-argument error")
		}
	}
}

// Pattern: Result comparison
func TestErrors_MissingRequiredVariable(t *testing.T) {
	sch := mustBuildSchema(t, `type Query { user(id: ID!): String }`)
	rt := NewMockRuntime(nil)
	exec := NewExecutor(StaticRuntime(rt), sch)
	doc := mustParseQuery(t, "query Q($id: ID!) { user(id: $id) }")

	gotRes := exec.ExecuteRequest(context.Background(), doc, "Q", nil, nil)

	if gotRes.Data != nil {
		t.Fatalf("expected nil data, got %v", gotRes.Data)
	}
	if !hasErrorContaining(gotRes.Errors, "was not provided") {
		t.Fatalf("expected missing-variable error, got %v", errorMessages(gotRes.Errors))
	}
}

// Pattern: Result comparison
func TestErrors_OperationNotFound(t *testing.T) {
	sch := mustBuildSchema(t, `type Query { a: String }`)
	exec := NewExecutor(StaticRuntime(NewMockRuntime(nil)), sch)
	doc := mustParseQuery(t, "query A { a } query B { a }")

	gotRes := exec.ExecuteRequest(context.Background(), doc, "C", nil, nil)
	if !hasErrorContaining(gotRes.Errors, "operation not found") {
		t.Fatalf("expected operation-not-found error, got %v", errorMessages(gotRes.Errors))
	}
}
