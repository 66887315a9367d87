package executor

import (
	"errors"
	"strings"
	"testing"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	schema "github.com/hanpama/queryflow/internal/schema"
)

var errBoom = errors.New("boom")

// mustParseQuery parses a GraphQL query and fails the test on error.
func mustParseQuery(t *testing.T, q string) *ast.QueryDocument {
	t.Helper()
	d, err := parser.ParseQuery(&ast.Source{Input: q})
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return d
}

// mustBuildSchema builds a schema from SDL, marking the listed
// "ObjectType.Field" names as async.
func mustBuildSchema(t *testing.T, sdl string, asyncFields ...string) *schema.Schema {
	t.Helper()
	async := make(map[string]bool, len(asyncFields))
	for _, f := range asyncFields {
		async[f] = true
	}
	s, err := schema.BuildFromSDL(sdl, schema.WithAsyncFields(func(typeName, fieldName string) bool {
		return async[typeName+"."+fieldName]
	}))
	if err != nil {
		t.Fatalf("schema error: %v", err)
	}
	return s
}

// errorMessages extracts just the messages for compact assertions.
func errorMessages(errs []GraphQLError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Message
	}
	return out
}

// hasErrorContaining reports whether any error message contains substr.
func hasErrorContaining(errs []GraphQLError, substr string) bool {
	for _, e := range errs {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
