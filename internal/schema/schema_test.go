package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const testSDL = `
"""
A person in the system.
"""
type User implements Node {
  id: ID!
  name: String!
  email: String
  friends(first: Int = 10): [User!]
  role: Role @deprecated(reason: "Use roles instead.")
}

interface Node {
  id: ID!
}

union SearchResult = User | Team

type Team implements Node {
  id: ID!
  name: String!
}

enum Role {
  ADMIN
  MEMBER
}

input UserFilter {
  nameContains: String
  limit: Int = 20
}

type Query {
  node(id: ID!): Node
  users(filter: UserFilter): [User!]!
  search(term: String!): [SearchResult!]
}

type Mutation {
  renameUser(id: ID!, name: String!): User
}

directive @cost(value: Int!) on FIELD_DEFINITION
`

func TestBuildFromSDL(t *testing.T) {
	s, err := BuildFromSDL(testSDL)
	require.NoError(t, err)

	require.Equal(t, "Query", s.QueryType)
	require.Equal(t, "Mutation", s.MutationType)
	require.Equal(t, "", s.SubscriptionType)

	user := s.Types["User"]
	require.NotNil(t, user)
	require.Equal(t, TypeKindObject, user.Kind)
	require.Equal(t, "A person in the system.", user.Description)
	require.Equal(t, []string{"Node"}, user.Interfaces)
	require.Len(t, user.Fields, 5)

	idField := user.Fields[0]
	require.Equal(t, "id", idField.Name)
	require.True(t, IsNonNull(idField.Type))
	require.Equal(t, "ID", GetNamedType(idField.Type))

	friends := user.Fields[3]
	require.Equal(t, "friends", friends.Name)
	require.True(t, IsList(friends.Type))
	require.Len(t, friends.Arguments, 1)
	require.Equal(t, "first", friends.Arguments[0].Name)
	require.Equal(t, int64(10), friends.Arguments[0].DefaultValue)

	role := user.Fields[4]
	require.True(t, role.IsDeprecated)
	require.Equal(t, "Use roles instead.", role.DeprecationReason)

	node := s.Types["Node"]
	require.Equal(t, TypeKindInterface, node.Kind)
	require.ElementsMatch(t, []string{"User", "Team"}, node.PossibleTypes)

	search := s.Types["SearchResult"]
	require.Equal(t, TypeKindUnion, search.Kind)
	require.Equal(t, []string{"User", "Team"}, search.PossibleTypes)

	filter := s.Types["UserFilter"]
	require.Equal(t, TypeKindInputObject, filter.Kind)
	require.Len(t, filter.InputFields, 2)
	require.Equal(t, int64(20), filter.InputFields[1].DefaultValue)

	cost := s.Directives["cost"]
	require.NotNil(t, cost)
	require.Equal(t, []string{"FIELD_DEFINITION"}, cost.Locations)

	// Builtins are registered but custom skip applies to introspection names.
	require.NotNil(t, s.Types["String"])
	require.Nil(t, s.Types["__Schema"])
}

func TestBuildFromSDL_AsyncClassifier(t *testing.T) {
	s, err := BuildFromSDL(testSDL, WithAsyncFields(func(typeName, fieldName string) bool {
		return typeName == "User" && fieldName == "friends"
	}))
	require.NoError(t, err)

	user := s.Types["User"]
	for _, f := range user.Fields {
		require.Equal(t, f.Name == "friends", f.Async, "field %s", f.Name)
	}
}

func TestBuildFromSDL_InvalidDocument(t *testing.T) {
	_, err := BuildFromSDL(`type Query { user: Missing }`)
	require.Error(t, err)
}

func TestRenderRoundTrip(t *testing.T) {
	s, err := BuildFromSDL(testSDL)
	require.NoError(t, err)

	rendered := Render(s)

	// Rendering then rebuilding yields the same schema model.
	s2, err := BuildFromSDL(rendered)
	require.NoError(t, err)
	if diff := cmp.Diff(Render(s), Render(s2)); diff != "" {
		t.Errorf("render mismatch after round trip (-want +got):\n%s", diff)
	}
}
