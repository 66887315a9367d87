// Demo GraphQL server backed by in-memory data. It exercises sync field
// projection, batched async loading, serial mutations, and the HTTP layer.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hanpama/queryflow/internal/eventbus"
	"github.com/hanpama/queryflow/internal/funcrt"
	"github.com/hanpama/queryflow/internal/otel"
	"github.com/hanpama/queryflow/internal/schema"
	"github.com/hanpama/queryflow/internal/server"
)

const sdl = `
interface Node { id: ID! }

type User implements Node {
  id: ID!
  email: String!
  name: String!
  posts: [Post!]!
  organization: Organization
}

type Organization implements Node {
  id: ID!
  name: String!
  members: [User!]!
}

type Post implements Node {
  id: ID!
  title: String!
  content: String!
  author: User!
}

union SearchResult = User | Organization | Post

type Query {
  user(id: ID!): User
  users: [User!]!
  node(id: ID!): Node
  search(term: String!): [SearchResult!]!
}

input CreateUserInput {
  email: String!
  name: String!
  organizationId: ID
}

type Mutation {
  createUser(input: CreateUserInput!): User!
  deleteUser(id: ID!): Boolean!
}
`

type user struct {
	ID    string
	Email string
	Name  string
	OrgID string
}

type org struct {
	ID   string
	Name string
}

type post struct {
	ID       string
	Title    string
	Content  string
	AuthorID string
}

// store is the in-memory backing data. All loads go through it so batched
// fetches can be observed in the logs.
type store struct {
	mu     sync.RWMutex
	users  map[string]*user
	orgs   map[string]*org
	posts  map[string]*post
	nextID int

	log zerolog.Logger
}

func newStore(log zerolog.Logger) *store {
	s := &store{
		users:  make(map[string]*user),
		orgs:   make(map[string]*org),
		posts:  make(map[string]*post),
		nextID: 1,
		log:    log,
	}
	s.orgs["org-1"] = &org{ID: "org-1", Name: "Tech Corp"}
	s.users["user-1"] = &user{ID: "user-1", Email: "john@example.com", Name: "John Doe", OrgID: "org-1"}
	s.users["user-2"] = &user{ID: "user-2", Email: "jane@example.com", Name: "Jane Smith", OrgID: "org-1"}
	s.posts["post-1"] = &post{ID: "post-1", Title: "Getting Started with Go", Content: "Go is a compiled language...", AuthorID: "user-1"}
	s.posts["post-2"] = &post{ID: "post-2", Title: "Batching Field Loads", Content: "Coalescing sibling loads...", AuthorID: "user-2"}
	return s
}

func (s *store) generateID(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func userView(u *user) map[string]any {
	return map[string]any{
		"__typename": "User",
		"id":         u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"orgId":      u.OrgID,
	}
}

func orgView(o *org) map[string]any {
	return map[string]any{"__typename": "Organization", "id": o.ID, "name": o.Name}
}

func postView(p *post) map[string]any {
	return map[string]any{
		"__typename": "Post",
		"id":         p.ID,
		"title":      p.Title,
		"content":    p.Content,
		"authorId":   p.AuthorID,
	}
}

func (s *store) loadUsers(ctx context.Context, ids []string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.log.Info().Strs("ids", ids).Msg("batch load users")
	out := make(map[string]any, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = userView(u)
		} else {
			out[id] = nil
		}
	}
	return out, nil
}

func (s *store) loadOrgs(ctx context.Context, ids []string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.log.Info().Strs("ids", ids).Msg("batch load organizations")
	out := make(map[string]any, len(ids))
	for _, id := range ids {
		if o, ok := s.orgs[id]; ok {
			out[id] = orgView(o)
		} else {
			out[id] = nil
		}
	}
	return out, nil
}

func buildRegistry(s *store) *funcrt.Registry {
	reg := funcrt.NewRegistry()

	reg.RegisterBatch("Query", "user",
		func(source any, args map[string]any) (string, error) {
			id, _ := args["id"].(string)
			return id, nil
		},
		s.loadUsers)

	reg.RegisterAsync("Query", "users", func(ctx context.Context, source any, args map[string]any) (any, error) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		ids := make([]string, 0, len(s.users))
		for id := range s.users {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		out := make([]any, len(ids))
		for i, id := range ids {
			out[i] = userView(s.users[id])
		}
		return out, nil
	})

	reg.RegisterAsync("Query", "node", func(ctx context.Context, source any, args map[string]any) (any, error) {
		id, _ := args["id"].(string)
		s.mu.RLock()
		defer s.mu.RUnlock()
		if u, ok := s.users[id]; ok {
			return userView(u), nil
		}
		if o, ok := s.orgs[id]; ok {
			return orgView(o), nil
		}
		if p, ok := s.posts[id]; ok {
			return postView(p), nil
		}
		return nil, nil
	})

	reg.RegisterAsync("Query", "search", func(ctx context.Context, source any, args map[string]any) (any, error) {
		term, _ := args["term"].(string)
		needle := strings.ToLower(strings.TrimSpace(term))
		s.mu.RLock()
		defer s.mu.RUnlock()
		var results []any
		if needle == "" {
			return results, nil
		}
		for _, u := range sortedUsers(s.users) {
			if strings.Contains(strings.ToLower(u.Name), needle) || strings.Contains(strings.ToLower(u.Email), needle) {
				results = append(results, userView(u))
			}
		}
		for _, p := range sortedPosts(s.posts) {
			if strings.Contains(strings.ToLower(p.Title), needle) || strings.Contains(strings.ToLower(p.Content), needle) {
				results = append(results, postView(p))
			}
		}
		return results, nil
	})

	reg.RegisterAsync("User", "posts", func(ctx context.Context, source any, args map[string]any) (any, error) {
		src := source.(map[string]any)
		authorID, _ := src["id"].(string)
		s.mu.RLock()
		defer s.mu.RUnlock()
		var out []any
		for _, p := range sortedPosts(s.posts) {
			if p.AuthorID == authorID {
				out = append(out, postView(p))
			}
		}
		if out == nil {
			out = []any{}
		}
		return out, nil
	})

	reg.RegisterBatch("User", "organization",
		func(source any, args map[string]any) (string, error) {
			src := source.(map[string]any)
			id, _ := src["orgId"].(string)
			return id, nil
		},
		s.loadOrgs)

	reg.RegisterBatch("Post", "author",
		func(source any, args map[string]any) (string, error) {
			src := source.(map[string]any)
			id, _ := src["authorId"].(string)
			return id, nil
		},
		s.loadUsers)

	reg.RegisterAsync("Organization", "members", func(ctx context.Context, source any, args map[string]any) (any, error) {
		src := source.(map[string]any)
		orgID, _ := src["id"].(string)
		s.mu.RLock()
		defer s.mu.RUnlock()
		var out []any
		for _, u := range sortedUsers(s.users) {
			if u.OrgID == orgID {
				out = append(out, userView(u))
			}
		}
		if out == nil {
			out = []any{}
		}
		return out, nil
	})

	reg.RegisterAsync("Mutation", "createUser", func(ctx context.Context, source any, args map[string]any) (any, error) {
		input, _ := args["input"].(map[string]any)
		if input == nil {
			return nil, fmt.Errorf("input is required")
		}
		email, _ := input["email"].(string)
		name, _ := input["name"].(string)
		orgID, _ := input["organizationId"].(string)

		s.mu.Lock()
		defer s.mu.Unlock()
		for _, u := range s.users {
			if u.Email == email {
				return nil, fmt.Errorf("user with email %q already exists", email)
			}
		}
		u := &user{ID: s.generateID("user"), Email: email, Name: name, OrgID: orgID}
		s.users[u.ID] = u
		return userView(u), nil
	})

	reg.RegisterAsync("Mutation", "deleteUser", func(ctx context.Context, source any, args map[string]any) (any, error) {
		id, _ := args["id"].(string)
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.users[id]; !ok {
			return false, nil
		}
		delete(s.users, id)
		return true, nil
	})

	return reg
}

func sortedUsers(m map[string]*user) []*user {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*user, len(ids))
	for i, id := range ids {
		out[i] = m[id]
	}
	return out
}

func sortedPosts(m map[string]*post) []*post {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*post, len(ids))
	for i, id := range ids {
		out[i] = m[id]
	}
	return out
}

func main() {
	addr := flag.String("addr", ":8080", "the address to listen on")
	otlp := flag.String("otlp", "", "OTLP gRPC endpoint for traces (disabled when empty)")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	eventbus.Use(eventbus.New())
	shutdown, err := otel.Setup(*otlp, "queryflow-demo")
	if err != nil {
		log.Fatal().Err(err).Msg("telemetry setup failed")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(ctx)
	}()

	s := newStore(log)
	reg := buildRegistry(s)

	sch, err := schema.BuildFromSDL(sdl, schema.WithAsyncFields(reg.IsAsync))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid schema")
	}

	h, err := server.New(reg, sch,
		server.WithPretty(),
		server.WithCORS("*"),
		server.WithLogger(log),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("handler setup failed")
	}

	log.Info().Str("addr", *addr).Msg("GraphQL server listening")
	if err := http.ListenAndServe(*addr, h); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
