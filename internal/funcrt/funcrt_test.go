package funcrt

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	batching "github.com/hanpama/queryflow/internal/batching"
	executor "github.com/hanpama/queryflow/internal/executor"
)

func newTestRuntime(t *testing.T, reg *Registry) executor.Runtime {
	t.Helper()
	d := batching.NewDispatcher()
	// Eager dispatch keeps loader-backed resolutions from parking in unit
	// tests that run without a scheduler.
	d.SetDispatchOnSchedule(true)
	return reg.NewRuntime(d)
}

func TestResolveSync_RegisteredResolver(t *testing.T) {
	reg := NewRegistry().RegisterSync("User", "displayName", func(ctx context.Context, source any, args map[string]any) (any, error) {
		m := source.(map[string]any)
		return fmt.Sprintf("%s <%s>", m["name"], m["email"]), nil
	})
	rt := newTestRuntime(t, reg)

	v, err := rt.ResolveSync(context.Background(), "User", "displayName",
		map[string]any{"name": "ada", "email": "ada@example.com"}, nil)
	require.NoError(t, err)
	require.Equal(t, "ada <ada@example.com>", v)
}

func TestResolveSync_MapProjectionFallback(t *testing.T) {
	rt := newTestRuntime(t, NewRegistry())

	v, err := rt.ResolveSync(context.Background(), "User", "name", map[string]any{"name": "ada"}, nil)
	require.NoError(t, err)
	require.Equal(t, "ada", v)

	v, err = rt.ResolveSync(context.Background(), "User", "name", nil, nil)
	require.NoError(t, err)
	require.Nil(t, v)

	_, err = rt.ResolveSync(context.Background(), "User", "name", 42, nil)
	require.Error(t, err)
}

func TestResolveAsync_RegisteredResolver(t *testing.T) {
	reg := NewRegistry().RegisterAsync("Query", "user", func(ctx context.Context, source any, args map[string]any) (any, error) {
		return map[string]any{"id": args["id"]}, nil
	})
	rt := newTestRuntime(t, reg)

	v, err := rt.ResolveAsync(context.Background(), executor.AsyncResolveTask{
		ObjectType: "Query", Field: "user", Args: map[string]any{"id": "u1"},
	})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"id": "u1"}, v)
}

func TestResolveAsync_UnregisteredPanics(t *testing.T) {
	rt := newTestRuntime(t, NewRegistry())
	require.Panics(t, func() {
		_, _ = rt.ResolveAsync(context.Background(), executor.AsyncResolveTask{ObjectType: "Query", Field: "nope"})
	})
}

func TestResolveAsync_BatchParksUntilDispatch(t *testing.T) {
	var batches [][]string
	reg := NewRegistry().RegisterBatch("User", "team",
		func(source any, args map[string]any) (string, error) {
			return source.(map[string]any)["teamId"].(string), nil
		},
		func(ctx context.Context, keys []string) (map[string]any, error) {
			batches = append(batches, keys)
			out := make(map[string]any, len(keys))
			for _, k := range keys {
				out[k] = map[string]any{"id": k}
			}
			return out, nil
		})

	d := batching.NewDispatcher()
	rt := reg.NewRuntime(d)

	type outcome struct {
		value any
		err   error
	}
	got := make(chan outcome, 1)
	go func() {
		v, err := rt.ResolveAsync(context.Background(), executor.AsyncResolveTask{
			ObjectType: "User", Field: "team", Source: map[string]any{"teamId": "t1"},
		})
		got <- outcome{v, err}
	}()

	// The resolution parks on the loader until the batch is dispatched.
	require.Eventually(t, d.HasPending, time.Second, time.Millisecond)
	select {
	case o := <-got:
		t.Fatalf("resolution finished before dispatch: %+v", o)
	default:
	}

	d.BeginDispatch(context.Background())
	o := <-got
	require.NoError(t, o.err)
	require.Equal(t, map[string]any{"id": "t1"}, o.value)
	require.Equal(t, [][]string{{"t1"}}, batches)
}

func TestResolveAsync_BatchKeyError(t *testing.T) {
	reg := NewRegistry().RegisterBatch("User", "team",
		func(source any, args map[string]any) (string, error) {
			return "", fmt.Errorf("source has no team")
		},
		func(ctx context.Context, keys []string) (map[string]any, error) {
			t.Fatal("fetch must not run when the key cannot be derived")
			return nil, nil
		})
	rt := newTestRuntime(t, reg)

	_, err := rt.ResolveAsync(context.Background(), executor.AsyncResolveTask{
		ObjectType: "User", Field: "team", Source: map[string]any{},
	})
	require.ErrorContains(t, err, "no team")
}

func TestResolveType(t *testing.T) {
	reg := NewRegistry().RegisterTypeResolver("Node", func(ctx context.Context, value any) (string, error) {
		return "User", nil
	})
	rt := newTestRuntime(t, reg)

	tn, err := rt.ResolveType(context.Background(), "Node", map[string]any{})
	require.NoError(t, err)
	require.Equal(t, "User", tn)

	// Fallback reads __typename from map-shaped values.
	rt2 := newTestRuntime(t, NewRegistry())
	tn, err = rt2.ResolveType(context.Background(), "Node", map[string]any{"__typename": "Team"})
	require.NoError(t, err)
	require.Equal(t, "Team", tn)

	_, err = rt2.ResolveType(context.Background(), "Node", 42)
	require.Error(t, err)
}

func TestSerializeLeafValue(t *testing.T) {
	reg := NewRegistry().RegisterSerializer("DateTime", func(ctx context.Context, value any) (any, error) {
		return fmt.Sprintf("@%v", value), nil
	})
	rt := newTestRuntime(t, reg)

	v, err := rt.SerializeLeafValue(context.Background(), "DateTime", 1700000000)
	require.NoError(t, err)
	require.Equal(t, "@1700000000", v)

	v, err = rt.SerializeLeafValue(context.Background(), "Int", 7)
	require.NoError(t, err)
	require.Equal(t, 7, v)
}

func TestIsAsync(t *testing.T) {
	reg := NewRegistry().
		RegisterSync("User", "name", nil).
		RegisterAsync("Query", "user", nil).
		RegisterBatch("User", "team", nil, nil)

	require.False(t, reg.IsAsync("User", "name"))
	require.True(t, reg.IsAsync("Query", "user"))
	require.True(t, reg.IsAsync("User", "team"))
	require.False(t, reg.IsAsync("User", "unknown"))
}
