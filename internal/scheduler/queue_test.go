package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubTask struct{ id int }

func (stubTask) Kind() Kind                  { return Parallel }
func (stubTask) Begin(context.Context)       {}
func (stubTask) Await(context.Context) error { return nil }

func TestWorkQueue_FIFO(t *testing.T) {
	var q workQueue
	for i := 0; i < 4; i++ {
		q.push(stubTask{id: i})
	}
	for i := 0; i < 4; i++ {
		got, ok := q.pop()
		require.True(t, ok)
		require.Equal(t, i, got.(stubTask).id)
	}
	_, ok := q.pop()
	require.False(t, ok)
	require.True(t, q.isEmpty())
}

func TestWorkQueue_RunningCount(t *testing.T) {
	var q workQueue
	q.push(stubTask{})
	q.push(stubTask{})
	require.False(t, q.hasRunning())

	q.pop()
	q.pop()
	require.True(t, q.hasRunning())

	q.complete()
	require.True(t, q.hasRunning())
	q.complete()
	require.False(t, q.hasRunning())
}

func TestWorkQueue_PopClearsSlot(t *testing.T) {
	var q workQueue
	q.push(stubTask{id: 1})
	q.push(stubTask{id: 2})
	q.pop()
	// The vacated slot must not pin the task.
	require.Nil(t, q.items[0])
}

func TestWorkQueue_InterleavedPushPop(t *testing.T) {
	var q workQueue
	q.push(stubTask{id: 0})
	q.push(stubTask{id: 1})
	got, _ := q.pop()
	require.Equal(t, 0, got.(stubTask).id)
	q.push(stubTask{id: 2})
	for want := 1; want <= 2; want++ {
		got, ok := q.pop()
		require.True(t, ok)
		require.Equal(t, want, got.(stubTask).id)
	}
	require.True(t, q.isEmpty())
}
