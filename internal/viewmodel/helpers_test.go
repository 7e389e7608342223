package viewmodel

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pageza/nutriplan/internal/async"
	"github.com/pageza/nutriplan/internal/preferences"
	"github.com/pageza/nutriplan/internal/state"
)

func nextSnapshot[T any](t *testing.T, ch <-chan state.Snapshot[T]) T {
	t.Helper()
	select {
	case s, ok := <-ch:
		require.True(t, ok, "subscription closed")
		return s.Value
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for state")
		var zero T
		return zero
	}
}

func wait[T any](t *testing.T, task *async.Task[T]) (T, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	v, err := task.Wait(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded, "task did not complete")
	return v, err
}

func newStore(t *testing.T, namespace string) *preferences.Store {
	t.Helper()
	s := preferences.New(preferences.NewMemoryBackend(), namespace, nil)
	t.Cleanup(s.Close)
	return s
}
