package async

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Wait(t *testing.T) {
	task := Run(context.Background(), func(ctx context.Context) (int, error) {
		return 42, nil
	})

	v, err := task.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestRun_Error(t *testing.T) {
	boom := errors.New("boom")
	task := Run(context.Background(), func(ctx context.Context) (string, error) {
		return "", boom
	})

	_, err := task.Wait(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestWait_ContextDone(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	task := Run(context.Background(), func(ctx context.Context) (int, error) {
		<-release
		return 1, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := task.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOnComplete_FiresExactlyOnce(t *testing.T) {
	release := make(chan struct{})
	task := Run(context.Background(), func(ctx context.Context) (int, error) {
		<-release
		return 7, nil
	})

	var calls int32
	var wg sync.WaitGroup
	wg.Add(2)
	task.OnComplete(func(v int, err error) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, 7, v)
		wg.Done()
	})
	task.OnComplete(func(v int, err error) {
		atomic.AddInt32(&calls, 1)
		wg.Done()
	})

	close(release)
	wg.Wait()
	<-task.Done()
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestOnComplete_AfterCompletionRunsImmediately(t *testing.T) {
	task := Resolved("done", nil)

	var got string
	task.OnComplete(func(v string, err error) {
		got = v
	})
	assert.Equal(t, "done", got)
}

func TestRun_SeesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	task := Run(ctx, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	cancel()

	_, err := task.Wait(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestThen(t *testing.T) {
	ctx := context.Background()
	first := Resolved(2, nil)
	second := Then(ctx, first, func(ctx context.Context, v int) (string, error) {
		if v == 2 {
			return "two", nil
		}
		return "", errors.New("unexpected")
	})

	v, err := second.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "two", v)

	boom := errors.New("boom")
	called := false
	failed := Then(ctx, Resolved(0, boom), func(ctx context.Context, v int) (int, error) {
		called = true
		return v, nil
	})
	_, err = failed.Wait(ctx)
	assert.ErrorIs(t, err, boom)
	assert.False(t, called)
}
