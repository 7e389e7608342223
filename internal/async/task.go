// Package async provides Task, the single result type returned by every
// long-running client operation.
package async

import (
	"context"
	"sync"
)

// Task is the eventual result of one operation. It completes exactly once.
type Task[T any] struct {
	done chan struct{}

	mu        sync.Mutex
	completed bool
	value     T
	err       error
	callbacks []func(T, error)
}

// Run starts fn on its own goroutine and returns a Task for its result.
// fn receives ctx and is expected to stop early once ctx is done.
func Run[T any](ctx context.Context, fn func(context.Context) (T, error)) *Task[T] {
	t := newTask[T]()
	go func() {
		v, err := fn(ctx)
		t.complete(v, err)
	}()
	return t
}

// Resolved returns a Task that has already completed with v and err
func Resolved[T any](v T, err error) *Task[T] {
	t := newTask[T]()
	t.complete(v, err)
	return t
}

func newTask[T any]() *Task[T] {
	return &Task[T]{done: make(chan struct{})}
}

// Done is closed once the result is available
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task completes or ctx is done
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.value, t.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// OnComplete registers fn to receive the result. fn runs exactly once, right
// away if the task has already completed.
func (t *Task[T]) OnComplete(fn func(T, error)) {
	t.mu.Lock()
	if !t.completed {
		t.callbacks = append(t.callbacks, fn)
		t.mu.Unlock()
		return
	}
	v, err := t.value, t.err
	t.mu.Unlock()
	fn(v, err)
}

func (t *Task[T]) complete(v T, err error) {
	t.mu.Lock()
	if t.completed {
		t.mu.Unlock()
		return
	}
	t.completed = true
	t.value = v
	t.err = err
	callbacks := t.callbacks
	t.callbacks = nil
	close(t.done)
	t.mu.Unlock()

	for _, fn := range callbacks {
		fn(v, err)
	}
}

// Then chains fn onto t. The returned Task completes with fn's result, or with
// t's error without calling fn.
func Then[T, U any](ctx context.Context, t *Task[T], fn func(context.Context, T) (U, error)) *Task[U] {
	return Run(ctx, func(ctx context.Context) (U, error) {
		v, err := t.Wait(ctx)
		if err != nil {
			var zero U
			return zero, err
		}
		return fn(ctx, v)
	})
}
