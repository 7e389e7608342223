// Package viewmodel turns API and identity calls into observable state.
//
// Every operation returns an *async.Task and records its progress in a
// state.Op. Results replace data slots wholesale; failures leave them alone
// and publish a message in the shared Error slot. Closing a view-model
// abandons its in-flight operations without touching state again.
package viewmodel

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/pageza/nutriplan/internal/api"
	"github.com/pageza/nutriplan/internal/async"
	"github.com/pageza/nutriplan/internal/identity"
	"github.com/pageza/nutriplan/internal/state"
)

// base carries what every view-model shares: its lifetime and the
// info/error message slots
type base struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *log.Logger

	// Message holds the latest informational text
	Message state.Slot[string]
	// Error holds the latest failure text
	Error state.Slot[string]
}

func newBase(parent context.Context, logger *log.Logger) base {
	if parent == nil {
		parent = context.Background()
	}
	if logger == nil {
		logger = log.Default()
	}
	ctx, cancel := context.WithCancel(parent)
	return base{ctx: ctx, cancel: cancel, logger: logger}
}

// Close abandons in-flight operations
func (b *base) Close() {
	b.cancel()
}

// ClearMessages empties Message and Error. Data slots are untouched.
func (b *base) ClearMessages() {
	b.Message.Clear()
	b.Error.Clear()
}

func (b *base) closed() bool {
	return b.ctx.Err() != nil
}

// fail records err against op generation gen
func (b *base) fail(op *state.Op, gen uint64, what string, err error) {
	msg := failureText(err)
	b.logger.Printf("Failed to %s: %v", what, err)
	op.Fail(gen, msg, func() { b.Error.Set(msg) })
}

// reject fails op without issuing a request
func reject[T any](b *base, op *state.Op, what string, err error) *async.Task[T] {
	gen := op.Begin()
	b.fail(op, gen, what, err)
	var zero T
	return async.Resolved(zero, err)
}

// launch runs call under op. On success apply runs while op moves to Success.
func launch[T any](b *base, op *state.Op, what string, call func(context.Context) (T, error), apply func(T)) *async.Task[T] {
	gen := op.Begin()
	b.Error.Clear()
	return async.Run(b.ctx, func(ctx context.Context) (T, error) {
		v, err := call(ctx)
		if b.closed() {
			if err == nil {
				err = b.ctx.Err()
			}
			return v, err
		}
		if err != nil {
			b.fail(op, gen, what, err)
			return v, err
		}
		op.Succeed(gen, func() {
			if apply != nil {
				apply(v)
			}
		})
		return v, nil
	})
}

// failureText renders err for the Error slot. Server rejections carry the
// response body, provider errors their own message, anything else its text.
func failureText(err error) string {
	if apiErr, ok := api.AsError(err); ok {
		body := apiErr.Body
		if body == "" {
			body = http.StatusText(apiErr.StatusCode)
		}
		return "Failed: " + body
	}
	var idErr *identity.Error
	if errors.As(err, &idErr) {
		return idErr.Message
	}
	return "Error: " + err.Error()
}
