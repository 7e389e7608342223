package state

import (
	"context"
	"sync"
)

// Phase is the lifecycle stage of an operation
type Phase int

const (
	Idle Phase = iota
	Loading
	Success
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failed:
		return "error"
	default:
		return "unknown"
	}
}

// Status is the observable state of an Op. Err is set only when Phase is Failed.
type Status struct {
	Phase Phase
	Err   string
}

// Op tracks one operation as Idle, Loading, Success or Failed.
// Each Begin starts a new generation; completions carrying an older
// generation are ignored so the most recently issued call decides the state.
type Op struct {
	mu     sync.Mutex
	gen    uint64
	status Slot[Status]
}

// Begin moves to Loading, clears any previous error and returns the generation
// the caller must pass to Succeed or Fail
func (o *Op) Begin() uint64 {
	return o.Start(nil)
}

// Start is Begin with apply run under the Op lock before Loading is published
func (o *Op) Start(apply func()) uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.gen++
	if apply != nil {
		apply()
	}
	o.status.Set(Status{Phase: Loading})
	return o.gen
}

// Succeed moves to Success if gen is current. apply, when non-nil, runs
// before the transition is published so data and status change together.
func (o *Op) Succeed(gen uint64, apply func()) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.gen {
		return false
	}
	if apply != nil {
		apply()
	}
	o.status.Set(Status{Phase: Success})
	return true
}

// Fail moves to Failed with msg if gen is current
func (o *Op) Fail(gen uint64, msg string, apply func()) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.gen {
		return false
	}
	if apply != nil {
		apply()
	}
	o.status.Set(Status{Phase: Failed, Err: msg})
	return true
}

// Reset returns to Idle and invalidates any in-flight generation. apply, when
// non-nil, runs under the Op lock before Idle is published. The returned
// generation stays current until the next Start or Reset.
func (o *Op) Reset(apply func()) uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.gen++
	if apply != nil {
		apply()
	}
	o.status.Set(Status{Phase: Idle})
	return o.gen
}

// Current reports whether gen is the latest issued generation
func (o *Op) Current(gen uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return gen == o.gen
}

// Status returns the current status. A fresh Op is Idle.
func (o *Op) Status() Status {
	return o.status.Value()
}

// Subscribe observes status transitions
func (o *Op) Subscribe(ctx context.Context) <-chan Snapshot[Status] {
	return o.status.Subscribe(ctx)
}
