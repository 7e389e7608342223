// Package state holds the observable values that view-models publish.
package state

import (
	"context"
	"sync"
)

// Snapshot is one observed state of a Slot
type Snapshot[T any] struct {
	Value   T
	Present bool
}

// Slot holds a single replaceable value. Readers subscribe and always see
// the newest value; intermediate values may be skipped.
// The zero value is an empty slot ready to use.
type Slot[T any] struct {
	mu      sync.RWMutex
	value   T
	present bool
	subs    map[chan Snapshot[T]]struct{}
}

// NewSlot returns a slot already holding v
func NewSlot[T any](v T) *Slot[T] {
	s := &Slot[T]{}
	s.Set(v)
	return s
}

// Get returns the current value and whether one is set
func (s *Slot[T]) Get() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.present
}

// Value returns the current value, or the zero value when empty
func (s *Slot[T]) Value() T {
	v, _ := s.Get()
	return v
}

// Set replaces the value wholesale
func (s *Slot[T]) Set(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = v
	s.present = true
	s.publishLocked()
}

// Clear empties the slot
func (s *Slot[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	s.value = zero
	s.present = false
	s.publishLocked()
}

// Update applies fn to the current value and stores the result atomically
func (s *Slot[T]) Update(fn func(T, bool) T) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = fn(s.value, s.present)
	s.present = true
	s.publishLocked()
	return s.value
}

// Subscribe returns a channel that receives the current snapshot followed by
// later ones. Only the newest undelivered snapshot is kept. The channel is
// closed when ctx is done.
func (s *Slot[T]) Subscribe(ctx context.Context) <-chan Snapshot[T] {
	ch := make(chan Snapshot[T], 1)

	s.mu.Lock()
	if s.subs == nil {
		s.subs = make(map[chan Snapshot[T]]struct{})
	}
	s.subs[ch] = struct{}{}
	ch <- Snapshot[T]{Value: s.value, Present: s.present}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, ch)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

func (s *Slot[T]) publishLocked() {
	snap := Snapshot[T]{Value: s.value, Present: s.present}
	for ch := range s.subs {
		// Conflate: drop the stale pending snapshot, if any
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
