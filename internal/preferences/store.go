// Package preferences persists small key-value session state and lets callers
// observe changes to individual keys.
package preferences

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
)

var (
	ErrEmptyKey = errors.New("preference key must not be empty")
	ErrClosed   = errors.New("preference store is closed")
)

// Value is one observed state of a key
type Value struct {
	Value   string
	Present bool
}

// Store is a namespaced preference store. Writes are serialized so that
// observers see commits in the order the backend applied them.
type Store struct {
	backend   Backend
	namespace string
	logger    *log.Logger

	mu     sync.Mutex
	subs   map[string]map[*subscription]struct{}
	closed bool
}

// New creates a Store over backend for a single namespace
func New(backend Backend, namespace string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{
		backend:   backend,
		namespace: namespace,
		logger:    logger,
		subs:      make(map[string]map[*subscription]struct{}),
	}
}

// Namespace returns the namespace this store writes to
func (s *Store) Namespace() string {
	return s.namespace
}

// Save writes value under key and returns once the backend has committed it
func (s *Store) Save(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if err := s.backend.Put(ctx, s.namespace, key, value); err != nil {
		return err
	}
	s.notifyLocked(key, Value{Value: value, Present: true})
	return nil
}

// Get returns the latest committed value for key
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}
	if s.isClosed() {
		return "", false, ErrClosed
	}
	return s.backend.Get(ctx, s.namespace, key)
}

// Delete removes key. Observers are notified only if the key existed.
func (s *Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	removed, err := s.backend.Delete(ctx, s.namespace, key)
	if err != nil {
		return err
	}
	if removed {
		s.notifyLocked(key, Value{})
	}
	return nil
}

// Clear removes every key in the namespace in a single transaction
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	keys, err := s.backend.Clear(ctx, s.namespace)
	if err != nil {
		return err
	}
	for _, key := range keys {
		s.notifyLocked(key, Value{})
	}
	s.logger.Printf("Cleared %d preferences in %s", len(keys), s.namespace)
	return nil
}

// Observe returns a channel that first carries the current value of key and
// then one Value per committed change, in commit order. The channel is closed
// when ctx is done or the store is closed.
func (s *Store) Observe(ctx context.Context, key string) (<-chan Value, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	// Reading under the write lock guarantees no commit lands between the
	// replayed value and the registration
	current, ok, err := s.backend.Get(ctx, s.namespace, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read initial value for %s: %w", key, err)
	}

	sub := newSubscription()
	sub.push(Value{Value: current, Present: ok})
	if s.subs[key] == nil {
		s.subs[key] = make(map[*subscription]struct{})
	}
	s.subs[key][sub] = struct{}{}

	go func() {
		sub.run(ctx)
		s.unsubscribe(key, sub)
	}()

	return sub.out, nil
}

// Close ends every observer. The backend is owned by the caller and stays open.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, set := range s.subs {
		for sub := range set {
			sub.stop()
		}
	}
	s.subs = make(map[string]map[*subscription]struct{})
}

func (s *Store) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Store) notifyLocked(key string, v Value) {
	for sub := range s.subs[key] {
		sub.push(v)
	}
}

func (s *Store) unsubscribe(key string, sub *subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if set := s.subs[key]; set != nil {
		delete(set, sub)
		if len(set) == 0 {
			delete(s.subs, key)
		}
	}
}

// subscription buffers values without bound so a slow reader never loses events
type subscription struct {
	mu       sync.Mutex
	queue    []Value
	signal   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	out      chan Value
}

func newSubscription() *subscription {
	return &subscription{
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
		out:    make(chan Value),
	}
}

func (s *subscription) push(v Value) {
	s.mu.Lock()
	s.queue = append(s.queue, v)
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *subscription) stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

func (s *subscription) run(ctx context.Context) {
	defer close(s.out)
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			select {
			case <-s.signal:
				continue
			case <-ctx.Done():
				return
			case <-s.done:
				return
			}
		}
		next := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- next:
		case <-ctx.Done():
			return
		case <-s.done:
			return
		}
	}
}
