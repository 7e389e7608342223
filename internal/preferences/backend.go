package preferences

import (
	"context"
	"sort"
	"sync"
)

// Backend persists namespaced string keys. Every method must have committed
// durably by the time it returns without error.
type Backend interface {
	Put(ctx context.Context, namespace, key, value string) error
	Get(ctx context.Context, namespace, key string) (string, bool, error)
	Delete(ctx context.Context, namespace, key string) (bool, error)
	// Clear removes every key in the namespace atomically and reports the keys removed
	Clear(ctx context.Context, namespace string) ([]string, error)
}

// MemoryBackend keeps preferences in process memory only
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string]map[string]string)}
}

func (b *MemoryBackend) Put(ctx context.Context, namespace, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	ns := b.data[namespace]
	if ns == nil {
		ns = make(map[string]string)
		b.data[namespace] = ns
	}
	ns[key] = value
	return nil
}

func (b *MemoryBackend) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.data[namespace][key]
	return v, ok, nil
}

func (b *MemoryBackend) Delete(ctx context.Context, namespace, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	ns := b.data[namespace]
	if _, ok := ns[key]; !ok {
		return false, nil
	}
	delete(ns, key)
	return true, nil
}

func (b *MemoryBackend) Clear(ctx context.Context, namespace string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	keys := make([]string, 0, len(b.data[namespace]))
	for k := range b.data[namespace] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	delete(b.data, namespace)
	return keys, nil
}
