package preferences

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores each namespace as one Redis hash
type RedisBackend struct {
	redis  *redis.Client
	prefix string
}

var _ Backend = (*RedisBackend)(nil)

// NewRedisBackend creates a backend using hashes named "prefs:<namespace>"
func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{redis: client, prefix: "prefs"}
}

func (b *RedisBackend) hashKey(namespace string) string {
	return fmt.Sprintf("%s:%s", b.prefix, namespace)
}

func (b *RedisBackend) Put(ctx context.Context, namespace, key, value string) error {
	if err := b.redis.HSet(ctx, b.hashKey(namespace), key, value).Err(); err != nil {
		return fmt.Errorf("failed to save preference to Redis: %w", err)
	}
	return nil
}

func (b *RedisBackend) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	value, err := b.redis.HGet(ctx, b.hashKey(namespace), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get preference from Redis: %w", err)
	}
	return value, true, nil
}

func (b *RedisBackend) Delete(ctx context.Context, namespace, key string) (bool, error) {
	n, err := b.redis.HDel(ctx, b.hashKey(namespace), key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to delete preference from Redis: %w", err)
	}
	return n > 0, nil
}

func (b *RedisBackend) Clear(ctx context.Context, namespace string) ([]string, error) {
	hash := b.hashKey(namespace)

	// MULTI/EXEC so the keys reported are exactly the keys deleted
	var keysCmd *redis.StringSliceCmd
	_, err := b.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		keysCmd = pipe.HKeys(ctx, hash)
		pipe.Del(ctx, hash)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to clear preferences in Redis: %w", err)
	}

	keys := keysCmd.Val()
	sort.Strings(keys)
	return keys, nil
}
