package credstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces credential keys in a shared redis.
const DefaultRedisPrefix = "session"

var _ Backend = (*RedisBackend)(nil)

// RedisBackend is a session-scoped backend for deployments where several
// gateway replicas share one operator session. A TTL bounds how long an
// envelope outlives its browsing context; zero means no expiry.
type RedisBackend struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisBackend returns a backend over client. An empty prefix falls
// back to DefaultRedisPrefix.
func NewRedisBackend(client *redis.Client, prefix string, ttl time.Duration) *RedisBackend {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisBackend{client: client, prefix: prefix, ttl: ttl}
}

// Get implements Backend.
func (r *RedisBackend) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Set implements Backend.
func (r *RedisBackend) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.key(key), value, r.ttl).Err()
}

// Delete implements Backend.
func (r *RedisBackend) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

func (r *RedisBackend) key(key string) string {
	return r.prefix + ":" + key
}
