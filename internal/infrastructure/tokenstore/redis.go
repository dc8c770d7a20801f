package tokenstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores values under storefront:<origin>:<key>
type RedisBackend struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisBackend creates a Redis backend. A zero ttl keeps values until cleared.
func NewRedisBackend(client *redis.Client, ttl time.Duration) *RedisBackend {
	return &RedisBackend{
		client: client,
		prefix: "storefront:",
		ttl:    ttl,
	}
}

func (r *RedisBackend) key(origin, key string) string {
	return r.prefix + origin + ":" + key
}

func (r *RedisBackend) Get(ctx context.Context, origin, key string) (string, error) {
	v, err := r.client.Get(ctx, r.key(origin, key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotStored
		}
		return "", err
	}
	return v, nil
}

func (r *RedisBackend) Set(ctx context.Context, origin, key, value string) error {
	return r.client.Set(ctx, r.key(origin, key), value, r.ttl).Err()
}

func (r *RedisBackend) Delete(ctx context.Context, origin, key string) error {
	return r.client.Del(ctx, r.key(origin, key)).Err()
}
