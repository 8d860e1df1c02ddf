package tracker

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisProvider keeps documents in Redis under "<prefix><key>".
type RedisProvider struct {
	client *redis.Client
	prefix string
}

// NewRedisProvider wraps an existing client. prefix namespaces every key,
// e.g. "fitness:<device>:".
func NewRedisProvider(client *redis.Client, prefix string) *RedisProvider {
	return &RedisProvider{client: client, prefix: prefix}
}

func (r *RedisProvider) Available() bool { return r.client != nil }

func (r *RedisProvider) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return v, err
}

func (r *RedisProvider) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.prefix+key, value, 0).Err()
}
