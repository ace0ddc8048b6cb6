package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis mirrors the token in Redis under prefix + key. The key TTL follows
// the token expiry so Redis drops stale mirrors on its own.
//
//	Performance: one Redis command per call.
type Redis struct {
	client redis.Cmdable
	key    string
	now    func() time.Time
}

// NewRedis returns a Redis-backed mirror. An empty prefix selects
// "gosession:"; an empty key selects [DefaultKey].
func NewRedis(client redis.Cmdable, prefix, key string) *Redis {
	if prefix == "" {
		prefix = "gosession:"
	}
	if key == "" {
		key = DefaultKey
	}
	return &Redis{client: client, key: prefix + key, now: time.Now}
}

// Key returns the fully-qualified Redis key.
func (r *Redis) Key() string {
	return r.key
}

func (r *Redis) Load(ctx context.Context) (string, error) {
	val, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if val == "" {
		return "", ErrNotFound
	}
	return val, nil
}

func (r *Redis) Save(ctx context.Context, token string, expiresAt time.Time) error {
	var ttl time.Duration
	if !expiresAt.IsZero() {
		ttl = expiresAt.Sub(r.now())
		if ttl <= 0 {
			// Never mirror a token that is already dead.
			return r.Clear(ctx)
		}
	}
	if err := r.client.Set(ctx, r.key, token, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (r *Redis) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
