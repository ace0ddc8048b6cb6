package rate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config tunes the sign-in throttle.
type Config struct {
	// MaxAttempts failed sign-ins are allowed per window; the next attempt
	// is refused.
	MaxAttempts int
	Window      time.Duration
	Prefix      string
}

// DefaultConfig allows five failures per fifteen minutes.
func DefaultConfig() Config {
	return Config{MaxAttempts: 5, Window: 15 * time.Minute, Prefix: "signin:"}
}

// Limiter counts failed sign-in attempts per email in Redis.
type Limiter struct {
	redis  redis.Cmdable
	config Config
}

// New returns a Limiter. Zero fields in cfg take their DefaultConfig values.
func New(client redis.Cmdable, cfg Config) *Limiter {
	def := DefaultConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.Prefix == "" {
		cfg.Prefix = def.Prefix
	}
	return &Limiter{redis: client, config: cfg}
}

// Check returns ErrRateLimited when email has no attempts left.
func (l *Limiter) Check(ctx context.Context, email string) error {
	n, err := l.Attempts(ctx, email)
	if err != nil {
		return err
	}
	if n >= l.config.MaxAttempts {
		return ErrRateLimited
	}
	return nil
}

// RecordFailure counts one failed attempt and returns the running total.
func (l *Limiter) RecordFailure(ctx context.Context, email string) (int, error) {
	key := l.key(email)
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.Window).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}
	return int(count), nil
}

// Reset clears the counter after a successful sign-in.
func (l *Limiter) Reset(ctx context.Context, email string) error {
	if err := l.redis.Del(ctx, l.key(email)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Attempts returns the failures counted in the current window. Unknown
// emails read as zero.
func (l *Limiter) Attempts(ctx context.Context, email string) (int, error) {
	count, err := l.redis.Get(ctx, l.key(email)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}

func (l *Limiter) key(email string) string {
	return l.config.Prefix + strings.ToLower(strings.TrimSpace(email))
}
