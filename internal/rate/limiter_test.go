package rate

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, cfg Config) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, cfg), mr
}

func TestLimiterBlocksAfterMaxAttempts(t *testing.T) {
	l, _ := newTestLimiter(t, Config{MaxAttempts: 3, Window: time.Minute})
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if err := l.Check(ctx, "a@b.com"); err != nil {
			t.Fatalf("attempt %d refused: %v", i, err)
		}
		n, err := l.RecordFailure(ctx, "a@b.com")
		if err != nil {
			t.Fatalf("record: %v", err)
		}
		if n != i {
			t.Fatalf("expected count %d, got %d", i, n)
		}
	}
	if err := l.Check(ctx, "A@B.com "); err != ErrRateLimited {
		t.Fatalf("expected ErrRateLimited for normalized email, got %v", err)
	}
	if err := l.Check(ctx, "other@b.com"); err != nil {
		t.Fatalf("other email must not be limited: %v", err)
	}
}

func TestLimiterWindowExpires(t *testing.T) {
	l, mr := newTestLimiter(t, Config{MaxAttempts: 1, Window: time.Minute})
	ctx := context.Background()

	if _, err := l.RecordFailure(ctx, "a@b.com"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := l.Check(ctx, "a@b.com"); err != ErrRateLimited {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if ttl := mr.TTL("signin:a@b.com"); ttl != time.Minute {
		t.Fatalf("expected window TTL, got %s", ttl)
	}

	mr.FastForward(time.Minute + time.Second)
	if err := l.Check(ctx, "a@b.com"); err != nil {
		t.Fatalf("expected window to expire, got %v", err)
	}
}

func TestLimiterResetClearsCounter(t *testing.T) {
	l, _ := newTestLimiter(t, Config{MaxAttempts: 2})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := l.RecordFailure(ctx, "a@b.com"); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if err := l.Reset(ctx, "a@b.com"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	n, err := l.Attempts(ctx, "a@b.com")
	if err != nil || n != 0 {
		t.Fatalf("expected 0 attempts after reset, got %d, %v", n, err)
	}
}

func TestLimiterRedisDown(t *testing.T) {
	l, mr := newTestLimiter(t, Config{})
	mr.Close()

	if err := l.Check(context.Background(), "a@b.com"); err == nil {
		t.Fatal("expected an error with redis down")
	}
}
