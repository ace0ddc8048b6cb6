package tokenstore

import (
	"context"
	"errors"
	"time"
)

// DefaultKey is the fixed key the access token is mirrored under.
const DefaultKey = "accessToken"

var (
	// ErrNotFound is returned by Load when no unexpired token is mirrored.
	ErrNotFound = errors.New("token not found")
	// ErrUnavailable wraps backend failures (disk, redis).
	ErrUnavailable = errors.New("token store unavailable")
)

// Store mirrors a single access token.
//
// expiresAt is the token's exp claim; the zero time means no known expiry.
// Implementations may use it to expire the mirror on their own.
type Store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string, expiresAt time.Time) error
	Clear(ctx context.Context) error
}

func expired(expiresAt, now time.Time) bool {
	return !expiresAt.IsZero() && !now.Before(expiresAt)
}
