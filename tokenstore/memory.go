package tokenstore

import (
	"context"
	"sync"
	"time"
)

// Memory keeps the mirror in process memory. It is the default when no
// persistent backend is configured and the natural choice for tests.
type Memory struct {
	mu        sync.RWMutex
	token     string
	expiresAt time.Time
	now       func() time.Time
}

// NewMemory returns an empty in-memory mirror.
func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

func (m *Memory) Load(context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.token == "" || expired(m.expiresAt, m.now()) {
		return "", ErrNotFound
	}
	return m.token, nil
}

func (m *Memory) Save(_ context.Context, token string, expiresAt time.Time) error {
	m.mu.Lock()
	m.token = token
	m.expiresAt = expiresAt
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear(context.Context) error {
	m.mu.Lock()
	m.token = ""
	m.expiresAt = time.Time{}
	m.mu.Unlock()
	return nil
}
