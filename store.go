package goSession

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goSession/api"
	"github.com/MrEthical07/goSession/internal/events"
	"github.com/MrEthical07/goSession/internal/flows"
	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/tokenstore"
)

// Store owns the session: the signed-in user, the lifecycle state and every
// mutation of the fetch client's bearer token.
//
// Store is safe for concurrent use. Build one with [New].
type Store struct {
	config    Config
	client    *api.Client
	decoder   *jwt.Decoder
	mirror    tokenstore.Store
	navigator Navigator
	logger    *slog.Logger
	metrics   *Metrics
	events    *events.Dispatcher
	flows     flows.Service

	mu             sync.RWMutex
	user           *User
	state          State
	loading        bool
	tokenExpiresAt time.Time
	// epoch advances on every session mutation. Async work records the
	// epoch it started under and commits only if it is still current.
	epoch uint64

	restoreStarted bool
	restoreDone    chan struct{}

	signingIn atomic.Bool
	closed    atomic.Bool
}

// Session returns a snapshot. The user is a copy.
func (s *Store) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Session {
	return Session{
		User:      copyUser(s.user),
		State:     s.state,
		IsLoading: s.loading,
	}
}

// User returns a copy of the signed-in user, or nil.
func (s *Store) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyUser(s.user)
}

func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// API returns the fetch client that carries the session token.
func (s *Store) API() *api.Client {
	return s.client
}

func (s *Store) Metrics() *Metrics {
	return s.metrics
}

// Config returns a copy of the configuration the Store was built with.
func (s *Store) Config() Config {
	return cloneConfig(s.config)
}

// Info returns a diagnostic view that never includes the token itself.
func (s *Store) Info() SessionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := SessionInfo{
		State:          s.state,
		TokenExpiresAt: s.tokenExpiresAt,
		DroppedEvents:  s.events.Dropped(),
	}
	if s.user != nil {
		info.Email = s.user.Email
		info.Role = s.user.Role
	}
	if s.client != nil {
		info.HasToken = s.client.AccessToken() != ""
	}
	select {
	case <-s.restoreDone:
		info.Restored = true
	default:
	}
	return info
}

// Close drains pending events. Afterwards SignIn and ChangeNickname fail
// with ErrStoreClosed, Restore settles without the network and Logout
// clears the session locally. Snapshots keep working.
func (s *Store) Close() {
	if s.closed.Swap(true) {
		return
	}
	s.events.Close()
}

func (s *Store) ready() error {
	if s == nil || s.client == nil || !s.flows.Initialized() {
		return ErrStoreNotReady
	}
	if s.closed.Load() {
		return ErrStoreClosed
	}
	return nil
}

/*
====================================
TOKEN / USER HELPERS
====================================
*/

func (s *Store) decodeUser(token string) (flows.UserRecord, time.Time, error) {
	claims, err := s.decoder.Decode(token)
	if err != nil {
		return flows.UserRecord{}, time.Time{}, err
	}
	u := UserFromClaims(claims)
	return flows.UserRecord{
		Email:    u.Email,
		Nickname: u.Nickname,
		Role:     string(u.Role),
	}, claims.ExpiresAtTime(), nil
}

// installToken sets token on the fetch client unless the session moved past
// epoch.
func (s *Store) installToken(epoch uint64, token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return false
	}
	s.client.SetAccessToken(token)
	return true
}

// clearLocked drops token, user and expiry and settles anonymous.
func (s *Store) clearLocked() {
	s.epoch++
	s.client.SetAccessToken("")
	s.user = nil
	s.tokenExpiresAt = time.Time{}
	s.state = StateAnonymous
	s.loading = false
}

func (s *Store) clearSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
	return s.clearMirror(ctx)
}

func (s *Store) loadMirror(ctx context.Context) (string, error) {
	token, err := s.mirror.Load(ctx)
	if err != nil && !errors.Is(err, tokenstore.ErrNotFound) {
		s.metrics.Inc(MetricMirrorFailure)
		s.logger.Warn("token mirror read failed", "error", err)
	}
	return token, err
}

// mirrorTimeout bounds a mirror write once it is detached from the caller.
const mirrorTimeout = 2 * time.Second

// mirrorContext keeps the caller's values but not its cancellation: a
// session cleared in memory must not outlive its mirrored token.
func mirrorContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), mirrorTimeout)
}

// saveMirror and clearMirror run under s.mu so mirror writes land in the
// same order as the session mutations behind them.
func (s *Store) saveMirror(ctx context.Context, token string, expiresAt time.Time) {
	if s.mirror == nil {
		return
	}
	ctx, cancel := mirrorContext(ctx)
	defer cancel()
	if err := s.mirror.Save(ctx, token, expiresAt); err != nil {
		s.metrics.Inc(MetricMirrorFailure)
		s.logger.Warn("token mirror write failed", "error", err)
	}
}

func (s *Store) clearMirror(ctx context.Context) error {
	if s.mirror == nil {
		return nil
	}
	ctx, cancel := mirrorContext(ctx)
	defer cancel()
	if err := s.mirror.Clear(ctx); err != nil {
		s.metrics.Inc(MetricMirrorFailure)
		s.logger.Warn("token mirror clear failed", "error", err)
		return err
	}
	return nil
}

func (s *Store) emit(ctx context.Context, eventType, email string, success bool, err error, metadata map[string]string) {
	if s.events == nil {
		return
	}
	e := Event{
		Timestamp: time.Now(),
		Type:      eventType,
		Email:     email,
		State:     s.State().String(),
		Success:   success,
		Metadata:  metadata,
	}
	if err != nil {
		e.Error = err.Error()
	}
	s.events.Emit(ctx, e)
}

func userFromRecord(r flows.UserRecord) *User {
	return &User{
		ID:          r.ID,
		Email:       r.Email,
		Nickname:    r.Nickname,
		Role:        normalizeRole(r.Role),
		PhoneNumber: r.PhoneNumber,
	}
}

// normalizeRole accepts both the claim form and the normalized form.
func normalizeRole(role string) Role {
	switch strings.TrimSpace(role) {
	case string(RoleUser), "ROLE_USER":
		return RoleUser
	default:
		return RoleAdmin
	}
}

func copyUser(u *User) *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Role = normalizeRole(string(u.Role))
	return &c
}

// MetricsSnapshot returns a copy of the Store counters for exporters.
func (s *Store) MetricsSnapshot() MetricsSnapshot {
	return s.metrics.Snapshot()
}

// EventsDropped reports events lost to dispatcher backpressure.
func (s *Store) EventsDropped() uint64 {
	return s.events.Dropped()
}
