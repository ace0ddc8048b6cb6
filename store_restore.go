package goSession

import (
	"context"
	"fmt"
	"time"

	"github.com/MrEthical07/goSession/internal/flows"
)

// Restore settles the session for route.
//
// Public routes settle at once without touching the network. The first
// protected route trades the refresh cookie for a token, at most once per
// Store; later callers wait for that attempt or for ctx. Any failure settles
// anonymous without an error and without navigating.
func (s *Store) Restore(ctx context.Context, route string) Session {
	s.mu.Lock()
	if IsPublicRoute(route, s.config.Session.PublicRoutes) {
		skipped := !s.restoreStarted && s.state == StateRestoring
		if !s.restoreStarted {
			s.loading = false
			if s.state == StateRestoring {
				s.state = StateAnonymous
			}
		}
		snap := s.snapshotLocked()
		s.mu.Unlock()
		if skipped {
			s.metrics.Inc(MetricRestoreSkipped)
			s.emit(ctx, EventRestoreSkipped, "", true, nil, map[string]string{"route": normalizeRoute(route)})
		}
		return snap
	}

	if s.restoreStarted {
		done := s.restoreDone
		s.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
		}
		return s.Session()
	}
	s.restoreStarted = true

	if s.state == StateAuthenticated || s.client == nil || !s.flows.Initialized() || s.closed.Load() {
		s.loading = false
		if s.state == StateRestoring {
			s.state = StateAnonymous
		}
		snap := s.snapshotLocked()
		s.mu.Unlock()
		close(s.restoreDone)
		return snap
	}
	epoch := s.epoch
	s.mu.Unlock()

	defer close(s.restoreDone)

	rctx, cancel := context.WithTimeout(ctx, s.config.Session.RestoreTimeout)
	defer cancel()
	res := s.flows.Restore(rctx, epoch)

	return s.commitRestore(ctx, epoch, res)
}

func (s *Store) commitRestore(ctx context.Context, epoch uint64, res flows.RestoreResult) Session {
	s.mu.Lock()
	if s.epoch != epoch {
		// A login, logout or refresh happened meanwhile and owns the session.
		s.loading = false
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap
	}

	if res.Failure != flows.ReissueFailureNone {
		current := s.client.AccessToken()
		if current != "" && (current == res.Provisional || current == res.AccessToken) {
			s.client.SetAccessToken("")
		}
		s.epoch++
		s.user = nil
		s.tokenExpiresAt = time.Time{}
		s.state = StateAnonymous
		s.loading = false
		_ = s.clearMirror(ctx)
		snap := s.snapshotLocked()
		s.mu.Unlock()

		s.metrics.Inc(MetricRestoreAnonymous)
		s.logger.Debug("session restore settled anonymous", "reason", reissueReason(res.Failure), "error", res.Err)
		s.emit(ctx, EventRestoreFailed, "", false, res.Err, map[string]string{"reason": reissueReason(res.Failure)})
		return snap
	}

	user := userFromRecord(res.User)
	s.epoch++
	s.client.SetAccessToken(res.AccessToken)
	s.user = user
	s.tokenExpiresAt = res.ExpiresAt
	s.state = StateAuthenticated
	s.loading = false
	s.saveMirror(ctx, res.AccessToken, res.ExpiresAt)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.metrics.Inc(MetricRestoreSuccess)
	s.emit(ctx, EventRestored, user.Email, true, nil, nil)
	return snap
}

// refresh is the fetch client's reissue hook. The client coalesces
// concurrent calls, so one 401 storm costs one reissue.
func (s *Store) refresh(ctx context.Context) (string, error) {
	s.mu.RLock()
	epoch := s.epoch
	s.mu.RUnlock()

	res := s.flows.Reissue(ctx, epoch)
	if res.Failure != flows.ReissueFailureNone {
		s.metrics.Inc(MetricRefreshFailure)
		if res.Failure == flows.ReissueFailureProfile {
			s.dropInstalled(ctx, epoch, res.AccessToken)
		}
		if res.Err != nil {
			return "", fmt.Errorf("token reissue failed (%s): %w", reissueReason(res.Failure), res.Err)
		}
		return "", fmt.Errorf("token reissue failed: %s", reissueReason(res.Failure))
	}

	next := userFromRecord(res.User)

	s.mu.Lock()
	if s.epoch != epoch {
		token := s.client.AccessToken()
		s.mu.Unlock()
		if token == "" {
			return "", ErrNotAuthenticated
		}
		return token, nil
	}
	if prev := s.user; prev != nil && prev.Email == next.Email {
		if next.ID == 0 {
			next.ID = prev.ID
		}
		if next.PhoneNumber == "" {
			next.PhoneNumber = prev.PhoneNumber
		}
	}
	s.epoch++
	s.client.SetAccessToken(res.AccessToken)
	s.user = next
	s.tokenExpiresAt = res.ExpiresAt
	s.state = StateAuthenticated
	s.loading = false
	s.saveMirror(ctx, res.AccessToken, res.ExpiresAt)
	s.mu.Unlock()

	s.metrics.Inc(MetricRefreshSuccess)
	s.emit(ctx, EventTokenRefreshed, next.Email, true, nil, nil)
	return res.AccessToken, nil
}

// handleUnauthorized is the fetch client's hook for a 401 that could not be
// recovered. token is the bearer the failed request carried.
func (s *Store) handleUnauthorized(ctx context.Context, token string) {
	s.mu.Lock()
	if s.state == StateRestoring || s.client.AccessToken() != token {
		s.mu.Unlock()
		return
	}
	if s.state == StateAnonymous && token == "" {
		s.mu.Unlock()
		return
	}
	var email string
	if s.user != nil {
		email = s.user.Email
	}
	s.clearLocked()
	_ = s.clearMirror(ctx)
	s.mu.Unlock()

	s.metrics.Inc(MetricUnauthorized)
	s.logger.Info("session expired", "email", email)
	s.emit(ctx, EventSessionExpired, email, false, nil, nil)
}

// dropInstalled clears a session whose reissued token was installed for a
// profile fetch that then failed. The client no longer carries the token the
// failed request used, so handleUnauthorized would leave it in place.
func (s *Store) dropInstalled(ctx context.Context, epoch uint64, token string) {
	s.mu.Lock()
	if s.epoch != epoch || token == "" || s.client.AccessToken() != token {
		s.mu.Unlock()
		return
	}
	var email string
	if s.user != nil {
		email = s.user.Email
	}
	s.clearLocked()
	_ = s.clearMirror(ctx)
	s.mu.Unlock()

	s.metrics.Inc(MetricUnauthorized)
	s.logger.Info("session expired", "email", email, "reason", reissueReason(flows.ReissueFailureProfile))
	s.emit(ctx, EventSessionExpired, email, false, nil, map[string]string{"reason": reissueReason(flows.ReissueFailureProfile)})
}

func reissueReason(kind flows.ReissueFailureKind) string {
	switch kind {
	case flows.ReissueFailureRequest:
		return "request"
	case flows.ReissueFailureNoToken:
		return "no_token"
	case flows.ReissueFailureDecode:
		return "decode"
	case flows.ReissueFailureExpired:
		return "expired"
	case flows.ReissueFailureStale:
		return "stale"
	case flows.ReissueFailureProfile:
		return "profile"
	default:
		return "none"
	}
}
