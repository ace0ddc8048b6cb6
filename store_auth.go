package goSession

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/MrEthical07/goSession/api"
	"github.com/MrEthical07/goSession/internal/flows"
)

// Login installs token as the session's bearer token and user as the
// signed-in account. It cannot fail; a mirror write error is logged.
func (s *Store) Login(ctx context.Context, token string, user User) {
	u := user
	u.Role = normalizeRole(string(user.Role))

	s.mu.Lock()
	s.epoch++
	s.client.SetAccessToken(token)
	s.user = &u
	s.state = StateAuthenticated
	s.loading = false
	s.tokenExpiresAt = s.decoder.PeekExpiry(token)
	s.saveMirror(ctx, token, s.tokenExpiresAt)
	s.mu.Unlock()

	s.metrics.Inc(MetricLoginSuccess)
	s.emit(ctx, EventLogin, u.Email, true, nil, nil)
}

// SignIn exchanges credentials for a session and navigates to the home
// path. Every rejection by the backend reads as ErrInvalidCredentials,
// except throttling, which reads as ErrTooManyAttempts.
func (s *Store) SignIn(ctx context.Context, email, password string) (*User, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if !s.signingIn.CompareAndSwap(false, true) {
		s.metrics.Inc(MetricLoginInProgress)
		return nil, ErrLoginInProgress
	}
	defer s.signingIn.Store(false)

	res := s.flows.SignIn(ctx, email, password)
	switch res.Failure {
	case flows.SignInFailureNone:
	case flows.SignInFailureMissingInput:
		return nil, ErrMissingCredentials
	case flows.SignInFailureRejected:
		s.metrics.Inc(MetricLoginFailure)
		s.emit(ctx, EventLoginFailure, strings.TrimSpace(email), false, res.Err, map[string]string{
			"status": fmt.Sprint(api.StatusOf(res.Err)),
		})
		if errors.Is(res.Err, api.ErrTooManyRequests) {
			return nil, ErrTooManyAttempts
		}
		return nil, ErrInvalidCredentials
	case flows.SignInFailureTransport:
		s.metrics.Inc(MetricLoginFailure)
		return nil, fmt.Errorf("sign-in request: %w", res.Err)
	case flows.SignInFailureExpired:
		s.metrics.Inc(MetricLoginFailure)
		return nil, ErrTokenExpired
	default:
		s.metrics.Inc(MetricLoginFailure)
		s.logger.Warn("sign-in returned an unusable token", "error", res.Err)
		return nil, ErrTokenInvalid
	}

	user := userFromRecord(res.User)
	s.Login(ctx, res.AccessToken, *user)
	s.navigator.Navigate(ctx, s.config.Session.HomePath)
	return copyUser(user), nil
}

// Logout tells the backend, then clears the session whatever the backend
// said and navigates to the login path. A closed Store skips the backend.
func (s *Store) Logout(ctx context.Context) {
	var email string
	if u := s.User(); u != nil {
		email = u.Email
	}

	var res flows.LogoutResult
	if s.closed.Load() {
		res.ClearErr = s.clearSession(ctx)
	} else {
		res = s.flows.Logout(ctx)
	}
	if res.NotifyErr != nil {
		s.metrics.Inc(MetricLogoutBackendFailure)
		s.logger.Warn("logout request failed", "error", res.NotifyErr)
	}
	s.metrics.Inc(MetricLogout)

	var meta map[string]string
	if res.NotifyErr != nil {
		meta = map[string]string{"backend": "failed"}
	}
	s.emit(ctx, EventLogout, email, res.NotifyErr == nil, res.NotifyErr, meta)
	s.navigator.Navigate(ctx, s.config.Session.LoginPath)
}

// UpdateNickname replaces the local user's nickname. It does nothing when
// nobody is signed in.
func (s *Store) UpdateNickname(nickname string) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return
	}
	u := *s.user
	u.Nickname = nickname
	s.user = &u
	s.mu.Unlock()

	s.emit(context.Background(), EventNicknameUpdated, u.Email, true, nil, nil)
}

// ChangeNickname asks the backend to rename the account, then updates the
// local user. Backend errors are returned as *api.Error.
func (s *Store) ChangeNickname(ctx context.Context, nickname string) (*User, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, ErrInvalidNickname
	}
	if s.User() == nil {
		return nil, ErrNotAuthenticated
	}

	body := map[string]string{"nickname": nickname}
	if err := s.client.Do(ctx, http.MethodPatch, s.config.API.Endpoints.Nickname, body, nil); err != nil {
		return nil, err
	}
	s.UpdateNickname(nickname)
	return s.User(), nil
}
