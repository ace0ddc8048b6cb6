package market

import (
	"context"
	"net/http"

	"github.com/MrEthical07/goSession/api"
)

// Passwords covers the reset flow reached from the emailed link. Neither
// call needs a session.
type Passwords struct {
	c *api.Client
}

// VerifyResetToken reports whether token is still redeemable.
func (p *Passwords) VerifyResetToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrMissingResetParams
	}
	return p.c.Do(ctx, http.MethodGet, "/api/auth/password/reset/verify", nil, nil,
		api.SkipAuth(), api.WithQuery("token", token))
}

// Reset sets a new password using a reset token.
func (p *Passwords) Reset(ctx context.Context, token, password string) error {
	if token == "" || password == "" {
		return ErrMissingResetParams
	}
	body := map[string]string{"resetToken": token, "password": password}
	return p.c.Do(ctx, http.MethodPost, "/api/auth/password/reset", body, nil, api.SkipAuth())
}
