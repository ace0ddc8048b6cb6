package market

import (
	"context"
	"strings"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/api"
)

// Users covers the signed-in account.
type Users struct {
	c *api.Client
}

// Me returns the full profile, including the id and phone number the access
// token does not carry.
func (u *Users) Me(ctx context.Context) (goSession.User, error) {
	user, err := api.Get[goSession.User](ctx, u.c, "/api/users/me")
	if err != nil {
		return goSession.User{}, err
	}
	user.Role = goSession.RoleFromClaim(normalizeRoleClaim(string(user.Role)))
	return user, nil
}

// UpdateNickname renames the account. Use Store.ChangeNickname instead when
// the local session should follow.
func (u *Users) UpdateNickname(ctx context.Context, nickname string) (goSession.User, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return goSession.User{}, goSession.ErrInvalidNickname
	}
	user, err := api.Patch[goSession.User](ctx, u.c, "/api/users/me/nickname", map[string]string{"nickname": nickname})
	if err != nil {
		return goSession.User{}, err
	}
	user.Role = goSession.RoleFromClaim(normalizeRoleClaim(string(user.Role)))
	return user, nil
}

// normalizeRoleClaim accepts "USER" as well as "ROLE_USER".
func normalizeRoleClaim(role string) string {
	if role == string(goSession.RoleUser) {
		return "ROLE_USER"
	}
	return role
}
