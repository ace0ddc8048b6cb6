package goSession

import (
	"time"

	"github.com/MrEthical07/goSession/jwt"
)

// Role is the normalized account role.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// RoleFromClaim maps the token's role claim. "ROLE_USER" is a user; every
// other value, including an empty one, is an admin.
func RoleFromClaim(claim string) Role {
	if claim == "ROLE_USER" {
		return RoleUser
	}
	return RoleAdmin
}

// User is the signed-in account.
type User struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Nickname    string `json:"nickname"`
	Role        Role   `json:"role"`
	PhoneNumber string `json:"phoneNumber"`
}

// UserFromClaims reconstructs the minimal user carried by an access token.
// The token has no id or phone number, so both stay zero.
func UserFromClaims(claims *jwt.Claims) User {
	if claims == nil {
		return User{}
	}
	return User{
		Email:    claims.Email(),
		Nickname: claims.Nickname,
		Role:     RoleFromClaim(claims.Role),
	}
}

// State is the session lifecycle state.
type State uint8

const (
	StateRestoring State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateRestoring:
		return "restoring"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Session is a point-in-time snapshot of a Store.
type Session struct {
	User      *User
	State     State
	IsLoading bool
}

// Authenticated reports whether the snapshot carries a user.
func (s Session) Authenticated() bool {
	return s.User != nil
}

// BootstrapStrategy selects how the user is resolved after a reissue.
type BootstrapStrategy uint8

const (
	// BootstrapDecode reads the user from the access-token claims and drops
	// expired tokens. No extra round trip.
	BootstrapDecode BootstrapStrategy = iota
	// BootstrapProfile treats the token as opaque and fetches the user from
	// the profile endpoint.
	BootstrapProfile
)

// SessionInfo is a diagnostic view of a Store, safe to log.
type SessionInfo struct {
	State          State
	Email          string
	Role           Role
	HasToken       bool
	TokenExpiresAt time.Time
	Restored       bool
	DroppedEvents  uint64
}
