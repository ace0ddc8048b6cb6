package flows

import "time"

// UserRecord is the flow-local user shape. Role is already normalized to
// "USER" or "ADMIN" by the decoder dependency.
type UserRecord struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Nickname    string `json:"nickname"`
	Role        string `json:"role"`
	PhoneNumber string `json:"phoneNumber"`
}

// DecodeUserFunc reconstructs a user from access-token claims and returns the
// token expiry (zero when the token has no exp claim). Expired tokens must
// yield an error matching jwt.ErrExpired.
type DecodeUserFunc func(token string) (UserRecord, time.Time, error)
