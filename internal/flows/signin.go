package flows

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/MrEthical07/goSession/api"
	"github.com/MrEthical07/goSession/jwt"
)

// SignInFailureKind classifies sign-in failures for root-level mapping.
type SignInFailureKind int

const (
	SignInFailureNone SignInFailureKind = iota
	SignInFailureMissingInput
	SignInFailureRejected
	SignInFailureTransport
	SignInFailureNoToken
	SignInFailureDecode
	SignInFailureExpired
)

// SignInResponse is the body of a successful sign-in.
type SignInResponse struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken,omitempty"`
	User         *UserRecord `json:"user,omitempty"`
}

// SignInDeps captures sign-in dependencies.
type SignInDeps struct {
	PostSignIn func(ctx context.Context, email, password string) (SignInResponse, error)
	DecodeUser DecodeUserFunc
}

type SignInResult struct {
	Failure     SignInFailureKind
	Err         error
	AccessToken string
	User        UserRecord
	ExpiresAt   time.Time
}

// RunSignIn exchanges credentials for an access token and decodes the user
// from its claims. Fields the token does not carry (id, phone number) are
// taken from the response body when the backend includes a user.
func RunSignIn(ctx context.Context, email, password string, deps SignInDeps) SignInResult {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return SignInResult{Failure: SignInFailureMissingInput}
	}

	resp, err := deps.PostSignIn(ctx, email, password)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			return SignInResult{Failure: SignInFailureRejected, Err: err}
		}
		return SignInResult{Failure: SignInFailureTransport, Err: err}
	}

	token := strings.TrimSpace(resp.AccessToken)
	if token == "" {
		return SignInResult{Failure: SignInFailureNoToken}
	}

	user, expiresAt, err := deps.DecodeUser(token)
	if err != nil {
		if errors.Is(err, jwt.ErrExpired) {
			return SignInResult{Failure: SignInFailureExpired, Err: err}
		}
		return SignInResult{Failure: SignInFailureDecode, Err: err}
	}

	if resp.User != nil {
		if user.ID == 0 {
			user.ID = resp.User.ID
		}
		if user.PhoneNumber == "" {
			user.PhoneNumber = resp.User.PhoneNumber
		}
	}

	return SignInResult{
		AccessToken: token,
		User:        user,
		ExpiresAt:   expiresAt,
	}
}
