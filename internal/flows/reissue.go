package flows

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/MrEthical07/goSession/jwt"
)

// ReissueFailureKind classifies reissue failures for root-level mapping.
type ReissueFailureKind int

const (
	ReissueFailureNone ReissueFailureKind = iota
	ReissueFailureRequest
	ReissueFailureNoToken
	ReissueFailureDecode
	ReissueFailureExpired
	ReissueFailureStale
	ReissueFailureProfile
)

// ReissueResponse is the body of a successful reissue.
type ReissueResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// ReissueDeps captures reissue dependencies.
//
// With FetchProfile unset the user comes from the token claims. With it set
// the token is treated as opaque: it is installed first and the user is
// fetched from the profile endpoint.
type ReissueDeps struct {
	FetchProfile bool

	Reissue    func(ctx context.Context) (ReissueResponse, error)
	DecodeUser DecodeUserFunc
	// Install sets the token on the fetch client unless the store moved past
	// epoch; it reports whether the token was installed.
	Install   func(epoch uint64, token string) bool
	Profile   func(ctx context.Context) (UserRecord, error)
	ExpiresAt func(token string) time.Time
}

type ReissueResult struct {
	Failure     ReissueFailureKind
	Err         error
	AccessToken string
	User        UserRecord
	ExpiresAt   time.Time
}

// RunReissue trades the refresh cookie for a new access token and resolves
// the user behind it.
func RunReissue(ctx context.Context, epoch uint64, deps ReissueDeps) ReissueResult {
	resp, err := deps.Reissue(ctx)
	if err != nil {
		return ReissueResult{Failure: ReissueFailureRequest, Err: err}
	}

	token := strings.TrimSpace(resp.AccessToken)
	if token == "" {
		return ReissueResult{Failure: ReissueFailureNoToken}
	}

	if !deps.FetchProfile {
		user, expiresAt, err := deps.DecodeUser(token)
		if err != nil {
			if errors.Is(err, jwt.ErrExpired) {
				return ReissueResult{Failure: ReissueFailureExpired, Err: err}
			}
			return ReissueResult{Failure: ReissueFailureDecode, Err: err}
		}
		return ReissueResult{AccessToken: token, User: user, ExpiresAt: expiresAt}
	}

	if !deps.Install(epoch, token) {
		return ReissueResult{Failure: ReissueFailureStale}
	}
	user, err := deps.Profile(ctx)
	if err != nil {
		return ReissueResult{Failure: ReissueFailureProfile, Err: err, AccessToken: token}
	}

	res := ReissueResult{AccessToken: token, User: user}
	if deps.ExpiresAt != nil {
		res.ExpiresAt = deps.ExpiresAt(token)
	}
	return res
}
