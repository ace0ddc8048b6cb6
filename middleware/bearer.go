package middleware

import (
	"context"
	"net/http"
	"strings"
)

// TokenSupplier returns the bearer token for an outgoing request, or "" to
// send the request without credentials.
type TokenSupplier func(ctx context.Context) string

// Bearer attaches the supplied token as a bearer credential. Requests that
// already carry an Authorization header are passed through untouched.
func Bearer(supplier TokenSupplier) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if supplier == nil || r.Header.Get("Authorization") != "" {
				return next.RoundTrip(r)
			}
			token := supplier(r.Context())
			if token == "" {
				return next.RoundTrip(r)
			}

			clone := r.Clone(r.Context())
			clone.Header.Set("Authorization", "Bearer "+token)
			return next.RoundTrip(clone)
		})
	}
}

// ParseBearer extracts the token from an Authorization header value.
func ParseBearer(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}

	return token, true
}
