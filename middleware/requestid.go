package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

// DefaultRequestIDHeader is the header used when RequestID gets "".
const DefaultRequestIDHeader = "X-Request-ID"

// RequestID sets header to a fresh UUID unless the caller already set one.
func RequestID(header string) Middleware {
	if header == "" {
		header = DefaultRequestIDHeader
	}
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get(header) != "" {
				return next.RoundTrip(r)
			}
			clone := r.Clone(r.Context())
			clone.Header.Set(header, uuid.NewString())
			return next.RoundTrip(clone)
		})
	}
}
