package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// Logging records one line per request. Successful round trips log at debug,
// transport failures at warn. Headers are never logged.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)
			elapsed := time.Since(start)

			if err != nil {
				logger.LogAttrs(r.Context(), slog.LevelWarn, "http request failed",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Duration("elapsed", elapsed),
					slog.String("error", err.Error()),
				)
				return nil, err
			}

			logger.LogAttrs(r.Context(), slog.LevelDebug, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", resp.StatusCode),
				slog.Duration("elapsed", elapsed),
			)
			return resp, nil
		})
	}
}
