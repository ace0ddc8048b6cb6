// Package middleware provides http.RoundTripper decorators that make up the
// outgoing request pipeline of the fetch client.
//
// # Stages
//
//   - [Bearer] — attaches "Authorization: Bearer <token>" from a token supplier.
//   - [RequestID] — stamps a UUID request id for backend correlation.
//   - [Tracing] — wraps each request in an OpenTelemetry client span and
//     injects the propagation headers.
//   - [Logging] — structured request logging through log/slog.
//
// [Chain] composes stages; the first stage listed runs outermost.
//
// # What this package must NOT do
//
//   - Read or mutate session state (tokens arrive only through a supplier).
//   - Retry requests or interpret response bodies.
//   - Mutate the caller's *http.Request (stages clone before editing headers).
package middleware
