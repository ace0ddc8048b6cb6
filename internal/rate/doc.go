// Package rate provides a Redis-backed fixed-window counter for failed
// sign-in attempts.
//
// # Window semantics
//
// INCR + EXPIRE on the first hit. The window opens with the first failure
// and is not extended by later ones. Keys are prefix + lowercased email.
//
// # What this package must NOT do
//
//   - Decide HTTP status codes (the caller maps ErrRateLimited).
//   - Be imported outside the goSession module.
package rate
