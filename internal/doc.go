// Package internal holds the parts of goSession that are private to the
// module.
//
// # Sub-packages
//
//   - events — async session event dispatch (Dispatcher + Sink implementations)
//   - flows — pure-function orchestrators for sign-in, logout, reissue and restore
//   - rate — Redis-backed fixed-window sign-in throttle
//   - testbackend — in-process auction API for tests, examples/ and cmd/gosession-loadtest
//
// # What this package must NOT do
//
//   - Export types that appear in the public goSession API.
//   - Be imported by any package outside the goSession module.
package internal
