// Package tokenstore persists the access-token mirror that lets a session
// survive a process restart before the reissue round-trip completes.
//
// # Architecture boundaries
//
// The mirror is a cache, never an authority: the session store decides what
// to install and the backend reissue response always wins. Implementations
// only read, write and erase one token under one key.
//
// # What this package must NOT do
//
//   - Store the refresh credential (it lives in the HTTP cookie jar).
//   - Decode or validate tokens.
//   - Import goSession, api, or jwt.
package tokenstore
