// Package goSession is the client half of authentication for the auction
// marketplace: it owns who the current user is, the bearer token used by the
// fetch client, and the lifecycle that moves between them.
//
// A [Store] starts in [StateRestoring]. [Store.Restore] on a protected route
// trades the ambient refresh cookie for a new access token (at most once per
// Store) and settles in [StateAuthenticated] or [StateAnonymous]. Public
// routes settle immediately without a network call. [Store.Login],
// [Store.SignIn] and [Store.Logout] move between the settled states; there is
// no way back to restoring.
//
// # Architecture boundaries
//
// goSession is the public surface. It exposes [Store], [Builder], [Config],
// [User] and [Session]. HTTP plumbing lives in the api and middleware
// packages; flow orchestration and event dispatch live under internal/.
//
// # What this package must NOT do
//
//   - Hold the refresh credential. It lives in the fetch client's cookie jar.
//   - Keep package-level session state. Every Store is independent.
//   - Navigate on its own. Only SignIn and Logout call the Navigator.
package goSession
