// Package flows contains pure-function orchestrators for every Store operation.
//
// Each flow function (RunSignIn, RunLogout, RunReissue, RunRestore) accepts a
// typed dependency struct and returns a result carrying a failure kind that
// the root package maps onto its sentinel errors and metrics.
//
// # Architecture boundaries
//
// Flows coordinate the fetch client, token decoder and token mirror through
// function fields. They do NOT own session state; locking, epochs and event
// emission stay with the Store.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goSession (to avoid import cycles).
//   - Perform I/O directly. All I/O goes through dependency functions.
package flows
