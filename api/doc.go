// Package api is the authenticated fetch client for the marketplace backend.
//
// Every request funnels through [Client.Do]: the body is JSON-encoded, the
// current access token is attached by a bearer middleware stage, and any
// non-2xx response comes back as an [*Error] that callers can classify with
// errors.Is against [ErrUnauthorized], [ErrNotFound], [ErrValidation] and
// friends.
//
// The access token lives in the client and is swapped atomically by
// [Client.SetAccessToken]; a request issued after SetAccessToken returns
// always carries the new token.
//
// With [WithRefresher] the client retries a request once after a 401,
// sharing a single reissue among concurrent failures. When no retry is
// possible the handler set by [WithUnauthorizedHandler] runs.
package api
