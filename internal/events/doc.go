// Package events relays session lifecycle events to subscribers.
//
// The session store emits an [Event] whenever identity changes (login,
// logout, restore, reissue, expiry, nickname patch). Subscribers use them to
// resynchronize whatever they render from the session.
//
// # Components
//
//   - [Sink] receives events (channel, JSON lines, slog, no-op).
//   - [Dispatcher] is a buffered async relay with drop-if-full or
//     block-if-full semantics.
//
// This package does not decide which events to emit and never imports the
// root package.
package events
