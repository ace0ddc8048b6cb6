package goSession

import (
	"io"
	"log/slog"

	"github.com/MrEthical07/goSession/internal/events"
)

// Event types emitted by a Store.
const (
	EventLogin           = "login"
	EventLoginFailure    = "login_failure"
	EventLogout          = "logout"
	EventRestored        = "restored"
	EventRestoreSkipped  = "restore_skipped"
	EventRestoreFailed   = "restore_anonymous"
	EventTokenRefreshed  = "token_refreshed"
	EventSessionExpired  = "session_expired"
	EventNicknameUpdated = "nickname_updated"
)

type (
	// Event is one session lifecycle change. Subscribers re-read the Store
	// when they receive one.
	Event = events.Event
	// EventSink receives events on the dispatcher goroutine.
	EventSink = events.Sink
	// EventSinkFunc adapts a function to EventSink.
	EventSinkFunc = events.SinkFunc
	NoOpSink      = events.NoOpSink
	ChannelSink   = events.ChannelSink
	// JSONWriterSink writes one JSON object per line.
	JSONWriterSink = events.JSONWriterSink
	SlogSink       = events.SlogSink
)

func NewChannelSink(buffer int) *ChannelSink {
	return events.NewChannelSink(buffer)
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return events.NewJSONWriterSink(w)
}

func NewSlogSink(logger *slog.Logger) *SlogSink {
	return events.NewSlogSink(logger)
}
