package events

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

type blockingSink struct {
	release chan struct{}
	mu      sync.Mutex
	got     []Event
}

func (s *blockingSink) Emit(_ context.Context, e Event) {
	<-s.release
	s.mu.Lock()
	s.got = append(s.got, e)
	s.mu.Unlock()
}

func TestDisabledDispatcherIsNil(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, NoOpSink{})
	if d != nil {
		t.Fatal("expected nil dispatcher when disabled")
	}
	d.Emit(context.Background(), Event{Type: "login"})
	d.Close()
	if d.Dropped() != 0 || d.Delivered() != 0 {
		t.Fatal("nil dispatcher must report zero counters")
	}
}

func TestDispatcherDeliversInOrder(t *testing.T) {
	sink := NewChannelSink(8)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 8}, sink)

	for _, typ := range []string{"login", "nickname_updated", "logout"} {
		d.Emit(context.Background(), Event{Type: typ})
	}
	d.Close()

	var got []string
	for i := 0; i < 3; i++ {
		select {
		case e := <-sink.Events():
			got = append(got, e.Type)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
	if strings.Join(got, ",") != "login,nickname_updated,logout" {
		t.Fatalf("unexpected order: %v", got)
	}
	if d.Delivered() != 3 {
		t.Fatalf("expected 3 delivered, got %d", d.Delivered())
	}
}

func TestEmitRejectsUntypedAndNormalizesEvents(t *testing.T) {
	sink := NewChannelSink(4)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 4}, sink)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	d.now = func() time.Time { return fixed }

	d.Emit(context.Background(), Event{Type: "  "})
	d.Emit(context.Background(), Event{})
	meta := map[string]string{"reason": "profile"}
	d.Emit(context.Background(), Event{Type: " session_expired ", Metadata: meta})
	meta["reason"] = "changed"
	d.Close()

	if d.Rejected() != 2 {
		t.Fatalf("expected 2 rejected, got %d", d.Rejected())
	}
	if d.Delivered() != 1 {
		t.Fatalf("expected 1 delivered, got %d", d.Delivered())
	}

	var e Event
	select {
	case e = <-sink.Events():
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	if e.Type != "session_expired" {
		t.Fatalf("expected trimmed type, got %q", e.Type)
	}
	if !e.Timestamp.Equal(fixed) {
		t.Fatalf("expected stamped timestamp, got %v", e.Timestamp)
	}
	if e.State != "unknown" {
		t.Fatalf("expected unknown state, got %q", e.State)
	}
	if e.Metadata["reason"] != "profile" {
		t.Fatalf("metadata must not follow caller mutation, got %q", e.Metadata["reason"])
	}
}

func TestEmitKeepsCallerTimestamp(t *testing.T) {
	sink := NewChannelSink(1)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1}, sink)
	at := time.Date(2025, 6, 7, 8, 9, 10, 0, time.UTC)

	d.Emit(context.Background(), Event{Type: "login", State: "authenticated", Timestamp: at, Metadata: map[string]string{}})
	d.Close()

	e := <-sink.Events()
	if !e.Timestamp.Equal(at) || e.State != "authenticated" || e.Metadata != nil {
		t.Fatalf("unexpected event: %+v", e)
	}
}

func TestDropIfFullCountsDrops(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{})}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), Event{Type: "login"})
	}
	if d.Dropped() == 0 {
		t.Fatal("expected drops with a blocked sink and a one-slot buffer")
	}
	close(sink.release)
	d.Close()
}

func TestBlockingEmitHonoursContext(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{})}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1}, sink)

	d.Emit(context.Background(), Event{Type: "a"})
	d.Emit(context.Background(), Event{Type: "b"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	d.Emit(ctx, Event{Type: "c"})
	if d.Dropped() != 1 {
		t.Fatalf("expected the cancelled emit to count as dropped, got %d", d.Dropped())
	}

	close(sink.release)
	d.Close()
}

func TestEmitAfterCloseIsIgnored(t *testing.T) {
	sink := NewChannelSink(1)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1}, sink)
	d.Close()
	d.Close()
	d.Emit(context.Background(), Event{Type: "late"})

	select {
	case e := <-sink.Events():
		t.Fatalf("unexpected event after close: %+v", e)
	default:
	}
}

func TestJSONWriterSinkWritesLines(t *testing.T) {
	var buf bytes.Buffer
	s := NewJSONWriterSink(&buf)
	s.Emit(context.Background(), Event{Type: "login", Email: "a@b.com", State: "authenticated", Success: true})
	s.Emit(context.Background(), Event{Type: "logout", State: "anonymous", Success: true})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var e Event
	if err := json.Unmarshal([]byte(lines[0]), &e); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if e.Type != "login" || e.Email != "a@b.com" {
		t.Fatalf("unexpected event: %+v", e)
	}
}

func TestSlogSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewSlogSink(slog.New(slog.NewTextHandler(&buf, nil)))
	s.Emit(context.Background(), Event{Type: "session_expired", State: "anonymous", Error: "unauthorized"})

	out := buf.String()
	if !strings.Contains(out, "type=session_expired") || !strings.Contains(out, "error=unauthorized") {
		t.Fatalf("unexpected log line: %s", out)
	}
}
