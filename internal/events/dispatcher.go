package events

import (
	"context"
	"maps"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Config controls how session events are queued for the sink.
type Config struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops an event when the queue is full instead of making
	// the session operation wait for the sink.
	DropIfFull bool
}

// Dispatcher hands session events to a sink on one background goroutine,
// in the order the Store emitted them. A nil *Dispatcher is valid and
// drops everything.
type Dispatcher struct {
	cfg   Config
	sink  Sink
	queue chan Event
	stop  chan struct{}
	wg    sync.WaitGroup
	now   func() time.Time

	dropped   atomic.Uint64
	rejected  atomic.Uint64
	delivered atomic.Uint64

	closed    atomic.Bool
	closeOnce sync.Once
}

// NewDispatcher returns nil when cfg is disabled.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &Dispatcher{
		cfg:   cfg,
		sink:  sink,
		queue: make(chan Event, cfg.BufferSize),
		stop:  make(chan struct{}),
		now:   time.Now,
	}
	d.wg.Add(1)
	go d.loop()
	return d
}

func (d *Dispatcher) loop() {
	defer d.wg.Done()
	for {
		select {
		case e := <-d.queue:
			d.deliver(e)
		case <-d.stop:
			d.drain()
			return
		}
	}
}

// drain delivers whatever was queued before Close.
func (d *Dispatcher) drain() {
	for {
		select {
		case e := <-d.queue:
			d.deliver(e)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(e Event) {
	d.sink.Emit(context.Background(), e)
	d.delivered.Add(1)
}

// normalize trims the type, stamps a missing timestamp and detaches the
// metadata map from the caller. Events without a type are rejected.
func (d *Dispatcher) normalize(e Event) (Event, bool) {
	e.Type = strings.TrimSpace(e.Type)
	if e.Type == "" {
		return e, false
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = d.now()
	}
	if e.State == "" {
		e.State = "unknown"
	}
	if len(e.Metadata) == 0 {
		e.Metadata = nil
	} else {
		e.Metadata = maps.Clone(e.Metadata)
	}
	return e, true
}

// Emit queues e for the sink. With DropIfFull a full queue drops and counts
// the event; otherwise Emit waits for room until ctx ends or the dispatcher
// closes. Events emitted after Close are ignored.
func (d *Dispatcher) Emit(ctx context.Context, e Event) {
	if d == nil || d.closed.Load() {
		return
	}
	e, ok := d.normalize(e)
	if !ok {
		d.rejected.Add(1)
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.cfg.DropIfFull {
		select {
		case d.queue <- e:
		case <-d.stop:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.queue <- e:
	case <-ctx.Done():
		d.dropped.Add(1)
	case <-d.stop:
	}
}

// Close stops accepting events and waits until queued ones reach the sink.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.stop)
		d.wg.Wait()
	})
}

// Dropped counts events lost to a full queue or a cancelled context.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

// Rejected counts events refused for having no type.
func (d *Dispatcher) Rejected() uint64 {
	if d == nil {
		return 0
	}
	return d.rejected.Load()
}

func (d *Dispatcher) Delivered() uint64 {
	if d == nil {
		return 0
	}
	return d.delivered.Load()
}
