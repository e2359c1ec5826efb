package dispatcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/mackerel/internal/config"
	"github.com/dshills/mackerel/internal/input"
	"github.com/dshills/mackerel/internal/input/mouse"
)

// Handler processes one logical event. macro.Player implements it.
type Handler interface {
	OnEvent(ev input.Event, pointer mouse.Position)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ev input.Event, pointer mouse.Position)

// OnEvent calls f(ev, pointer).
func (f HandlerFunc) OnEvent(ev input.Event, pointer mouse.Position) {
	f(ev, pointer)
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger for dropped events and recovered panics.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Dispatcher queues raw events from capture and hands them, transformed,
// to a Handler on a single goroutine.
type Dispatcher struct {
	config  Config
	tracker *Tracker
	handler Handler
	logger  *slog.Logger

	// Metrics
	metrics *Metrics

	events    chan input.Event
	done      chan struct{}
	closeOnce sync.Once
	running   atomic.Bool

	submitted atomic.Uint64
	processed atomic.Uint64
	dropped   atomic.Uint64
}

// New creates a dispatcher delivering to handler with the given offset.
func New(cfg Config, offset config.Offset, handler Handler, opts ...Option) *Dispatcher {
	bufSize := cfg.BufferSize
	if bufSize <= 0 {
		bufSize = DefaultConfig().BufferSize
	}

	d := &Dispatcher{
		config:  cfg,
		tracker: NewTracker(offset),
		handler: handler,
		logger:  slog.Default(),
		events:  make(chan input.Event, bufSize),
		done:    make(chan struct{}),
	}

	if cfg.EnableMetrics {
		d.metrics = NewMetrics()
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Submit queues a raw event without blocking.
// It returns false if the event was dropped because the queue is full
// or the dispatcher is closed.
func (d *Dispatcher) Submit(ev input.Event) bool {
	select {
	case <-d.done:
		return false
	default:
	}

	select {
	case d.events <- ev:
		d.submitted.Add(1)
		return true
	default:
		n := d.dropped.Add(1)
		// Log the first drop and every 100th after it
		if n == 1 || n%100 == 0 {
			d.logger.Warn("event queue full, dropping event",
				"event", ev.String(),
				"dropped", n,
			)
		}
		return false
	}
}

// Run processes queued events until ctx is done or Close is called.
// Only one Run may be active at a time.
func (d *Dispatcher) Run(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer d.running.Store(false)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.done:
			return nil
		case ev := <-d.events:
			d.Process(ev)
		}
	}
}

// Process transforms one raw event and delivers it synchronously.
func (d *Dispatcher) Process(ev input.Event) {
	start := time.Now()

	logical, pointer := d.tracker.Observe(ev)

	var err error
	if d.config.RecoverFromPanic {
		err = d.deliverWithRecovery(logical, pointer)
	} else {
		d.handler.OnEvent(logical, pointer)
	}
	d.processed.Add(1)

	if d.metrics != nil {
		d.metrics.RecordDispatch(logical.Kind, time.Since(start), err != nil)
	}
}

// deliverWithRecovery calls the handler and converts a panic into an error.
func (d *Dispatcher) deliverWithRecovery(ev input.Event, pointer mouse.Position) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
			d.logger.Error("handler panic", "event", ev.String(), "panic", r)
			if d.metrics != nil {
				d.metrics.RecordPanic()
			}
		}
	}()
	d.handler.OnEvent(ev, pointer)
	return nil
}

// Close stops Run and rejects further submissions. Queued events that
// were not yet processed are discarded.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.done)
	})
}

// Metrics returns the metrics collector (may be nil if disabled).
func (d *Dispatcher) Metrics() *Metrics {
	return d.metrics
}

// Stats holds queue counters.
type Stats struct {
	Submitted uint64
	Processed uint64
	Dropped   uint64
	Pending   int
}

// Stats returns the current queue counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Submitted: d.submitted.Load(),
		Processed: d.processed.Load(),
		Dropped:   d.dropped.Load(),
		Pending:   len(d.events),
	}
}
