package macro

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/mackerel/internal/input"
	"github.com/dshills/mackerel/internal/input/mouse"
)

// EmitDelay is the pause after every injected event.
const EmitDelay = 40 * time.Millisecond

// Injector delivers synthetic events to the OS input stream.
type Injector interface {
	Inject(ev input.Event) error
}

// InjectorFunc adapts a function to the Injector interface.
type InjectorFunc func(ev input.Event) error

// Inject calls f(ev).
func (f InjectorFunc) Inject(ev input.Event) error {
	return f(ev)
}

// Stats holds playback counters.
type Stats struct {
	Firings        uint64
	Injected       uint64
	InjectFailures uint64
	Waits          uint64
}

// Option configures a Player.
type Option func(*Player)

// WithSleep replaces time.Sleep for waits and emit delays.
func WithSleep(sleep func(time.Duration)) Option {
	return func(p *Player) {
		if sleep != nil {
			p.sleep = sleep
		}
	}
}

// WithLogger sets the logger used for playback diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Player) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Player matches incoming events against macros and replays them.
type Player struct {
	macros   []Macro
	injector Injector
	sleep    func(time.Duration)
	logger   *slog.Logger

	firings        atomic.Uint64
	injected       atomic.Uint64
	injectFailures atomic.Uint64
	waits          atomic.Uint64
}

// NewPlayer creates a player that owns a private copy of macros.
func NewPlayer(macros []Macro, injector Injector, opts ...Option) *Player {
	owned := make([]Macro, len(macros))
	for i, m := range macros {
		owned[i] = m.Clone()
	}

	p := &Player{
		macros:   owned,
		injector: injector,
		sleep:    time.Sleep,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Len returns the number of loaded macros.
func (p *Player) Len() int {
	return len(p.macros)
}

// OnEvent replays every macro whose trigger matches ev, in load order.
// The pointer is the logical pointer position at the time ev arrived.
// OnEvent returns only after all matching macros have finished.
func (p *Player) OnEvent(ev input.Event, pointer mouse.Position) {
	for i := range p.macros {
		if !p.macros[i].Trigger.Matches(ev) {
			continue
		}
		p.play(&p.macros[i], pointer)
	}
}

// play runs the actions of m. start is captured once per firing.
func (p *Player) play(m *Macro, start mouse.Position) {
	p.firings.Add(1)
	id := uuid.NewString()
	log := p.logger.With(slog.String("firing", id), slog.Int("line", m.Line))
	log.Debug(">>> macro triggered", slog.String("trigger", m.Trigger.String()), slog.String("start", start.String()))

	for _, action := range m.Actions {
		log.Debug("action", slog.String("action", action.String()))

		var ev input.Event
		switch a := action.(type) {
		case Emit:
			ev = a.Event
		case ReturnToStart:
			ev = input.MoveTo(start)
		case Wait:
			p.waits.Add(1)
			p.sleep(a.Duration())
			continue
		default:
			continue
		}

		if err := p.injector.Inject(ev); err != nil {
			p.injectFailures.Add(1)
			log.Warn("couldn't inject event", slog.String("event", ev.String()), slog.Any("error", err))
		} else {
			p.injected.Add(1)
		}
		p.sleep(EmitDelay)
	}

	log.Debug("<<< macro done")
}

// Stats returns a snapshot of the playback counters.
func (p *Player) Stats() Stats {
	return Stats{
		Firings:        p.firings.Load(),
		Injected:       p.injected.Load(),
		InjectFailures: p.injectFailures.Load(),
		Waits:          p.waits.Load(),
	}
}
