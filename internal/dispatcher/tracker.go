package dispatcher

import (
	"sync"

	"github.com/dshills/mackerel/internal/config"
	"github.com/dshills/mackerel/internal/input"
	"github.com/dshills/mackerel/internal/input/mouse"
)

// Tracker maps raw events into logical coordinates and remembers the
// logical pointer position.
type Tracker struct {
	mu      sync.Mutex
	offset  config.Offset
	pointer mouse.Position
}

// NewTracker creates a tracker using offset for the live transform.
// An invalid offset is replaced by the identity offset.
func NewTracker(offset config.Offset) *Tracker {
	if offset.Validate() != nil {
		offset = config.DefaultOffset()
	}
	return &Tracker{offset: offset}
}

// Observe transforms ev and updates the pointer for moves.
// Non-move events pass through unchanged. It returns the logical event
// and the logical pointer position after the update.
func (t *Tracker) Observe(ev input.Event) (input.Event, mouse.Position) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ev.Kind == input.KindMove {
		x, y := t.offset.Transform(ev.X, ev.Y)
		ev = input.Move(x, y)
		t.pointer = ev.Position()
	}
	return ev, t.pointer
}
