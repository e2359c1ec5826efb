package macro

import (
	"fmt"
	"strings"
	"time"

	"github.com/dshills/mackerel/internal/input"
)

// Trigger decides whether an incoming event fires a macro.
type Trigger interface {
	// Matches reports whether ev fires the macro.
	Matches(ev input.Event) bool

	// String returns the trigger as it would be written in a script.
	String() string
}

// Single is a trigger that matches one event exactly.
type Single struct {
	Event input.Event
}

// Matches implements Trigger.
func (s Single) Matches(ev input.Event) bool {
	return ev == s.Event
}

func (s Single) String() string {
	return triggerToken(s.Event)
}

// Combo is a chorded trigger, such as two buttons held together.
// Combo triggers are recognized but never match.
type Combo struct {
	Events []input.Event
}

// Matches implements Trigger. It always returns false.
func (c Combo) Matches(input.Event) bool {
	// TODO: match chords once a held-inputs aggregator feeds the player.
	return false
}

func (c Combo) String() string {
	parts := make([]string, len(c.Events))
	for i, ev := range c.Events {
		parts[i] = triggerToken(ev)
	}
	return strings.Join(parts, " + ")
}

func triggerToken(ev input.Event) string {
	switch ev.Kind {
	case input.KindButtonPress, input.KindButtonRelease:
		return ev.Button.String()
	case input.KindKeyPress, input.KindKeyRelease:
		return ev.Key.String()
	default:
		return ev.String()
	}
}

// Action is one step of a macro.
type Action interface {
	String() string
	isAction()
}

// Emit injects a single event.
type Emit struct {
	Event input.Event
}

// ReturnToStart moves the pointer to where it was when the macro fired.
type ReturnToStart struct{}

// Wait pauses playback.
type Wait struct {
	Millis uint32
}

// Duration returns the wait as a time.Duration.
func (w Wait) Duration() time.Duration {
	return time.Duration(w.Millis) * time.Millisecond
}

func (Emit) isAction()          {}
func (ReturnToStart) isAction() {}
func (Wait) isAction()          {}

func (e Emit) String() string        { return "emit " + e.Event.String() }
func (ReturnToStart) String() string { return "move to start" }
func (w Wait) String() string        { return fmt.Sprintf("wait %dms", w.Millis) }

// Macro is a trigger and the actions it replays.
type Macro struct {
	Trigger Trigger
	Actions []Action

	// Line is the 1-based script line the trigger starts on, or 0.
	Line int
}

// Clone returns a copy of m that shares no action storage with m.
func (m Macro) Clone() Macro {
	actions := make([]Action, len(m.Actions))
	copy(actions, m.Actions)
	m.Actions = actions
	return m
}

// ApplyOffset shifts the target of every literal pointer move by (dx, dy).
// ReturnToStart actions are left untouched and no scale is applied.
// The macros are modified in place and returned for chaining.
func ApplyOffset(macros []Macro, dx, dy int) []Macro {
	for i := range macros {
		for j, a := range macros[i].Actions {
			emit, ok := a.(Emit)
			if !ok || emit.Event.Kind != input.KindMove {
				continue
			}
			macros[i].Actions[j] = Emit{Event: input.Move(emit.Event.X+float64(dx), emit.Event.Y+float64(dy))}
		}
	}
	return macros
}
