package input

import (
	"fmt"

	"github.com/dshills/mackerel/internal/input/key"
	"github.com/dshills/mackerel/internal/input/mouse"
)

// Kind identifies the type of an input event.
type Kind uint8

const (
	// KindNone indicates an empty event.
	KindNone Kind = iota
	// KindKeyPress indicates a keyboard key went down.
	KindKeyPress
	// KindKeyRelease indicates a keyboard key went up.
	KindKeyRelease
	// KindButtonPress indicates a mouse button went down.
	KindButtonPress
	// KindButtonRelease indicates a mouse button went up.
	KindButtonRelease
	// KindMove indicates the pointer moved to an absolute position.
	KindMove
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindKeyPress:
		return "key-press"
	case KindKeyRelease:
		return "key-release"
	case KindButtonPress:
		return "button-press"
	case KindButtonRelease:
		return "button-release"
	case KindMove:
		return "move"
	default:
		return "none"
	}
}

// Event is a single input event.
// Only the payload field matching Kind is set.
type Event struct {
	Kind   Kind
	Key    key.Key
	Button mouse.Button
	X      float64
	Y      float64
}

// KeyPress returns a key press event.
func KeyPress(k key.Key) Event {
	return Event{Kind: KindKeyPress, Key: k}
}

// KeyRelease returns a key release event.
func KeyRelease(k key.Key) Event {
	return Event{Kind: KindKeyRelease, Key: k}
}

// ButtonPress returns a button press event.
func ButtonPress(b mouse.Button) Event {
	return Event{Kind: KindButtonPress, Button: b}
}

// ButtonRelease returns a button release event.
func ButtonRelease(b mouse.Button) Event {
	return Event{Kind: KindButtonRelease, Button: b}
}

// Move returns a pointer move event.
func Move(x, y float64) Event {
	return Event{Kind: KindMove, X: x, Y: y}
}

// MoveTo returns a pointer move event targeting p.
func MoveTo(p mouse.Position) Event {
	return Move(float64(p.X), float64(p.Y))
}

// IsPress returns true for key and button press events.
func (e Event) IsPress() bool {
	return e.Kind == KindKeyPress || e.Kind == KindButtonPress
}

// IsRelease returns true for key and button release events.
func (e Event) IsRelease() bool {
	return e.Kind == KindKeyRelease || e.Kind == KindButtonRelease
}

// Position returns the integer position of a move event.
// Coordinates are truncated toward zero.
func (e Event) Position() mouse.Position {
	return mouse.Position{X: int(e.X), Y: int(e.Y)}
}

// String returns a compact description for logs.
func (e Event) String() string {
	switch e.Kind {
	case KindKeyPress, KindKeyRelease:
		return fmt.Sprintf("%s %s", e.Kind, e.Key)
	case KindButtonPress, KindButtonRelease:
		return fmt.Sprintf("%s %s", e.Kind, e.Button)
	case KindMove:
		return fmt.Sprintf("move %g,%g", e.X, e.Y)
	default:
		return "none"
	}
}
