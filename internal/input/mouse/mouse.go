package mouse

import (
	"fmt"
)

// Button represents a mouse button.
type Button uint16

const (
	// ButtonNone indicates no button.
	ButtonNone Button = iota
	// ButtonLeft is the primary (left) mouse button.
	ButtonLeft
	// ButtonMiddle is the middle mouse button (scroll wheel click).
	ButtonMiddle
	// ButtonRight is the secondary (right) mouse button.
	ButtonRight
)

// numberedFlag marks buttons identified only by number.
const numberedFlag Button = 0x100

// Numbered returns the button reported as number n.
func Numbered(n uint8) Button {
	return numberedFlag | Button(n)
}

// Number returns the button number for numbered buttons.
func (b Button) Number() (uint8, bool) {
	if b&numberedFlag == 0 {
		return 0, false
	}
	return uint8(b &^ numberedFlag), true
}

// IsNumbered returns true if the button is identified only by number.
func (b Button) IsNumbered() bool {
	_, ok := b.Number()
	return ok
}

// String returns the script spelling of the button.
func (b Button) String() string {
	if n, ok := b.Number(); ok {
		return fmt.Sprintf("Mouse%d", n)
	}
	switch b {
	case ButtonLeft:
		return "MouseLeft"
	case ButtonMiddle:
		return "MouseMiddle"
	case ButtonRight:
		return "MouseRight"
	default:
		return "none"
	}
}

// Position represents a screen coordinate.
type Position struct {
	X int
	Y int
}

// Equal returns true if two positions are equal.
func (p Position) Equal(other Position) bool {
	return p.X == other.X && p.Y == other.Y
}

// String returns "x,y".
func (p Position) String() string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}
