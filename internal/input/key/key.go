package key

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrKeyNamesUnsupported is returned by Parse for every key name.
var ErrKeyNamesUnsupported = errors.New("keyboard key names are not supported")

// Key identifies a keyboard key.
// Exactly one of Code or Rune is set for a valid key.
type Key struct {
	// Code is the evdev key code.
	Code uint16

	// Rune is the character for keys reported as text.
	Rune rune
}

// None is the zero key.
var None = Key{}

// FromCode returns the key for an evdev key code.
func FromCode(code uint16) Key {
	return Key{Code: code}
}

// FromRune returns the key for a character.
func FromRune(r rune) Key {
	return Key{Rune: r}
}

// IsRune returns true if the key was reported as a character.
func (k Key) IsRune() bool {
	return k.Rune != 0
}

// IsNone returns true for the zero key.
func (k Key) IsNone() bool {
	return k == None
}

// codeNames covers the keys most likely to show up in logs.
var codeNames = map[uint16]string{
	1:   "Escape",
	14:  "Backspace",
	15:  "Tab",
	28:  "Enter",
	29:  "LeftCtrl",
	42:  "LeftShift",
	54:  "RightShift",
	56:  "LeftAlt",
	57:  "Space",
	58:  "CapsLock",
	97:  "RightCtrl",
	100: "RightAlt",
	103: "Up",
	105: "Left",
	106: "Right",
	108: "Down",
	125: "LeftMeta",
}

// String returns a human-readable name for the key.
func (k Key) String() string {
	switch {
	case k.IsNone():
		return "None"
	case k.IsRune():
		return strconv.QuoteRune(k.Rune)
	}
	if name, ok := codeNames[k.Code]; ok {
		return name
	}
	return fmt.Sprintf("Key(%d)", k.Code)
}

// Parse resolves a key name as written in a macro script.
// Key names are reserved but not implemented; Parse always fails.
func Parse(name string) (Key, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return None, fmt.Errorf("%w: empty key name", ErrKeyNamesUnsupported)
	}
	return None, fmt.Errorf("%w: %q", ErrKeyNamesUnsupported, name)
}
