// Package key provides the keyboard key type carried by input events.
//
// A Key is an opaque identifier assigned by whichever capture backend
// observed it:
//
//   - Code: a Linux evdev key code (KEY_A is 30, KEY_ENTER is 28, ...)
//   - Rune: a character reported by a terminal, which has no key codes
//
// # Key Names
//
// Macro scripts reserve a production for naming keyboard keys, but key
// names are not supported yet. Parse always fails with
// ErrKeyNamesUnsupported so that a script mentioning a key is rejected
// instead of silently doing nothing.
package key
