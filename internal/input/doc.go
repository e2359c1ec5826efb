// Package input defines the raw input events that flow between capture
// backends, the macro player and injection backends.
//
// # Events
//
// An Event is a small comparable value: a Kind plus the payload that
// kind uses. Two events are equal exactly when their kind and payload
// are equal, so plain == is the trigger match:
//
//	input.ButtonRelease(mouse.Numbered(1)) == input.ButtonRelease(mouse.Numbered(1)) // true
//	input.ButtonRelease(mouse.Numbered(1)) == input.ButtonPress(mouse.Numbered(1))   // false
//
// Move events carry floating point coordinates because capture backends
// report sub-pixel positions once offset and scale have been applied.
//
// # Related Packages
//
//   - key: keyboard key identifiers
//   - mouse: buttons and positions
//   - macro: triggers, actions and playback
package input
