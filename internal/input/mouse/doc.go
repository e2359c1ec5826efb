// Package mouse provides pointer button and position types.
//
// # Buttons
//
// The three common buttons have named values:
//
//	mouse.ButtonLeft
//	mouse.ButtonRight
//	mouse.ButtonMiddle
//
// Any other button is identified by the number the capture backend
// reports for it, matching the "Mouse<digits>" spelling in scripts:
//
//	mouse.Numbered(4) // Mouse4
//
// A numbered button never equals a named one, so Numbered(1) is not
// ButtonLeft even on platforms where button 1 is the left button.
//
// # Positions
//
// Position is an integer screen coordinate in the logical coordinate
// space, i.e. after the configured offset and scale were applied.
package mouse
