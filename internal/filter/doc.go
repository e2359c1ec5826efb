// Package filter lets a Lua script decide which input events reach the
// macro player.
//
// A filter script defines a global function allow(ev) returning a boolean.
// The ev table has the fields:
//
//	kind       "key-press", "key-release", "button-press", "button-release" or "move"
//	button     script spelling of the button, e.g. "MouseLeft" or "Mouse8"
//	key        key name for key events
//	x, y       event coordinates for moves
//	pointer_x  logical pointer position when the event arrived
//	pointer_y
//
// Example: only fire side-button macros on the left half of the screen.
//
//	function allow(ev)
//	  if ev.button == "Mouse8" then
//	    return ev.pointer_x < 960
//	  end
//	  return true
//	end
//
// Scripts run in a restricted state: only the base, table, string and math
// libraries are opened, and file loading functions are removed.
package filter
