// Package macro provides the macro data model and macro playback.
//
// A Macro pairs a Trigger with an ordered list of Actions. Macros are
// produced by the script package, shifted once by ApplyOffset, and then
// handed to a Player which owns them for the rest of the process.
//
// # Triggers
//
// Single matches one event by equality. Combo describes a chord of
// several inputs; chord matching needs an aggregation of currently held
// inputs that does not exist yet, so a Combo never matches.
//
// # Actions
//
//   - Emit: inject one event
//   - ReturnToStart: move the pointer back to where it was when the
//     macro fired
//   - Wait: pause playback for a number of milliseconds
//
// # Playback
//
// Player.OnEvent is called once per incoming event. Every macro whose
// trigger matches is replayed in load order, synchronously, on the
// calling goroutine:
//
//	player := macro.NewPlayer(macros, injector)
//	player.OnEvent(ev, pointer)
//
// Each injected event is followed by EmitDelay so the OS input queue is
// not flooded. Injection failures are logged and playback continues.
// A replay cannot be cancelled once it has started.
//
// # Thread Safety
//
// A Player is meant to be driven by exactly one goroutine. The macro
// list is never modified after NewPlayer returns; Stats may be read
// from any goroutine.
package macro
