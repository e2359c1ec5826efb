// Package dispatcher feeds live input events to the macro player.
//
// Capture backends deliver raw events on their own goroutines. The
// dispatcher decouples them from playback with a single-consumer queue:
// Submit never blocks the capture side, and Run processes one event at a
// time on one goroutine, so an event is fully handled (including any
// macro replay and its waits) before the next one begins.
//
// # Pointer Tracking
//
// Before an event reaches the player, a Tracker maps its coordinates
// through the configured offset and scale, and keeps the last logical
// pointer position. The player receives both:
//
//	raw event -> Tracker.Observe -> logical event + pointer -> Handler.OnEvent
//
// # Usage
//
//	player := macro.NewPlayer(macros, injector)
//	d := dispatcher.New(dispatcher.DefaultConfig(), offset, player)
//	go d.Run(ctx)
//
//	source.Listen(ctx, func(ev input.Event) { d.Submit(ev) })
//
// When the queue is full, Submit drops the event and counts it rather
// than stalling the capture backend. Dropped reports the count.
package dispatcher
