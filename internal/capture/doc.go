// Package capture connects mackerel to the operating system's input stream.
//
// A Source delivers physical input as input.Event values; an Injector
// writes synthetic events back. Backends:
//
//   - EvdevSource reads /dev/input/event* devices on Linux.
//   - UinputInjector creates a virtual pointer through /dev/uinput on Linux.
//   - TerminalSource reads mouse and key events from a tcell screen.
//   - DryRun logs injected events instead of delivering them.
//
// On other platforms the Linux constructors return ErrNotAvailable.
package capture
