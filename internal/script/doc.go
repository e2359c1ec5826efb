// Package script parses macro script files.
//
// A script is a sequence of macros. Each macro names a trigger followed
// by a brace-delimited block with one action per line:
//
//	Mouse1 {
//	    move to 1110, 600
//	    press MouseLeft
//	    wait 0.25
//	    move to start
//	}
//
// # Triggers
//
// A trigger is a button token, or several joined with '+' for a chord.
// Trigger tokens match the *release* of the input, so a macro fires when
// the user finishes the click rather than while the button is down.
//
// # Actions
//
//   - press X: a tap, i.e. a press immediately followed by a release
//   - hold X: only the press
//   - release X: only the release
//   - move to x, y: move the pointer to a literal position
//   - move to start: move the pointer back to where the macro fired
//   - wait S: pause for S seconds, millisecond precision
//
// Buttons are written MouseLeft, MouseRight, MouseMiddle or Mouse<n>.
// Keyboard key names are reserved but not supported; using one is a
// parse error.
//
// # Errors
//
// Parsing is all or nothing. The first problem anywhere in the file
// aborts the whole parse with a *ParseError carrying the line, column
// and the unparsed remainder of the input.
package script
