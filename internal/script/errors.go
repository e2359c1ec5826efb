package script

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Parse errors.
var (
	// ErrNoMacros indicates the script contains no macro definitions.
	ErrNoMacros = errors.New("script defines no macros")

	// ErrOutOfRange indicates a number does not fit its field.
	ErrOutOfRange = errors.New("number out of range")
)

// nearLimit caps the remainder excerpt shown in error messages.
const nearLimit = 32

// ParseError describes where and why a script failed to parse.
type ParseError struct {
	// Path is the script file, if known.
	Path string
	// Line is the 1-based line of the failure.
	Line int
	// Column is the 1-based column of the failure, in runes.
	Column int
	// Offset is the byte offset of the failure.
	Offset int
	// Remainder is the unparsed input starting at the failure.
	Remainder string
	// Message describes what the parser expected.
	Message string
	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	var b strings.Builder
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	fmt.Fprintf(&b, "line %d, column %d: %s", e.Line, e.Column, e.Message)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	switch near := e.Near(); {
	case near != "":
		fmt.Fprintf(&b, " near %q", near)
	case e.Remainder == "":
		b.WriteString(" at end of input")
	default:
		b.WriteString(" at end of line")
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Near returns the first line of the remainder, shortened for display.
func (e *ParseError) Near() string {
	near := e.Remainder
	if i := strings.IndexAny(near, "\r\n"); i >= 0 {
		near = near[:i]
	}
	if utf8.RuneCountInString(near) > nearLimit {
		near = string([]rune(near)[:nearLimit]) + "..."
	}
	return near
}
