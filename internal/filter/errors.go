package filter

import "errors"

// Filter errors.
var (
	// ErrClosed is returned when calling a closed filter.
	ErrClosed = errors.New("filter: closed")

	// ErrNoAllow indicates the script does not define allow(ev).
	ErrNoAllow = errors.New("filter: script does not define function allow")
)
