package dispatcher

import "errors"

// Dispatcher errors.
var (
	// ErrAlreadyRunning indicates Run was called while another Run is active.
	ErrAlreadyRunning = errors.New("dispatcher: already running")

	// ErrPanic indicates the handler panicked.
	ErrPanic = errors.New("dispatcher: handler panic")
)
