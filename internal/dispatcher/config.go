package dispatcher

// Config holds dispatcher configuration options.
type Config struct {
	// BufferSize is the capacity of the event queue between capture and
	// playback. Events submitted while the queue is full are dropped.
	BufferSize int

	// EnableMetrics enables per-kind timing and statistics collection.
	EnableMetrics bool

	// RecoverFromPanic wraps handler execution in panic recovery.
	RecoverFromPanic bool
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BufferSize:       256,
		EnableMetrics:    false,
		RecoverFromPanic: true,
	}
}

// WithBufferSize returns a copy of the config with the queue size set.
func (c Config) WithBufferSize(size int) Config {
	if size > 0 {
		c.BufferSize = size
	}
	return c
}

// WithMetrics returns a copy of the config with metrics enabled.
func (c Config) WithMetrics() Config {
	c.EnableMetrics = true
	return c
}

// WithPanicRecovery returns a copy of the config with panic recovery set.
func (c Config) WithPanicRecovery(recover bool) Config {
	c.RecoverFromPanic = recover
	return c
}
