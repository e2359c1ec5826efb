//go:build !linux

package capture

import "github.com/dshills/mackerel/internal/input"

// UinputInjector is only available on Linux.
type UinputInjector struct{}

// NewUinputInjector returns ErrNotAvailable.
func NewUinputInjector(Bounds, ...Option) (*UinputInjector, error) {
	return nil, ErrNotAvailable
}

// Inject returns ErrNotAvailable.
func (u *UinputInjector) Inject(input.Event) error {
	return ErrNotAvailable
}

// Close does nothing.
func (u *UinputInjector) Close() error {
	return nil
}
