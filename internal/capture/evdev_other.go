//go:build !linux

package capture

import (
	"context"

	"github.com/dshills/mackerel/internal/input"
)

// EvdevSource is only available on Linux.
type EvdevSource struct{}

// NewEvdevSource returns ErrNotAvailable.
func NewEvdevSource(Bounds, ...Option) (*EvdevSource, error) {
	return nil, ErrNotAvailable
}

// Devices returns ErrNotAvailable.
func (s *EvdevSource) Devices() ([]string, error) {
	return nil, ErrNotAvailable
}

// Listen returns ErrNotAvailable.
func (s *EvdevSource) Listen(context.Context, func(input.Event)) error {
	return ErrNotAvailable
}

// SetPosition does nothing.
func (s *EvdevSource) SetPosition(x, y float64) {}
