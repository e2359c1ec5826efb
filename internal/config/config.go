package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/dshills/mackerel/internal/config/loader"
)

// DefaultOffsetPath is the offset file read when none is given.
const DefaultOffsetPath = "offset.toml"

// Offset maps raw device coordinates into the coordinates macros use.
type Offset struct {
	// X is added to every raw x coordinate.
	X int `toml:"x" yaml:"x" json:"x"`
	// Y is added to every raw y coordinate.
	Y int `toml:"y" yaml:"y" json:"y"`
	// S divides the shifted coordinates. It must be positive.
	S float64 `toml:"s" yaml:"s" json:"s"`
}

// DefaultOffset returns the identity offset.
func DefaultOffset() Offset {
	return Offset{X: 0, Y: 0, S: 1.0}
}

// Validate reports whether the offset can be used as a transform.
func (o Offset) Validate() error {
	if !(o.S > 0) || math.IsInf(o.S, 1) {
		return fmt.Errorf("%w: s = %v", ErrInvalidScale, o.S)
	}
	return nil
}

// Transform maps a raw coordinate into logical coordinates:
// ((x + X) / S, (y + Y) / S).
func (o Offset) Transform(x, y float64) (float64, float64) {
	return (x + float64(o.X)) / o.S, (y + float64(o.Y)) / o.S
}

// IsIdentity reports whether Transform leaves coordinates unchanged.
func (o Offset) IsIdentity() bool {
	return o.X == 0 && o.Y == 0 && o.S == 1
}

// String returns a compact description of the offset.
func (o Offset) String() string {
	return fmt.Sprintf("x=%d y=%d s=%g", o.X, o.Y, o.S)
}

// LoadOffset reads the offset file at path from the OS file system.
// See LoadOffsetFS.
func LoadOffset(path string) (Offset, error) {
	return LoadOffsetFS(loader.DefaultFS(), path)
}

// LoadOffsetFS reads the offset file at path.
//
// It always returns a usable Offset. A missing file yields the defaults
// and no error. A malformed file, or one with a non-positive scale,
// yields the defaults together with an error the caller should report.
// Fields absent from the file keep their default values. Environment
// overrides are applied last; see ApplyEnv.
func LoadOffsetFS(fsys loader.FileSystem, path string) (Offset, error) {
	if path == "" {
		path = DefaultOffsetPath
	}

	off := DefaultOffset()
	if _, err := loader.NewWithFS(fsys).LoadInto(path, &off); err != nil {
		return DefaultOffset(), wrapLoadError(err)
	}

	off, err := ApplyEnv(off)
	if err != nil {
		return DefaultOffset(), err
	}

	if err := off.Validate(); err != nil {
		return DefaultOffset(), fmt.Errorf("offset file %s: %w", path, err)
	}
	return off, nil
}

func wrapLoadError(err error) error {
	var perr *loader.ParseError
	if errors.As(err, &perr) {
		return &ParseError{
			Path:    perr.Path,
			Line:    perr.Line,
			Column:  perr.Column,
			Message: perr.Message,
			Err:     err,
		}
	}
	return err
}
