package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variables that override offset file values.
const (
	EnvOffsetX = "MACKEREL_OFFSET_X"
	EnvOffsetY = "MACKEREL_OFFSET_Y"
	EnvOffsetS = "MACKEREL_OFFSET_S"
)

// ApplyEnv returns off with any MACKEREL_OFFSET_* overrides applied.
// Note: Empty values are treated as unset.
func ApplyEnv(off Offset) (Offset, error) {
	return applyEnv(off, os.LookupEnv)
}

func applyEnv(off Offset, lookup func(string) (string, bool)) (Offset, error) {
	get := func(name string) (string, bool) {
		val, ok := lookup(name)
		val = strings.TrimSpace(val)
		return val, ok && val != ""
	}

	if val, ok := get(EnvOffsetX); ok {
		x, err := strconv.Atoi(val)
		if err != nil {
			return off, fmt.Errorf("%w: %s=%q", ErrInvalidEnv, EnvOffsetX, val)
		}
		off.X = x
	}
	if val, ok := get(EnvOffsetY); ok {
		y, err := strconv.Atoi(val)
		if err != nil {
			return off, fmt.Errorf("%w: %s=%q", ErrInvalidEnv, EnvOffsetY, val)
		}
		off.Y = y
	}
	if val, ok := get(EnvOffsetS); ok {
		s, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return off, fmt.Errorf("%w: %s=%q", ErrInvalidEnv, EnvOffsetS, val)
		}
		off.S = s
	}
	return off, nil
}
