// Package config loads the pointer offset used to map raw device
// coordinates into the coordinates macros are written in.
//
// The offset file is small and optional:
//
//	# offset.toml
//	x = 10
//	y = -5
//	s = 1.0
//
// YAML (.yaml, .yml) and JSON (.json) files with the same keys are also
// accepted. MACKEREL_OFFSET_X, MACKEREL_OFFSET_Y and MACKEREL_OFFSET_S
// override the file.
//
// Loading never fails hard: on any problem LoadOffset returns the
// defaults along with an error for the caller to log as a warning.
//
// Subpackages:
//
//   - loader: format detection and TOML/YAML/JSON decoding
//   - watcher: debounced file change notification
package config
