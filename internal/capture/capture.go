package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dshills/mackerel/internal/input"
)

// Errors returned by capture backends.
var (
	// ErrNotAvailable indicates the backend cannot run on this system.
	ErrNotAvailable = errors.New("capture: backend not available")

	// ErrUnsupportedEvent indicates an injector cannot express the event.
	ErrUnsupportedEvent = errors.New("capture: unsupported event")

	// ErrNoDevices indicates no readable input devices were found.
	ErrNoDevices = errors.New("capture: no input devices")

	// ErrInvalidBounds indicates a malformed screen size.
	ErrInvalidBounds = errors.New("capture: invalid screen bounds")
)

// Source delivers physical input events.
// Listen blocks until ctx is done or the source fails, calling emit for
// each event from a single goroutine at a time.
type Source interface {
	Listen(ctx context.Context, emit func(input.Event)) error
}

// Bounds is the screen size in pixels.
type Bounds struct {
	Width  int
	Height int
}

// DefaultBounds is used when no screen size is configured.
var DefaultBounds = Bounds{Width: 1920, Height: 1080}

// Valid returns true if both dimensions are positive.
func (b Bounds) Valid() bool {
	return b.Width > 0 && b.Height > 0
}

// Clamp limits (x, y) to the screen.
func (b Bounds) Clamp(x, y float64) (float64, float64) {
	return clamp(x, 0, float64(b.Width-1)), clamp(y, 0, float64(b.Height-1))
}

// String returns "WxH".
func (b Bounds) String() string {
	return fmt.Sprintf("%dx%d", b.Width, b.Height)
}

// ParseBounds parses a "WIDTHxHEIGHT" screen size such as "1920x1080".
func ParseBounds(s string) (Bounds, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return Bounds{}, fmt.Errorf("%w: %q", ErrInvalidBounds, s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return Bounds{}, fmt.Errorf("%w: %q", ErrInvalidBounds, s)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return Bounds{}, fmt.Errorf("%w: %q", ErrInvalidBounds, s)
	}
	b := Bounds{Width: width, Height: height}
	if !b.Valid() {
		return Bounds{}, fmt.Errorf("%w: %q", ErrInvalidBounds, s)
	}
	return b, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// options holds settings shared by the backends.
type options struct {
	logger      *slog.Logger
	devicesFile string
}

func defaultOptions() options {
	return options{
		logger:      slog.Default(),
		devicesFile: "/proc/bus/input/devices",
	}
}

// Option configures a backend.
type Option func(*options)

// WithLogger sets the logger used for backend diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithDevicesFile overrides the device list read by EvdevSource.
func WithDevicesFile(path string) Option {
	return func(o *options) {
		if path != "" {
			o.devicesFile = path
		}
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
