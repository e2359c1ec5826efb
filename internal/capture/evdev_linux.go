//go:build linux

package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/dshills/mackerel/internal/input"
)

// EvdevSource reads pointer and keyboard devices under /dev/input.
// Reading requires membership in the input group or root.
type EvdevSource struct {
	bounds Bounds
	opts   options

	mu sync.Mutex
	tr *translator
}

// NewEvdevSource creates a source that tracks the pointer within bounds.
func NewEvdevSource(bounds Bounds, opts ...Option) (*EvdevSource, error) {
	if !bounds.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBounds, bounds)
	}
	return &EvdevSource{bounds: bounds, opts: applyOptions(opts), tr: newTranslator(bounds)}, nil
}

// SetPosition records where the pointer was moved by something other
// than a device, such as an injected move. Later relative motion starts
// from there.
func (s *EvdevSource) SetPosition(x, y float64) {
	s.mu.Lock()
	s.tr.setPosition(x, y)
	s.mu.Unlock()
}

// readAbsAxes asks the device for its ABS_X and ABS_Y ranges. Devices
// without absolute axes return zero ranges.
func readAbsAxes(f *os.File) absAxes {
	var axes absAxes
	for axis, r := range map[uint16]*absRange{absX: &axes.X, absY: &axes.Y} {
		var info [6]int32
		_, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), evioCGAbs(axis), uintptr(unsafe.Pointer(&info)))
		if errno == 0 {
			*r = decodeAbsInfo(info)
		}
	}
	return axes
}

// Devices returns the event nodes Listen would read.
func (s *EvdevSource) Devices() ([]string, error) {
	f, err := os.Open(s.opts.devicesFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAvailable, err)
	}
	defer f.Close()

	devices, err := parseDevices(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.opts.devicesFile, err)
	}
	return selectDevices(devices), nil
}

// Listen reads every device until ctx is done or a device fails.
func (s *EvdevSource) Listen(ctx context.Context, emit func(input.Event)) error {
	paths, err := s.Devices()
	if err != nil {
		return err
	}

	logger := s.opts.logger
	var files []*os.File
	for _, path := range paths {
		f, err := os.OpenFile(path, os.O_RDONLY, 0)
		if err != nil {
			logger.Debug("skipping input device", "path", path, "error", err)
			continue
		}
		files = append(files, f)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w (need read access to /dev/input, e.g. the input group)", ErrNoDevices)
	}
	logger.Info("listening", "devices", len(files), "bounds", s.bounds.String())

	var (
		wg   sync.WaitGroup
		errc = make(chan error, len(files))
	)

	for _, f := range files {
		wg.Add(1)
		go func(f *os.File) {
			defer wg.Done()
			axes := readAbsAxes(f)
			dec := newRecordDecoder(recordSize)
			buf := make([]byte, recordSize*64)
			for {
				n, err := f.Read(buf)
				if err != nil {
					if ctx.Err() == nil && !errors.Is(err, os.ErrClosed) {
						errc <- fmt.Errorf("read %s: %w", f.Name(), err)
					}
					return
				}
				for _, raw := range dec.feed(buf[:n]) {
					s.mu.Lock()
					if ev, ok := s.tr.translate(raw, axes); ok {
						emit(ev)
					}
					s.mu.Unlock()
				}
			}
		}(f)
	}

	var result error
	select {
	case <-ctx.Done():
	case result = <-errc:
	}

	for _, f := range files {
		_ = f.Close()
	}
	wg.Wait()
	return result
}
