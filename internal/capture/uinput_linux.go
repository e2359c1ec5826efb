//go:build linux

package capture

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/dshills/mackerel/internal/input"
)

// UinputInjector writes events through a virtual absolute pointer and
// keyboard created with /dev/uinput.
type UinputInjector struct {
	mu     sync.Mutex
	f      *os.File
	bounds Bounds
	opts   options
}

// NewUinputInjector creates the virtual device. Close destroys it.
func NewUinputInjector(bounds Bounds, opts ...Option) (*UinputInjector, error) {
	if !bounds.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBounds, bounds)
	}

	f, err := os.OpenFile("/dev/uinput", os.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: open /dev/uinput: %v", ErrNotAvailable, err)
	}

	u := &UinputInjector{f: f, bounds: bounds, opts: applyOptions(opts)}
	if err := u.setup(); err != nil {
		_ = f.Close()
		return nil, err
	}
	u.opts.logger.Info("virtual device created", "name", VirtualDeviceName, "bounds", bounds.String())
	return u, nil
}

func (u *UinputInjector) setup() error {
	fd := u.f.Fd()
	for _, ev := range []uintptr{evSyn, evKey, evAbs} {
		if err := ioctl(fd, uiSetEvBit, ev); err != nil {
			return fmt.Errorf("UI_SET_EVBIT: %w", err)
		}
	}
	for code := uintptr(1); code <= maxKeyCode; code++ {
		if err := ioctl(fd, uiSetKeyBit, code); err != nil {
			return fmt.Errorf("UI_SET_KEYBIT: %w", err)
		}
	}
	for code := uintptr(btnLeft); code <= btnBack; code++ {
		if err := ioctl(fd, uiSetKeyBit, code); err != nil {
			return fmt.Errorf("UI_SET_KEYBIT: %w", err)
		}
	}
	for _, axis := range []uintptr{absX, absY} {
		if err := ioctl(fd, uiSetAbsBit, axis); err != nil {
			return fmt.Errorf("UI_SET_ABSBIT: %w", err)
		}
	}

	if _, err := u.f.Write(encodeUserDev(VirtualDeviceName, u.bounds)); err != nil {
		return fmt.Errorf("write uinput_user_dev: %w", err)
	}
	if err := ioctl(fd, uiDevCreate, 0); err != nil {
		return fmt.Errorf("UI_DEV_CREATE: %w", err)
	}
	return nil
}

// Inject writes ev followed by SYN_REPORT.
// Keys reported only as characters cannot be injected.
func (u *UinputInjector) Inject(ev input.Event) error {
	recs, err := records(ev, u.bounds)
	if err != nil {
		return err
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if u.f == nil {
		return os.ErrClosed
	}
	if _, err := u.f.Write(encodeRecords(recs, recordSize)); err != nil {
		return fmt.Errorf("write %s: %w", ev, err)
	}
	return nil
}

// Close destroys the virtual device.
func (u *UinputInjector) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.f == nil {
		return nil
	}
	_ = ioctl(u.f.Fd(), uiDevDestroy, 0)
	err := u.f.Close()
	u.f = nil
	return err
}

func ioctl(fd, request, arg uintptr) error {
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, request, arg); errno != 0 {
		return os.NewSyscallError("ioctl", errno)
	}
	return nil
}
