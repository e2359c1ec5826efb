package capture

import (
	"bufio"
	"encoding/binary"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/dshills/mackerel/internal/input"
	"github.com/dshills/mackerel/internal/input/key"
	"github.com/dshills/mackerel/internal/input/mouse"
)

// Linux input event types and codes (linux/input-event-codes.h).
const (
	evSyn = 0x00
	evKey = 0x01
	evRel = 0x02
	evAbs = 0x03

	synReport = 0x00

	relX = 0x00
	relY = 0x01
	absX = 0x00
	absY = 0x01

	btnMisc    = 0x100
	btnLeft    = 0x110
	btnRight   = 0x111
	btnMiddle  = 0x112
	btnSide    = 0x113
	btnExtra   = 0x114
	btnForward = 0x115
	btnBack    = 0x116

	keyRepeat = 2
)

// VirtualDeviceName names the uinput device so capture can skip it.
const VirtualDeviceName = "mackerel virtual pointer"

// recordSize is sizeof(struct input_event): a timeval of two native
// longs followed by type, code and value.
const recordSize = 2*(strconv.IntSize/8) + 8

// rawEvent is the payload of one input_event record.
type rawEvent struct {
	Type  uint16
	Code  uint16
	Value int32
}

// recordDecoder splits a byte stream into input_event records.
// Partial records are kept until the next feed.
type recordDecoder struct {
	size    int
	pending []byte
}

func newRecordDecoder(size int) *recordDecoder {
	return &recordDecoder{size: size}
}

func (d *recordDecoder) feed(data []byte) []rawEvent {
	d.pending = append(d.pending, data...)

	var out []rawEvent
	for len(d.pending) >= d.size {
		rec := d.pending[:d.size]
		off := d.size - 8
		out = append(out, rawEvent{
			Type:  binary.LittleEndian.Uint16(rec[off : off+2]),
			Code:  binary.LittleEndian.Uint16(rec[off+2 : off+4]),
			Value: int32(binary.LittleEndian.Uint32(rec[off+4 : off+8])),
		})
		d.pending = d.pending[d.size:]
	}
	if len(d.pending) == 0 {
		d.pending = nil
	}
	return out
}

// buttonCodes maps evdev button codes to mouse buttons. Side and extra
// buttons use the X11 numbers 8 and 9.
var buttonCodes = map[uint16]mouse.Button{
	btnLeft:    mouse.ButtonLeft,
	btnRight:   mouse.ButtonRight,
	btnMiddle:  mouse.ButtonMiddle,
	btnSide:    mouse.Numbered(8),
	btnExtra:   mouse.Numbered(9),
	btnForward: mouse.Numbered(10),
	btnBack:    mouse.Numbered(11),
}

// absRange is the span a device reports for one absolute axis.
type absRange struct {
	Min, Max int32
}

// scale maps v onto [0, extent-1]. Without a usable range the value is
// taken as pixels.
func (r absRange) scale(v int32, extent int) float64 {
	if r.Max <= r.Min {
		return float64(v)
	}
	return float64(int64(v)-int64(r.Min)) * float64(extent-1) / float64(int64(r.Max)-int64(r.Min))
}

// absAxes holds a device's ABS_X and ABS_Y ranges.
type absAxes struct {
	X, Y absRange
}

// absInfoSize is sizeof(struct input_absinfo): six int32 fields.
const absInfoSize = 24

// evioCGAbs returns the EVIOCGABS(axis) request number, an _IOR('E',
// 0x40+axis) read of struct input_absinfo.
func evioCGAbs(axis uint16) uintptr {
	const iocRead = 2
	return iocRead<<30 | absInfoSize<<16 | uintptr('E')<<8 | uintptr(0x40+axis)
}

// decodeAbsInfo reads min and max from a struct input_absinfo.
func decodeAbsInfo(info [6]int32) absRange {
	return absRange{Min: info[1], Max: info[2]}
}

// translator turns raw evdev records into input events, keeping an
// absolute pointer position built from relative motion.
type translator struct {
	bounds Bounds
	x, y   float64
	moved  bool
}

// newTranslator starts the pointer at the center of b.
func newTranslator(b Bounds) *translator {
	if !b.Valid() {
		b = DefaultBounds
	}
	return &translator{
		bounds: b,
		x:      float64(b.Width / 2),
		y:      float64(b.Height / 2),
	}
}

// translate returns the event for raw, if it completes one. axes are the
// absolute ranges of the device raw came from. Motion is reported once
// per SYN_REPORT.
func (t *translator) translate(raw rawEvent, axes absAxes) (input.Event, bool) {
	switch raw.Type {
	case evRel:
		switch raw.Code {
		case relX:
			t.moveTo(t.x+float64(raw.Value), t.y)
		case relY:
			t.moveTo(t.x, t.y+float64(raw.Value))
		}
	case evAbs:
		switch raw.Code {
		case absX:
			t.moveTo(axes.X.scale(raw.Value, t.bounds.Width), t.y)
		case absY:
			t.moveTo(t.x, axes.Y.scale(raw.Value, t.bounds.Height))
		}
	case evSyn:
		if raw.Code == synReport && t.moved {
			t.moved = false
			return input.Move(t.x, t.y), true
		}
	case evKey:
		return translateKey(raw)
	}
	return input.Event{}, false
}

// setPosition moves the tracked pointer without reporting motion.
func (t *translator) setPosition(x, y float64) {
	t.x, t.y = t.bounds.Clamp(x, y)
}

func (t *translator) moveTo(x, y float64) {
	x, y = t.bounds.Clamp(x, y)
	if x != t.x || y != t.y {
		t.x, t.y = x, y
		t.moved = true
	}
}

func translateKey(raw rawEvent) (input.Event, bool) {
	if raw.Value == keyRepeat {
		return input.Event{}, false
	}
	down := raw.Value != 0

	if b, ok := buttonCodes[raw.Code]; ok {
		if down {
			return input.ButtonPress(b), true
		}
		return input.ButtonRelease(b), true
	}
	if raw.Code >= btnMisc {
		// Joystick, touch and tool codes
		return input.Event{}, false
	}

	k := key.FromCode(raw.Code)
	if down {
		return input.KeyPress(k), true
	}
	return input.KeyRelease(k), true
}

// deviceInfo is one block of /proc/bus/input/devices.
type deviceInfo struct {
	Name     string
	Handlers []string
}

// EventNode returns the /dev/input path of the device's event handler.
func (d deviceInfo) EventNode() string {
	for _, h := range d.Handlers {
		if strings.HasPrefix(h, "event") {
			return "/dev/input/" + h
		}
	}
	return ""
}

// IsPointer returns true for mice and touchpads.
func (d deviceInfo) IsPointer() bool {
	return d.hasHandler("mouse")
}

// IsKeyboard returns true for devices the kernel treats as keyboards.
func (d deviceInfo) IsKeyboard() bool {
	return d.hasHandler("kbd")
}

func (d deviceInfo) hasHandler(prefix string) bool {
	for _, h := range d.Handlers {
		if strings.HasPrefix(h, prefix) {
			return true
		}
	}
	return false
}

var deviceNamePattern = regexp.MustCompile(`Name="([^"]*)"`)

// parseDevices reads the /proc/bus/input/devices format.
func parseDevices(r io.Reader) ([]deviceInfo, error) {
	var (
		devices []deviceInfo
		current deviceInfo
		open    bool
	)
	flush := func() {
		if open {
			devices = append(devices, current)
		}
		current = deviceInfo{}
		open = false
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "I:"):
			flush()
			open = true
		case strings.HasPrefix(line, "N:"):
			if m := deviceNamePattern.FindStringSubmatch(line); len(m) > 1 {
				current.Name = m[1]
			}
			open = true
		case strings.HasPrefix(line, "H: Handlers="):
			current.Handlers = strings.Fields(strings.TrimPrefix(line, "H: Handlers="))
			open = true
		}
	}
	flush()

	return devices, scanner.Err()
}

// selectDevices returns the event nodes to read: pointers and keyboards,
// excluding mackerel's own virtual device.
func selectDevices(devices []deviceInfo) []string {
	var paths []string
	for _, d := range devices {
		if d.Name == VirtualDeviceName {
			continue
		}
		if !d.IsPointer() && !d.IsKeyboard() {
			continue
		}
		if node := d.EventNode(); node != "" {
			paths = append(paths, node)
		}
	}
	return paths
}
