package capture

import (
	"encoding/binary"
	"fmt"

	"github.com/dshills/mackerel/internal/input"
	"github.com/dshills/mackerel/internal/input/mouse"
)

// uinput ioctl requests (linux/uinput.h).
const (
	uiSetEvBit   = 0x40045564
	uiSetKeyBit  = 0x40045565
	uiSetAbsBit  = 0x40045567
	uiDevCreate  = 0x5501
	uiDevDestroy = 0x5502

	busVirtual = 0x06

	uinputNameSize = 80
	absCount       = 64
	// name, input_id, ff_effects_max, then absmax/absmin/absfuzz/absflat
	userDevSize = uinputNameSize + 8 + 4 + 4*absCount*4
)

// maxKeyCode is the highest keyboard code the virtual device declares.
const maxKeyCode = 0xff

// injectCodes maps mouse buttons to the evdev codes the virtual device
// writes. Mouse1, Mouse2 and Mouse3 are the X11 numbers for left, middle
// and right. Capture always reports those three by name, so a Mouse1
// trigger never fires from a physical click while "press Mouse1" does
// click the left button.
var injectCodes = map[mouse.Button]uint16{
	mouse.ButtonLeft:   btnLeft,
	mouse.ButtonRight:  btnRight,
	mouse.ButtonMiddle: btnMiddle,
	mouse.Numbered(1):  btnLeft,
	mouse.Numbered(2):  btnMiddle,
	mouse.Numbered(3):  btnRight,
	mouse.Numbered(8):  btnSide,
	mouse.Numbered(9):  btnExtra,
	mouse.Numbered(10): btnForward,
	mouse.Numbered(11): btnBack,
}

// records returns the input_event payloads for ev, ending with SYN_REPORT.
func records(ev input.Event, bounds Bounds) ([]rawEvent, error) {
	var out []rawEvent
	switch ev.Kind {
	case input.KindMove:
		x, y := bounds.Clamp(ev.X, ev.Y)
		out = append(out,
			rawEvent{Type: evAbs, Code: absX, Value: int32(x)},
			rawEvent{Type: evAbs, Code: absY, Value: int32(y)},
		)
	case input.KindButtonPress, input.KindButtonRelease:
		code, ok := injectCodes[ev.Button]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedEvent, ev)
		}
		out = append(out, rawEvent{Type: evKey, Code: code, Value: pressValue(ev)})
	case input.KindKeyPress, input.KindKeyRelease:
		if ev.Key.IsRune() || ev.Key.IsNone() || ev.Key.Code > maxKeyCode {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedEvent, ev)
		}
		out = append(out, rawEvent{Type: evKey, Code: ev.Key.Code, Value: pressValue(ev)})
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEvent, ev)
	}
	return append(out, rawEvent{Type: evSyn, Code: synReport}), nil
}

func pressValue(ev input.Event) int32 {
	if ev.IsPress() {
		return 1
	}
	return 0
}

// encodeRecords serializes records as input_event structs with a zero
// timestamp; the kernel stamps injected events.
func encodeRecords(recs []rawEvent, size int) []byte {
	buf := make([]byte, len(recs)*size)
	for i, r := range recs {
		off := i*size + size - 8
		binary.LittleEndian.PutUint16(buf[off:], r.Type)
		binary.LittleEndian.PutUint16(buf[off+2:], r.Code)
		binary.LittleEndian.PutUint32(buf[off+4:], uint32(r.Value))
	}
	return buf
}

// encodeUserDev builds the legacy uinput_user_dev setup block with
// absolute axes covering bounds.
func encodeUserDev(name string, bounds Bounds) []byte {
	buf := make([]byte, userDevSize)
	copy(buf[:uinputNameSize-1], name)

	off := uinputNameSize
	binary.LittleEndian.PutUint16(buf[off:], busVirtual)
	binary.LittleEndian.PutUint16(buf[off+2:], 0x1) // vendor
	binary.LittleEndian.PutUint16(buf[off+4:], 0x1) // product
	binary.LittleEndian.PutUint16(buf[off+6:], 0x1) // version

	absmax := uinputNameSize + 8 + 4
	binary.LittleEndian.PutUint32(buf[absmax+4*absX:], uint32(bounds.Width-1))
	binary.LittleEndian.PutUint32(buf[absmax+4*absY:], uint32(bounds.Height-1))
	return buf
}
