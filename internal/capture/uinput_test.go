package capture

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/mackerel/internal/input"
	"github.com/dshills/mackerel/internal/input/key"
	"github.com/dshills/mackerel/internal/input/mouse"
)

var syn = rawEvent{Type: evSyn, Code: synReport}

func TestRecords(t *testing.T) {
	b := Bounds{Width: 1920, Height: 1080}
	tests := []struct {
		name string
		ev   input.Event
		want []rawEvent
	}{
		{
			name: "move",
			ev:   input.Move(100.7, 200),
			want: []rawEvent{{evAbs, absX, 100}, {evAbs, absY, 200}, syn},
		},
		{
			name: "move clamped",
			ev:   input.Move(-4, 5000),
			want: []rawEvent{{evAbs, absX, 0}, {evAbs, absY, 1079}, syn},
		},
		{
			name: "left press",
			ev:   input.ButtonPress(mouse.ButtonLeft),
			want: []rawEvent{{evKey, btnLeft, 1}, syn},
		},
		{
			name: "numbered release",
			ev:   input.ButtonRelease(mouse.Numbered(8)),
			want: []rawEvent{{evKey, btnSide, 0}, syn},
		},
		{
			name: "mouse3 is right",
			ev:   input.ButtonPress(mouse.Numbered(3)),
			want: []rawEvent{{evKey, btnRight, 1}, syn},
		},
		{
			name: "key code",
			ev:   input.KeyPress(key.FromCode(28)),
			want: []rawEvent{{evKey, 28, 1}, syn},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := records(tt.ev, b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecordsUnsupported(t *testing.T) {
	for _, ev := range []input.Event{
		input.KeyPress(key.FromRune('a')),
		input.KeyRelease(key.None),
		input.KeyPress(key.FromCode(0x1ff)),
		input.ButtonPress(mouse.Numbered(200)),
		{},
	} {
		_, err := records(ev, DefaultBounds)
		assert.ErrorIs(t, err, ErrUnsupportedEvent, ev.String())
	}
}

func TestEncodeRecordsDecodes(t *testing.T) {
	recs := []rawEvent{{evAbs, absX, 640}, {evAbs, absY, 480}, syn}
	for _, size := range []int{16, 24} {
		data := encodeRecords(recs, size)
		require.Len(t, data, 3*size)
		assert.Equal(t, recs, newRecordDecoder(size).feed(data))
	}
}

func TestEncodeUserDev(t *testing.T) {
	buf := encodeUserDev(VirtualDeviceName, Bounds{Width: 1920, Height: 1080})
	require.Len(t, buf, 1116)

	name := string(buf[:len(VirtualDeviceName)])
	assert.Equal(t, VirtualDeviceName, name)
	assert.Zero(t, buf[len(VirtualDeviceName)])

	assert.Equal(t, uint16(busVirtual), binary.LittleEndian.Uint16(buf[80:]))

	absmax := 80 + 8 + 4
	assert.Equal(t, uint32(1919), binary.LittleEndian.Uint32(buf[absmax:]))
	assert.Equal(t, uint32(1079), binary.LittleEndian.Uint32(buf[absmax+4:]))
}

func TestEncodeUserDevTruncatesName(t *testing.T) {
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'n'
	}
	buf := encodeUserDev(string(long), DefaultBounds)
	assert.Zero(t, buf[79], "name stays NUL terminated")
}

func TestInjectCodesInvertButtonCodes(t *testing.T) {
	for code, b := range buttonCodes {
		assert.Equal(t, code, injectCodes[b], b.String())
	}
}

func TestNumberedPrimaryButtonsInjectOnly(t *testing.T) {
	want := map[uint8]uint16{1: btnLeft, 2: btnMiddle, 3: btnRight}
	for n, code := range want {
		b := mouse.Numbered(n)
		assert.Equal(t, code, injectCodes[b], b.String())

		// Capture reports the same physical button by name
		captured, ok := translateKey(rawEvent{Type: evKey, Code: code, Value: 1})
		require.True(t, ok)
		assert.NotEqual(t, b, captured.Button)
	}
	for _, b := range buttonCodes {
		assert.NotContains(t, []mouse.Button{mouse.Numbered(1), mouse.Numbered(2), mouse.Numbered(3)}, b)
	}
}
