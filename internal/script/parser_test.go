package script

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/mackerel/internal/input"
	"github.com/dshills/mackerel/internal/input/key"
	"github.com/dshills/mackerel/internal/input/macro"
	"github.com/dshills/mackerel/internal/input/mouse"
)

// parseBody parses a single Mouse1 macro wrapping body and returns its actions.
func parseBody(t *testing.T, body string) []macro.Action {
	t.Helper()
	macros, err := Parse("Mouse1 {\n" + body + "\n}")
	require.NoError(t, err)
	require.Len(t, macros, 1)
	return macros[0].Actions
}

func requireParseError(t *testing.T, src string) *ParseError {
	t.Helper()
	macros, err := Parse(src)
	require.Error(t, err)
	assert.Nil(t, macros)

	var perr *ParseError
	require.True(t, errors.As(err, &perr), "expected *ParseError, got %T", err)
	return perr
}

// =============================================================================
// Durations
// =============================================================================

func TestWaitDurations(t *testing.T) {
	tests := []struct {
		in   string
		want uint32
	}{
		{"0.1234", 123},
		{"0.123", 123},
		{"2", 2000},
		{"0.5", 500},
		{"2.5", 2500},
		{"0.05", 50},
		{"0.001", 1},
		{"10.0009", 10000},
		{"1.999999", 1999},
		{"0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			actions := parseBody(t, "wait "+tt.in)
			require.Len(t, actions, 1)
			assert.Equal(t, macro.Wait{Millis: tt.want}, actions[0])
		})
	}
}

func TestMillisMatchesWholeTimesThousandPlusFraction(t *testing.T) {
	for whole := 0; whole < 5; whole++ {
		for _, frac := range []string{"0", "7", "42", "123", "1234", "98765"} {
			got, err := millis(strconv.Itoa(whole), frac)
			require.NoError(t, err)

			digits := frac
			if len(digits) > 3 {
				digits = digits[:3]
			}
			digits += strings.Repeat("0", 3-len(digits))
			f, err := strconv.Atoi(digits)
			require.NoError(t, err)

			want := uint32(whole*1000 + f)
			assert.Equal(t, want, got, "whole=%d frac=%s", whole, frac)
		}
	}
}

func TestWaitOverflow(t *testing.T) {
	perr := requireParseError(t, "Mouse1 {\nwait 4294968\n}")
	assert.ErrorIs(t, perr, ErrOutOfRange)
	assert.Equal(t, 2, perr.Line)
}

func TestWaitRequiresNumber(t *testing.T) {
	perr := requireParseError(t, "Mouse1 {\nwait soon\n}")
	assert.Equal(t, 2, perr.Line)
	assert.Equal(t, 6, perr.Column)
}

func TestWaitTrailingDot(t *testing.T) {
	perr := requireParseError(t, "Mouse1 {\nwait 2.\n}")
	assert.Contains(t, perr.Message, "end of line")
}

// =============================================================================
// Press / hold / release
// =============================================================================

func TestPressExpandsToTap(t *testing.T) {
	actions := parseBody(t, "press MouseLeft")
	assert.Equal(t, []macro.Action{
		macro.Emit{Event: input.ButtonPress(mouse.ButtonLeft)},
		macro.Emit{Event: input.ButtonRelease(mouse.ButtonLeft)},
	}, actions)
}

func TestHoldAndReleaseEmitOneEvent(t *testing.T) {
	assert.Equal(t, []macro.Action{
		macro.Emit{Event: input.ButtonPress(mouse.ButtonLeft)},
	}, parseBody(t, "hold MouseLeft"))

	assert.Equal(t, []macro.Action{
		macro.Emit{Event: input.ButtonRelease(mouse.ButtonLeft)},
	}, parseBody(t, "release MouseLeft"))
}

func TestButtons(t *testing.T) {
	tests := []struct {
		token string
		want  mouse.Button
	}{
		{"MouseLeft", mouse.ButtonLeft},
		{"MouseRight", mouse.ButtonRight},
		{"MouseMiddle", mouse.ButtonMiddle},
		{"Mouse1", mouse.Numbered(1)},
		{"Mouse8", mouse.Numbered(8)},
		{"Mouse255", mouse.Numbered(255)},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			actions := parseBody(t, "hold "+tt.token)
			assert.Equal(t, []macro.Action{macro.Emit{Event: input.ButtonPress(tt.want)}}, actions)
		})
	}
}

func TestButtonNumberOutOfRange(t *testing.T) {
	perr := requireParseError(t, "Mouse1 {\npress Mouse256\n}")
	assert.ErrorIs(t, perr, ErrOutOfRange)
}

func TestUnknownMouseButton(t *testing.T) {
	perr := requireParseError(t, "Mouse1 {\npress MouseBack\n}")
	assert.Equal(t, 2, perr.Line)
	assert.Equal(t, 12, perr.Column)
	assert.Equal(t, "Back", perr.Near())
}

func TestKeyNamesAreRejected(t *testing.T) {
	for _, body := range []string{"press a", "hold LeftCtrl", "release Enter"} {
		t.Run(body, func(t *testing.T) {
			perr := requireParseError(t, "Mouse1 {\n"+body+"\n}")
			assert.ErrorIs(t, perr, key.ErrKeyNamesUnsupported)
			assert.Equal(t, 2, perr.Line)
		})
	}
}

func TestPressRequiresSpace(t *testing.T) {
	perr := requireParseError(t, "Mouse1 {\npressMouseLeft\n}")
	assert.Contains(t, perr.Message, "space")
}

// =============================================================================
// Move
// =============================================================================

func TestMoveTo(t *testing.T) {
	tests := []struct {
		body string
		want macro.Action
	}{
		{"move to 1110, 600", macro.Emit{Event: input.Move(1110, 600)}},
		{"move to 1110,600", macro.Emit{Event: input.Move(1110, 600)}},
		{"move to 0 ,  0", macro.Emit{Event: input.Move(0, 0)}},
		{"move to\n  5,\n  7", macro.Emit{Event: input.Move(5, 7)}},
		{"move to start", macro.ReturnToStart{}},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			assert.Equal(t, []macro.Action{tt.want}, parseBody(t, tt.body))
		})
	}
}

func TestMoveToErrors(t *testing.T) {
	tests := []string{
		"move to",
		"move to x, y",
		"move to 10",
		"move to 10, ",
		"move to -5, 5",
		"move to 99999999999, 1",
		"move tostart",
	}

	for _, body := range tests {
		t.Run(body, func(t *testing.T) {
			requireParseError(t, "Mouse1 {\n"+body+"\n}")
		})
	}
}

// =============================================================================
// Triggers
// =============================================================================

func TestTriggerMatchesRelease(t *testing.T) {
	macros, err := Parse("Mouse1 {\npress MouseLeft\n}")
	require.NoError(t, err)

	trigger := macros[0].Trigger
	assert.Equal(t, macro.Single{Event: input.ButtonRelease(mouse.Numbered(1))}, trigger)
	assert.True(t, trigger.Matches(input.ButtonRelease(mouse.Numbered(1))))
	assert.False(t, trigger.Matches(input.ButtonPress(mouse.Numbered(1))))
}

func TestComboTrigger(t *testing.T) {
	macros, err := Parse("MouseLeft + MouseRight {\npress Mouse4\n}\nMouse1+Mouse2+Mouse3{\nwait 1\n}")
	require.NoError(t, err)
	require.Len(t, macros, 2)

	assert.Equal(t, macro.Combo{Events: []input.Event{
		input.ButtonRelease(mouse.ButtonLeft),
		input.ButtonRelease(mouse.ButtonRight),
	}}, macros[0].Trigger)

	combo, ok := macros[1].Trigger.(macro.Combo)
	require.True(t, ok)
	assert.Len(t, combo.Events, 3)
}

func TestTriggerKeyNameRejected(t *testing.T) {
	perr := requireParseError(t, "Ctrl {\npress MouseLeft\n}")
	assert.ErrorIs(t, perr, key.ErrKeyNamesUnsupported)
	assert.Equal(t, 1, perr.Line)
	assert.Equal(t, 1, perr.Column)
}

func TestComboMissingToken(t *testing.T) {
	perr := requireParseError(t, "Mouse1 + {\npress MouseLeft\n}")
	assert.Equal(t, 1, perr.Line)
	assert.Equal(t, 10, perr.Column)
}

// =============================================================================
// Macros and files
// =============================================================================

func TestParseMacro(t *testing.T) {
	src := `Mouse1 {
            move to 1110, 600
            press MouseLeft
            move to start
        }`

	macros, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, macros, 1)

	assert.Equal(t, 1, macros[0].Line)
	assert.Equal(t, []macro.Action{
		macro.Emit{Event: input.Move(1110, 600)},
		macro.Emit{Event: input.ButtonPress(mouse.ButtonLeft)},
		macro.Emit{Event: input.ButtonRelease(mouse.ButtonLeft)},
		macro.ReturnToStart{},
	}, macros[0].Actions)
}

func TestParseFileOrderAndLines(t *testing.T) {
	src := `
        Mouse1 {
            move to 1110, 600
            press MouseLeft
            move to start
        }

Mouse2 {
	hold MouseLeft
	wait 0.25
	release MouseLeft
}
`
	macros, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, macros, 2)

	assert.Equal(t, 2, macros[0].Line)
	assert.Equal(t, 8, macros[1].Line)
	assert.Equal(t, "Mouse1", macros[0].Trigger.String())
	assert.Equal(t, "Mouse2", macros[1].Trigger.String())
	assert.Equal(t, []macro.Action{
		macro.Emit{Event: input.ButtonPress(mouse.ButtonLeft)},
		macro.Wait{Millis: 250},
		macro.Emit{Event: input.ButtonRelease(mouse.ButtonLeft)},
	}, macros[1].Actions)
}

func TestParseCRLF(t *testing.T) {
	macros, err := Parse("Mouse1 {\r\n\tpress MouseLeft\r\n\twait 1\r\n}\r\n")
	require.NoError(t, err)
	require.Len(t, macros, 1)
	assert.Len(t, macros[0].Actions, 3)
}

func TestTrailingSpacesBeforeLineEnd(t *testing.T) {
	actions := parseBody(t, "press MouseLeft \t ")
	assert.Len(t, actions, 2)
}

func TestWholeFileRejected(t *testing.T) {
	src := `Mouse1 {
    press MouseLeft
}

Mouse2 {
    press MouseLeft
    jump
}
`
	perr := requireParseError(t, src)
	assert.Equal(t, 7, perr.Line)
	assert.Equal(t, 5, perr.Column)
	assert.Equal(t, "jump", perr.Near())
	assert.True(t, strings.HasPrefix(perr.Remainder, "jump\n}"))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"missing brace", "Mouse1\npress MouseLeft\n}", 2},
		{"empty body", "Mouse1 {\n}", 2},
		{"unclosed", "Mouse1 {\npress MouseLeft\n", 3},
		{"brace on action line", "Mouse1 {\npress MouseLeft }", 2},
		{"trailing garbage", "Mouse1 {\npress MouseLeft\n}\nnonsense", 4},
		{"unknown action", "Mouse1 {\nclick MouseLeft\n}", 2},
		{"two actions on one line", "Mouse1 {\npress MouseLeft press MouseRight\n}", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perr := requireParseError(t, tt.src)
			assert.Equal(t, tt.line, perr.Line)
		})
	}
}

func TestEmptyScript(t *testing.T) {
	for _, src := range []string{"", "   \n\t\n"} {
		perr := requireParseError(t, src)
		assert.ErrorIs(t, perr, ErrNoMacros)
	}
}

func TestParseErrorMessage(t *testing.T) {
	perr := requireParseError(t, "Mouse1 {\n  press MouseLeft\n  jump over\n}")
	perr.Path = "macros.txt"

	msg := perr.Error()
	assert.Contains(t, msg, "macros.txt: line 3, column 3")
	assert.Contains(t, msg, `near "jump over"`)
}

func TestParseErrorAtEndOfInput(t *testing.T) {
	perr := requireParseError(t, "Mouse1 {")
	assert.Contains(t, perr.Error(), "at end of input")
}

func TestNearTruncates(t *testing.T) {
	perr := &ParseError{Remainder: strings.Repeat("x", 100)}
	assert.Equal(t, strings.Repeat("x", nearLimit)+"...", perr.Near())
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "macros.txt")
	require.NoError(t, os.WriteFile(path, []byte("Mouse1 {\n  press MouseLeft\n}\n"), 0o644))

	macros, err := ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, macros, 1)
}

func TestParseFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ParseFile(filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(bad, []byte("Mouse1 {\n  dance\n}\n"), 0o644))

	_, err = ParseFile(bad)
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, bad, perr.Path)
	assert.Contains(t, err.Error(), bad)
}
