package macro

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/dshills/mackerel/internal/input"
	"github.com/dshills/mackerel/internal/input/mouse"
)

// timeline records injections and sleeps in the order they happen.
type timeline struct {
	steps []string
	fail  map[input.Event]bool
}

func (tl *timeline) Inject(ev input.Event) error {
	if tl.fail[ev] {
		tl.steps = append(tl.steps, "fail "+ev.String())
		return errors.New("device busy")
	}
	tl.steps = append(tl.steps, "inject "+ev.String())
	return nil
}

func (tl *timeline) sleep(d time.Duration) {
	tl.steps = append(tl.steps, fmt.Sprintf("sleep %v", d))
}

func newTestPlayer(macros []Macro, tl *timeline) *Player {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPlayer(macros, tl, WithSleep(tl.sleep), WithLogger(logger))
}

func mouse1Trigger() Trigger {
	return Single{Event: input.ButtonRelease(mouse.Numbered(1))}
}

func assertSteps(t *testing.T, got, want []string) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("steps mismatch\n got: %q\nwant: %q", got, want)
	}
}

// ==================== Playback Tests ====================

func TestPlayerEmitDelays(t *testing.T) {
	tl := &timeline{}
	p := newTestPlayer([]Macro{{
		Trigger: mouse1Trigger(),
		Actions: []Action{
			Emit{Event: input.Move(1110, 600)},
			Emit{Event: input.ButtonPress(mouse.ButtonLeft)},
			Emit{Event: input.ButtonRelease(mouse.ButtonLeft)},
			ReturnToStart{},
		},
	}}, tl)

	p.OnEvent(input.ButtonRelease(mouse.Numbered(1)), mouse.Position{X: 5, Y: 6})

	assertSteps(t, tl.steps, []string{
		"inject move 1110,600", "sleep 40ms",
		"inject button-press MouseLeft", "sleep 40ms",
		"inject button-release MouseLeft", "sleep 40ms",
		"inject move 5,6", "sleep 40ms",
	})
}

func TestPlayerWaitHasNoTrailingDelay(t *testing.T) {
	tl := &timeline{}
	p := newTestPlayer([]Macro{{
		Trigger: mouse1Trigger(),
		Actions: []Action{
			Emit{Event: input.ButtonPress(mouse.ButtonLeft)},
			Wait{Millis: 50},
			Emit{Event: input.ButtonRelease(mouse.ButtonLeft)},
		},
	}}, tl)

	p.OnEvent(input.ButtonRelease(mouse.Numbered(1)), mouse.Position{})

	assertSteps(t, tl.steps, []string{
		"inject button-press MouseLeft", "sleep 40ms",
		"sleep 50ms",
		"inject button-release MouseLeft", "sleep 40ms",
	})
}

func TestPlayerIgnoresPressOfTriggerButton(t *testing.T) {
	tl := &timeline{}
	p := newTestPlayer([]Macro{{
		Trigger: mouse1Trigger(),
		Actions: []Action{Emit{Event: input.Move(1, 1)}},
	}}, tl)

	p.OnEvent(input.ButtonPress(mouse.Numbered(1)), mouse.Position{})

	if len(tl.steps) != 0 {
		t.Errorf("press must not fire a release trigger, got %q", tl.steps)
	}
	if p.Stats().Firings != 0 {
		t.Errorf("Firings = %d, want 0", p.Stats().Firings)
	}
}

func TestPlayerReturnToStartUsesFiringPosition(t *testing.T) {
	tl := &timeline{}
	p := newTestPlayer([]Macro{{
		Trigger: mouse1Trigger(),
		Actions: []Action{
			Emit{Event: input.Move(500, 500)},
			ReturnToStart{},
		},
	}}, tl)

	pointer := mouse.Position{X: 10, Y: 20}
	p.OnEvent(input.ButtonRelease(mouse.Numbered(1)), pointer)

	assertSteps(t, tl.steps, []string{
		"inject move 500,500", "sleep 40ms",
		"inject move 10,20", "sleep 40ms",
	})
}

func TestPlayerContinuesAfterInjectFailure(t *testing.T) {
	tl := &timeline{fail: map[input.Event]bool{
		input.ButtonPress(mouse.ButtonLeft): true,
	}}
	p := newTestPlayer([]Macro{{
		Trigger: mouse1Trigger(),
		Actions: []Action{
			Emit{Event: input.ButtonPress(mouse.ButtonLeft)},
			Emit{Event: input.ButtonRelease(mouse.ButtonLeft)},
		},
	}}, tl)

	p.OnEvent(input.ButtonRelease(mouse.Numbered(1)), mouse.Position{})

	assertSteps(t, tl.steps, []string{
		"fail button-press MouseLeft", "sleep 40ms",
		"inject button-release MouseLeft", "sleep 40ms",
	})

	stats := p.Stats()
	if stats.Firings != 1 || stats.Injected != 1 || stats.InjectFailures != 1 {
		t.Errorf("Stats() = %+v, want 1 firing, 1 injected, 1 failure", stats)
	}
}

func TestPlayerRunsAllMatchesInLoadOrder(t *testing.T) {
	tl := &timeline{}
	p := newTestPlayer([]Macro{
		{Trigger: mouse1Trigger(), Actions: []Action{Emit{Event: input.Move(1, 1)}}},
		{Trigger: Single{Event: input.ButtonRelease(mouse.Numbered(2))}, Actions: []Action{Emit{Event: input.Move(2, 2)}}},
		{Trigger: mouse1Trigger(), Actions: []Action{Emit{Event: input.Move(3, 3)}}},
	}, tl)

	p.OnEvent(input.ButtonRelease(mouse.Numbered(1)), mouse.Position{})

	assertSteps(t, tl.steps, []string{
		"inject move 1,1", "sleep 40ms",
		"inject move 3,3", "sleep 40ms",
	})
	if p.Stats().Firings != 2 {
		t.Errorf("Firings = %d, want 2", p.Stats().Firings)
	}
}

func TestPlayerComboDoesNotFire(t *testing.T) {
	tl := &timeline{}
	p := newTestPlayer([]Macro{{
		Trigger: Combo{Events: []input.Event{
			input.ButtonRelease(mouse.ButtonLeft),
			input.ButtonRelease(mouse.ButtonRight),
		}},
		Actions: []Action{Emit{Event: input.Move(1, 1)}},
	}}, tl)

	p.OnEvent(input.ButtonRelease(mouse.ButtonLeft), mouse.Position{})
	p.OnEvent(input.ButtonRelease(mouse.ButtonRight), mouse.Position{})

	if len(tl.steps) != 0 {
		t.Errorf("combo fired: %q", tl.steps)
	}
}

func TestPlayerOwnsMacros(t *testing.T) {
	macros := []Macro{{
		Trigger: mouse1Trigger(),
		Actions: []Action{Emit{Event: input.Move(1, 1)}},
	}}
	tl := &timeline{}
	p := newTestPlayer(macros, tl)

	macros[0].Actions[0] = Emit{Event: input.Move(9, 9)}
	p.OnEvent(input.ButtonRelease(mouse.Numbered(1)), mouse.Position{})

	assertSteps(t, tl.steps, []string{"inject move 1,1", "sleep 40ms"})
	if p.Len() != 1 {
		t.Errorf("Len() = %d, want 1", p.Len())
	}
}

func TestInjectorFunc(t *testing.T) {
	var got input.Event
	inj := InjectorFunc(func(ev input.Event) error {
		got = ev
		return nil
	})

	if err := inj.Inject(input.Move(4, 2)); err != nil {
		t.Fatalf("Inject failed: %v", err)
	}
	if got != input.Move(4, 2) {
		t.Errorf("got %v, want move 4,2", got)
	}
}
