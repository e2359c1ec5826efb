package capture

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/mackerel/internal/input"
	"github.com/dshills/mackerel/internal/input/key"
	"github.com/dshills/mackerel/internal/input/mouse"
)

// TerminalSource captures mouse and key events from a terminal.
// Positions are cell coordinates. Ctrl-C stops listening.
type TerminalSource struct {
	screen tcell.Screen
	opts   options
	ready  chan struct{}
}

// NewTerminalSource creates a source on the controlling terminal.
func NewTerminalSource(opts ...Option) (*TerminalSource, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAvailable, err)
	}
	return NewTerminalSourceWithScreen(screen, opts...), nil
}

// NewTerminalSourceWithScreen creates a source on an existing screen.
// Listen initializes and finalizes the screen.
func NewTerminalSourceWithScreen(screen tcell.Screen, opts ...Option) *TerminalSource {
	return &TerminalSource{
		screen: screen,
		opts:   applyOptions(opts),
		ready:  make(chan struct{}),
	}
}

// Listen polls the screen until ctx is done or Ctrl-C is pressed.
// It may be called once.
func (s *TerminalSource) Listen(ctx context.Context, emit func(input.Event)) error {
	if err := s.screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer s.screen.Fini()

	s.screen.EnableMouse()
	s.drawStatus("mackerel: listening, Ctrl-C to quit")
	close(s.ready)

	stop := context.AfterFunc(ctx, func() {
		_ = s.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	defer stop()

	tr := &terminalTranslator{}
	for {
		ev := s.screen.PollEvent()
		if ev == nil || ctx.Err() != nil {
			return nil
		}
		if _, ok := ev.(*tcell.EventResize); ok {
			s.screen.Sync()
			continue
		}

		events, quit := tr.translate(ev)
		for _, e := range events {
			emit(e)
		}
		if quit {
			s.opts.logger.Info("terminal closed by user")
			return nil
		}
	}
}

func (s *TerminalSource) drawStatus(msg string) {
	s.screen.Clear()
	style := tcell.StyleDefault.Reverse(true)
	for i, r := range msg {
		s.screen.SetContent(i, 0, r, nil, style)
	}
	s.screen.Show()
}

// terminalButtons lists the mask bits tracked for press and release, in
// emit order.
var terminalButtons = []struct {
	mask   tcell.ButtonMask
	button mouse.Button
}{
	{tcell.Button1, mouse.ButtonLeft},
	{tcell.Button2, mouse.ButtonRight},
	{tcell.Button3, mouse.ButtonMiddle},
	{tcell.Button4, mouse.Numbered(4)},
	{tcell.Button5, mouse.Numbered(5)},
	{tcell.Button6, mouse.Numbered(6)},
	{tcell.Button7, mouse.Numbered(7)},
	{tcell.Button8, mouse.Numbered(8)},
}

// terminalKeys maps tcell special keys to evdev key codes.
var terminalKeys = map[tcell.Key]uint16{
	tcell.KeyEscape:     1,
	tcell.KeyBackspace:  14,
	tcell.KeyBackspace2: 14,
	tcell.KeyTab:        15,
	tcell.KeyEnter:      28,
	tcell.KeyUp:         103,
	tcell.KeyLeft:       105,
	tcell.KeyRight:      106,
	tcell.KeyDown:       108,
}

// terminalTranslator converts tcell events by diffing button state.
// Terminals report which buttons are held, not transitions.
type terminalTranslator struct {
	buttons tcell.ButtonMask
	x, y    int
	seen    bool
}

func (t *terminalTranslator) translate(ev tcell.Event) (events []input.Event, quit bool) {
	switch ev := ev.(type) {
	case *tcell.EventMouse:
		return t.mouse(ev), false
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyCtrlC {
			return nil, true
		}
		k, ok := terminalKey(ev)
		if !ok {
			return nil, false
		}
		// Terminals do not report key releases
		return []input.Event{input.KeyPress(k), input.KeyRelease(k)}, false
	}
	return nil, false
}

func (t *terminalTranslator) mouse(ev *tcell.EventMouse) []input.Event {
	var out []input.Event

	x, y := ev.Position()
	if !t.seen || x != t.x || y != t.y {
		t.x, t.y, t.seen = x, y, true
		out = append(out, input.Move(float64(x), float64(y)))
	}

	buttons := ev.Buttons()
	for _, b := range terminalButtons {
		was := t.buttons&b.mask != 0
		is := buttons&b.mask != 0
		switch {
		case is && !was:
			out = append(out, input.ButtonPress(b.button))
		case was && !is:
			out = append(out, input.ButtonRelease(b.button))
		}
	}
	t.buttons = buttons
	return out
}

func terminalKey(ev *tcell.EventKey) (key.Key, bool) {
	if ev.Key() == tcell.KeyRune {
		return key.FromRune(ev.Rune()), true
	}
	if code, ok := terminalKeys[ev.Key()]; ok {
		return key.FromCode(code), true
	}
	return key.None, false
}
