package filter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/mackerel/internal/dispatcher"
	"github.com/dshills/mackerel/internal/input"
	"github.com/dshills/mackerel/internal/input/mouse"
)

// DefaultTimeout bounds each call to allow.
const DefaultTimeout = 50 * time.Millisecond

// allowFunc is the global the script must define.
const allowFunc = "allow"

// unsafeGlobals are removed from the base library.
var unsafeGlobals = []string{"dofile", "loadfile", "load", "loadstring", "require", "module"}

// Stats holds filter counters.
type Stats struct {
	Calls    uint64
	Rejected uint64
	Failures uint64
}

// Option configures a Filter.
type Option func(*Filter)

// WithTimeout sets the time limit for each allow call.
func WithTimeout(d time.Duration) Option {
	return func(f *Filter) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithLogger sets the logger used for script failures.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Filter) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// Filter evaluates a Lua allow function against input events.
// The Lua state is not goroutine-safe; calls are serialized.
type Filter struct {
	mu      sync.Mutex
	L       *lua.LState
	name    string
	timeout time.Duration
	logger  *slog.Logger
	closed  bool

	calls    atomic.Uint64
	rejected atomic.Uint64
	failures atomic.Uint64
}

// Load reads and runs the filter script at path.
func Load(path string, opts ...Option) (*Filter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading filter %s: %w", path, err)
	}
	return New(string(data), path, opts...)
}

// New runs source, which must define allow(ev). name is used in messages.
func New(source, name string, opts ...Option) (*Filter, error) {
	f := &Filter{
		name:    name,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)
	f.L = L

	if err := f.run(func() error { return L.DoString(source) }); err != nil {
		L.Close()
		return nil, fmt.Errorf("loading filter %s: %w", name, err)
	}
	if L.GetGlobal(allowFunc).Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("%w: %s", ErrNoAllow, name)
	}
	return f, nil
}

func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range unsafeGlobals {
		L.SetGlobal(name, lua.LNil)
	}
}

// run executes fn under the call timeout.
func (f *Filter) run(fn func() error) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()
	f.L.SetContext(ctx)
	defer f.L.RemoveContext()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// Allow reports whether ev should reach the player.
func (f *Filter) Allow(ev input.Event, pointer mouse.Position) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return false, ErrClosed
	}
	f.calls.Add(1)

	L := f.L
	top := L.GetTop()
	defer L.SetTop(top)

	err := f.run(func() error {
		return L.CallByParam(lua.P{
			Fn:      L.GetGlobal(allowFunc),
			NRet:    1,
			Protect: true,
		}, eventTable(L, ev, pointer))
	})
	if err != nil {
		f.failures.Add(1)
		return false, fmt.Errorf("%s: %w", f.name, err)
	}

	allowed := lua.LVAsBool(L.Get(-1))
	if !allowed {
		f.rejected.Add(1)
	}
	return allowed, nil
}

func eventTable(L *lua.LState, ev input.Event, pointer mouse.Position) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("kind", lua.LString(ev.Kind.String()))
	switch ev.Kind {
	case input.KindButtonPress, input.KindButtonRelease:
		t.RawSetString("button", lua.LString(ev.Button.String()))
	case input.KindKeyPress, input.KindKeyRelease:
		t.RawSetString("key", lua.LString(ev.Key.String()))
	case input.KindMove:
		t.RawSetString("x", lua.LNumber(ev.X))
		t.RawSetString("y", lua.LNumber(ev.Y))
	}
	t.RawSetString("pointer_x", lua.LNumber(pointer.X))
	t.RawSetString("pointer_y", lua.LNumber(pointer.Y))
	return t
}

// Wrap returns a handler that forwards only allowed events to next.
// Events whose filter call fails are forwarded and logged.
func (f *Filter) Wrap(next dispatcher.Handler) dispatcher.Handler {
	return dispatcher.HandlerFunc(func(ev input.Event, pointer mouse.Position) {
		ok, err := f.Allow(ev, pointer)
		if err != nil {
			f.logger.Warn("filter failed, passing event", "event", ev.String(), "error", err)
			ok = true
		}
		if ok {
			next.OnEvent(ev, pointer)
		}
	})
}

// Stats returns a snapshot of the filter counters.
func (f *Filter) Stats() Stats {
	return Stats{
		Calls:    f.calls.Load(),
		Rejected: f.rejected.Load(),
		Failures: f.failures.Load(),
	}
}

// Close releases the Lua state.
func (f *Filter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.L.Close()
	f.closed = true
	return nil
}
