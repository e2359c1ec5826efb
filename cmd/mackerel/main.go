// Package main is the entry point for mackerel, the input macro player.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/mackerel/internal/capture"
	"github.com/dshills/mackerel/internal/config"
	"github.com/dshills/mackerel/internal/dispatcher"
	"github.com/dshills/mackerel/internal/filter"
	"github.com/dshills/mackerel/internal/input"
	"github.com/dshills/mackerel/internal/input/macro"
	"github.com/dshills/mackerel/internal/logging"
	"github.com/dshills/mackerel/internal/script"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Backends selectable with -backend.
const (
	backendEvdev    = "evdev"
	backendTerminal = "terminal"
)

// options holds the parsed command line.
type options struct {
	ScriptPath string
	OffsetPath string
	FilterPath string
	Backend    string
	DryRun     bool
	Screen     capture.Bounds
	Check      bool
	Watch      bool
	Stats      bool
	Log        *logging.Config
}

func main() {
	os.Exit(run())
}

func run() int {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	logger, err := logging.New(opts.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logging: %v\n", err)
		return 1
	}
	defer logger.Close()
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	offset, err := config.LoadOffset(opts.OffsetPath)
	if err != nil {
		logger.WithComponent("config").Warn("couldn't load offset, using defaults",
			"path", opts.OffsetPath, "error", err, "offset", offset.String())
	}

	scriptLog := logger.WithComponent("script")
	macros, err := script.ParseFile(opts.ScriptPath)
	if err != nil {
		logParseError(scriptLog, err)
		return 1
	}
	scriptLog.Info("script loaded", "path", opts.ScriptPath, "macros", len(macros))

	if opts.Check {
		if opts.FilterPath != "" {
			f, err := filter.Load(opts.FilterPath)
			if err != nil {
				logger.Error("couldn't load filter", "error", err)
				return 1
			}
			_ = f.Close()
		}
		if !opts.Watch {
			return 0
		}
		return watchScript(ctx, opts, offset, nil, logger)
	}

	macros = macro.ApplyOffset(macros, offset.X, offset.Y)

	injector, err := newInjector(opts, logger)
	if err != nil {
		logger.Error("couldn't create injector", "error", err)
		if errors.Is(err, capture.ErrNotAvailable) {
			fmt.Fprintln(os.Stderr, "hint: run with -dry-run to try a script without injecting")
		}
		return 1
	}
	defer injector.Close()

	source, err := newSource(opts, logger)
	if err != nil {
		logger.Error("couldn't create capture source", "error", err)
		return 1
	}

	var out macro.Injector = injector
	if pos, ok := source.(positioner); ok && !opts.DryRun {
		out = feedbackInjector{Injector: injector, pos: pos}
	}

	engineLog := logger.WithComponent("engine")
	handler := newReloadingHandler(macro.NewPlayer(macros, out, macro.WithLogger(engineLog.Logger)))

	var target dispatcher.Handler = handler
	if opts.FilterPath != "" {
		f, err := filter.Load(opts.FilterPath, filter.WithLogger(logger.WithComponent("filter").Logger))
		if err != nil {
			logger.Error("couldn't load filter", "error", err)
			return 1
		}
		defer f.Close()
		target = f.Wrap(handler)
		logger.Info("filter loaded", "path", opts.FilterPath)
	}

	cfg := dispatcher.DefaultConfig()
	if opts.Stats {
		cfg = cfg.WithMetrics()
	}
	d := dispatcher.New(cfg, offset, target, dispatcher.WithLogger(logger.WithComponent("dispatcher").Logger))

	runErr := make(chan error, 1)
	go func() { runErr <- d.Run(ctx) }()

	if opts.Watch {
		go watchScript(ctx, opts, offset, func(m []macro.Macro) {
			m = macro.ApplyOffset(m, offset.X, offset.Y)
			handler.Swap(macro.NewPlayer(m, out, macro.WithLogger(engineLog.Logger)))
		}, logger)
	}

	logger.Info("mackerel started",
		"version", version,
		"backend", opts.Backend,
		"dry_run", opts.DryRun,
		"offset", offset.String(),
	)

	listenErr := source.Listen(ctx, func(ev input.Event) {
		d.Submit(ev)
	})

	stop()
	d.Close()
	<-runErr

	logStats(logger, d, handler.Player())

	if listenErr != nil && !errors.Is(listenErr, context.Canceled) {
		logger.WithComponent("capture").Error("capture failed", "error", listenErr)
		return 1
	}
	logger.Info("mackerel stopped")
	return 0
}

// injector is a macro.Injector that holds OS resources.
type injector interface {
	macro.Injector
	io.Closer
}

// positioner is a source that tracks an absolute pointer position.
type positioner interface {
	SetPosition(x, y float64)
}

// feedbackInjector reports injected moves back to the source, so motion
// read afterwards continues from where the pointer was sent.
type feedbackInjector struct {
	macro.Injector
	pos positioner
}

func (f feedbackInjector) Inject(ev input.Event) error {
	if err := f.Injector.Inject(ev); err != nil {
		return err
	}
	if ev.Kind == input.KindMove {
		f.pos.SetPosition(ev.X, ev.Y)
	}
	return nil
}

func newInjector(opts options, logger *logging.Logger) (injector, error) {
	log := logger.WithComponent("capture")
	if opts.DryRun {
		return capture.NewDryRun(capture.WithLogger(log.Logger)), nil
	}
	return capture.NewUinputInjector(opts.Screen, capture.WithLogger(log.Logger))
}

func newSource(opts options, logger *logging.Logger) (capture.Source, error) {
	log := logger.WithComponent("capture")
	switch opts.Backend {
	case backendTerminal:
		return capture.NewTerminalSource(capture.WithLogger(log.Logger))
	default:
		return capture.NewEvdevSource(opts.Screen, capture.WithLogger(log.Logger))
	}
}

func logParseError(log *logging.Logger, err error) {
	var pe *script.ParseError
	if errors.As(err, &pe) {
		args := []any{
			"path", pe.Path,
			"line", pe.Line,
			"column", pe.Column,
			"near", pe.Near(),
			"error", pe.Message,
		}
		if pe.Err != nil {
			args = append(args, "cause", pe.Err)
		}
		log.Error("couldn't parse script", args...)
		return
	}
	log.Error("couldn't load script", "error", err)
}

func logStats(logger *logging.Logger, d *dispatcher.Dispatcher, p *macro.Player) {
	ds := d.Stats()
	ps := p.Stats()
	logger.Info("session stats",
		"events", ds.Processed,
		"dropped", ds.Dropped,
		"firings", ps.Firings,
		"injected", ps.Injected,
		"inject_failures", ps.InjectFailures,
	)
	if m := d.Metrics(); m != nil {
		snap := m.Snapshot()
		logger.Info("dispatch metrics",
			"dispatches", snap.TotalDispatches,
			"panics", snap.TotalPanics,
			"avg", snap.AverageDuration,
		)
		for _, km := range m.SlowestKinds(3) {
			logger.Debug("slow event kind", "kind", km.Kind.String(), "max", km.MaxDuration, "avg", km.AverageDuration())
		}
	}
}
