package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/dshills/mackerel/internal/capture"
	"github.com/dshills/mackerel/internal/config"
	"github.com/dshills/mackerel/internal/logging"
)

// parseFlags parses args into options. It returns flag.ErrHelp after
// printing usage or version information.
func parseFlags(args []string, out io.Writer) (options, error) {
	var (
		opts        options
		screen      string
		logLevel    string
		logFormat   string
		logOutput   string
		logFile     string
		showVersion bool
	)

	fs := flag.NewFlagSet("mackerel", flag.ContinueOnError)
	fs.SetOutput(out)

	fs.StringVar(&opts.ScriptPath, "script", "macros.txt", "Macro script to load")
	fs.StringVar(&opts.OffsetPath, "offset", config.DefaultOffsetPath, "Offset file (.toml, .yaml or .json)")
	fs.StringVar(&opts.Backend, "backend", backendEvdev, "Capture backend (evdev, terminal)")
	fs.BoolVar(&opts.DryRun, "dry-run", false, "Log injected events instead of sending them")
	fs.StringVar(&screen, "screen", capture.DefaultBounds.String(), "Screen size in pixels, WIDTHxHEIGHT")
	fs.StringVar(&opts.FilterPath, "filter", "", "Lua script deciding which events reach the macros")
	fs.BoolVar(&opts.Check, "check", false, "Parse the script and exit")
	fs.BoolVar(&opts.Watch, "watch", false, "Reload the script when it changes")
	fs.BoolVar(&opts.Stats, "stats", false, "Collect dispatch metrics and log them on exit")
	fs.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	fs.StringVar(&logFormat, "log-format", "text", "Log format (text, json)")
	fs.StringVar(&logOutput, "log-output", "stderr", "Log output (stdout, stderr, file, both)")
	fs.StringVar(&logFile, "log-file", "", "Log file path when -log-output includes file")
	fs.BoolVar(&showVersion, "version", false, "Show version information")

	fs.Usage = func() {
		fmt.Fprintf(out, "mackerel - input macro player\n\n")
		fmt.Fprintf(out, "Usage: mackerel [options]\n\n")
		fmt.Fprintf(out, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(out, "\nExamples:\n")
		fmt.Fprintf(out, "  mackerel -check -script macros.txt   Validate a script\n")
		fmt.Fprintf(out, "  mackerel -dry-run -log-level debug   Trace macros without injecting\n")
		fmt.Fprintf(out, "  mackerel -backend terminal -dry-run  Try a script inside a terminal\n")
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if showVersion {
		fmt.Fprintf(out, "mackerel %s\n", version)
		fmt.Fprintf(out, "Commit: %s\n", commit)
		fmt.Fprintf(out, "Built: %s\n", date)
		return opts, flag.ErrHelp
	}

	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	switch opts.Backend {
	case backendEvdev, backendTerminal:
	default:
		return opts, fmt.Errorf("invalid backend %q (must be evdev or terminal)", opts.Backend)
	}

	bounds, err := capture.ParseBounds(screen)
	if err != nil {
		return opts, err
	}
	opts.Screen = bounds

	opts.Log = logging.DefaultConfig()
	if opts.Log.Level, err = logging.ParseLevel(logLevel); err != nil {
		return opts, err
	}
	if opts.Log.Format, err = logging.ParseFormat(logFormat); err != nil {
		return opts, err
	}
	switch logOutput {
	case "stdout", "stderr", "file", "both":
	default:
		return opts, fmt.Errorf("invalid log output %q (must be stdout, stderr, file, or both)", logOutput)
	}
	// The terminal backend owns the screen
	if opts.Backend == backendTerminal && !opts.Check && logOutput != "file" {
		logOutput = "file"
	}
	opts.Log.Output = logOutput
	if logFile != "" {
		opts.Log.FilePath = logFile
	}

	return opts, nil
}
