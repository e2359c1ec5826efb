// Package logging builds the slog loggers used across mackerel.
//
// One root Logger is created from the command line flags; each component
// (engine, capture, config, script, dispatcher, watcher, filter) logs
// through a child from WithComponent. The terminal backend owns the
// screen, so logs can be sent to a file instead of stderr.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// Level is a slog level.
type Level = slog.Level

// Log levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Format selects the slog handler.
type Format int

const (
	// FormatText uses slog.TextHandler.
	FormatText Format = iota
	// FormatJSON uses slog.JSONHandler.
	FormatJSON
)

// String returns the flag spelling of the format.
func (f Format) String() string {
	if f == FormatJSON {
		return "json"
	}
	return "text"
}

// Output destinations.
const (
	OutputStdout = "stdout"
	OutputStderr = "stderr"
	OutputFile   = "file"
	OutputBoth   = "both"
)

// Config describes a root logger.
type Config struct {
	Level  Level
	Format Format

	// Output is one of OutputStdout, OutputStderr, OutputFile or OutputBoth.
	Output string

	// FilePath is the log file for OutputFile and OutputBoth.
	FilePath string

	// Writer overrides Output when set.
	Writer io.Writer

	AddSource bool

	// Component is attached to every record as "component".
	Component string
}

// DefaultConfig logs text at info level to stderr.
func DefaultConfig() *Config {
	return &Config{
		Level:     LevelInfo,
		Format:    FormatText,
		Output:    OutputStderr,
		FilePath:  DefaultFilePath(),
		Component: "mackerel",
	}
}

// DefaultFilePath returns the per-platform log file location.
func DefaultFilePath() string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Logs", "mackerel", "mackerel.log")
	case "windows":
		dir := os.Getenv("LOCALAPPDATA")
		if dir == "" {
			dir = os.Getenv("APPDATA")
		}
		return filepath.Join(dir, "mackerel", "logs", "mackerel.log")
	}
	state := os.Getenv("XDG_STATE_HOME")
	if state == "" {
		state = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(state, "mackerel", "mackerel.log")
}

// Logger is a slog.Logger that may own a log file.
type Logger struct {
	*slog.Logger

	mu   sync.Mutex
	file *os.File
}

// New creates a root logger. A nil cfg uses DefaultConfig.
func New(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	l := &Logger{}
	w, err := l.writer(cfg)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource}
	var h slog.Handler = slog.NewTextHandler(w, opts)
	if cfg.Format == FormatJSON {
		h = slog.NewJSONHandler(w, opts)
	}
	if cfg.Component != "" {
		h = h.WithAttrs([]slog.Attr{slog.String("component", cfg.Component)})
	}
	l.Logger = slog.New(h)
	return l, nil
}

func (l *Logger) writer(cfg *Config) (io.Writer, error) {
	if cfg.Writer != nil {
		return cfg.Writer, nil
	}

	output := strings.ToLower(cfg.Output)
	if output != OutputFile && output != OutputBoth {
		if output == OutputStdout {
			return os.Stdout, nil
		}
		return os.Stderr, nil
	}

	path := cfg.FilePath
	if path == "" {
		path = DefaultFilePath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l.file = f

	if output == OutputBoth {
		return io.MultiWriter(os.Stderr, f), nil
	}
	return f, nil
}

// WithComponent returns a child logger that replaces the component name.
// The child shares the root's output; closing it does nothing.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("component", name))}
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// SetDefault routes slog's package-level functions through l.
func SetDefault(l *Logger) {
	slog.SetDefault(l.Logger)
}

// ParseLevel parses a -log-level value.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level: %s", s)
}

// ParseFormat parses a -log-format value. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	}
	return FormatText, fmt.Errorf("unknown log format: %s", s)
}
