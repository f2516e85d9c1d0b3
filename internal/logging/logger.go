// Package logging configures the process-wide slog logger.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options selects the level, format and optional file of the logger.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // text, json
	File   string // when set, every record is also appended here
}

// levelRouter is a slog.Handler that routes records below ERROR to one
// handler and ERROR+ to another.
type levelRouter struct {
	level  slog.Level
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= lr.level
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		level:  lr.level,
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		level:  lr.level,
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// Setup installs the default logger: records below ERROR go to stdout,
// ERROR goes to stderr. The returned function closes the log file, if any.
func Setup(opts Options) (func(), error) {
	return setup(opts, os.Stdout, os.Stderr)
}

func setup(opts Options, stdout, stderr io.Writer) (func(), error) {
	cleanup := func() {}

	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdout = io.MultiWriter(stdout, f)
		stderr = io.MultiWriter(stderr, f)
	}

	level := ParseLevel(opts.Level)
	handlerOpts := &slog.HandlerOptions{Level: level}

	newHandler := func(w io.Writer) slog.Handler {
		if strings.ToLower(opts.Format) == "json" {
			return slog.NewJSONHandler(w, handlerOpts)
		}
		return slog.NewTextHandler(w, handlerOpts)
	}

	slog.SetDefault(slog.New(&levelRouter{
		level:  level,
		stdout: newHandler(stdout),
		stderr: newHandler(stderr),
	}))
	return cleanup, nil
}

// ParseLevel converts a level name to slog.Level. Unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithFields returns the default logger with additional structured fields.
func WithFields(args ...any) *slog.Logger {
	return slog.Default().With(args...)
}
