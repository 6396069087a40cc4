package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var defaultLogger *slog.Logger

// Options selects the handler. Empty fields fall back to the env defaults.
type Options struct {
	Env    string
	Level  string
	Format string
	Output io.Writer
}

func Init(env string) {
	Setup(Options{Env: env})
}

// Setup builds the process logger: JSON at info in production, text at
// debug elsewhere, unless Level or Format say otherwise.
func Setup(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	level := slog.LevelDebug
	format := "text"
	if opts.Env == "production" {
		level = slog.LevelInfo
		format = "json"
	}
	if opts.Level != "" {
		level = ParseLevel(opts.Level)
	}
	if opts.Format != "" {
		format = strings.ToLower(opts.Format)
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	defaultLogger = slog.New(handler).With("service", "shifts-logger")
	slog.SetDefault(defaultLogger)
	return defaultLogger
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// Discard returns a logger that writes nowhere.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func LoggerWrapper() *slog.Logger {
	if defaultLogger == nil {
		// lazy initialize a development logger to avoid nil pointer panics
		Init("development")
	}
	return defaultLogger
}
