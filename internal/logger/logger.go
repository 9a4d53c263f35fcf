// Package logger holds the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

var globalLogger = zerolog.Nop()

// Init configures the global logger. An unknown level falls back to info.
// Human-readable console output is used unless jsonFormat is set.
func Init(level string, jsonFormat bool, out io.Writer) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if out == nil {
		out = os.Stderr
	}

	if !jsonFormat {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		}
	}

	globalLogger = zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Str("service", "tempo").
		Logger()
}

// OpenFile opens path for appending, creating parent directories.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

func Global() *zerolog.Logger {
	return &globalLogger
}

// Component returns a child of the global logger tagged with name.
func Component(name string) zerolog.Logger {
	return globalLogger.With().Str("component", name).Logger()
}
