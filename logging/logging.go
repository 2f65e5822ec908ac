// Package logging configures the process-wide slog logger. The terminal UI
// owns stdout, so log records go to a rotating file instead.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/m4xw311/picode/errors"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxSizeMB  = 5
	maxBackups = 3
)

// Setup installs a text-handler logger writing to path and returns it along
// with the closer for the underlying file. An empty path discards all output.
func Setup(path string, verbose bool) (*slog.Logger, io.Closer, error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	if path == "" {
		logger := slog.New(slog.DiscardHandler)
		slog.SetDefault(logger)
		return logger, io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, errors.Wrapf(err, "could not create log directory")
	}

	sink := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
	}
	logger := New(sink, level)
	slog.SetDefault(logger)
	return logger, sink, nil
}

// New returns a text logger on w at the given level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// OrDefault returns l, or slog.Default() when l is nil.
func OrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
