// Package logging builds the slog logger used by the mlx command.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options selects the level and destination of log output.
type Options struct {
	Level string
	// File receives the log when set; otherwise Stderr is used.
	File      string
	MaxSizeMB int
	MaxFiles  int
	// Stderr defaults to os.Stderr.
	Stderr io.Writer
}

// ParseLevel converts a level name to a slog level. Unknown names are info.
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

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns a text logger and the closer for its output.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	if opts.File == "" {
		w := opts.Stderr
		if w == nil {
			w = os.Stderr
		}
		return slog.New(slog.NewTextHandler(w, handlerOpts)), nopCloser{}, nil
	}

	f, err := OpenRotatingFile(opts.File, opts.MaxSizeMB, opts.MaxFiles)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, handlerOpts)), f, nil
}
