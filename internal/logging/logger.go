// Package logging writes structured logs to a file so they never draw over
// the terminal UI.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Logger is a slog.Logger backed by an append-only file
type Logger struct {
	*slog.Logger
	file *os.File
}

// New opens (or creates) the log file at path. An empty path uses DefaultPath.
func New(path, level string) (*Logger, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("logging: resolve log path: %w", err)
		}
		path = p
	}
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}

	return &Logger{
		Logger: slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: lvl})),
		file:   f,
	}, nil
}

// NewWriter logs to w, for the server which logs to stderr
func NewWriter(w io.Writer, level string) (*Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return &Logger{Logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))}, nil
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

// Close releases the underlying file, if any
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// ParseLevel maps debug, info, warn and error to slog levels. Empty is info.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("logging: invalid level %q", s)
	}
	return lvl, nil
}

// DefaultPath returns the log file under the XDG state directory
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "kanban", "kanban.log"), nil
}
