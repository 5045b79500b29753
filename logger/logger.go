// Package logger wraps zerolog.Logger with the constructors acctvault uses.
//
// The terminal belongs to the interactive UI, so the default logger writes
// JSON lines to a file instead of stdout. Secrets and unlock passwords must
// never be passed to a logger.
package logger

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is a thin wrapper around zerolog.Logger.
type Logger struct {
	zerolog.Logger
}

// NewLogger builds a logger writing to w at the given level. Every entry
// carries the role, a per-process session id, a timestamp and the calling
// function name.
func NewLogger(role string, w io.Writer, level zerolog.Level) *Logger {
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return runtime.FuncForPC(pc).Name()
	}
	zerolog.CallerFieldName = "func"

	logger := zerolog.New(w).Level(level).With().
		Str("role", role).
		Str("session", uuid.NewString()).
		Timestamp().
		Caller().
		Logger()

	return &Logger{logger}
}

// NewFileLogger appends to the file at path, creating its directory. When
// the file cannot be opened the logger falls back to stderr. The returned
// func closes the file.
func NewFileLogger(role, path string, level zerolog.Level) (*Logger, func() error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err == nil {
		if f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600); err == nil {
			return NewLogger(role, f, level), f.Close
		}
	}
	return NewLogger(role, os.Stderr, level), func() error { return nil }
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// WithContext stores the logger in ctx.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return l.Logger.WithContext(ctx)
}

// FromContext returns the logger stored in ctx, or zerolog's default
// logger when there is none.
func FromContext(ctx context.Context) *Logger {
	return &Logger{*log.Ctx(ctx)}
}
