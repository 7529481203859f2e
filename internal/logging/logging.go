// Package logging wraps slog for the server process, rotating the log
// file through lumberjack the way the teacher's daemon logger does.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps slog.Logger with level-specific methods plus the
// correlation/message attribute helper the dispatcher uses on every line
// logged while handling a message.
type Logger struct {
	logger *slog.Logger
}

// Options configures New.
type Options struct {
	FilePath   string // "" logs to stderr only
	Level      string // debug, info, warn, error
	JSON       bool
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New builds a Logger per Options. When FilePath is set, output is
// rotated via lumberjack; otherwise it goes to stderr.
func New(opts Options) (*Logger, io.Closer) {
	var w io.Writer = os.Stderr
	var closer io.Closer = noopCloser{}

	if opts.FilePath != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    defaultInt(opts.MaxSizeMB, 100),
			MaxBackups: defaultInt(opts.MaxBackups, 5),
			MaxAge:     defaultInt(opts.MaxAgeDays, 28),
			Compress:   true,
		}
		w = lj
		closer = lj
	}

	handlerOpts := &slog.HandlerOptions{Level: parseLevel(opts.Level)}
	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}

	return &Logger{logger: slog.New(handler)}, closer
}

// NewDiscard returns a Logger that drops everything, for tests that need
// a collaborator but don't assert on log output.
func NewDiscard() *Logger {
	return &Logger{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func (l *Logger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }
func (l *Logger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }

// WithContext returns a Logger carrying correlation_id and message_id,
// pulled from the request context (see internal/reqctx), as structured
// attributes on every subsequent line.
func (l *Logger) WithContext(ctx context.Context, correlationID, messageID string) *Logger {
	_ = ctx
	return &Logger{logger: l.logger.With("correlation_id", correlationID, "message_id", messageID)}
}

// With returns a Logger with additional structured attributes attached.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{logger: l.logger.With(args...)}
}

func parseLevel(level string) slog.Level {
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

func defaultInt(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}

type noopCloser struct{}

func (noopCloser) Close() error { return nil }
