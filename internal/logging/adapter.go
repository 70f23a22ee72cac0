package logging

import "log/slog"

// Logger is the level-based logging interface the deletion engine and its
// collaborators write through. Arguments are alternating key-value pairs,
// as in slog.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter backs the Logger interface with a *slog.Logger.
type SlogAdapter struct {
	base *slog.Logger
}

// NewSlogAdapter wraps the given slog.Logger. A nil logger falls back to
// slog.Default().
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{base: logger}
}

// DefaultLogger returns an adapter over the default slog.Logger.
func DefaultLogger() *SlogAdapter {
	return NewSlogAdapter(nil)
}

func (a *SlogAdapter) Debug(msg string, args ...any) { a.base.Debug(msg, args...) }
func (a *SlogAdapter) Info(msg string, args ...any)  { a.base.Info(msg, args...) }
func (a *SlogAdapter) Warn(msg string, args ...any)  { a.base.Warn(msg, args...) }
func (a *SlogAdapter) Error(msg string, args ...any) { a.base.Error(msg, args...) }

// With returns an adapter whose entries all carry the given attributes.
func (a *SlogAdapter) With(args ...any) *SlogAdapter {
	return &SlogAdapter{base: a.base.With(args...)}
}

// Logger exposes the underlying slog.Logger for callers that need the full
// slog API.
func (a *SlogAdapter) Logger() *slog.Logger {
	return a.base
}
