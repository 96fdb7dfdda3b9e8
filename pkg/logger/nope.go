package logger

import "log/slog"

// NewNope creates a logger that discards everything. The app falls back
// to it until logging is configured.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
