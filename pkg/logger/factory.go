package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config holds logger configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	// Level is the minimum level emitted: debug, info, warn, or error.
	Level string `env:"LOG_LEVEL" envDefault:"info"`

	// Format selects the output encoding: json or text.
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// New creates a JSON logger writing to stdout at info level. Extractors
// pull request-scoped attributes out of the context on every record.
func New(extractors ...ContextExtractor) *slog.Logger {
	return NewFromConfig(Config{}, extractors...)
}

// NewFromConfig creates a logger honoring the configured level and format.
func NewFromConfig(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	return slog.New(NewContextHandler(newHandler(os.Stdout, cfg), extractors...))
}

func newHandler(w io.Writer, cfg Config) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
