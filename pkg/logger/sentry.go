package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig holds Sentry integration configuration.
type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN"`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:"production"`

	// MinLevel is the lowest level mirrored to Sentry as logs. Errors
	// always become Sentry issues regardless of this setting.
	MinLevel slog.Level
}

// NewWithSentry creates a logger that writes JSON to stdout and mirrors
// records to Sentry. An empty DSN or a failed init degrades to stdout
// only, so local development needs no Sentry account.
func NewWithSentry(cfg SentryConfig, extractors ...ContextExtractor) *slog.Logger {
	stdout := newHandler(os.Stdout, Config{})

	if cfg.DSN == "" {
		return slog.New(NewContextHandler(stdout, extractors...))
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		EnableLogs:  true,
	}); err != nil {
		slog.New(stdout).Error("failed to initialize Sentry", slog.String("error", err.Error()))
		return slog.New(NewContextHandler(stdout, extractors...))
	}

	logLevels := []slog.Level{slog.LevelWarn, slog.LevelError}
	if cfg.MinLevel >= slog.LevelError {
		logLevels = []slog.Level{slog.LevelError}
	}

	sentryHandler := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError}, // issues
		LogLevel:   logLevels,                     // searchable context
	}.NewSentryHandler(context.Background())

	// The extractor wrapper sits outside the tee so request-scoped
	// attributes reach both destinations.
	return slog.New(NewContextHandler(newTeeHandler(stdout, sentryHandler), extractors...))
}
