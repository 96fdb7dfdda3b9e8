// Package logger builds the slog loggers the framework and its
// applications log through.
//
// It extends log/slog with two capabilities: attributes extracted from the
// request context on every record, and optional mirroring to Sentry.
//
// # Context extraction
//
// A [ContextExtractor] pulls one attribute out of a context:
//
//	func(ctx context.Context) (slog.Attr, bool)
//
// Extractors run per record, so request-scoped values like request IDs
// stay fresh:
//
//	log := logger.New(middlewares.RequestIDExtractor())
//	log.InfoContext(ctx, "order created", slog.String("order_id", id))
//	// {"level":"INFO","msg":"order created","order_id":"...","request_id":"..."}
//
// Applications usually get this wiring for free through the app option:
//
//	app := fastendpoints.New(
//	    fastendpoints.WithLogger("orders-api", middlewares.RequestIDExtractor()),
//	)
//
// # Configuration
//
// [NewFromConfig] honors LOG_LEVEL and LOG_FORMAT from the environment via
// the embedded [Config]:
//
//	log := logger.NewFromConfig(cfg.Log, middlewares.RequestIDExtractor())
//
// # Sentry
//
// [NewWithSentry] mirrors warnings and errors to Sentry while stdout keeps
// the full stream. An empty DSN falls back to stdout only, so the same
// code path works in development:
//
//	log := logger.NewWithSentry(logger.SentryConfig{DSN: dsn}, extractors...)
//
// [NewContextHandler] is exported for wrapping custom handlers with the
// same extraction behavior.
package logger
