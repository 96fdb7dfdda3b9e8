// Package middlewares provides HTTP middleware for the endpoint
// pipeline. Middleware operates on the Context interface and wraps
// the whole execution pipeline of the endpoints it is applied to.
//
// # Request ID
//
// RequestID assigns a unique ID to each request for tracing. It
// accepts incoming IDs from standard headers or generates a ULID.
// Pair it with RequestIDExtractor so every log line carries the ID:
//
//	app := fastendpoints.New(
//	    fastendpoints.WithLogger("api", middlewares.RequestIDExtractor()),
//	    fastendpoints.WithMiddleware(
//	        middlewares.RequestID(),
//	    ),
//	)
//
// # Recover
//
// Recover catches panics and converts them to typed errors. The
// PanicError can be inspected by a custom ErrorHandler:
//
//	fastendpoints.WithErrorHandler(func(c fastendpoints.Context, err error) error {
//	    if pe, ok := middlewares.AsPanicError(err); ok {
//	        c.LogError("panic", "value", pe.Value, "stack", string(pe.Stack))
//	        return fastendpoints.ErrInternal("Internal Server Error")
//	    }
//	    return err
//	})
//
// # Timeout
//
// Timeout enforces a deadline and returns a typed TimeoutError when it
// expires. The handler goroutine continues after the timeout; use
// context cancellation inside handlers for early termination.
//
//	middlewares.Timeout(5 * time.Second)
//
// # CORS
//
// CORS handles cross-origin headers and answers preflight requests
// before the rest of the pipeline runs:
//
//	middlewares.CORS(
//	    middlewares.WithAllowOrigins("https://app.example.com"),
//	    middlewares.WithAllowCredentials(),
//	)
//
// # Auth
//
// Auth extracts a bearer token, verifies it, and stores the resulting
// principal for the authorization stage. With OptionalAuth, anonymous
// requests pass through and per-endpoint security decides:
//
//	middlewares.Auth(tokenService, middlewares.OptionalAuth())
//
// # I18n
//
// I18n negotiates the request language and attaches a translator, so
// validation messages and Context.T lookups come back localized.
//
// # Metrics
//
// Metrics records Prometheus counters and latency histograms per
// method/route/status. Mount the exposition handler separately:
//
//	metrics := middlewares.NewMetrics()
//	fastendpoints.New(
//	    fastendpoints.WithMiddleware(metrics.Middleware()),
//	    fastendpoints.WithHandler("/metrics", metrics.Handler()),
//	)
//
// # Recommended Order
//
//	fastendpoints.WithMiddleware(
//	    middlewares.CORS(),       // first: answer preflight before anything else
//	    middlewares.RequestID(),  // second: assign ID for all subsequent logging
//	    middlewares.Recover(),    // third: catch panics from everything below
//	    middlewares.Timeout(5*time.Second),
//	    metrics.Middleware(),
//	    middlewares.Auth(tokens, middlewares.OptionalAuth()),
//	)
package middlewares
