package internal

import (
	"context"
	"log/slog"
	"time"
)

// RunOption adjusts the server runtime assembled by App.Run.
type RunOption func(*runConfig)

type runConfig struct {
	logger          *slog.Logger
	shutdownTimeout time.Duration
	startupHooks    []func(context.Context) error
	shutdownHooks   []func(context.Context) error
	baseCtx         context.Context
}

func buildRunConfig(opts ...RunOption) *runConfig {
	cfg := &runConfig{shutdownTimeout: defaultShutdownTimeout}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Logger sets the runtime logger. Without one the server stays silent.
func Logger(l *slog.Logger) RunOption {
	return func(c *runConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// ShutdownTimeout bounds graceful shutdown: request draining and every
// shutdown hook share the window. Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		if d > 0 {
			c.shutdownTimeout = d
		}
	}
}

// StartupHook runs fn after the listener is bound and before the first
// request is accepted. A failing hook aborts the boot. Hooks run in
// registration order; job workers and cache warmers go here.
func StartupHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.startupHooks = append(c.startupHooks, fn)
		}
	}
}

// ShutdownHook runs fn during graceful shutdown, after in-flight
// requests drain. Hooks run in registration order under the shutdown
// timeout; closing pools and clients goes here:
//
//	app.Run(":8080",
//	    fastendpoints.ShutdownHook(db.Shutdown(pool)),
//	    fastendpoints.ShutdownHook(redis.Shutdown(client)),
//	)
func ShutdownHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.shutdownHooks = append(c.shutdownHooks, fn)
		}
	}
}

// WithContext roots signal handling in ctx instead of
// context.Background. Cancelling ctx shuts the server down, which is
// how tests stop a running app.
func WithContext(ctx context.Context) RunOption {
	return func(c *runConfig) {
		if ctx != nil {
			c.baseCtx = ctx
		}
	}
}
