package health

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"
)

const (
	defaultTimeout = 5 * time.Second

	// StatusHealthy indicates all checks passed.
	StatusHealthy = "healthy"
	// StatusUnhealthy indicates one or more checks failed.
	StatusUnhealthy = "unhealthy"
)

// CheckFunc probes a single dependency. The db, redis, and job packages
// expose ready-made checks with this signature.
type CheckFunc func(ctx context.Context) error

// Checks maps check names to probe functions.
type Checks map[string]CheckFunc

// Response is the aggregated result of a readiness probe.
type Response struct {
	Checks map[string]Check `json:"checks,omitempty"`
	Status string           `json:"status"`
}

// Check reports the outcome of a single probe.
type Check struct {
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
	Duration int64  `json:"duration_ms"`
}

// config holds health check configuration.
type config struct {
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures health check behavior.
type Option func(*config)

// WithTimeout bounds how long the combined checks may run.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger failed checks are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		timeout: defaultTimeout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// runChecks executes all checks in parallel under a shared deadline and
// aggregates the results.
func runChecks(ctx context.Context, checks Checks, cfg *config) *Response {
	if len(checks) == 0 {
		return &Response{Status: StatusHealthy}
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	type outcome struct {
		name  string
		check Check
	}

	results := make(chan outcome, len(checks))
	var wg sync.WaitGroup
	for name, probe := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- outcome{name: name, check: runCheck(ctx, name, probe, cfg.logger)}
		}()
	}
	wg.Wait()
	close(results)

	resp := &Response{Status: StatusHealthy, Checks: make(map[string]Check, len(checks))}
	for r := range results {
		resp.Checks[r.name] = r.check
		if r.check.Status == StatusUnhealthy {
			resp.Status = StatusUnhealthy
		}
	}
	return resp
}

func runCheck(ctx context.Context, name string, probe CheckFunc, log *slog.Logger) Check {
	start := time.Now()
	err := probe(ctx)
	elapsed := time.Since(start).Milliseconds()

	if err == nil {
		return Check{Status: StatusHealthy, Duration: elapsed}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		err = ErrCheckTimeout
	}
	log.WarnContext(ctx, "health check failed",
		slog.String("check", name),
		slog.String("error", err.Error()),
	)
	return Check{Status: StatusUnhealthy, Error: err.Error(), Duration: elapsed}
}
