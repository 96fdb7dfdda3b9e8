package fastendpoints

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sciocoder/FastEndpoints/internal"
	"github.com/sciocoder/FastEndpoints/pkg/authz"
	"github.com/sciocoder/FastEndpoints/pkg/config"
	"github.com/sciocoder/FastEndpoints/pkg/di"
	"github.com/sciocoder/FastEndpoints/pkg/eventbus"
	"github.com/sciocoder/FastEndpoints/pkg/health"
	"github.com/sciocoder/FastEndpoints/pkg/job"
	"github.com/sciocoder/FastEndpoints/pkg/openapi"
)

// WithEndpoints registers endpoints with the application. Each
// endpoint's Configure method runs during New; duplicate
// (route, verb) pairs are a startup-time fatal error.
//
// Example:
//
//	fastendpoints.New(
//	    fastendpoints.WithEndpoints(
//	        orders.NewCreateOrder(repo),
//	        orders.NewGetOrder(repo),
//	        orders.NewListOrders(repo),
//	    ),
//	)
func WithEndpoints(eps ...Endpoint) Option {
	return internal.WithEndpoints(eps...)
}

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithErrorHandler sets a custom error handler for handler errors.
// Called before the default renderer; returning nil consumes the
// error, returning a non-nil error falls through to the default
// rendering.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithNotFoundHandler sets a custom 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return internal.WithNotFoundHandler(h)
}

// WithMethodNotAllowedHandler sets a custom 405 handler. The Allow
// header is populated from the registry before the handler runs.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return internal.WithMethodNotAllowedHandler(h)
}

// WithEvaluator sets a fully configured security evaluator. Use this
// when policies are built outside the application options.
func WithEvaluator(e *authz.Evaluator) Option {
	return internal.WithEvaluator(e)
}

// WithPolicy registers a named authorization policy. Endpoints
// reference policies by name via Builder.Policies.
func WithPolicy(name string, p authz.Policy) Option {
	return internal.WithPolicy(name, p)
}

// WithPolicyFunc registers a named authorization policy from a plain
// function.
//
// Example:
//
//	fastendpoints.WithPolicyFunc("is_adult", func(ctx context.Context, p *authz.Principal) (bool, error) {
//	    age, err := strconv.Atoi(p.ClaimValue("age"))
//	    return err == nil && age >= 18, nil
//	})
func WithPolicyFunc(name string, fn func(ctx context.Context, p *authz.Principal) (bool, error)) Option {
	return internal.WithPolicyFunc(name, fn)
}

// WithEventBus sets the event bus used by Context.Publish. Subscribe
// handlers before passing the bus in; the application seals it during
// New, matching the startup-only registration of endpoints.
//
// Example:
//
//	bus := eventbus.New(eventbus.WithLogger(log))
//	eventbus.Subscribe(bus, func(ctx context.Context, e OrderPlaced) error {
//	    return mailer.SendReceipt(ctx, e.OrderID)
//	})
//	fastendpoints.New(
//	    fastendpoints.WithEventBus(bus),
//	)
func WithEventBus(bus *eventbus.Bus) Option {
	return internal.WithEventBus(bus)
}

// WithContainer sets the service container used by Context.Container
// and by scoped endpoints, which resolve a fresh instance per request.
func WithContainer(c *di.Container) Option {
	return internal.WithContainer(c)
}

// WithConfig attaches a configuration source for Context.ConfigValue
// lookups. The framework does not interpret the values.
func WithConfig(getter config.Getter) Option {
	return internal.WithConfig(getter)
}

// WithDocs enables OpenAPI document generation from the endpoint
// registry. The document is built once at startup and served at
// /openapi.json, with a browsable page at /docs.
//
// Example:
//
//	fastendpoints.New(
//	    fastendpoints.WithEndpoints(endpoints...),
//	    fastendpoints.WithDocs(
//	        openapi.WithTitle("Orders API"),
//	        openapi.WithVersion("1.4.0"),
//	    ),
//	)
func WithDocs(opts ...openapi.Option) Option {
	return internal.WithDocs(opts...)
}

// WithDocsPaths overrides the paths the OpenAPI document and the
// documentation page are served at. An empty uiPath disables the page.
func WithDocsPaths(specPath, uiPath string) Option {
	return internal.WithDocsPaths(specPath, uiPath)
}

// WithStaticFiles mounts a static file handler at the given pattern.
// Directory listings are disabled. Files are served with default cache headers.
//
// Example:
//
//	//go:embed public
//	var assets embed.FS
//
//	fastendpoints.New(
//	    fastendpoints.WithStaticFiles("/static/", assets, "public"),
//	)
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return internal.WithStaticFiles(pattern, fsys, subDir)
}

// WithHandler mounts a plain http.Handler at the given pattern,
// bypassing the endpoint pipeline. Use it for handlers that live
// outside the endpoint model, such as a metrics exposition endpoint.
//
// Example:
//
//	metrics := middlewares.NewMetrics()
//	fastendpoints.New(
//	    fastendpoints.WithMiddleware(metrics.Middleware()),
//	    fastendpoints.WithHandler("/metrics", metrics.Handler()),
//	)
func WithHandler(pattern string, h http.Handler) Option {
	return internal.WithHandler(pattern, h)
}

// WithHealthChecks enables health check endpoints with optional configuration.
// Liveness (/health/live): Always returns OK if process is running.
// Readiness (/health/ready): Runs all configured checks.
//
// Example:
//
//	fastendpoints.WithHealthChecks(
//	    fastendpoints.WithReadinessCheck("db", db.Healthcheck(pool)),
//	    fastendpoints.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during readiness probe.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// WithLogger creates a logger with a component name and optional extractors.
// The component name is added to every log entry for easy filtering.
// Extractors pull values from context (e.g., request_id, subject).
//
// Example:
//
//	fastendpoints.New(
//	    fastendpoints.WithLogger("api", middlewares.RequestIDExtractor()),
//	)
func WithLogger(component string, extractors ...ContextExtractor) Option {
	return internal.WithLogger(component, extractors...)
}

// WithCustomLogger sets a fully custom logger.
// Use this when you need complete control over logging configuration.
func WithCustomLogger(l *slog.Logger) Option {
	return internal.WithCustomLogger(l)
}

// WithJobs enables both job enqueueing and worker processing using River.
// A pgxpool.Pool is required for the job queue. Workers are started automatically
// when the app runs and stopped gracefully during shutdown.
// Use this for monolith deployments or workers that need to enqueue follow-up tasks.
//
// Example:
//
//	fastendpoints.New(
//	    fastendpoints.WithJobs(pool,
//	        job.WithTask(tasks.NewSendReceipt(mailer, repo)),
//	        job.WithScheduledTask(tasks.NewCleanupDrafts(repo)),
//	        job.WithQueue("email", 10),
//	    ),
//	)
func WithJobs(pool *pgxpool.Pool, opts ...job.Option) Option {
	return internal.WithJobs(pool, opts...)
}

// WithJobEnqueuer enables job enqueueing without worker processing.
// Use this for web servers that dispatch work to separate worker processes.
// Workers must be running elsewhere to process the enqueued jobs.
func WithJobEnqueuer(pool *pgxpool.Pool, opts ...job.EnqueuerOption) Option {
	return internal.WithJobEnqueuer(pool, opts...)
}

// WithJobWorker enables job processing without enqueueing capability.
// Use this for dedicated background worker processes that don't need
// to dispatch additional jobs. If workers need to enqueue follow-up
// tasks, use WithJobs instead.
func WithJobWorker(pool *pgxpool.Pool, opts ...job.Option) Option {
	return internal.WithJobWorker(pool, opts...)
}
