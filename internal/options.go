package internal

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sciocoder/FastEndpoints/pkg/authz"
	"github.com/sciocoder/FastEndpoints/pkg/config"
	"github.com/sciocoder/FastEndpoints/pkg/di"
	"github.com/sciocoder/FastEndpoints/pkg/eventbus"
	"github.com/sciocoder/FastEndpoints/pkg/health"
	"github.com/sciocoder/FastEndpoints/pkg/job"
	"github.com/sciocoder/FastEndpoints/pkg/logger"
	"github.com/sciocoder/FastEndpoints/pkg/openapi"
)

// Option configures the application.
type Option func(*App)

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
	return func(a *App) {
		a.endpoints = append(a.endpoints, eps...)
	}
}

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithErrorHandler sets a custom error handler for handler errors.
// Called before the default renderer; returning nil consumes the
// error, returning a non-nil error falls through to the default
// rendering.
//
// Example:
//
//	fastendpoints.WithErrorHandler(func(c fastendpoints.Context, err error) error {
//	    var notFound *store.NotFoundError
//	    if errors.As(err, &notFound) {
//	        return c.JSON(http.StatusNotFound, map[string]string{"error": notFound.Error()})
//	    }
//	    return err
//	})
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		a.errorHandler = h
	}
}

// WithNotFoundHandler sets a custom 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.notFoundHandler = h
	}
}

// WithMethodNotAllowedHandler sets a custom 405 handler. The Allow
// header is populated from the registry before the handler runs.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.methodNotAllowedHandler = h
	}
}

// WithEvaluator sets a fully configured security evaluator. Use this
// when policies are built outside the application options.
func WithEvaluator(e *authz.Evaluator) Option {
	return func(a *App) {
		if e != nil {
			a.evaluator = e
		}
	}
}

// WithPolicy registers a named authorization policy. Endpoints
// reference policies by name via Builder.Policies.
//
// Example:
//
//	fastendpoints.WithPolicy("is_adult", authz.PolicyFunc(func(ctx context.Context, p *authz.Principal) (bool, error) {
//	    age, err := strconv.Atoi(p.ClaimValue("age"))
//	    return err == nil && age >= 18, nil
//	}))
func WithPolicy(name string, p authz.Policy) Option {
	return func(a *App) {
		a.evaluatorOpts = append(a.evaluatorOpts, authz.WithPolicy(name, p))
	}
}

// WithPolicyFunc registers a named authorization policy from a plain
// function.
func WithPolicyFunc(name string, fn func(ctx context.Context, p *authz.Principal) (bool, error)) Option {
	return func(a *App) {
		a.evaluatorOpts = append(a.evaluatorOpts, authz.WithPolicyFunc(name, fn))
	}
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
	return func(a *App) {
		if bus != nil {
			a.eventBus = bus
		}
	}
}

// WithContainer sets the service container used by Context.Container
// and by scoped endpoints, which resolve a fresh instance per request.
func WithContainer(c *di.Container) Option {
	return func(a *App) {
		a.container = c
	}
}

// WithConfig attaches a configuration source for Context.ConfigValue
// lookups. The framework does not interpret the values.
func WithConfig(getter config.Getter) Option {
	return func(a *App) {
		a.config = getter
	}
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
	return func(a *App) {
		a.docsConfig = &docsConfig{
			generator: openapi.NewGenerator(opts...),
			specPath:  "/openapi.json",
			uiPath:    "/docs",
		}
	}
}

// WithDocsPaths overrides the paths the OpenAPI document and the
// documentation page are served at. An empty uiPath disables the page.
func WithDocsPaths(specPath, uiPath string) Option {
	return func(a *App) {
		if a.docsConfig == nil {
			a.docsConfig = &docsConfig{generator: openapi.NewGenerator()}
		}
		if specPath != "" {
			a.docsConfig.specPath = specPath
		}
		a.docsConfig.uiPath = uiPath
	}
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
	return func(a *App) {
		subFS, err := fs.Sub(fsys, subDir)
		if err != nil {
			panic(err)
		}

		fileServer := http.FileServerFS(subFS)

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Block directory listings
			if strings.HasSuffix(r.URL.Path, "/") {
				http.NotFound(w, r)
				return
			}

			w.Header().Set("Cache-Control", "public, max-age=3600")
			w.Header().Set("X-Content-Type-Options", "nosniff")

			fileServer.ServeHTTP(w, r)
		})

		a.staticRoutes = append(a.staticRoutes, staticRoute{handler, pattern})
	}
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
	return func(a *App) {
		a.staticRoutes = append(a.staticRoutes, staticRoute{h, pattern})
	}
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
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
			checks:        make(health.Checks),
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithLogger creates a logger with a component name and optional extractors.
// The component name is added to every log entry for easy filtering.
// Extractors pull values from context (e.g., request_id, subject).
//
// Example:
//
//	fastendpoints.New(
//	    fastendpoints.WithLogger("api", requestIDExtractor),
//	)
func WithLogger(component string, extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		a.logger = logger.New(extractors...).With("component", component)
	}
}

// WithCustomLogger sets a fully custom logger.
// Use this when you need complete control over logging configuration.
//
// Example:
//
//	customLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
//	fastendpoints.New(
//	    fastendpoints.WithCustomLogger(customLogger),
//	)
func WithCustomLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
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
//	        job.WithLogger(slog.Default()),
//	    ),
//	)
func WithJobs(pool *pgxpool.Pool, opts ...job.Option) Option {
	return func(a *App) {
		jm, err := NewJobManager(pool, opts...)
		if err != nil {
			panic(fmt.Sprintf("job manager: %v", err))
		}
		a.jobEnqueuer = &JobEnqueuer{queue: jm.Manager().Enqueuer}
		a.jobWorker = jm
	}
}

// WithJobEnqueuer enables job enqueueing without worker processing.
// Use this for web servers that dispatch work to separate worker processes.
// Workers must be running elsewhere to process the enqueued jobs.
//
// Example:
//
//	// Web server - only enqueues jobs
//	fastendpoints.New(
//	    fastendpoints.WithJobEnqueuer(pool),
//	)
//	// c.Enqueue("send_email", payload) works
func WithJobEnqueuer(pool *pgxpool.Pool, opts ...job.EnqueuerOption) Option {
	return func(a *App) {
		je, err := NewJobEnqueuer(pool, opts...)
		if err != nil {
			panic(fmt.Sprintf("job enqueuer: %v", err))
		}
		a.jobEnqueuer = je
	}
}

// WithJobWorker enables job processing without enqueueing capability.
// Use this for dedicated background worker processes that don't need
// to dispatch additional jobs. Workers are started automatically when
// the app runs and stopped gracefully during shutdown.
//
// If workers need to enqueue follow-up tasks, use WithJobs instead.
//
// Example:
//
//	// Dedicated worker process
//	fastendpoints.New(
//	    fastendpoints.WithJobWorker(pool,
//	        job.WithTask(tasks.NewSendEmail(mailer)),
//	        job.WithScheduledTask(tasks.NewCleanup(repo)),
//	    ),
//	)
//	// c.Enqueue() returns job.ErrNotConfigured
func WithJobWorker(pool *pgxpool.Pool, opts ...job.Option) Option {
	return func(a *App) {
		jm, err := NewJobManager(pool, opts...)
		if err != nil {
			panic(fmt.Sprintf("job worker: %v", err))
		}
		a.jobWorker = jm
		// Note: jobEnqueuer stays nil - c.Enqueue() returns ErrNotConfigured
	}
}
