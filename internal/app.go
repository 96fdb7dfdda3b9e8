package internal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sciocoder/FastEndpoints/pkg/authz"
	"github.com/sciocoder/FastEndpoints/pkg/config"
	"github.com/sciocoder/FastEndpoints/pkg/di"
	"github.com/sciocoder/FastEndpoints/pkg/eventbus"
	"github.com/sciocoder/FastEndpoints/pkg/health"
	"github.com/sciocoder/FastEndpoints/pkg/logger"
	"github.com/sciocoder/FastEndpoints/pkg/openapi"
)

// Default server timeouts (hardcoded, opinionated).
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// App orchestrates the application lifecycle. It registers endpoints,
// builds the route table, and serves requests through the execution
// pipeline. App is immutable after creation - all configuration is
// done via New().
type App struct {
	router                  chi.Router
	registry                *Registry
	errorHandler            ErrorHandler
	notFoundHandler         HandlerFunc
	methodNotAllowedHandler HandlerFunc
	healthConfig            *healthConfig
	docsConfig              *docsConfig
	logger                  *slog.Logger
	evaluator               *authz.Evaluator
	evaluatorOpts           []authz.EvaluatorOption
	eventBus                *eventbus.Bus
	container               *di.Container
	config                  config.Getter
	jobEnqueuer             *JobEnqueuer
	jobWorker               *JobManager
	middlewares             []Middleware
	endpoints               []Endpoint
	staticRoutes            []staticRoute
}

// staticRoute represents a static file handler mount point.
type staticRoute struct {
	handler http.Handler
	pattern string
}

// errorResponse is the default JSON error payload.
type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// validationResponse is the JSON payload for 400-class responses. The
// errors list preserves the failure sequence's insertion order.
type validationResponse struct {
	Error  string           `json:"error"`
	Errors ValidationErrors `json:"errors"`
}

// New creates a new application with the given options. Endpoint
// registration is a startup-time operation: a duplicate (route, verb)
// pair or a malformed endpoint declaration panics here rather than
// surfacing at request time.
//
// Example:
//
//	app := fastendpoints.New(
//	    fastendpoints.WithEndpoints(
//	        orders.NewCreateOrder(repo),
//	        orders.NewGetOrder(repo),
//	    ),
//	    fastendpoints.WithMiddleware(middlewares.RequestID()),
//	)
func New(opts ...Option) *App {
	a := &App{
		router:   chi.NewRouter(),
		registry: NewRegistry(),
		logger:   logger.NewNope(), // Default: noop logger (before options)
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.evaluator == nil {
		a.evaluator = authz.NewEvaluator(a.evaluatorOpts...)
	}
	if a.eventBus == nil {
		a.eventBus = eventbus.New(eventbus.WithLogger(a.logger))
	}

	a.setupRoutes()

	// The route table and subscriber table are read-only from here on.
	a.registry.Seal()
	a.eventBus.Seal()
	return a
}

// Router returns the underlying chi.Router for the App.
func (a *App) Router() chi.Router {
	return a.router
}

// Registry returns the endpoint registry. The registry is sealed after
// New returns; it is safe to read from documentation generators and
// diagnostics.
func (a *App) Registry() *Registry {
	return a.registry
}

// EventBus returns the application's event bus.
func (a *App) EventBus() *eventbus.Bus {
	return a.eventBus
}

// JobWorker returns the job worker if configured, nil otherwise.
func (a *App) JobWorker() *JobManager {
	return a.jobWorker
}

// Run starts the HTTP server and blocks until shutdown. If job
// workers are configured, they start automatically before serving
// requests and stop gracefully during shutdown.
//
// Example:
//
//	app := fastendpoints.New(
//	    fastendpoints.WithEndpoints(endpoints...),
//	)
//	err := app.Run(":8080", fastendpoints.Logger(slog))
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)

	startupHooks := cfg.startupHooks
	shutdownHooks := cfg.shutdownHooks

	// Auto-register worker hooks if configured
	if a.jobWorker != nil {
		startupHooks = append([]func(context.Context) error{a.jobWorker.Manager().StartFunc()}, startupHooks...)
		shutdownHooks = append(shutdownHooks, a.jobWorker.Shutdown())
	}

	return runServer(runtimeConfig{
		handler:         a.router,
		address:         addr,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		startupHooks:    startupHooks,
		shutdownHooks:   shutdownHooks,
		baseCtx:         cfg.baseCtx,
	})
}

// setupRoutes registers endpoints, builds the route table, and mounts
// everything on the router.
func (a *App) setupRoutes() {
	a.router.NotFound(a.wrapHandler(nil, a.notFound))
	a.router.MethodNotAllowed(a.wrapHandler(nil, a.methodNotAllowed))

	// Apply global middleware
	for _, mw := range a.middlewares {
		a.router.Use(a.adaptMiddleware(mw))
	}

	// Mount static file handlers
	for _, sr := range a.staticRoutes {
		a.router.Mount(sr.pattern, sr.handler)
	}

	// Register health check endpoints
	if a.healthConfig != nil {
		a.router.Get(a.healthConfig.livenessPath, health.LivenessHandler())
		a.router.Get(a.healthConfig.readinessPath, health.ReadinessHandler(a.healthConfig.checks))
	}

	// Configure and register endpoints, then mount each definition as
	// its own pipeline. Registration failures are fatal at startup.
	for _, ep := range a.endpoints {
		b := newBuilder(ep)
		ep.Configure(b)
		if err := a.registry.Register(b.def); err != nil {
			panic("fastendpoints: " + err.Error())
		}
	}
	for _, def := range a.registry.Definitions() {
		p := &pipeline{app: a, def: def}
		var h http.Handler = p.httpHandler()
		// Throttling wraps caching so heavy callers are counted even
		// when their responses would have come from the cache.
		if ttl := def.CacheTTL(); ttl > 0 {
			h = newResponseCache(ttl)(h)
		}
		if limit, window := def.RateLimit(); limit > 0 {
			h = newThrottle(limit, window)(h)
		}
		a.router.Method(def.method, def.route, h)
	}

	// Serve generated API documentation.
	if a.docsConfig != nil {
		a.mountDocs()
	}
}

// mountDocs builds the OpenAPI document from the registry and serves
// it. The document is generated once at startup; the registry cannot
// change afterwards.
func (a *App) mountDocs() {
	doc, err := a.docsConfig.generator.Document(a.operations())
	if err != nil {
		panic("fastendpoints: generate openapi document: " + err.Error())
	}
	a.router.Get(a.docsConfig.specPath, openapi.SpecHandler(doc))
	if a.docsConfig.uiPath != "" {
		a.router.Get(a.docsConfig.uiPath, openapi.UIHandler(doc, a.docsConfig.specPath))
	}
}

// operations converts registered definitions into the documentation
// generator's read-only view of the registry.
func (a *App) operations() []openapi.Operation {
	defs := a.registry.Definitions()
	ops := make([]openapi.Operation, 0, len(defs))
	for _, def := range defs {
		reqs := def.Requirements()
		ops = append(ops, openapi.Operation{
			Method:      def.Method(),
			Route:       def.Route(),
			Name:        def.Name(),
			Summary:     def.Summary(),
			Description: def.Description(),
			Tags:        def.Tags(),
			RequestType: def.RequestType(),
			Anonymous:   def.AllowsAnonymous(),
			Security: openapi.Security{
				Roles:       reqs.Roles,
				Permissions: reqs.Permissions,
				Policies:    reqs.Policies,
				Claims:      reqs.ClaimTypes,
			},
		})
	}
	return ops
}

// notFound is the default 404 handler. Per the error taxonomy, the
// body carries no detail beyond the status.
func (a *App) notFound(c Context) error {
	if a.notFoundHandler != nil {
		return a.notFoundHandler(c)
	}
	return c.JSON(http.StatusNotFound, errorResponse{Error: http.StatusText(http.StatusNotFound)})
}

// methodNotAllowed is the default 405 handler. It consults the
// registry so the Allow header lists the verbs the route is actually
// registered for.
func (a *App) methodNotAllowed(c Context) error {
	if _, err := a.registry.Resolve(c.Request().URL.Path, c.Request().Method); err != nil {
		var mna *MethodNotAllowedError
		if errors.As(err, &mna) {
			c.SetHeader("Allow", strings.Join(mna.Allowed, ", "))
		}
	}
	if a.methodNotAllowedHandler != nil {
		return a.methodNotAllowedHandler(c)
	}
	return c.JSON(http.StatusMethodNotAllowed, errorResponse{Error: http.StatusText(http.StatusMethodNotAllowed)})
}

// wrapHandler converts a HandlerFunc to http.HandlerFunc using the
// app's error handling.
func (a *App) wrapHandler(def *Definition, h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := newContext(w, r, a, def)
		if err := h(c); err != nil {
			a.handleError(c, err)
		}
	}
}

// adaptMiddleware converts a Middleware to chi middleware. This
// adapter allows middleware to be written against the Context
// interface while satisfying chi's http.Handler-based middleware
// signature.
func (a *App) adaptMiddleware(mw Middleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Create a HandlerFunc that calls the next http.Handler
			nextFunc := func(c Context) error {
				next.ServeHTTP(c.Response(), c.Request())
				return nil
			}
			// Apply the middleware
			wrapped := mw(nextFunc)
			// Execute with a new context
			c := newContext(w, r, a, nil)
			if err := wrapped(c); err != nil {
				a.handleError(c, err)
			}
		})
	}
}

// handleError renders an error returned from a handler or the
// pipeline. A custom error handler, when configured, runs first and
// may transform or consume the error; whatever it returns falls
// through to the default renderer.
func (a *App) handleError(c Context, err error) {
	if err == nil {
		return
	}
	if a.errorHandler != nil {
		err = a.errorHandler(c, err)
		if err == nil {
			return
		}
	}
	a.renderError(c, err)
}

// renderError maps errors to responses: a failure sequence becomes a
// 400 with the ordered field/message list, an HTTPError keeps its
// status, and anything else is a fault rendered as a generic 500.
// 500-class payloads never carry internal detail; that goes to the
// log.
func (a *App) renderError(c Context, err error) {
	if c.Written() {
		c.LogError("error after response written", slog.Any("error", err))
		return
	}
	if c.Err() != nil {
		// Cancelled request: no partial response body.
		return
	}

	var ve ValidationErrors
	if errors.As(err, &ve) {
		_ = c.JSON(http.StatusBadRequest, validationResponse{
			Error:  "Validation Failed",
			Errors: ve,
		})
		return
	}

	if httpErr := AsHTTPError(err); httpErr != nil {
		body := errorResponse{
			Error:     httpErr.Message,
			Code:      httpErr.ErrorCode,
			Detail:    httpErr.Detail,
			RequestID: httpErr.RequestID,
		}
		if httpErr.Code >= http.StatusInternalServerError {
			c.LogError("request failed",
				slog.Int("status", httpErr.Code),
				slog.String("message", httpErr.Message),
				slog.Any("error", httpErr.Err),
			)
			body = errorResponse{Error: httpErr.StatusText(), RequestID: httpErr.RequestID}
		}
		_ = c.JSON(httpErr.Code, body)
		return
	}

	c.LogError("unhandled error", slog.Any("error", err))
	_ = c.JSON(http.StatusInternalServerError, errorResponse{
		Error: http.StatusText(http.StatusInternalServerError),
	})
}

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

// Default health check paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during readiness probe.
//
// Example:
//
//	fastendpoints.WithReadinessCheck("db", db.Healthcheck(pool))
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if c.checks == nil {
			c.checks = make(health.Checks)
		}
		c.checks[name] = fn
	}
}

// docsConfig holds API documentation configuration.
type docsConfig struct {
	generator *openapi.Generator
	specPath  string
	uiPath    string
}
