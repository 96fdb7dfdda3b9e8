package fastendpoints

import (
	"github.com/sciocoder/FastEndpoints/internal"
	"github.com/sciocoder/FastEndpoints/pkg/job"
	"github.com/sciocoder/FastEndpoints/pkg/logger"
)

// Type aliases - public API
type (
	// App orchestrates the application lifecycle.
	// It registers endpoints, builds the route table, and serves
	// requests through the execution pipeline.
	App = internal.App

	// Endpoint is a single route+verb+handler unit. Implementations
	// declare routing and security in Configure and process requests
	// in Handle.
	Endpoint = internal.Endpoint

	// Builder is the declaration DSL handed to Endpoint.Configure.
	Builder = internal.Builder

	// Definition is the immutable descriptor of a registered endpoint.
	Definition = internal.Definition

	// Registry holds the sealed route table built during New.
	Registry = internal.Registry

	// Context provides request/response access and helper methods.
	Context = internal.Context

	// HandlerFunc is the signature for request handlers.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc to add cross-cutting concerns.
	Middleware = internal.Middleware

	// ErrorHandler handles errors returned from handlers.
	ErrorHandler = internal.ErrorHandler

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// ValidationErrors is the ordered collection of request failures.
	ValidationErrors = internal.ValidationErrors

	// HTTPError is a status-coded error with structured rendering data.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// ResponseWriter wraps http.ResponseWriter with write hooks and
	// status capture.
	ResponseWriter = internal.ResponseWriter

	// Extractor pulls a token from a request using an ordered list of
	// sources. Used by authentication middleware.
	Extractor = internal.Extractor

	// ExtractorSource reads a single candidate token location.
	ExtractorSource = internal.ExtractorSource

	// DuplicateRouteError reports a (route, verb) pair registered twice.
	DuplicateRouteError = internal.DuplicateRouteError

	// RouteNotFoundError reports a lookup for an unregistered route.
	RouteNotFoundError = internal.RouteNotFoundError

	// MethodNotAllowedError reports a route registered under different
	// verbs than the one requested. Allowed lists the registered verbs.
	MethodNotAllowedError = internal.MethodNotAllowedError

	// PrincipalKey is the context key authentication middleware stores
	// the resolved principal under.
	PrincipalKey = internal.PrincipalKey

	// ContextExtractor extracts a slog attribute from context.
	// Used with WithLogger to add request-scoped values to logs.
	ContextExtractor = logger.ContextExtractor

	// JobOption configures the job worker.
	JobOption = job.Option

	// EnqueueOption configures a single enqueued task.
	EnqueueOption = job.EnqueueOption

	// JobManager runs background job workers.
	JobManager = internal.JobManager

	// JobEnqueuer dispatches background tasks without processing them.
	JobEnqueuer = internal.JobEnqueuer
)

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
//	if err := app.Run(":8080"); err != nil {
//	    log.Fatal(err)
//	}
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// RequestFrom returns the bound request model for the current request.
// The endpoint must have declared the model type via Builder.Request;
// a mismatched type yields the zero value.
func RequestFrom[T any](c Context) *T {
	return internal.RequestFrom[T](c)
}

// Resolve retrieves a dependency of type T from the application's
// service container.
func Resolve[T any](c Context) (T, error) {
	return internal.Resolve[T](c)
}

// ContextValue retrieves a typed value stored on the context with Set.
// Returns the zero value when the key is absent or holds a different
// type.
func ContextValue[T any](c Context, key any) T {
	return internal.ContextValue[T](c, key)
}

// Param returns a typed route parameter. Unparseable values yield the
// zero value.
func Param[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string) T {
	return internal.Param[T](c, name)
}

// Query returns a typed query parameter. Unparseable values yield the
// zero value.
func Query[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string) T {
	return internal.Query[T](c, name)
}

// QueryDefault returns a typed query parameter, falling back to
// defaultValue when the parameter is absent or unparseable.
func QueryDefault[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string, defaultValue T) T {
	return internal.QueryDefault[T](c, name, defaultValue)
}

// NewExtractor builds a token extractor that tries each source in
// order and returns the first hit.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return internal.NewExtractor(sources...)
}

// Token source constructors for NewExtractor.
var (
	FromHeader      = internal.FromHeader
	FromQuery       = internal.FromQuery
	FromCookie      = internal.FromCookie
	FromParam       = internal.FromParam
	FromForm        = internal.FromForm
	FromClaim       = internal.FromClaim
	FromBearerToken = internal.FromBearerToken
)

// NewHTTPError creates an HTTPError with the given status code and
// message.
func NewHTTPError(code int, message string) *HTTPError {
	return internal.NewHTTPError(code, message)
}

// HTTPError option constructors.
var (
	WithTitle     = internal.WithTitle
	WithDetail    = internal.WithDetail
	WithErrorCode = internal.WithErrorCode
	WithRequestID = internal.WithRequestID
	WithError     = internal.WithError
)

// Convenience constructors for common HTTP errors.
var (
	ErrBadRequest         = internal.ErrBadRequest
	ErrUnauthorized       = internal.ErrUnauthorized
	ErrForbidden          = internal.ErrForbidden
	ErrNotFound           = internal.ErrNotFound
	ErrMethodNotAllowed   = internal.ErrMethodNotAllowed
	ErrConflict           = internal.ErrConflict
	ErrUnprocessable      = internal.ErrUnprocessable
	ErrTooManyRequests    = internal.ErrTooManyRequests
	ErrInternal           = internal.ErrInternal
	ErrServiceUnavailable = internal.ErrServiceUnavailable
)

// IsHTTPError reports whether err is an *HTTPError.
func IsHTTPError(err error) bool {
	return internal.IsHTTPError(err)
}

// AsHTTPError extracts the HTTPError from an error if present.
// Returns nil if the error is not an HTTPError.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}
