package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"slices"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/sciocoder/FastEndpoints/pkg/authz"
	"github.com/sciocoder/FastEndpoints/pkg/binder"
	"github.com/sciocoder/FastEndpoints/pkg/di"
	"github.com/sciocoder/FastEndpoints/pkg/i18n"
	"github.com/sciocoder/FastEndpoints/pkg/job"
	"github.com/sciocoder/FastEndpoints/pkg/sanitizer"
	"github.com/sciocoder/FastEndpoints/pkg/validator"
)

// TranslatorKey is the context key used to store the i18n Translator.
type TranslatorKey struct{}

// PrincipalKey is the context key under which the authentication
// middleware stores the authenticated principal.
type PrincipalKey struct{}

// ValidationErrors is re-exported from the validator package for
// convenience in handler signatures.
type ValidationErrors = validator.ValidationErrors

// Context provides request-scoped access to the HTTP exchange, the
// matched endpoint, the bound request model, the accumulated failure
// sequence, and the application collaborators (events, jobs, services,
// configuration, i18n).
//
// Context embeds context.Context, so it can be passed directly to any
// function that expects a standard library context. The Deadline,
// Done, Err, and Value methods delegate to the underlying request
// context, which carries the client-disconnect and shutdown signals.
type Context interface {
	context.Context

	// Request returns the underlying HTTP request.
	Request() *http.Request

	// Response returns the response writer. The returned writer tracks
	// write status, so Written reports whether a response has started.
	Response() http.ResponseWriter

	// Context returns the underlying request context.
	Context() context.Context

	// Endpoint returns the matched endpoint definition, or nil when
	// the handler runs outside endpoint dispatch (e.g. the not-found
	// handler).
	Endpoint() *Definition

	// Param returns the URL parameter value for the given name.
	// Returns an empty string if the parameter is not present.
	Param(name string) string

	// Query returns the query string value for the given name.
	Query(name string) string

	// QueryDefault returns the query string value for the given name,
	// or defaultValue if the parameter is empty.
	QueryDefault(name, defaultValue string) string

	// Form returns the form value for the given name.
	Form(name string) string

	// FormFile returns the first uploaded file for the given form key.
	FormFile(name string) (multipart.File, *multipart.FileHeader, error)

	// Header returns the request header value for the given name.
	Header(name string) string

	// SetHeader sets a response header.
	SetHeader(name, value string)

	// Model returns the bound request model, or nil when the endpoint
	// declares no request shape. Use RequestFrom for typed access.
	Model() any

	// Bind populates v from the request using the full source chain
	// (claims, headers, route parameters, body, query), then sanitizes
	// and validates it. Binding and validation failures are returned
	// together as ValidationErrors in encounter order; the second
	// return reports mechanical failures such as an invalid target.
	Bind(v any) (ValidationErrors, error)

	// AddError appends a failure for the given field to the request's
	// failure sequence. Handlers use this for business-rule checks
	// that surface as 400 responses.
	AddError(field, message string)

	// HasErrors reports whether the failure sequence is non-empty.
	HasErrors() bool

	// Failures returns a copy of the accumulated failure sequence in
	// insertion order.
	Failures() ValidationErrors

	// RaiseIfErrors returns the failure sequence as an error when it
	// is non-empty, or nil otherwise. Returning it from a handler
	// short-circuits to the 400 response path:
	//
	//	c.AddError("price", "below the category minimum")
	//	if err := c.RaiseIfErrors(); err != nil {
	//	    return err
	//	}
	RaiseIfErrors() error

	// Principal returns the authenticated principal stored by the
	// authentication middleware, or nil when the request is anonymous.
	Principal() *authz.Principal

	// IsAuthenticated reports whether a non-anonymous principal is
	// attached to the request.
	IsAuthenticated() bool

	// JSON writes a JSON response with the given status code.
	JSON(code int, v any) error

	// String writes a plain text response with the given status code.
	String(code int, s string) error

	// NoContent writes a response with the given status code and no body.
	NoContent(code int) error

	// Render writes an HTML response by rendering a templ component.
	Render(code int, component templ.Component) error

	// Redirect sends an HTTP redirect to the given URL.
	Redirect(code int, url string) error

	// Error builds an HTTPError with the given status code and message.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError

	// Written reports whether the response has been written.
	Written() bool

	// Set stores a value in the request context.
	Set(key, value any)

	// Get retrieves a value from the request context.
	// Returns nil if the key is not present.
	Get(key any) any

	// Publish dispatches an event to all subscribers registered for
	// its type, in registration order.
	Publish(event any) error

	// Enqueue adds a background job to the queue.
	// Returns job.ErrNotConfigured if the application has no enqueuer.
	Enqueue(name string, payload any, opts ...job.EnqueueOption) error

	// Container returns the application's service container, or nil
	// when none is configured. Use Resolve for typed access.
	Container() *di.Container

	// ConfigValue looks up a configuration value by key.
	// Returns ("", false) when no configuration source is attached or
	// the key is absent.
	ConfigValue(key string) (string, bool)

	// Logger returns the request-scoped logger.
	Logger() *slog.Logger

	// LogDebug logs a debug message with the request context.
	LogDebug(msg string, attrs ...any)

	// LogInfo logs an info message with the request context.
	LogInfo(msg string, attrs ...any)

	// LogWarn logs a warning message with the request context.
	LogWarn(msg string, attrs ...any)

	// LogError logs an error message with the request context.
	LogError(msg string, attrs ...any)

	// T translates a key using the Translator stored in context by the I18n middleware.
	// Returns the key itself if no translator is in context.
	T(key string, placeholders ...i18n.M) string

	// Tn translates a key with pluralization using the Translator stored in context.
	// Returns the key itself if no translator is in context.
	Tn(key string, n int, placeholders ...i18n.M) string

	// Language returns the resolved language from the I18n middleware.
	// Returns an empty string if no translator is in context.
	Language() string

	// FormatNumber formats a number using locale-specific separators.
	// Falls back to fmt.Sprintf if no translator is in context.
	FormatNumber(n float64) string

	// FormatCurrency formats a currency amount using locale-specific formatting.
	// Falls back to fmt.Sprintf if no translator is in context.
	FormatCurrency(amount float64) string

	// FormatPercent formats a percentage using locale-specific formatting.
	// Falls back to fmt.Sprintf if no translator is in context.
	FormatPercent(n float64) string

	// FormatDate formats a date using locale-specific formatting.
	// Falls back to time.Format if no translator is in context.
	FormatDate(date time.Time) string

	// FormatTime formats a time value using locale-specific formatting.
	// Falls back to time.Format if no translator is in context.
	FormatTime(t time.Time) string

	// FormatDateTime formats a datetime using locale-specific formatting.
	// Falls back to time.Format if no translator is in context.
	FormatDateTime(datetime time.Time) string
}

// requestContext implements the Context interface.
type requestContext struct {
	response *ResponseWriter
	request  *http.Request
	logger   *slog.Logger
	app      *App
	def      *Definition
	model    any
	failures ValidationErrors
}

// Ensure requestContext implements Context.
var _ Context = (*requestContext)(nil)

// newContext creates a request context for the given exchange.
// def is nil for handlers running outside endpoint dispatch.
func newContext(w http.ResponseWriter, r *http.Request, app *App, def *Definition) *requestContext {
	log := app.logger
	if def != nil {
		log = log.With(slog.String("endpoint", def.Name()))
	}
	return &requestContext{
		response: NewResponseWriter(w),
		request:  r,
		logger:   log,
		app:      app,
		def:      def,
	}
}

func (c *requestContext) Request() *http.Request {
	return c.request
}

func (c *requestContext) Response() http.ResponseWriter {
	return c.response
}

func (c *requestContext) Context() context.Context {
	return c.request.Context()
}

func (c *requestContext) Endpoint() *Definition {
	return c.def
}

func (c *requestContext) Param(name string) string {
	return chi.URLParam(c.request, name)
}

func (c *requestContext) Query(name string) string {
	return c.request.URL.Query().Get(name)
}

func (c *requestContext) QueryDefault(name, defaultValue string) string {
	v := c.request.URL.Query().Get(name)
	if v == "" {
		return defaultValue
	}
	return v
}

func (c *requestContext) Form(name string) string {
	return c.request.FormValue(name)
}

func (c *requestContext) FormFile(name string) (multipart.File, *multipart.FileHeader, error) {
	return c.request.FormFile(name)
}

func (c *requestContext) Deadline() (time.Time, bool) {
	return c.request.Context().Deadline()
}

func (c *requestContext) Done() <-chan struct{} {
	return c.request.Context().Done()
}

func (c *requestContext) Err() error {
	return c.request.Context().Err()
}

func (c *requestContext) Value(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Header(name string) string {
	return c.request.Header.Get(name)
}

func (c *requestContext) SetHeader(name, value string) {
	c.response.Header().Set(name, value)
}

func (c *requestContext) Model() any {
	return c.model
}

// setModel stores the bound request model. Called by the pipeline
// after the binding stage.
func (c *requestContext) setModel(model any) {
	c.model = model
}

func (c *requestContext) Bind(v any) (ValidationErrors, error) {
	var all ValidationErrors
	for _, be := range binder.Bind(c.request, c.binderSources(), v) {
		all = append(all, validator.ValidationError{Field: be.Field, Message: be.Message})
	}
	if err := sanitizer.SanitizeStruct(v); err != nil {
		return nil, fmt.Errorf("sanitize: %w", err)
	}
	if err := validator.ValidateStruct(v); err != nil {
		if !validator.IsValidationError(err) {
			return nil, fmt.Errorf("validate: %w", err)
		}
		ve := validator.ExtractValidationErrors(err)
		if tr := c.translator(); tr != nil {
			ve.Translate(tr.TranslateMessage)
		}
		all = append(all, ve...)
	}
	if vt, ok := v.(validator.Validatable); ok {
		all = append(all, vt.Validate()...)
	}
	return all, nil
}

// binderSources exposes route parameters and principal claims to the
// binder's source chain.
func (c *requestContext) binderSources() binder.Sources {
	return binder.Sources{
		Param: c.Param,
		Claim: func(name string) (string, bool) {
			p := c.Principal()
			if p == nil {
				return "", false
			}
			return p.Claim(name)
		},
	}
}

func (c *requestContext) AddError(field, message string) {
	c.failures = append(c.failures, validator.ValidationError{Field: field, Message: message})
}

// addFailures appends pre-built failures, preserving their order.
func (c *requestContext) addFailures(ve ValidationErrors) {
	c.failures = append(c.failures, ve...)
}

func (c *requestContext) HasErrors() bool {
	return len(c.failures) > 0
}

func (c *requestContext) Failures() ValidationErrors {
	return slices.Clone(c.failures)
}

func (c *requestContext) RaiseIfErrors() error {
	if len(c.failures) == 0 {
		return nil
	}
	return c.failures
}

func (c *requestContext) Principal() *authz.Principal {
	if p, ok := c.Get(PrincipalKey{}).(*authz.Principal); ok {
		return p
	}
	return nil
}

func (c *requestContext) IsAuthenticated() bool {
	p := c.Principal()
	return p != nil && !p.IsAnonymous()
}

func (c *requestContext) JSON(code int, v any) error {
	c.response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.response.WriteHeader(code)
	return json.NewEncoder(c.response).Encode(v)
}

func (c *requestContext) String(code int, s string) error {
	c.response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := c.response.Write([]byte(s))
	return err
}

func (c *requestContext) NoContent(code int) error {
	c.response.WriteHeader(code)
	return nil
}

func (c *requestContext) Render(code int, component templ.Component) error {
	c.response.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.response.WriteHeader(code)
	return component.Render(c.request.Context(), c.response)
}

func (c *requestContext) Redirect(code int, url string) error {
	http.Redirect(c.response, c.request, url, code)
	return nil
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	err := NewHTTPError(code, message)
	for _, opt := range opts {
		opt(err)
	}
	return err
}

func (c *requestContext) Written() bool {
	return c.response.Written()
}

func (c *requestContext) Set(key, value any) {
	ctx := context.WithValue(c.request.Context(), key, value)
	c.request = c.request.WithContext(ctx)
}

func (c *requestContext) Get(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Publish(event any) error {
	return c.app.eventBus.Publish(c.request.Context(), event)
}

func (c *requestContext) Enqueue(name string, payload any, opts ...job.EnqueueOption) error {
	if c.app.jobEnqueuer == nil {
		return job.ErrNotConfigured
	}
	return c.app.jobEnqueuer.Enqueue(c.request.Context(), name, payload, opts...)
}

func (c *requestContext) Container() *di.Container {
	return c.app.container
}

func (c *requestContext) ConfigValue(key string) (string, bool) {
	if c.app.config == nil {
		return "", false
	}
	return c.app.config.Lookup(key)
}

func (c *requestContext) Logger() *slog.Logger {
	return c.logger
}

func (c *requestContext) LogDebug(msg string, attrs ...any) {
	c.logger.DebugContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.logger.InfoContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.logger.WarnContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.logger.ErrorContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) translator() *i18n.Translator {
	if tr, ok := c.Get(TranslatorKey{}).(*i18n.Translator); ok {
		return tr
	}
	return nil
}

func (c *requestContext) T(key string, placeholders ...i18n.M) string {
	if tr := c.translator(); tr != nil {
		return tr.T(key, placeholders...)
	}
	return key
}

func (c *requestContext) Tn(key string, n int, placeholders ...i18n.M) string {
	if tr := c.translator(); tr != nil {
		return tr.Tn(key, n, placeholders...)
	}
	return key
}

func (c *requestContext) Language() string {
	if tr := c.translator(); tr != nil {
		return tr.Language()
	}
	return ""
}

func (c *requestContext) FormatNumber(n float64) string {
	if tr := c.translator(); tr != nil {
		return tr.FormatNumber(n)
	}
	return fmt.Sprintf("%g", n)
}

func (c *requestContext) FormatCurrency(amount float64) string {
	if tr := c.translator(); tr != nil {
		return tr.FormatCurrency(amount)
	}
	return fmt.Sprintf("%.2f", amount)
}

func (c *requestContext) FormatPercent(n float64) string {
	if tr := c.translator(); tr != nil {
		return tr.FormatPercent(n)
	}
	return fmt.Sprintf("%.0f%%", n*100)
}

func (c *requestContext) FormatTime(t time.Time) string {
	if tr := c.translator(); tr != nil {
		return tr.FormatTime(t)
	}
	return t.Format("15:04:05")
}

func (c *requestContext) FormatDate(date time.Time) string {
	if tr := c.translator(); tr != nil {
		return tr.FormatDate(date)
	}
	return date.Format("2006-01-02")
}

func (c *requestContext) FormatDateTime(datetime time.Time) string {
	if tr := c.translator(); tr != nil {
		return tr.FormatDateTime(datetime)
	}
	return datetime.Format("2006-01-02 15:04:05")
}
