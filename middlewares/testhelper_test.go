package middlewares_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/a-h/templ"

	"github.com/sciocoder/FastEndpoints/internal"
	"github.com/sciocoder/FastEndpoints/pkg/authz"
	"github.com/sciocoder/FastEndpoints/pkg/di"
	"github.com/sciocoder/FastEndpoints/pkg/i18n"
	"github.com/sciocoder/FastEndpoints/pkg/job"
	"github.com/sciocoder/FastEndpoints/pkg/validator"
)

// testContext is a minimal Context implementation for exercising
// middleware in isolation, without an App or router behind it.
type testContext struct {
	response http.ResponseWriter
	request  *http.Request
	values   map[any]any
	failures validator.ValidationErrors
	written  bool
}

func newTestContext(w http.ResponseWriter, r *http.Request) *testContext {
	return &testContext{
		response: w,
		request:  r,
		values:   make(map[any]any),
	}
}

var _ internal.Context = (*testContext)(nil)

func (c *testContext) Request() *http.Request        { return c.request }
func (c *testContext) Response() http.ResponseWriter { return c.response }
func (c *testContext) Context() context.Context      { return c.request.Context() }
func (c *testContext) Endpoint() *internal.Definition {
	return nil
}

func (c *testContext) Param(name string) string { return "" }

func (c *testContext) Query(name string) string {
	return c.request.URL.Query().Get(name)
}

func (c *testContext) QueryDefault(name, defaultValue string) string {
	v := c.request.URL.Query().Get(name)
	if v == "" {
		return defaultValue
	}
	return v
}

func (c *testContext) Form(name string) string { return c.request.FormValue(name) }
func (c *testContext) FormFile(name string) (multipart.File, *multipart.FileHeader, error) {
	return c.request.FormFile(name)
}

func (c *testContext) Header(name string) string    { return c.request.Header.Get(name) }
func (c *testContext) SetHeader(name, value string) { c.response.Header().Set(name, value) }

func (c *testContext) Model() any { return nil }
func (c *testContext) Bind(v any) (internal.ValidationErrors, error) {
	return nil, nil
}

func (c *testContext) AddError(field, message string) {
	c.failures = append(c.failures, validator.ValidationError{Field: field, Message: message})
}
func (c *testContext) HasErrors() bool                      { return len(c.failures) > 0 }
func (c *testContext) Failures() internal.ValidationErrors { return c.failures }
func (c *testContext) RaiseIfErrors() error {
	if len(c.failures) > 0 {
		return c.failures
	}
	return nil
}

func (c *testContext) Principal() *authz.Principal {
	if p, ok := c.Get(internal.PrincipalKey{}).(*authz.Principal); ok {
		return p
	}
	return nil
}

func (c *testContext) IsAuthenticated() bool {
	return !c.Principal().IsAnonymous()
}

func (c *testContext) JSON(code int, v any) error {
	c.written = true
	c.response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.response.WriteHeader(code)
	return json.NewEncoder(c.response).Encode(v)
}

func (c *testContext) String(code int, s string) error {
	c.written = true
	c.response.WriteHeader(code)
	_, err := c.response.Write([]byte(s))
	return err
}

func (c *testContext) NoContent(code int) error {
	c.written = true
	c.response.WriteHeader(code)
	return nil
}

func (c *testContext) Render(code int, component templ.Component) error {
	c.written = true
	c.response.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.response.WriteHeader(code)
	return component.Render(c.request.Context(), c.response)
}

func (c *testContext) Redirect(code int, url string) error {
	c.written = true
	http.Redirect(c.response, c.request, url, code)
	return nil
}

func (c *testContext) Error(code int, message string, opts ...internal.HTTPErrorOption) *internal.HTTPError {
	err := internal.NewHTTPError(code, message)
	for _, opt := range opts {
		opt(err)
	}
	return err
}

func (c *testContext) Written() bool { return c.written }

func (c *testContext) Set(key, value any) {
	c.values[key] = value
	// Mirror the real context: stored values are visible through the
	// request context for extractors operating on context.Context.
	ctx := context.WithValue(c.request.Context(), key, value)
	c.request = c.request.WithContext(ctx)
}

func (c *testContext) Get(key any) any { return c.values[key] }

func (c *testContext) Publish(event any) error { return nil }
func (c *testContext) Enqueue(name string, payload any, opts ...job.EnqueueOption) error {
	return nil
}
func (c *testContext) Container() *di.Container { return nil }
func (c *testContext) ConfigValue(key string) (string, bool) {
	return "", false
}

func (c *testContext) Logger() *slog.Logger              { return slog.Default() }
func (c *testContext) LogDebug(msg string, attrs ...any) {}
func (c *testContext) LogInfo(msg string, attrs ...any)  {}
func (c *testContext) LogWarn(msg string, attrs ...any)  {}
func (c *testContext) LogError(msg string, attrs ...any) {}

func (c *testContext) translator() *i18n.Translator {
	if tr, ok := c.Get(internal.TranslatorKey{}).(*i18n.Translator); ok {
		return tr
	}
	return nil
}

func (c *testContext) T(key string, placeholders ...i18n.M) string {
	if tr := c.translator(); tr != nil {
		return tr.T(key, placeholders...)
	}
	return key
}

func (c *testContext) Tn(key string, n int, placeholders ...i18n.M) string {
	if tr := c.translator(); tr != nil {
		return tr.Tn(key, n, placeholders...)
	}
	return key
}

func (c *testContext) Language() string {
	if tr := c.translator(); tr != nil {
		return tr.Language()
	}
	return ""
}

func (c *testContext) FormatNumber(n float64) string {
	if tr := c.translator(); tr != nil {
		return tr.FormatNumber(n)
	}
	return fmt.Sprintf("%g", n)
}

func (c *testContext) FormatCurrency(amount float64) string {
	if tr := c.translator(); tr != nil {
		return tr.FormatCurrency(amount)
	}
	return fmt.Sprintf("%.2f", amount)
}

func (c *testContext) FormatPercent(n float64) string {
	if tr := c.translator(); tr != nil {
		return tr.FormatPercent(n)
	}
	return fmt.Sprintf("%.0f%%", n*100)
}

func (c *testContext) FormatDate(date time.Time) string {
	if tr := c.translator(); tr != nil {
		return tr.FormatDate(date)
	}
	return date.Format("2006-01-02")
}

func (c *testContext) FormatTime(t time.Time) string {
	if tr := c.translator(); tr != nil {
		return tr.FormatTime(t)
	}
	return t.Format("15:04:05")
}

func (c *testContext) FormatDateTime(datetime time.Time) string {
	if tr := c.translator(); tr != nil {
		return tr.FormatDateTime(datetime)
	}
	return datetime.Format("2006-01-02 15:04:05")
}

func (c *testContext) Deadline() (time.Time, bool) { return c.request.Context().Deadline() }
func (c *testContext) Done() <-chan struct{}       { return c.request.Context().Done() }
func (c *testContext) Err() error                  { return c.request.Context().Err() }
func (c *testContext) Value(key any) any           { return c.request.Context().Value(key) }
