package fastendpoints_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	fastendpoints "github.com/sciocoder/FastEndpoints"
	"github.com/sciocoder/FastEndpoints/pkg/authz"
)

// --- fixtures ---

type pingEndpoint struct{}

func (e *pingEndpoint) Configure(b *fastendpoints.Builder) {
	b.Get("/ping")
	b.AllowAnonymous()
}

func (e *pingEndpoint) Handle(c fastendpoints.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type widgetRequest struct {
	ID    int    `param:"id"`
	Name  string `json:"name" validate:"required;min:2"`
	Count int    `query:"count" default:"1"`
}

type updateWidget struct{}

func (e *updateWidget) Configure(b *fastendpoints.Builder) {
	b.Put("/widgets/{id}").
		Request(new(widgetRequest)).
		AllowAnonymous()
}

func (e *updateWidget) Handle(c fastendpoints.Context) error {
	return c.JSON(http.StatusOK, fastendpoints.RequestFrom[widgetRequest](c))
}

type billingReport struct{}

func (e *billingReport) Configure(b *fastendpoints.Builder) {
	b.Get("/billing").Roles("accountant")
}

func (e *billingReport) Handle(c fastendpoints.Context) error {
	return c.String(http.StatusOK, "report")
}

type deletedWidget struct{}

func (e *deletedWidget) Configure(b *fastendpoints.Builder) {
	b.Get("/widgets/{id}/conflict").AllowAnonymous()
}

func (e *deletedWidget) Handle(c fastendpoints.Context) error {
	return fastendpoints.ErrConflict("widget already deleted",
		fastendpoints.WithErrorCode("widget_deleted"),
		fastendpoints.WithDetail("restore it before editing"),
	)
}

func withPrincipal(p *authz.Principal) fastendpoints.Middleware {
	return func(next fastendpoints.HandlerFunc) fastendpoints.HandlerFunc {
		return func(c fastendpoints.Context) error {
			c.Set(fastendpoints.PrincipalKey{}, p)
			return next(c)
		}
	}
}

func serve(app *fastendpoints.App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)
	return rec
}

// --- tests ---

func TestAppServesEndpoints(t *testing.T) {
	t.Parallel()

	app := fastendpoints.New(fastendpoints.WithEndpoints(&pingEndpoint{}))

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAppBindsRequestModels(t *testing.T) {
	t.Parallel()

	app := fastendpoints.New(fastendpoints.WithEndpoints(&updateWidget{}))

	t.Run("valid request binds from every source", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPut, "/widgets/7?count=3", strings.NewReader(`{"name":"gear"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := serve(app, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var got widgetRequest
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Equal(t, widgetRequest{ID: 7, Name: "gear", Count: 3}, got)
	})

	t.Run("default applies when the query is silent", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPut, "/widgets/7", strings.NewReader(`{"name":"gear"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := serve(app, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var got widgetRequest
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Equal(t, 1, got.Count)
	})

	t.Run("invalid model is rejected before the handler", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPut, "/widgets/7", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		rec := serve(app, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "Validation Failed")
		require.Contains(t, rec.Body.String(), `"name"`)
	})
}

func TestAppEnforcesSecurity(t *testing.T) {
	t.Parallel()

	t.Run("no principal is 401", func(t *testing.T) {
		t.Parallel()

		app := fastendpoints.New(fastendpoints.WithEndpoints(&billingReport{}))
		rec := serve(app, httptest.NewRequest(http.MethodGet, "/billing", nil))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong role is 403", func(t *testing.T) {
		t.Parallel()

		app := fastendpoints.New(
			fastendpoints.WithMiddleware(withPrincipal(&authz.Principal{Subject: "u1", Roles: []string{"viewer"}})),
			fastendpoints.WithEndpoints(&billingReport{}),
		)
		rec := serve(app, httptest.NewRequest(http.MethodGet, "/billing", nil))

		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("matching role passes", func(t *testing.T) {
		t.Parallel()

		app := fastendpoints.New(
			fastendpoints.WithMiddleware(withPrincipal(&authz.Principal{Subject: "u1", Roles: []string{"accountant"}})),
			fastendpoints.WithEndpoints(&billingReport{}),
		)
		rec := serve(app, httptest.NewRequest(http.MethodGet, "/billing", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "report", rec.Body.String())
	})
}

func TestAppUnmatchedRoutes(t *testing.T) {
	t.Parallel()

	app := fastendpoints.New(fastendpoints.WithEndpoints(&pingEndpoint{}))

	t.Run("unknown path is a JSON 404", func(t *testing.T) {
		t.Parallel()

		rec := serve(app, httptest.NewRequest(http.MethodGet, "/nope", nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.JSONEq(t, `{"error":"Not Found"}`, rec.Body.String())
	})

	t.Run("wrong verb is 405 with Allow", func(t *testing.T) {
		t.Parallel()

		rec := serve(app, httptest.NewRequest(http.MethodDelete, "/ping", nil))
		require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		require.Equal(t, "GET", rec.Header().Get("Allow"))
	})
}

func TestAppRejectsDuplicateRoutes(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		fastendpoints.New(fastendpoints.WithEndpoints(&pingEndpoint{}, &pingEndpoint{}))
	})
}

func TestAppRendersHTTPErrors(t *testing.T) {
	t.Parallel()

	app := fastendpoints.New(fastendpoints.WithEndpoints(&deletedWidget{}))
	rec := serve(app, httptest.NewRequest(http.MethodGet, "/widgets/1/conflict", nil))

	require.Equal(t, http.StatusConflict, rec.Code)
	require.JSONEq(t, `{
		"error": "widget already deleted",
		"code": "widget_deleted",
		"detail": "restore it before editing"
	}`, rec.Body.String())
}

func TestErrorHelpers(t *testing.T) {
	t.Parallel()

	err := fastendpoints.ErrNotFound("gone")
	require.True(t, fastendpoints.IsHTTPError(err))
	require.Equal(t, http.StatusNotFound, fastendpoints.AsHTTPError(err).Code)
	require.Nil(t, fastendpoints.AsHTTPError(nil))
}
