package internal_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sciocoder/FastEndpoints/internal"
)

// quoteBoard counts handler invocations so tests can tell a cached
// response from a fresh one.
type quoteBoard struct {
	hits     int
	failOnce bool
}

func (e *quoteBoard) Configure(b *internal.Builder) {
	b.Get("/quote")
	b.AllowAnonymous()
	b.CacheFor(time.Minute)
}

func (e *quoteBoard) Handle(c internal.Context) error {
	e.hits++
	if e.failOnce {
		e.failOnce = false
		return internal.ErrServiceUnavailable("quote source offline")
	}
	c.SetHeader("X-Quote-Source", "board")
	return c.JSON(http.StatusOK, map[string]int{"hits": e.hits})
}

func TestResponseCache(t *testing.T) {
	t.Parallel()

	t.Run("repeat request is served from the cache", func(t *testing.T) {
		t.Parallel()

		ep := &quoteBoard{}
		app := internal.New(internal.WithEndpoints(ep))

		first := do(app, httptest.NewRequest(http.MethodGet, "/quote", nil))
		require.Equal(t, http.StatusOK, first.Code)
		require.Equal(t, "MISS", first.Header().Get("X-Cache"))
		require.JSONEq(t, `{"hits":1}`, first.Body.String())

		second := do(app, httptest.NewRequest(http.MethodGet, "/quote", nil))
		require.Equal(t, http.StatusOK, second.Code)
		require.Equal(t, "HIT", second.Header().Get("X-Cache"))
		require.JSONEq(t, `{"hits":1}`, second.Body.String())
		require.Equal(t, 1, ep.hits, "handler must not run for a cache hit")
	})

	t.Run("stored headers are replayed on a hit", func(t *testing.T) {
		t.Parallel()

		app := internal.New(internal.WithEndpoints(&quoteBoard{}))
		do(app, httptest.NewRequest(http.MethodGet, "/quote", nil))

		rec := do(app, httptest.NewRequest(http.MethodGet, "/quote", nil))
		require.Equal(t, "HIT", rec.Header().Get("X-Cache"))
		require.Equal(t, "board", rec.Header().Get("X-Quote-Source"))
		require.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	})

	t.Run("authorization header partitions entries", func(t *testing.T) {
		t.Parallel()

		ep := &quoteBoard{}
		app := internal.New(internal.WithEndpoints(ep))

		asCaller := func(token string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, "/quote", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			return do(app, req)
		}

		require.Equal(t, "MISS", asCaller("alice").Header().Get("X-Cache"))
		require.Equal(t, "HIT", asCaller("alice").Header().Get("X-Cache"))

		bob := asCaller("bob")
		require.Equal(t, "MISS", bob.Header().Get("X-Cache"))
		require.JSONEq(t, `{"hits":2}`, bob.Body.String())
	})

	t.Run("query string partitions entries", func(t *testing.T) {
		t.Parallel()

		ep := &quoteBoard{}
		app := internal.New(internal.WithEndpoints(ep))

		require.Equal(t, "MISS", do(app, httptest.NewRequest(http.MethodGet, "/quote?lang=en", nil)).Header().Get("X-Cache"))
		require.Equal(t, "MISS", do(app, httptest.NewRequest(http.MethodGet, "/quote?lang=de", nil)).Header().Get("X-Cache"))
		require.Equal(t, 2, ep.hits)
	})

	t.Run("error responses are not stored", func(t *testing.T) {
		t.Parallel()

		ep := &quoteBoard{failOnce: true}
		app := internal.New(internal.WithEndpoints(ep))

		failed := do(app, httptest.NewRequest(http.MethodGet, "/quote", nil))
		require.Equal(t, http.StatusServiceUnavailable, failed.Code)

		recovered := do(app, httptest.NewRequest(http.MethodGet, "/quote", nil))
		require.Equal(t, http.StatusOK, recovered.Code)
		require.Equal(t, "MISS", recovered.Header().Get("X-Cache"))

		cached := do(app, httptest.NewRequest(http.MethodGet, "/quote", nil))
		require.Equal(t, "HIT", cached.Header().Get("X-Cache"))
		require.Equal(t, 2, ep.hits)
	})
}
