package middlewares_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sciocoder/FastEndpoints/internal"
	"github.com/sciocoder/FastEndpoints/middlewares"
)

func TestRecover(t *testing.T) {
	t.Parallel()

	t.Run("panic becomes a PanicError", func(t *testing.T) {
		t.Parallel()
		c := newTestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		handler := middlewares.Recover()(func(internal.Context) error {
			panic("order book corrupted")
		})
		err := handler(c)

		require.Error(t, err)
		pe, ok := middlewares.AsPanicError(err)
		require.True(t, ok)
		assert.Equal(t, "order book corrupted", pe.Value)
		assert.Contains(t, err.Error(), "order book corrupted")
		assert.NotEmpty(t, pe.Stack)
	})

	t.Run("non-panic errors pass through", func(t *testing.T) {
		t.Parallel()
		c := newTestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		boom := errors.New("boom")
		handler := middlewares.Recover()(func(internal.Context) error {
			return boom
		})
		err := handler(c)

		require.ErrorIs(t, err, boom)
		assert.False(t, middlewares.IsPanicError(err))
	})

	t.Run("stack capture can be disabled", func(t *testing.T) {
		t.Parallel()
		c := newTestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		handler := middlewares.Recover(middlewares.WithRecoverDisablePrintStack())(func(internal.Context) error {
			panic(42)
		})
		err := handler(c)

		pe, ok := middlewares.AsPanicError(err)
		require.True(t, ok)
		assert.Equal(t, 42, pe.Value)
		assert.Empty(t, pe.Stack)
	})
}
