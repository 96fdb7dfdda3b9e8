package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sciocoder/FastEndpoints/internal"
	"github.com/sciocoder/FastEndpoints/middlewares"
)

func TestTimeout(t *testing.T) {
	t.Parallel()

	t.Run("fast handler completes", func(t *testing.T) {
		t.Parallel()
		c := newTestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		handler := middlewares.Timeout(time.Second)(func(c internal.Context) error {
			return c.String(http.StatusOK, "done")
		})
		require.NoError(t, handler(c))
	})

	t.Run("slow handler times out", func(t *testing.T) {
		t.Parallel()
		c := newTestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		handler := middlewares.Timeout(20 * time.Millisecond)(func(c internal.Context) error {
			<-middlewares.GetTimeoutContext(c).Done()
			return nil
		})
		err := handler(c)

		require.Error(t, err)
		te, ok := middlewares.AsTimeoutError(err)
		require.True(t, ok)
		assert.Equal(t, 20*time.Millisecond, te.Duration)
		assert.True(t, middlewares.IsTimeoutError(err))
	})

	t.Run("handler sees the deadline context", func(t *testing.T) {
		t.Parallel()
		c := newTestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		handler := middlewares.Timeout(time.Second)(func(c internal.Context) error {
			_, hasDeadline := middlewares.GetTimeoutContext(c).Deadline()
			assert.True(t, hasDeadline)
			return nil
		})
		require.NoError(t, handler(c))
	})
}
