package internal_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/require"

	"github.com/sciocoder/FastEndpoints/internal"
	"github.com/sciocoder/FastEndpoints/pkg/authz"
	"github.com/sciocoder/FastEndpoints/pkg/eventbus"
)

// requestVia creates an App with the given options, registers a capture
// endpoint at "/" for the request's method, executes fn inside its handler,
// and sends the request. This lets tests exercise the real requestContext
// without accessing unexported symbols.
func requestVia(t *testing.T, req *http.Request, opts []internal.Option, fn func(c internal.Context)) *httptest.ResponseRecorder {
	t.Helper()

	ep := &captureEndpoint{method: req.Method, route: "/", fn: fn}
	opts = append(opts, internal.WithEndpoints(ep))
	app := internal.New(opts...)

	w := httptest.NewRecorder()
	app.Router().ServeHTTP(w, req)
	return w
}

type captureEndpoint struct {
	method string
	route  string
	fn     func(c internal.Context)
}

func (e *captureEndpoint) Configure(b *internal.Builder) {
	switch e.method {
	case http.MethodPost:
		b.Post(e.route)
	case http.MethodPut:
		b.Put(e.route)
	case http.MethodPatch:
		b.Patch(e.route)
	case http.MethodDelete:
		b.Delete(e.route)
	default:
		b.Get(e.route)
	}
	b.AllowAnonymous()
}

func (e *captureEndpoint) Handle(c internal.Context) error {
	e.fn(c)
	if c.Written() || c.HasErrors() {
		return nil
	}
	return c.NoContent(http.StatusOK)
}

// principalMiddleware stores p for the rest of the request, the way
// authentication middleware does after verifying a token.
func principalMiddleware(p *authz.Principal) internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			c.Set(internal.PrincipalKey{}, p)
			return next(c)
		}
	}
}

// --- context.Context interface tests ---

func TestContextImplementsContextInterface(t *testing.T) {
	t.Parallel()

	t.Run("Deadline delegates to request context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
		requestVia(t, req, nil, func(c internal.Context) {
			deadline, ok := c.Deadline()
			require.True(t, ok)
			require.False(t, deadline.IsZero())

			expected, _ := ctx.Deadline()
			require.Equal(t, expected, deadline)
		})
	})

	t.Run("Deadline returns false when no deadline set", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		requestVia(t, req, nil, func(c internal.Context) {
			deadline, ok := c.Deadline()
			require.False(t, ok)
			require.True(t, deadline.IsZero())
		})
	})

	t.Run("Done delegates to request context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
		requestVia(t, req, nil, func(c internal.Context) {
			// Done channel should not be closed yet.
			select {
			case <-c.Done():
				t.Fatal("Done channel should not be closed before cancel")
			default:
			}

			cancel()

			// Done channel should be closed after cancel.
			select {
			case <-c.Done():
				// expected
			case <-time.After(time.Second):
				t.Fatal("Done channel should be closed after cancel")
			}
		})
	})

	t.Run("Done returns nil when no cancellation", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		requestVia(t, req, nil, func(c internal.Context) {
			// Just verify it doesn't panic.
			_ = c.Done()
		})
	})

	t.Run("Err returns nil before cancellation", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(t.Context())
		requestVia(t, req, nil, func(c internal.Context) {
			require.NoError(t, c.Err())
		})
	})

	t.Run("Err returns Canceled after cancel", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
		requestVia(t, req, nil, func(c internal.Context) {
			cancel()
			require.ErrorIs(t, c.Err(), context.Canceled)
		})
	})

	t.Run("Err returns DeadlineExceeded after timeout", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
		defer cancel()

		// Wait for the timeout to expire.
		time.Sleep(time.Millisecond)

		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
		requestVia(t, req, nil, func(c internal.Context) {
			require.ErrorIs(t, c.Err(), context.DeadlineExceeded)
		})
	})

	t.Run("Value delegates to request context", func(t *testing.T) {
		t.Parallel()

		type testKey struct{}
		ctx := context.WithValue(context.Background(), testKey{}, "hello")

		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
		requestVia(t, req, nil, func(c internal.Context) {
			val := c.Value(testKey{})
			require.Equal(t, "hello", val)
		})
	})

	t.Run("Value returns nil for missing key", func(t *testing.T) {
		t.Parallel()

		type testKey struct{}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		requestVia(t, req, nil, func(c internal.Context) {
			require.Nil(t, c.Value(testKey{}))
		})
	})

	t.Run("Value reflects Set changes", func(t *testing.T) {
		t.Parallel()

		type testKey struct{}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		requestVia(t, req, nil, func(c internal.Context) {
			c.Set(testKey{}, 42)
			require.Equal(t, 42, c.Value(testKey{}))
		})
	})

	t.Run("context can be passed to functions accepting context.Context", func(t *testing.T) {
		t.Parallel()

		type testKey struct{}
		ctx := context.WithValue(context.Background(), testKey{}, "world")
		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
		requestVia(t, req, nil, func(c internal.Context) {
			// Wrap in context.WithValue to prove it works as a parent context.
			type childKey struct{}
			derived := context.WithValue(c, childKey{}, "child-val")

			require.Equal(t, "world", derived.Value(testKey{}))
			require.Equal(t, "child-val", derived.Value(childKey{}))
		})
	})
}

// --- Principal tests ---

func TestPrincipal(t *testing.T) {
	t.Parallel()

	t.Run("Principal returns nil when none stored", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		requestVia(t, req, nil, func(c internal.Context) {
			require.Nil(t, c.Principal())
		})
	})

	t.Run("IsAuthenticated returns false when none stored", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		requestVia(t, req, nil, func(c internal.Context) {
			require.False(t, c.IsAuthenticated())
		})
	})

	t.Run("Principal returns the stored principal", func(t *testing.T) {
		t.Parallel()

		p := &authz.Principal{
			Subject: "user-456",
			Roles:   []string{"admin"},
			Claims:  map[string]string{"tenant": "acme"},
		}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		opts := []internal.Option{
			internal.WithMiddleware(principalMiddleware(p)),
		}
		requestVia(t, req, opts, func(c internal.Context) {
			got := c.Principal()
			require.NotNil(t, got)
			require.Equal(t, "user-456", got.Subject)
			require.True(t, got.HasRole("admin"))

			tenant, ok := got.Claim("tenant")
			require.True(t, ok)
			require.Equal(t, "acme", tenant)
		})
	})

	t.Run("IsAuthenticated returns true for identified principal", func(t *testing.T) {
		t.Parallel()

		p := &authz.Principal{Subject: "user-789"}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		opts := []internal.Option{
			internal.WithMiddleware(principalMiddleware(p)),
		}
		requestVia(t, req, opts, func(c internal.Context) {
			require.True(t, c.IsAuthenticated())
		})
	})

	t.Run("IsAuthenticated returns false for anonymous principal", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		opts := []internal.Option{
			internal.WithMiddleware(principalMiddleware(authz.Anonymous())),
		}
		requestVia(t, req, opts, func(c internal.Context) {
			require.False(t, c.IsAuthenticated())
		})
	})

	t.Run("principal set inside the handler is visible immediately", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		requestVia(t, req, nil, func(c internal.Context) {
			require.Nil(t, c.Principal())

			c.Set(internal.PrincipalKey{}, &authz.Principal{Subject: "late"})
			require.NotNil(t, c.Principal())
			require.Equal(t, "late", c.Principal().Subject)
		})
	})
}

// --- Failure bag tests ---

func TestFailureBag(t *testing.T) {
	t.Parallel()

	t.Run("fresh request has no failures", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		requestVia(t, req, nil, func(c internal.Context) {
			require.False(t, c.HasErrors())
			require.Empty(t, c.Failures())
			require.NoError(t, c.RaiseIfErrors())
		})
	})

	t.Run("AddError accumulates in call order", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		requestVia(t, req, nil, func(c internal.Context) {
			c.AddError("Email", "must be a valid email address")
			c.AddError("Age", "must be at least 18")
			c.AddError("Email", "is already taken")

			require.True(t, c.HasErrors())

			failures := c.Failures()
			require.Len(t, failures, 3)
			require.Equal(t, "Email", failures[0].Field)
			require.Equal(t, "must be a valid email address", failures[0].Message)
			require.Equal(t, "Age", failures[1].Field)
			require.Equal(t, "Email", failures[2].Field)
			require.Equal(t, "is already taken", failures[2].Message)
		})
	})

	t.Run("RaiseIfErrors returns the accumulated failures as an error", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		requestVia(t, req, nil, func(c internal.Context) {
			c.AddError("Name", "is required")

			err := c.RaiseIfErrors()
			require.Error(t, err)

			var verrs internal.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			require.Len(t, verrs, 1)
			require.Equal(t, "Name", verrs[0].Field)
		})
	})

	t.Run("Failures returns a copy", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		requestVia(t, req, nil, func(c internal.Context) {
			c.AddError("A", "first")

			failures := c.Failures()
			failures[0].Field = "mutated"

			require.Equal(t, "A", c.Failures()[0].Field)
		})
	})
}

// --- Endpoint metadata tests ---

func TestContextEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("exposes the matched definition", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		requestVia(t, req, nil, func(c internal.Context) {
			def := c.Endpoint()
			require.NotNil(t, def)
			require.Equal(t, http.MethodGet, def.Method())
			require.Equal(t, "/", def.Route())
			require.Equal(t, "GET /", def.Name())
			require.True(t, def.AllowsAnonymous())
		})
	})
}

// --- Event publishing tests ---

type userRegistered struct {
	ID string
}

func TestContextPublish(t *testing.T) {
	t.Parallel()

	t.Run("delivers the event to subscribers", func(t *testing.T) {
		t.Parallel()

		var received []userRegistered
		bus := eventbus.New()
		err := eventbus.Subscribe(bus, func(_ context.Context, e userRegistered) error {
			received = append(received, e)
			return nil
		})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		opts := []internal.Option{
			internal.WithEventBus(bus),
		}
		requestVia(t, req, opts, func(c internal.Context) {
			require.NoError(t, c.Publish(userRegistered{ID: "u-1"}))
		})

		require.Len(t, received, 1)
		require.Equal(t, "u-1", received[0].ID)
	})

	t.Run("publishing without subscribers is a no-op", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		requestVia(t, req, nil, func(c internal.Context) {
			require.NoError(t, c.Publish(userRegistered{ID: "unheard"}))
		})
	})
}

// --- Config lookup tests ---

type mapConfig map[string]string

func (m mapConfig) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func TestContextConfigValue(t *testing.T) {
	t.Parallel()

	t.Run("returns configured values", func(t *testing.T) {
		t.Parallel()

		cfg := mapConfig{"feature.uploads": "enabled"}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		opts := []internal.Option{
			internal.WithConfig(cfg),
		}
		requestVia(t, req, opts, func(c internal.Context) {
			v, ok := c.ConfigValue("feature.uploads")
			require.True(t, ok)
			require.Equal(t, "enabled", v)

			_, ok = c.ConfigValue("missing.key")
			require.False(t, ok)
		})
	})

	t.Run("returns not found when no config is wired", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		requestVia(t, req, nil, func(c internal.Context) {
			_, ok := c.ConfigValue("any")
			require.False(t, ok)
		})
	})
}

// --- Response helper tests ---

func TestResponseHelpers(t *testing.T) {
	t.Parallel()

	t.Run("JSON writes status and content type", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := requestVia(t, req, nil, func(c internal.Context) {
			require.NoError(t, c.JSON(http.StatusCreated, map[string]string{"id": "42"}))
			require.True(t, c.Written())
		})

		require.Equal(t, http.StatusCreated, w.Code)
		require.Contains(t, w.Header().Get("Content-Type"), "application/json")
		require.JSONEq(t, `{"id":"42"}`, w.Body.String())
	})

	t.Run("String writes plain text", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := requestVia(t, req, nil, func(c internal.Context) {
			require.NoError(t, c.String(http.StatusOK, "pong"))
		})

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "pong", w.Body.String())
	})

	t.Run("NoContent writes only the status", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodDelete, "/", nil)
		w := requestVia(t, req, nil, func(c internal.Context) {
			require.NoError(t, c.NoContent(http.StatusNoContent))
		})

		require.Equal(t, http.StatusNoContent, w.Code)
		require.Empty(t, w.Body.String())
	})

	t.Run("Render writes a templ component as HTML", func(t *testing.T) {
		t.Parallel()

		component := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			_, err := io.WriteString(w, "<h1>Orders</h1>")
			return err
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := requestVia(t, req, nil, func(c internal.Context) {
			require.NoError(t, c.Render(http.StatusOK, component))
		})

		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Header().Get("Content-Type"), "text/html")
		require.Equal(t, "<h1>Orders</h1>", w.Body.String())
	})

	t.Run("Redirect sets Location", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := requestVia(t, req, nil, func(c internal.Context) {
			require.NoError(t, c.Redirect(http.StatusFound, "/login"))
		})

		require.Equal(t, http.StatusFound, w.Code)
		require.Equal(t, "/login", w.Header().Get("Location"))
	})

	t.Run("SetHeader applies before the body is written", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := requestVia(t, req, nil, func(c internal.Context) {
			c.SetHeader("X-Request-Source", "test")
			require.NoError(t, c.NoContent(http.StatusOK))
		})

		require.Equal(t, "test", w.Header().Get("X-Request-Source"))
	})

	t.Run("Written reports false before any write", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		requestVia(t, req, nil, func(c internal.Context) {
			require.False(t, c.Written())
		})
	})
}
