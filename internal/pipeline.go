package internal

import (
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"runtime/debug"
	"slices"
)

// pipeline drives a matched request through the endpoint lifecycle:
// model binding, validation, authorization, handler invocation, and
// response bookkeeping. Stages run strictly in that order, never
// re-enter, and the error stages short-circuit straight to the
// response: 400 for binding/validation failures, 401/403 for
// authorization, 500 for a handler fault.
type pipeline struct {
	app *App
	def *Definition
}

// httpHandler adapts the pipeline to the router. Endpoint middleware
// wraps the whole execution, so middleware can short-circuit before
// binding (rate limits, cached responses) or observe the final
// outcome.
func (p *pipeline) httpHandler() http.HandlerFunc {
	h := p.execute
	mw := slices.Clone(p.def.middlewares)
	slices.Reverse(mw)
	for _, m := range mw {
		h = m(h)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		c := newContext(w, r, p.app, p.def)
		defer func() {
			if rec := recover(); rec != nil {
				p.fault(c, rec)
			}
		}()
		if err := h(c); err != nil {
			p.app.handleError(c, err)
		}
	}
}

// fault reports a panic as a handler fault: full detail goes to the
// log, the client gets a generic 500 with no internal state. A
// cancelled request gets no partial body at all.
func (p *pipeline) fault(c *requestContext, rec any) {
	if rec == http.ErrAbortHandler {
		panic(rec)
	}
	c.LogError("handler fault",
		slog.Any("panic", rec),
		slog.String("method", c.request.Method),
		slog.String("path", c.request.URL.Path),
		slog.String("stack", string(debug.Stack())),
	)
	if c.Written() || c.Err() != nil {
		return
	}
	_ = c.JSON(http.StatusInternalServerError, errorResponse{
		Error: http.StatusText(http.StatusInternalServerError),
	})
}

// execute runs the bind, authorize, and handle stages in order.
func (p *pipeline) execute(c Context) error {
	rc, ok := c.(*requestContext)
	if !ok {
		return ErrInternal("unsupported context implementation",
			WithError(fmt.Errorf("pipeline: middleware replaced the request context with %T", c)))
	}

	if err := p.bind(rc); err != nil {
		return err
	}
	if err := p.authorize(rc); err != nil {
		return err
	}
	return p.handle(rc)
}

// bind populates and validates the declared request model. Binding
// and validation failures accumulate together in encounter order, so
// the caller sees every problem in one response instead of fixing them
// one at a time.
func (p *pipeline) bind(rc *requestContext) error {
	if p.def.requestType == nil {
		return nil
	}
	model := reflect.New(p.def.requestType).Interface()
	failures, err := rc.Bind(model)
	if err != nil {
		return ErrInternal("request binding failed", WithError(err))
	}
	rc.setModel(model)
	if len(failures) > 0 {
		rc.addFailures(failures)
		return rc.RaiseIfErrors()
	}
	return nil
}

// authorize evaluates the endpoint's security requirements against
// the request principal. Anonymous endpoints skip the stage entirely;
// endpoints without declared requirements allow unconditionally, and
// endpoints with requirements need an authenticated principal before
// the evaluator runs.
func (p *pipeline) authorize(rc *requestContext) error {
	if p.def.anonymous {
		return nil
	}
	reqs := p.def.requirements
	if reqs.IsEmpty() {
		return nil
	}
	principal := rc.Principal()
	if principal == nil || principal.IsAnonymous() {
		return ErrUnauthorized("authentication required")
	}
	decision := p.app.evaluator.Authorize(rc.Context(), principal, reqs)
	if decision.Allowed {
		return nil
	}
	if decision.Err != nil {
		// Evaluation errors (unknown policy, policy failure) are
		// server-side problems, not a clean denial.
		return ErrInternal("authorization evaluation failed", WithError(decision.Err))
	}
	return ErrForbidden(decision.Reason, WithErrorCode(string(decision.Check)))
}

// handle invokes the endpoint exactly once and accounts for the
// response. A handler that neither writes nor returns an error ends
// the request in the fault state rather than leaving the client
// hanging.
func (p *pipeline) handle(rc *requestContext) error {
	endpoint := p.def.endpoint
	if p.def.scoped {
		resolved, err := p.resolveScoped()
		if err != nil {
			return ErrInternal("endpoint resolution failed", WithError(err))
		}
		endpoint = resolved
	}
	if err := endpoint.Handle(rc); err != nil {
		return err
	}
	if rc.Written() {
		return nil
	}
	if rc.HasErrors() {
		return rc.RaiseIfErrors()
	}
	if rc.Err() != nil {
		// Client is gone; nothing to send.
		return nil
	}
	return ErrInternal("handler returned without sending a response",
		WithError(fmt.Errorf("endpoint %s reached the end of Handle with no response", p.def.Name())))
}

// resolveScoped obtains a fresh endpoint instance from the container,
// keyed by the registered endpoint's type.
func (p *pipeline) resolveScoped() (Endpoint, error) {
	if p.app.container == nil {
		return nil, fmt.Errorf("endpoint %s is scoped but no service container is configured", p.def.Name())
	}
	v, err := p.app.container.ResolveType(reflect.TypeOf(p.def.endpoint))
	if err != nil {
		return nil, err
	}
	ep, ok := v.(Endpoint)
	if !ok {
		return nil, fmt.Errorf("container returned %T for endpoint %s", v, p.def.Name())
	}
	return ep, nil
}
