// Package internal provides the core types and implementation of the
// endpoint framework.
//
// This package is internal and should not be used directly. Import
// "github.com/sciocoder/FastEndpoints" instead, which re-exports the
// public API.
//
// # Core Types
//
//   - App: orchestrates the application lifecycle, routing, and graceful shutdown
//   - Endpoint: the Configure/Handle pair every API operation implements
//   - Builder: the declaration DSL handed to Configure
//   - Definition: the immutable descriptor built from a Configure run
//   - Registry: the sealed route table of definitions
//   - Context: request/response access, bound model, principal, and helpers
//   - HandlerFunc, Middleware, ErrorHandler: the functional plumbing around Handle
//
// # Execution Pipeline
//
// Every matched request runs the same stages in order: bind the
// declared request model, validate it, evaluate the endpoint's
// security requirements against the principal, then call Handle. A
// failing stage short-circuits the rest; the handler only ever sees a
// bound, valid, authorized request.
//
// # Context as context.Context
//
// Context embeds context.Context, so it can be passed directly to any
// function that expects a standard library context:
//
//	func (e *GetUser) Handle(c internal.Context) error {
//	    user, err := e.repo.GetUser(c, internal.Param[string](c, "id"))
//	    if err != nil {
//	        return err
//	    }
//	    return c.JSON(http.StatusOK, user)
//	}
//
// # Request Handling
//
// Endpoints that declare a request model receive it bound and
// validated; handlers can still add their own failures:
//
//	func (e *PostReview) Handle(c internal.Context) error {
//	    m := internal.RequestFrom[reviewModel](c)
//	    if m.Rating > 5 {
//	        c.AddError("rating", "must not exceed 5")
//	    }
//	    if err := c.RaiseIfErrors(); err != nil {
//	        return err
//	    }
//	    return c.JSON(http.StatusCreated, m)
//	}
//
// HTML endpoints render templ components instead:
//
//	return c.Render(http.StatusOK, views.LoginForm(validationErrs))
//
// # Error Handling
//
// Errors returned from handlers flow through the optional custom
// ErrorHandler and then the default renderer: validation failures
// become a 400 with the ordered failure list, HTTPError keeps its
// status, anything else is a generic 500 whose detail goes to the log
// only.
//
// See the fastendpoints package documentation for the public API and
// usage examples.
package internal
