package internal

import (
	"fmt"
	"net/http"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/sciocoder/FastEndpoints/pkg/authz"
)

// Endpoint is a single route+verb+handler unit, the framework's basic
// building block. Each endpoint declares its own routing and security
// requirements in Configure and processes requests in Handle.
//
// Example:
//
//	type CreateOrder struct {
//	    orders *orders.Service
//	}
//
//	func (e *CreateOrder) Configure(b *fastendpoints.Builder) {
//	    b.Post("/orders").
//	        Request(new(CreateOrderRequest)).
//	        Permissions("orders.create").
//	        Summary("Create a new order")
//	}
//
//	func (e *CreateOrder) Handle(c fastendpoints.Context) error {
//	    req := fastendpoints.RequestFrom[CreateOrderRequest](c)
//	    order, err := e.orders.Create(c, req.CustomerID, req.Items)
//	    if err != nil {
//	        return err
//	    }
//	    return c.JSON(http.StatusCreated, order)
//	}
type Endpoint interface {
	// Configure declares the endpoint's route, verb, request shape,
	// and security requirements. It is called exactly once per
	// endpoint during application startup.
	Configure(b *Builder)

	// Handle processes a matched request. It is invoked at most once
	// per request, and only after binding, validation, and
	// authorization have all passed.
	Handle(c Context) error
}

// Definition is the immutable descriptor of a registered endpoint:
// route template, verb, request shape, and security requirements.
// Definitions are created during startup registration and never
// mutated afterwards, so they are safe for unsynchronized concurrent
// reads.
type Definition struct {
	endpoint       Endpoint
	method         string
	route          string
	name           string
	summary        string
	description    string
	tags           []string
	requestType    reflect.Type
	requirements   authz.RequirementSet
	anonymous      bool
	scoped         bool
	middlewares    []Middleware
	cacheTTL       time.Duration
	throttleLimit  int
	throttleWindow time.Duration
}

// Method returns the HTTP verb the endpoint is registered under.
func (d *Definition) Method() string { return d.method }

// Route returns the route template, e.g. "/orders/{id}".
func (d *Definition) Route() string { return d.route }

// Name returns the endpoint name. Defaults to "VERB /route" when not
// set explicitly via Builder.Name.
func (d *Definition) Name() string {
	if d.name != "" {
		return d.name
	}
	return d.method + " " + d.route
}

// Summary returns the one-line endpoint summary for documentation.
func (d *Definition) Summary() string { return d.summary }

// Description returns the extended endpoint description.
func (d *Definition) Description() string { return d.description }

// Tags returns the documentation tags attached to the endpoint.
func (d *Definition) Tags() []string { return slices.Clone(d.tags) }

// RequestType returns the request model type bound before the handler
// runs, or nil when the endpoint declares no request shape.
func (d *Definition) RequestType() reflect.Type { return d.requestType }

// Requirements returns a copy of the endpoint's security requirements.
func (d *Definition) Requirements() authz.RequirementSet { return d.requirements.Clone() }

// AllowsAnonymous reports whether the endpoint opted out of
// authentication and authorization checks.
func (d *Definition) AllowsAnonymous() bool { return d.anonymous }

// Scoped reports whether a fresh endpoint instance is resolved from
// the service container for every request.
func (d *Definition) Scoped() bool { return d.scoped }

// CacheTTL returns how long successful responses are cached, or zero
// when the endpoint is not cached.
func (d *Definition) CacheTTL() time.Duration { return d.cacheTTL }

// RateLimit returns the per-client request cap and its window. A zero
// limit means the endpoint is not throttled.
func (d *Definition) RateLimit() (int, time.Duration) {
	return d.throttleLimit, d.throttleWindow
}

// validate checks that the definition is complete enough to mount.
func (d *Definition) validate() error {
	if d.method == "" || d.route == "" {
		return fmt.Errorf("endpoint %T: Configure must declare a verb and route", d.endpoint)
	}
	if !strings.HasPrefix(d.route, "/") {
		return fmt.Errorf("endpoint %q: route %q must start with /", d.Name(), d.route)
	}
	if d.requestType != nil && d.requestType.Kind() != reflect.Struct {
		return fmt.Errorf("endpoint %q: request model must be a struct, got %s", d.Name(), d.requestType.Kind())
	}
	if d.cacheTTL > 0 && d.method != http.MethodGet {
		return fmt.Errorf("endpoint %q: CacheFor requires a GET endpoint", d.Name())
	}
	if d.throttleLimit < 0 {
		return fmt.Errorf("endpoint %q: Throttle limit must not be negative", d.Name())
	}
	if d.throttleLimit > 0 && d.throttleWindow <= 0 {
		return fmt.Errorf("endpoint %q: Throttle requires a positive window", d.Name())
	}
	return nil
}

// Builder is the declaration DSL handed to Endpoint.Configure.
// All methods return the builder for chaining.
type Builder struct {
	def *Definition
}

func newBuilder(ep Endpoint) *Builder {
	return &Builder{def: &Definition{endpoint: ep}}
}

func (b *Builder) verb(method, route string) *Builder {
	b.def.method = method
	b.def.route = route
	return b
}

// Get declares the endpoint at the given route for GET requests.
func (b *Builder) Get(route string) *Builder { return b.verb(http.MethodGet, route) }

// Post declares the endpoint at the given route for POST requests.
func (b *Builder) Post(route string) *Builder { return b.verb(http.MethodPost, route) }

// Put declares the endpoint at the given route for PUT requests.
func (b *Builder) Put(route string) *Builder { return b.verb(http.MethodPut, route) }

// Patch declares the endpoint at the given route for PATCH requests.
func (b *Builder) Patch(route string) *Builder { return b.verb(http.MethodPatch, route) }

// Delete declares the endpoint at the given route for DELETE requests.
func (b *Builder) Delete(route string) *Builder { return b.verb(http.MethodDelete, route) }

// Head declares the endpoint at the given route for HEAD requests.
func (b *Builder) Head(route string) *Builder { return b.verb(http.MethodHead, route) }

// Options declares the endpoint at the given route for OPTIONS requests.
func (b *Builder) Options(route string) *Builder { return b.verb(http.MethodOptions, route) }

// Name sets an explicit endpoint name used in logs and documentation.
func (b *Builder) Name(name string) *Builder {
	b.def.name = name
	return b
}

// Summary sets a one-line summary for the generated API documentation.
func (b *Builder) Summary(summary string) *Builder {
	b.def.summary = summary
	return b
}

// Description sets an extended description for the generated API
// documentation.
func (b *Builder) Description(description string) *Builder {
	b.def.description = description
	return b
}

// Tags attaches documentation tags used to group endpoints.
func (b *Builder) Tags(tags ...string) *Builder {
	b.def.tags = append(b.def.tags, tags...)
	return b
}

// Request declares the request model bound and validated before the
// handler runs. Pass a pointer to the zero value of the model:
//
//	b.Post("/orders").Request(new(CreateOrderRequest))
//
// The handler retrieves the bound model with RequestFrom.
func (b *Builder) Request(model any) *Builder {
	t := reflect.TypeOf(model)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	b.def.requestType = t
	return b
}

// Roles requires the principal to hold at least one of the given roles.
func (b *Builder) Roles(roles ...string) *Builder {
	authz.Roles(roles...)(&b.def.requirements)
	return b
}

// Permissions requires the principal to hold every given permission.
func (b *Builder) Permissions(permissions ...string) *Builder {
	authz.Permissions(permissions...)(&b.def.requirements)
	return b
}

// Policies requires every named policy predicate to pass for the
// principal. Policies are registered on the application with
// WithPolicy.
func (b *Builder) Policies(policies ...string) *Builder {
	authz.Policies(policies...)(&b.def.requirements)
	return b
}

// Claims requires every given claim type to be present on the
// principal. The check is value-agnostic; use a policy to constrain
// claim values.
func (b *Builder) Claims(claimTypes ...string) *Builder {
	authz.Claims(claimTypes...)(&b.def.requirements)
	return b
}

// AllowAnonymous exempts the endpoint from authentication and
// authorization. Declared requirements are ignored for anonymous
// endpoints.
func (b *Builder) AllowAnonymous() *Builder {
	b.def.anonymous = true
	return b
}

// Scoped resolves a fresh endpoint instance from the service container
// for every request instead of reusing the registered instance. The
// registered instance still provides the configuration.
func (b *Builder) Scoped() *Builder {
	b.def.scoped = true
	return b
}

// Use appends endpoint-scoped middleware. Middleware wraps the whole
// execution pipeline for this endpoint and runs in the order given,
// after any global middleware.
func (b *Builder) Use(mw ...Middleware) *Builder {
	b.def.middlewares = append(b.def.middlewares, mw...)
	return b
}

// CacheFor serves repeated GET requests from a per-endpoint response
// cache for the given duration. Only 200 responses are cached, keyed by
// URL and Authorization header, and hits are marked with an X-Cache
// header. Non-GET endpoints reject CacheFor at startup.
func (b *Builder) CacheFor(ttl time.Duration) *Builder {
	b.def.cacheTTL = ttl
	return b
}

// Throttle caps how many requests a single client may send within the
// window. Requests over the cap receive 429 with rate-limit headers.
func (b *Builder) Throttle(limit int, window time.Duration) *Builder {
	b.def.throttleLimit = limit
	b.def.throttleWindow = window
	return b
}
