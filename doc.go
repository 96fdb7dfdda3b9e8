// Package fastendpoints is an endpoint-oriented web API framework.
// Instead of attaching handler functions to a router, each API
// operation is a self-contained endpoint type that declares its own
// route, request shape, and security requirements, and the framework
// runs every request through a fixed pipeline: bind, validate,
// authorize, handle.
//
// # Endpoints
//
// An endpoint implements the two-method Endpoint interface:
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
//
// Configure runs exactly once at startup; Handle runs per request,
// and only after binding, validation, and authorization have all
// passed. Dependencies arrive through the constructor, so endpoints
// are plain structs that are trivial to test.
//
// # Request binding
//
// Declaring a request model with Builder.Request makes the framework
// populate it from route parameters, query parameters, headers, the
// JSON or form body, and principal claims, with a fixed precedence,
// then validate it against its `validate` tags. The handler receives
// the bound model via RequestFrom and never touches the raw request.
//
// # Security
//
// Endpoints declare role, permission, policy, and claim requirements
// on the Builder. The evaluator checks them against the request's
// principal before the handler runs; endpoints without requirements
// still require an authenticated principal unless they opt out with
// AllowAnonymous.
//
// # Application
//
// New assembles an App from options and seals the route table:
//
//	app := fastendpoints.New(
//	    fastendpoints.WithEndpoints(endpoints...),
//	    fastendpoints.WithMiddleware(
//	        middlewares.RequestID(),
//	        middlewares.Recover(),
//	    ),
//	    fastendpoints.WithHealthChecks(
//	        fastendpoints.WithReadinessCheck("db", db.Healthcheck(pool)),
//	    ),
//	    fastendpoints.WithDocs(openapi.WithTitle("Orders API")),
//	)
//	err := app.Run(":8080",
//	    fastendpoints.ShutdownHook(db.Shutdown(pool)),
//	)
//
// Run blocks until SIGINT/SIGTERM and then shuts down gracefully,
// draining in-flight requests and running shutdown hooks.
//
// This package is a thin facade: it re-exports the core types from
// the internal package and composes the subpackages under pkg/
// (binder, validator, authz, eventbus, job, and friends), which are
// also usable on their own.
package fastendpoints
