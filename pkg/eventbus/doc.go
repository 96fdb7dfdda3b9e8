// Package eventbus provides in-process publish/subscribe for decoupled
// side effects triggered by handler logic.
//
// Subscribers bind to a concrete event type at startup and receive every
// publish of that type in registration order:
//
//	bus := eventbus.New(eventbus.WithLogger(log))
//	eventbus.Subscribe(bus, func(ctx context.Context, e OrderCreated) error {
//	    return mailer.SendReceipt(ctx, e.OrderID)
//	})
//
//	// later, inside a handler
//	_ = bus.Publish(ctx, OrderCreated{OrderID: id})
//
// One failing subscriber never silences its siblings: errors (and recovered
// panics) are collected, logged with a per-publish correlation id, and
// returned joined. WithFailFast switches to abort-on-first-error,
// WithAsync to fire-and-forget dispatch. Delivery is at-most-once and not
// durable across restarts.
package eventbus
