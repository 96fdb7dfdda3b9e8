package eventbus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSealed is returned when subscribing after the bus started serving.
// Subscriber tables are append-only during startup and read-only afterwards.
var ErrSealed = errors.New("eventbus: bus is sealed")

type subscriber struct {
	handle func(ctx context.Context, event any) error
	name   string
}

// Bus is an in-process publish/subscribe dispatcher. Subscribers register
// per concrete event type during startup; every publish of that type
// invokes them in registration order. Delivery is at-most-once and not
// durable: events die with the process.
type Bus struct {
	subscribers map[reflect.Type][]subscriber
	log         *slog.Logger
	mu          sync.RWMutex
	failFast    bool
	async       bool
	sealed      bool
}

// Option configures the bus during construction.
type Option func(*Bus)

// WithLogger sets the logger used for dispatch failures.
func WithLogger(log *slog.Logger) Option {
	return func(b *Bus) {
		if log != nil {
			b.log = log
		}
	}
}

// WithFailFast stops dispatch at the first subscriber error instead of
// running the remaining subscribers and joining the failures.
func WithFailFast() Option {
	return func(b *Bus) { b.failFast = true }
}

// WithAsync dispatches each publish on its own goroutine. Publish returns
// immediately; subscriber order within one publish is still registration
// order, and failures are logged instead of returned.
func WithAsync() Option {
	return func(b *Bus) { b.async = true }
}

// New creates an event bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		subscribers: make(map[reflect.Type][]subscriber),
		log:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers fn for events of type T. Registration order is
// preserved per type and determines dispatch order. Subscribing after
// Seal returns ErrSealed.
func Subscribe[T any](b *Bus, fn func(ctx context.Context, event T) error) error {
	t := typeOf[T]()
	return SubscribeNamed(b, fmt.Sprintf("%s#%d", t, b.count(t)), fn)
}

// SubscribeNamed registers fn under an explicit name used in failure logs.
func SubscribeNamed[T any](b *Bus, name string, fn func(ctx context.Context, event T) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sealed {
		return ErrSealed
	}

	t := typeOf[T]()
	b.subscribers[t] = append(b.subscribers[t], subscriber{
		name: name,
		handle: func(ctx context.Context, event any) error {
			return fn(ctx, event.(T))
		},
	})
	return nil
}

// Seal freezes the subscriber table. Called once when the host starts
// serving; afterwards reads need no synchronization guarantees beyond the
// ones the map already had at seal time.
func (b *Bus) Seal() {
	b.mu.Lock()
	b.sealed = true
	b.mu.Unlock()
}

// SubscriberCount returns how many subscribers are registered for the
// concrete type of event.
func (b *Bus) SubscriberCount(event any) int {
	return b.count(reflect.TypeOf(event))
}

func (b *Bus) count(t reflect.Type) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[t])
}

type publishIDKey struct{}

// PublishID returns the envelope id of the publish that invoked the current
// subscriber, for log correlation. Zero UUID outside a dispatch.
func PublishID(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(publishIDKey{}).(uuid.UUID); ok {
		return id
	}
	return uuid.UUID{}
}

// Publish dispatches event to every subscriber registered for its concrete
// type, in registration order. A subscriber failure (error or panic) is
// captured and reported without silencing the remaining subscribers; the
// joined errors are returned. With fail-fast the first failure aborts the
// rest. With async dispatch Publish returns nil immediately and failures
// are logged. Publishing a type with no subscribers is a no-op.
func (b *Bus) Publish(ctx context.Context, event any) error {
	if event == nil {
		return nil
	}

	b.mu.RLock()
	subs := b.subscribers[reflect.TypeOf(event)]
	b.mu.RUnlock()

	if len(subs) == 0 {
		return nil
	}

	id := uuid.New()
	if b.async {
		go func() {
			// Detach from the request's cancellation but keep its values:
			// async side effects should outlive the response.
			dctx := context.WithValue(context.WithoutCancel(ctx), publishIDKey{}, id)
			if err := b.dispatch(dctx, id, event, subs); err != nil {
				b.log.ErrorContext(dctx, "async event dispatch failed",
					slog.String("event", fmt.Sprintf("%T", event)),
					slog.String("publish_id", id.String()),
					slog.Any("error", err))
			}
		}()
		return nil
	}

	return b.dispatch(context.WithValue(ctx, publishIDKey{}, id), id, event, subs)
}

func (b *Bus) dispatch(ctx context.Context, id uuid.UUID, event any, subs []subscriber) error {
	var errs []error
	started := time.Now()

	for _, sub := range subs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		err := b.invoke(ctx, sub, event)
		if err == nil {
			continue
		}

		b.log.ErrorContext(ctx, "event subscriber failed",
			slog.String("event", fmt.Sprintf("%T", event)),
			slog.String("subscriber", sub.name),
			slog.String("publish_id", id.String()),
			slog.Any("error", err))

		errs = append(errs, fmt.Errorf("%s: %w", sub.name, err))
		if b.failFast {
			break
		}
	}

	if len(errs) == 0 {
		b.log.DebugContext(ctx, "event dispatched",
			slog.String("event", fmt.Sprintf("%T", event)),
			slog.String("publish_id", id.String()),
			slog.Int("subscribers", len(subs)),
			slog.Duration("took", time.Since(started)))
		return nil
	}
	return errors.Join(errs...)
}

// invoke runs one subscriber, converting panics into errors so a broken
// subscriber cannot abort its siblings.
func (b *Bus) invoke(ctx context.Context, sub subscriber, event any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return sub.handle(ctx, event)
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
