package eventbus_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sciocoder/FastEndpoints/pkg/eventbus"
)

type orderCreated struct {
	OrderID string
}

type orderCancelled struct {
	OrderID string
}

func TestBus_Publish(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("dispatches in registration order", func(t *testing.T) {
		t.Parallel()
		bus := eventbus.New()

		var order []string
		require.NoError(t, eventbus.Subscribe(bus, func(context.Context, orderCreated) error {
			order = append(order, "first")
			return nil
		}))
		require.NoError(t, eventbus.Subscribe(bus, func(context.Context, orderCreated) error {
			order = append(order, "second")
			return nil
		}))
		require.NoError(t, eventbus.Subscribe(bus, func(context.Context, orderCreated) error {
			order = append(order, "third")
			return nil
		}))

		require.NoError(t, bus.Publish(ctx, orderCreated{OrderID: "o-1"}))
		assert.Equal(t, []string{"first", "second", "third"}, order)
	})

	t.Run("only matching type receives the event", func(t *testing.T) {
		t.Parallel()
		bus := eventbus.New()

		var created, cancelled int
		require.NoError(t, eventbus.Subscribe(bus, func(context.Context, orderCreated) error {
			created++
			return nil
		}))
		require.NoError(t, eventbus.Subscribe(bus, func(context.Context, orderCancelled) error {
			cancelled++
			return nil
		}))

		require.NoError(t, bus.Publish(ctx, orderCreated{}))
		assert.Equal(t, 1, created)
		assert.Equal(t, 0, cancelled)
	})

	t.Run("no subscribers is a no-op", func(t *testing.T) {
		t.Parallel()
		bus := eventbus.New()
		assert.NoError(t, bus.Publish(ctx, orderCreated{}))
		assert.NoError(t, bus.Publish(ctx, nil))
	})

	t.Run("subscriber failure does not abort siblings", func(t *testing.T) {
		t.Parallel()
		bus := eventbus.New()

		var reached bool
		require.NoError(t, eventbus.SubscribeNamed(bus, "failing", func(context.Context, orderCreated) error {
			return errors.New("smtp down")
		}))
		require.NoError(t, eventbus.Subscribe(bus, func(context.Context, orderCreated) error {
			reached = true
			return nil
		}))

		err := bus.Publish(ctx, orderCreated{})
		require.Error(t, err)
		assert.True(t, reached, "second subscriber must still run")
		assert.Contains(t, err.Error(), "failing")
		assert.Contains(t, err.Error(), "smtp down")
	})

	t.Run("fail-fast stops at first error", func(t *testing.T) {
		t.Parallel()
		bus := eventbus.New(eventbus.WithFailFast())

		var reached bool
		require.NoError(t, eventbus.Subscribe(bus, func(context.Context, orderCreated) error {
			return errors.New("boom")
		}))
		require.NoError(t, eventbus.Subscribe(bus, func(context.Context, orderCreated) error {
			reached = true
			return nil
		}))

		require.Error(t, bus.Publish(ctx, orderCreated{}))
		assert.False(t, reached)
	})

	t.Run("panicking subscriber becomes an error", func(t *testing.T) {
		t.Parallel()
		bus := eventbus.New()

		require.NoError(t, eventbus.SubscribeNamed(bus, "panicky", func(context.Context, orderCreated) error {
			panic("unexpected state")
		}))

		err := bus.Publish(ctx, orderCreated{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "panic: unexpected state")
	})

	t.Run("publish id is available for correlation", func(t *testing.T) {
		t.Parallel()
		bus := eventbus.New()

		var id uuid.UUID
		require.NoError(t, eventbus.Subscribe(bus, func(ctx context.Context, _ orderCreated) error {
			id = eventbus.PublishID(ctx)
			return nil
		}))

		require.NoError(t, bus.Publish(ctx, orderCreated{}))
		assert.NotEqual(t, uuid.UUID{}, id)
		assert.Equal(t, uuid.UUID{}, eventbus.PublishID(ctx))
	})

	t.Run("cancelled context stops dispatch", func(t *testing.T) {
		t.Parallel()
		bus := eventbus.New()

		cctx, cancel := context.WithCancel(ctx)
		var reached bool
		require.NoError(t, eventbus.Subscribe(bus, func(context.Context, orderCreated) error {
			cancel()
			return nil
		}))
		require.NoError(t, eventbus.Subscribe(bus, func(context.Context, orderCreated) error {
			reached = true
			return nil
		}))

		require.Error(t, bus.Publish(cctx, orderCreated{}))
		assert.False(t, reached)
	})

	t.Run("async publish returns immediately and still delivers", func(t *testing.T) {
		t.Parallel()
		bus := eventbus.New(eventbus.WithAsync())

		done := make(chan struct{})
		require.NoError(t, eventbus.Subscribe(bus, func(context.Context, orderCreated) error {
			close(done)
			return nil
		}))

		require.NoError(t, bus.Publish(ctx, orderCreated{}))
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("async subscriber never ran")
		}
	})

	t.Run("async dispatch survives request cancellation", func(t *testing.T) {
		t.Parallel()
		bus := eventbus.New(eventbus.WithAsync())

		done := make(chan error, 1)
		require.NoError(t, eventbus.Subscribe(bus, func(ctx context.Context, _ orderCreated) error {
			done <- ctx.Err()
			return nil
		}))

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		require.NoError(t, bus.Publish(cctx, orderCreated{}))
		select {
		case err := <-done:
			assert.NoError(t, err, "async context must be detached from the request")
		case <-time.After(2 * time.Second):
			t.Fatal("async subscriber never ran")
		}
	})
}

func TestBus_Seal(t *testing.T) {
	t.Parallel()

	bus := eventbus.New()
	require.NoError(t, eventbus.Subscribe(bus, func(context.Context, orderCreated) error { return nil }))

	bus.Seal()

	err := eventbus.Subscribe(bus, func(context.Context, orderCreated) error { return nil })
	assert.ErrorIs(t, err, eventbus.ErrSealed)
	assert.Equal(t, 1, bus.SubscriberCount(orderCreated{}))
}

func TestBus_ConcurrentPublish(t *testing.T) {
	t.Parallel()

	bus := eventbus.New()

	var mu sync.Mutex
	count := 0
	require.NoError(t, eventbus.Subscribe(bus, func(context.Context, orderCreated) error {
		mu.Lock()
		count++
		mu.Unlock()
		return nil
	}))
	bus.Seal()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = bus.Publish(context.Background(), orderCreated{})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, count)
}
