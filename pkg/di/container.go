// Package di provides a small type-keyed service container. Applications
// register factories at startup and resolve services by type, either as
// shared singletons or as fresh per-resolution instances.
package di

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"
)

var (
	// ErrNotRegistered is returned when resolving a type with no
	// registration.
	ErrNotRegistered = errors.New("service not registered")

	// ErrContainerClosed is returned when resolving from a container
	// after Shutdown.
	ErrContainerClosed = errors.New("container closed")
)

// Container holds type-keyed service registrations. Register services
// during startup, then resolve them concurrently; registration is not
// synchronized against in-flight resolution.
type Container struct {
	mu            sync.RWMutex
	registrations map[reflect.Type]*registration
	closed        bool

	createdMu sync.Mutex
	created   []any
}

type registration struct {
	singleton bool
	factory   func(s *Scope) (any, error)

	mu    sync.Mutex
	built bool
	value any
}

// New creates an empty container.
func New() *Container {
	return &Container{registrations: make(map[reflect.Type]*registration)}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func (c *Container) register(t reflect.Type, r *registration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registrations[t] = r
}

// Register adds a transient registration for T: every resolution calls
// factory for a fresh instance. Registering the same type again
// replaces the previous registration.
func Register[T any](c *Container, factory func(s *Scope) (T, error)) {
	c.register(typeOf[T](), &registration{
		factory: func(s *Scope) (any, error) { return factory(s) },
	})
}

// RegisterSingleton adds a singleton registration for T: factory runs at
// most once, on first resolution, and the instance is shared afterwards.
// A failed factory is retried on the next resolution.
func RegisterSingleton[T any](c *Container, factory func(s *Scope) (T, error)) {
	c.register(typeOf[T](), &registration{
		singleton: true,
		factory:   func(s *Scope) (any, error) { return factory(s) },
	})
}

// RegisterInstance registers a pre-built instance as a singleton for T.
// The container takes over its shutdown.
func RegisterInstance[T any](c *Container, instance T) {
	c.register(typeOf[T](), &registration{
		singleton: true,
		built:     true,
		value:     instance,
	})
	c.trackCreated(instance)
}

// Has reports whether the container holds a registration for T.
func Has[T any](c *Container) bool {
	if c == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.registrations[typeOf[T]()]
	return ok
}

// Scope tracks one resolution chain for cycle detection. Factories
// receive the scope and resolve their dependencies through it:
//
//	di.RegisterSingleton(c, func(s *di.Scope) (*OrderService, error) {
//	    repo, err := di.ResolveFrom[*OrderRepo](s)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return NewOrderService(repo), nil
//	})
type Scope struct {
	c     *Container
	stack []reflect.Type
	seen  map[reflect.Type]bool
}

// Container returns the container the scope resolves from.
func (s *Scope) Container() *Container { return s.c }

func (c *Container) newScope() *Scope {
	return &Scope{c: c, seen: make(map[reflect.Type]bool)}
}

// Resolve returns the instance registered for T, building it (and its
// dependencies) as needed.
func Resolve[T any](c *Container) (T, error) {
	var zero T
	v, err := c.resolveType(typeOf[T](), nil)
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// ResolveFrom resolves T within an ongoing resolution, carrying the
// scope's cycle detection into the dependency.
func ResolveFrom[T any](s *Scope) (T, error) {
	var zero T
	v, err := s.c.resolveType(typeOf[T](), s)
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// ResolveType resolves by reflect type, for callers that only know the
// type at runtime.
func (c *Container) ResolveType(t reflect.Type) (any, error) {
	return c.resolveType(t, nil)
}

func (c *Container) resolveType(t reflect.Type, s *Scope) (any, error) {
	if c == nil {
		return nil, fmt.Errorf("di: resolve %s: nil container", t)
	}

	c.mu.RLock()
	reg, ok := c.registrations[t]
	closed := c.closed
	c.mu.RUnlock()

	if closed {
		return nil, fmt.Errorf("di: resolve %s: %w", t, ErrContainerClosed)
	}
	if !ok {
		return nil, fmt.Errorf("di: resolve %s: %w", t, ErrNotRegistered)
	}

	if s == nil {
		s = c.newScope()
	}
	if s.seen[t] {
		return nil, fmt.Errorf("di: circular dependency: %s", s.chain(t))
	}
	s.seen[t] = true
	s.stack = append(s.stack, t)
	defer func() {
		delete(s.seen, t)
		s.stack = s.stack[:len(s.stack)-1]
	}()

	if reg.singleton {
		reg.mu.Lock()
		defer reg.mu.Unlock()
		if reg.built {
			return reg.value, nil
		}
		v, err := reg.factory(s)
		if err != nil {
			return nil, fmt.Errorf("di: build %s: %w", t, err)
		}
		reg.value = v
		reg.built = true
		c.trackCreated(v)
		return v, nil
	}

	v, err := reg.factory(s)
	if err != nil {
		return nil, fmt.Errorf("di: build %s: %w", t, err)
	}
	return v, nil
}

func (s *Scope) chain(t reflect.Type) string {
	parts := make([]string, 0, len(s.stack)+1)
	for _, st := range s.stack {
		parts = append(parts, st.String())
	}
	parts = append(parts, t.String())
	return strings.Join(parts, " -> ")
}

func (c *Container) trackCreated(v any) {
	c.createdMu.Lock()
	c.created = append(c.created, v)
	c.createdMu.Unlock()
}

// Shutdown closes the container and shuts down created singletons in
// reverse creation order. An instance participates when it implements
// interface{ Shutdown(context.Context) error } or io.Closer. Errors are
// collected; shutdown continues past failures.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.createdMu.Lock()
	created := c.created
	c.created = nil
	c.createdMu.Unlock()

	var errs []error
	for i := len(created) - 1; i >= 0; i-- {
		switch v := created[i].(type) {
		case interface {
			Shutdown(context.Context) error
		}:
			if err := v.Shutdown(ctx); err != nil {
				errs = append(errs, err)
			}
		case io.Closer:
			if err := v.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
