package job

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"slices"
	"sync"
)

// executor is the type-erased form a registered handler takes so tasks
// with different payload types share one registry.
type executor interface {
	Execute(ctx context.Context, payload json.RawMessage) error
}

type registry struct {
	mu       sync.RWMutex
	handlers map[string]executor
}

func newRegistry() *registry {
	return &registry{handlers: make(map[string]executor)}
}

func (r *registry) add(name string, e executor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = e
}

func (r *registry) lookup(name string) (executor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.handlers[name]
	return e, ok
}

func (r *registry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Collect(maps.Keys(r.handlers))
}

// typedExecutor adapts a typed task to the executor interface by
// unmarshaling the JSON payload into P before calling Handle.
type typedExecutor[P any, T interface {
	Name() string
	Handle(context.Context, P) error
}] struct {
	task T
}

func (e *typedExecutor[P, T]) Execute(ctx context.Context, raw json.RawMessage) error {
	var payload P
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			return errors.Join(ErrInvalidPayload, err)
		}
	}
	return e.task.Handle(ctx, payload)
}

// cronExecutor runs a scheduled task; the payload is always empty.
type cronExecutor struct {
	handler func(context.Context) error
}

func (e *cronExecutor) Execute(ctx context.Context, _ json.RawMessage) error {
	return e.handler(ctx)
}
