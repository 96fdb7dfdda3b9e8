package job

import (
	"context"
	"errors"

	"github.com/sciocoder/FastEndpoints/pkg/health"
)

var (
	errManagerNil        = errors.New("manager is nil")
	errManagerNotStarted = errors.New("manager not started")
)

// Healthcheck returns a readiness probe that verifies the manager is
// running and its pool answers. River shares the pool, so a successful
// ping also covers queue-table access.
func Healthcheck(m *Manager) health.CheckFunc {
	return func(ctx context.Context) error {
		if m == nil {
			return errors.Join(ErrUnhealthy, errManagerNil)
		}

		m.mu.Lock()
		started := m.started
		m.mu.Unlock()
		if !started {
			return errors.Join(ErrUnhealthy, errManagerNotStarted)
		}

		if err := m.pool.Ping(ctx); err != nil {
			return errors.Join(ErrUnhealthy, err)
		}
		return nil
	}
}
