package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sciocoder/FastEndpoints/pkg/health"
)

// Healthcheck returns a readiness probe that pings the pool. Wire it up
// with fastendpoints.WithReadinessCheck("db", db.Healthcheck(pool)).
func Healthcheck(pool *pgxpool.Pool) health.CheckFunc {
	return func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return errors.Join(ErrUnhealthy, err)
		}
		return nil
	}
}
