package internal

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sciocoder/FastEndpoints/pkg/job"
)

// JobManager is the app-facing handle on a River worker pool. WithJobs
// and WithJobWorker build one; App.Run starts it alongside the server
// and drains it on shutdown.
type JobManager struct {
	mgr *job.Manager
}

// NewJobManager assembles a worker pool on the given Postgres pool.
func NewJobManager(pool *pgxpool.Pool, opts ...job.Option) (*JobManager, error) {
	m, err := job.NewManager(pool, opts...)
	if err != nil {
		return nil, err
	}
	return &JobManager{mgr: m}, nil
}

// Start begins claiming and executing jobs.
func (jm *JobManager) Start(ctx context.Context) error { return jm.mgr.Start(ctx) }

// Stop drains in-flight jobs and stops the workers.
func (jm *JobManager) Stop(ctx context.Context) error { return jm.mgr.Stop(ctx) }

// Manager exposes the underlying pool for callers that need River
// specifics beyond the app surface.
func (jm *JobManager) Manager() *job.Manager { return jm.mgr }

// Shutdown adapts Stop into a shutdown hook.
func (jm *JobManager) Shutdown() func(context.Context) error { return jm.mgr.Shutdown() }

// JobEnqueuer dispatches tasks to the queue without running workers;
// Context.Enqueue goes through it. Web processes that offload work to
// a separate worker fleet carry only this half.
type JobEnqueuer struct {
	queue *job.Enqueuer
}

// NewJobEnqueuer builds an enqueue-only handle on the given pool.
func NewJobEnqueuer(pool *pgxpool.Pool, opts ...job.EnqueuerOption) (*JobEnqueuer, error) {
	e, err := job.NewEnqueuer(pool, opts...)
	if err != nil {
		return nil, err
	}
	return &JobEnqueuer{queue: e}, nil
}

// Enqueue schedules a task by name.
func (je *JobEnqueuer) Enqueue(ctx context.Context, name string, payload any, opts ...job.EnqueueOption) error {
	return je.queue.Enqueue(ctx, name, payload, opts...)
}

// EnqueueTx schedules a task inside tx so the job only becomes visible
// if the surrounding transaction commits.
func (je *JobEnqueuer) EnqueueTx(ctx context.Context, tx pgx.Tx, name string, payload any, opts ...job.EnqueueOption) error {
	return je.queue.EnqueueTx(ctx, tx, name, payload, opts...)
}

// Enqueuer exposes the underlying job.Enqueuer.
func (je *JobEnqueuer) Enqueuer() *job.Enqueuer { return je.queue }
