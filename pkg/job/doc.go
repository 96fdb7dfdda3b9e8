// Package job runs background work on top of River with PostgreSQL as
// the queue. Handlers register by name, payloads travel as JSON, and
// scheduled tasks run on cron expressions.
//
// A Manager both enqueues and processes jobs; an Enqueuer only inserts
// them, for API instances that dispatch to separate worker processes:
//
//	manager, err := job.NewManager(pool,
//	    job.WithTask(tasks.NewSendReceipt(mailer)),
//	    job.WithScheduledTask(tasks.NewPurgeExpired(repo)),
//	    job.WithQueue("email", 10),
//	    job.WithLogger(logger),
//	)
//
// Handlers are plain structs matched structurally: a task implements
// Name() and Handle(ctx, P), a scheduled task Name(), Schedule(), and
// Handle(ctx). See WithTask and WithScheduledTask.
package job
