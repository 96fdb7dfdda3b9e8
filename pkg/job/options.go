package job

import (
	"context"
	"log/slog"
)

// config collects Manager options before the River client is built.
type config struct {
	registry   *registry
	queues     map[string]int
	schedules  []schedule
	logger     *slog.Logger
	maxWorkers int
}

type schedule struct {
	name    string
	expr    string
	handler func(context.Context) error
}

func newConfig() *config {
	return &config{
		registry: newRegistry(),
		queues:   make(map[string]int),
	}
}

// Option configures a Manager.
type Option func(*config)

// WithTask registers a task handler. The task is matched structurally:
// it needs Name() and Handle(ctx, P), and the payload type P is
// inferred from the Handle signature.
//
//	type SendReceipt struct{ mailer mailer.Sender }
//
//	func (t *SendReceipt) Name() string { return "send_receipt" }
//	func (t *SendReceipt) Handle(ctx context.Context, p ReceiptPayload) error {
//	    return t.mailer.Send(ctx, ...)
//	}
func WithTask[P any, T interface {
	Name() string
	Handle(context.Context, P) error
}](task T) Option {
	return func(c *config) {
		c.registry.add(task.Name(), &typedExecutor[P, T]{task: task})
	}
}

// WithScheduledTask registers a periodic task. Schedule() returns a
// five-field cron expression (min hour dom month dow).
func WithScheduledTask[T interface {
	Name() string
	Schedule() string
	Handle(context.Context) error
}](task T) Option {
	return func(c *config) {
		c.schedules = append(c.schedules, schedule{
			name:    task.Name(),
			expr:    task.Schedule(),
			handler: task.Handle,
		})
	}
}

// WithQueue declares a named queue with its own worker count. Jobs land
// there via InQueue; everything else uses the default queue.
func WithQueue(name string, workers int) Option {
	return func(c *config) {
		if workers > 0 {
			c.queues[name] = workers
		}
	}
}

// WithLogger sets the logger for job processing. Silent by default.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxWorkers caps concurrency on the default queue. Defaults to 100.
func WithMaxWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxWorkers = n
		}
	}
}
