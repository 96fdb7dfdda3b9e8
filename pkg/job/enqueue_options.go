package job

import "time"

type enqueueConfig struct {
	queue       string
	scheduledAt *time.Time
	maxAttempts int
	priority    int
	tags        []string
	uniqueFor   time.Duration
	uniqueKey   string
}

// EnqueueOption adjusts how a single job is inserted.
type EnqueueOption func(*enqueueConfig)

// InQueue routes the job to a named queue instead of the default one.
func InQueue(name string) EnqueueOption {
	return func(c *enqueueConfig) {
		if name != "" {
			c.queue = name
		}
	}
}

// ScheduledAt delays the job until a specific time.
func ScheduledAt(t time.Time) EnqueueOption {
	return func(c *enqueueConfig) {
		c.scheduledAt = &t
	}
}

// ScheduledIn delays the job by a duration from now.
func ScheduledIn(d time.Duration) EnqueueOption {
	return func(c *enqueueConfig) {
		t := time.Now().Add(d)
		c.scheduledAt = &t
	}
}

// MaxAttempts caps retries for this job. River's default is 25.
func MaxAttempts(n int) EnqueueOption {
	return func(c *enqueueConfig) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// Priority orders processing; lower values run first. Defaults to 1.
func Priority(p int) EnqueueOption {
	return func(c *enqueueConfig) {
		c.priority = p
	}
}

// Tags attaches metadata tags for filtering and monitoring.
func Tags(tags ...string) EnqueueOption {
	return func(c *enqueueConfig) {
		c.tags = append(c.tags, tags...)
	}
}

// UniqueFor deduplicates: while a job with the same task name (and
// UniqueKey, if set) exists within the period, new inserts are skipped.
//
//	c.Enqueue("send_password_reset", payload,
//	    job.UniqueFor(time.Hour),
//	    job.UniqueKey(userID))
func UniqueFor(d time.Duration) EnqueueOption {
	return func(c *enqueueConfig) {
		c.uniqueFor = d
	}
}

// UniqueKey narrows UniqueFor deduplication to a caller-chosen key.
func UniqueKey(key string) EnqueueOption {
	return func(c *enqueueConfig) {
		c.uniqueKey = key
	}
}
