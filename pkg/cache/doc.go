// Package cache is a generic key-value cache with an in-memory and a
// Redis backend behind one interface.
//
// TTL semantics are shared by both backends: a positive duration
// expires the entry, zero applies the cache's default TTL (one hour
// unless configured), and a negative duration pins the entry until it
// is deleted or evicted.
//
// NewMemory builds a single-process cache with O(1) lookups, LRU
// eviction when WithMaxEntries caps the size, and a background sweeper
// for expired entries:
//
//	c := cache.NewMemory[Session](
//	    cache.WithDefaultTTL(5*time.Minute),
//	    cache.WithMaxEntries(10_000),
//	)
//	defer c.Close()
//
// NewRedis wraps an existing client from pkg/redis; values go through
// a Marshaler (nil means JSON), and WithPrefix namespaces keys so
// several caches can share a database:
//
//	client, err := redis.Connect(ctx, config.MustLoad[redis.Config]())
//	users := cache.NewRedis[User](client, nil, cache.WithPrefix("users"))
//
// GetOrSet is the look-aside helper: on a miss it runs the loader once
// per key via singleflight, caches the result, and hands it to every
// waiting caller. Misses surface as ErrNotFound; check sentinels with
// errors.Is.
package cache
