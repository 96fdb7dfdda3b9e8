// Package health provides HTTP handlers for liveness and readiness probes.
//
// [LivenessHandler] answers 200 as long as the process is running.
// [ReadinessHandler] runs a set of named [Checks] in parallel and answers
// 503 until every dependency passes. Both respond with JSON, matching the
// rest of the API surface.
//
// Applications normally mount the handlers through the app option:
//
//	app := fastendpoints.New(
//	    fastendpoints.WithHealthChecks(
//	        fastendpoints.WithReadinessCheck("postgres", db.Healthcheck(pool)),
//	        fastendpoints.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	    ),
//	)
//
// which serves /health/live and /health/ready. The handlers are plain
// http.HandlerFunc values, so they mount on any router as well:
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//	    "postgres": db.Healthcheck(pool),
//	    "redis":    redis.Healthcheck(client),
//	}, health.WithTimeout(3*time.Second)))
//
// A readiness response names each check with its latency:
//
//	{
//	  "status": "unhealthy",
//	  "checks": {
//	    "postgres": {"status": "healthy", "duration_ms": 2},
//	    "redis":    {"status": "unhealthy", "error": "connection refused", "duration_ms": 1}
//	  }
//	}
//
// Checks that outlive the shared deadline report [ErrCheckTimeout] instead
// of a raw context error.
package health
