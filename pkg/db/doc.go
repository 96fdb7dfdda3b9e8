// Package db wires PostgreSQL into the framework: a pgx connection
// pool with startup retry, goose migrations, a transaction helper, and
// ready-made readiness and shutdown hooks.
//
// Configuration comes from DATABASE_* environment variables (see
// [Config]); load it with config.Load and pass the result to [Connect]:
//
//	cfg, _ := config.Load[db.Config]()
//	pool, err := db.Connect(ctx, cfg)
//	...
//	app := fastendpoints.New(
//	    fastendpoints.WithHealth(
//	        fastendpoints.WithReadinessCheck("db", db.Healthcheck(pool)),
//	    ),
//	    fastendpoints.WithShutdownHook(db.Shutdown(pool)),
//	)
package db
