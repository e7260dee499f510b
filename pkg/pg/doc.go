// Package pg connects to PostgreSQL with pgx/v5 and applies goose migrations
// from an embedded filesystem.
//
//	cfg := config.MustLoad[pg.Config]()
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, ledger.Migrations, ledger.MigrationsDir, cfg, log); err != nil {
//		return err
//	}
//
// Healthcheck adapts the pool to a readiness probe.
package pg
