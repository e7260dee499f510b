package pg_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatchkit/pkg/ledger"
	"github.com/dmitrymomot/dispatchkit/pkg/pg"
)

func TestConnect_BadConnectionString(t *testing.T) {
	t.Parallel()

	_, err := pg.Connect(t.Context(), pg.Config{ConnectionString: "://nope", RetryAttempts: 1})
	assert.ErrorIs(t, err, pg.ErrParseConfig)
}

func TestConnectAndMigrate(t *testing.T) {
	dsn := os.Getenv("PG_TEST_URL")
	if dsn == "" {
		t.Skip("PG_TEST_URL not set")
	}

	cfg := pg.Config{ConnectionString: dsn, MaxConns: 4, MinConns: 1, RetryAttempts: 1}
	pool, err := pg.Connect(t.Context(), cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pg.Migrate(t.Context(), pool, ledger.Migrations, ledger.MigrationsDir, cfg, nil))
	require.NoError(t, pg.Healthcheck(pool)(t.Context()))

	var exists bool
	err = pool.QueryRow(t.Context(),
		"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'delivery_ledger')",
	).Scan(&exists)
	require.NoError(t, err)
	assert.True(t, exists)
}
