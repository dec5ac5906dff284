package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_EnvOverride(t *testing.T) {
	t.Setenv("BOOKSWAP_DB_PATH", "/tmp/custom.db")

	cfg := DefaultConfig()
	assert.Equal(t, "/tmp/custom.db", cfg.Path)
	assert.Equal(t, 5*time.Second, cfg.BusyTimeout)
}

func TestConfig_DSN(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"/data/bookswap.db?_busy_timeout=250&_foreign_keys=on&_journal_mode=WAL",
		Config{Path: "/data/bookswap.db", BusyTimeout: 250 * time.Millisecond}.DSN())
	assert.Equal(t,
		"/data/bookswap.db?_foreign_keys=on&_journal_mode=WAL",
		Config{Path: "/data/bookswap.db"}.DSN())
}

func TestOpen_RejectsEmptyPath(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), Config{})
	assert.Error(t, err)
}

func TestOpenAndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data.db")

	db, err := Open(context.Background(), Config{Path: path})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db), "migrations are idempotent")

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM collections`).Scan(&n))
	assert.Equal(t, 0, n)

	var fk int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)

	var mode string
	require.NoError(t, db.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)
}
