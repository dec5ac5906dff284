package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const envPath = "BOOKSWAP_DB_PATH"

// Config locates the snapshot database.
type Config struct {
	Path string
	// BusyTimeout is how long SQLite waits on a locked database before
	// failing. Zero leaves the driver default.
	BusyTimeout time.Duration
}

func DefaultConfig() Config {
	cfg := Config{BusyTimeout: 5 * time.Second}
	if p := os.Getenv(envPath); p != "" {
		cfg.Path = p
		return cfg
	}

	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	cfg.Path = filepath.Join(home, ".bookswap", "data.db")
	return cfg
}

// DSN is the go-sqlite3 connection string for cfg. Foreign keys and WAL are
// set per connection by the driver.
func (cfg Config) DSN() string {
	q := url.Values{}
	q.Set("_foreign_keys", "on")
	q.Set("_journal_mode", "WAL")
	if cfg.BusyTimeout > 0 {
		q.Set("_busy_timeout", strconv.FormatInt(cfg.BusyTimeout.Milliseconds(), 10))
	}
	return cfg.Path + "?" + q.Encode()
}

// Open creates the data directory and opens the database on a single
// connection. Snapshot saves are serialized per collection and never overlap
// with long reads.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("open sqlite: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", cfg.Path, err)
	}
	return db, nil
}
