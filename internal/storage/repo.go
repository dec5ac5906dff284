// Package storage persists collection snapshots to SQLite so a session can
// resume where the previous one stopped. It hangs off the collection
// observers; the stores themselves never touch the database.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bookswap/internal/collection"
	"bookswap/internal/logger"
	"bookswap/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Save replaces the stored contents of s.Name with s.Books. Snapshots older
// than the stored version are ignored; saved reports whether s was written.
func (r *Repo) Save(ctx context.Context, s collection.Snapshot) (saved bool, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin save %s: %w", s.Name, err)
	}
	defer func() {
		if err != nil || !saved {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO collections (name, version, saved_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET
			version = excluded.version,
			saved_at = CURRENT_TIMESTAMP
		WHERE excluded.version > collections.version
	`, s.Name, s.Version)
	if err != nil {
		return false, fmt.Errorf("upsert collection %s: %w", s.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("upsert collection rows: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	if _, err = tx.ExecContext(ctx, `
		DELETE FROM collection_books WHERE collection = ?
	`, s.Name); err != nil {
		return false, fmt.Errorf("clear collection %s: %w", s.Name, err)
	}

	for i, b := range s.Books {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO collection_books
				(collection, position, id, title, author, category, condition, price, listing_type, status, contact)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, s.Name, i, b.ID, b.Title, b.Author, b.Category, b.Condition, b.Price,
			string(b.ListingType), string(b.Status), b.Contact); err != nil {
			return false, fmt.Errorf("insert book %s: %w", b.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("commit save %s: %w", s.Name, err)
	}
	return true, nil
}

// Load returns the last saved snapshot of the named collection. found is
// false when the collection was never saved.
func (r *Repo) Load(ctx context.Context, name string) (s collection.Snapshot, found bool, err error) {
	s.Name = name
	err = r.DB.QueryRowContext(ctx, `
		SELECT version FROM collections WHERE name = ?
	`, name).Scan(&s.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s, false, nil
		}
		return s, false, fmt.Errorf("load collection %s: %w", name, err)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, title, author, category, condition, price, listing_type, status, contact
		FROM collection_books
		WHERE collection = ?
		ORDER BY position ASC
	`, name)
	if err != nil {
		return s, false, fmt.Errorf("list collection %s: %w", name, err)
	}
	defer rows.Close()

	s.Books = make([]models.Book, 0)
	for rows.Next() {
		var (
			b           models.Book
			listingType string
			status      string
		)
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Category, &b.Condition, &b.Price,
			&listingType, &status, &b.Contact); err != nil {
			return s, false, fmt.Errorf("scan book row: %w", err)
		}
		b.ListingType = models.ListingType(listingType)
		b.Status = models.Status(status)
		s.Books = append(s.Books, b)
	}
	if err := rows.Err(); err != nil {
		return s, false, fmt.Errorf("rows err: %w", err)
	}

	return s, true, nil
}

// Restore returns the stored books for name together with the options that
// continue its version sequence, or fallback if nothing was saved.
func (r *Repo) Restore(ctx context.Context, name string, fallback []models.Book) ([]models.Book, []collection.Option, error) {
	s, found, err := r.Load(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	if !found {
		return fallback, nil, nil
	}
	return s.Books, []collection.Option{collection.WithVersion(s.Version)}, nil
}

// Recorder returns an observer that saves every snapshot. Failures are logged;
// the in-memory collection stays authoritative.
func (r *Repo) Recorder(ctx context.Context) collection.Observer {
	log := logger.Component("storage")
	return func(s collection.Snapshot) {
		saved, err := r.Save(ctx, s)
		if err != nil {
			log.Error().Err(err).Str("collection", s.Name).Uint64("version", s.Version).Msg("save snapshot failed")
			return
		}
		if !saved {
			log.Debug().Str("collection", s.Name).Uint64("version", s.Version).Msg("stale snapshot skipped")
		}
	}
}
