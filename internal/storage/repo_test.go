package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookswap/internal/collection"
	"bookswap/internal/listing"
	"bookswap/pkg/database"
	"bookswap/pkg/models"
)

func newRepo(t *testing.T) *Repo {
	t.Helper()

	db, err := database.Open(context.Background(), database.Config{Path: filepath.Join(t.TempDir(), "data.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))
	return NewRepo(db)
}

func books() []models.Book {
	return []models.Book{
		{ID: "1", Title: "Introduction to Algorithms", Price: 45, ListingType: models.ListingSale, Status: models.StatusAvailable, Contact: "john@example.com"},
		{ID: "2", Title: "Database Systems", Price: 30, ListingType: models.ListingSale, Status: models.StatusSold, Contact: "john@example.com"},
	}
}

func TestLoad_NeverSaved(t *testing.T) {
	repo := newRepo(t)

	_, found, err := repo.Load(context.Background(), "listings")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSaveAndLoad_PreservesOrder(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	in := books()
	in[0], in[1] = in[1], in[0]

	saved, err := repo.Save(ctx, collection.Snapshot{Name: "listings", Version: 1, Books: in})
	require.NoError(t, err)
	assert.True(t, saved)

	got, found, err := repo.Load(ctx, "listings")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, uint64(1), got.Version)
	assert.Equal(t, in, got.Books)
}

func TestSave_IgnoresStaleVersions(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	_, err := repo.Save(ctx, collection.Snapshot{Name: "listings", Version: 2, Books: books()[:1]})
	require.NoError(t, err)

	saved, err := repo.Save(ctx, collection.Snapshot{Name: "listings", Version: 1, Books: books()})
	require.NoError(t, err)
	assert.False(t, saved)

	got, _, err := repo.Load(ctx, "listings")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), got.Version)
	assert.Len(t, got.Books, 1)
}

func TestSave_EmptyCollectionIsRemembered(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	_, err := repo.Save(ctx, collection.Snapshot{Name: "wishlist", Version: 3, Books: nil})
	require.NoError(t, err)

	seed, opts, err := repo.Restore(ctx, "wishlist", books())
	require.NoError(t, err)
	assert.Empty(t, seed, "a saved empty wishlist must not fall back to the seed")
	assert.Len(t, opts, 1)
}

func TestRecorder_ResumesAcrossSessions(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	seed, opts, err := repo.Restore(ctx, listing.CollectionName, books())
	require.NoError(t, err)
	assert.Empty(t, opts)

	first, err := listing.NewStore(seed, opts...)
	require.NoError(t, err)
	first.Subscribe(repo.Recorder(ctx))
	first.ToggleStatus("1")

	seed, opts, err = repo.Restore(ctx, listing.CollectionName, books())
	require.NoError(t, err)
	second, err := listing.NewStore(seed, opts...)
	require.NoError(t, err)
	second.Subscribe(repo.Recorder(ctx))

	assert.Equal(t, models.StatusSold, second.List()[0].Status)
	assert.Equal(t, uint64(1), second.Snapshot().Version)

	second.ToggleStatus("2")
	got, _, err := repo.Load(ctx, listing.CollectionName)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), got.Version)
	assert.Equal(t, models.StatusAvailable, got.Books[1].Status)
}
