package collection

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookswap/pkg/models"
)

func book(id string, status models.Status) models.Book {
	return models.Book{
		ID:          id,
		Title:       "Book " + id,
		Price:       10,
		ListingType: models.ListingSale,
		Status:      status,
	}
}

func TestNew_RejectsDuplicateIDs(t *testing.T) {
	t.Parallel()

	_, err := New("listings", []models.Book{
		book("1", models.StatusAvailable),
		book("1", models.StatusSold),
	})
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestNew_RejectsInvalidSeed(t *testing.T) {
	t.Parallel()

	bad := book("1", models.StatusAvailable)
	bad.Price = -5
	_, err := New("listings", []models.Book{bad})
	assert.ErrorIs(t, err, models.ErrInvalidBook)
}

func TestListIsACopy(t *testing.T) {
	t.Parallel()

	c, err := New("listings", []models.Book{book("1", models.StatusAvailable)})
	require.NoError(t, err)

	got := c.List()
	got[0].Status = models.StatusSold

	b, ok := c.Get("1")
	require.True(t, ok)
	assert.Equal(t, models.StatusAvailable, b.Status)
}

func TestAdd(t *testing.T) {
	t.Parallel()

	c, err := New("wishlist", nil)
	require.NoError(t, err)

	books, err := c.Add(book("1", models.StatusAvailable))
	require.NoError(t, err)
	assert.Len(t, books, 1)

	_, err = c.Add(book("1", models.StatusSold))
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Equal(t, 1, c.Len())
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	c, err := New("listings", []models.Book{
		book("1", models.StatusAvailable),
		book("2", models.StatusSold),
	})
	require.NoError(t, err)

	books, ok := c.Update("1", models.Book.WithToggledStatus)
	require.True(t, ok)
	assert.Equal(t, models.StatusSold, books[0].Status)
	assert.Equal(t, models.StatusSold, books[1].Status)

	_, ok = c.Update("missing", models.Book.WithToggledStatus)
	assert.False(t, ok)

	_, ok = c.Update("1", func(b models.Book) models.Book {
		b.ID = "other"
		return b
	})
	assert.False(t, ok, "id is immutable")

	_, ok = c.Update("1", func(b models.Book) models.Book {
		b.Status = "Reserved"
		return b
	})
	assert.False(t, ok, "invalid result is rejected")
	assert.Equal(t, uint64(1), c.Snapshot().Version)
}

func TestRemove(t *testing.T) {
	t.Parallel()

	c, err := New("listings", []models.Book{
		book("1", models.StatusAvailable),
		book("2", models.StatusSold),
		book("3", models.StatusSold),
	})
	require.NoError(t, err)

	books, ok := c.Remove("2")
	require.True(t, ok)
	require.Len(t, books, 2)
	assert.Equal(t, "1", books[0].ID)
	assert.Equal(t, "3", books[1].ID)

	before := c.List()
	books, ok = c.Remove("2")
	assert.False(t, ok)
	assert.Equal(t, before, books)
}

func TestObserversSeeEveryChangeInOrder(t *testing.T) {
	t.Parallel()

	c, err := New("listings", []models.Book{book("1", models.StatusAvailable)})
	require.NoError(t, err)

	var got []Snapshot
	c.Subscribe(func(s Snapshot) { got = append(got, s) })

	c.Update("1", models.Book.WithToggledStatus)
	c.Remove("missing")
	_, err = c.Add(book("2", models.StatusAvailable))
	require.NoError(t, err)
	c.Remove("1")

	require.Len(t, got, 3, "no-ops are not published")
	for i, s := range got {
		assert.Equal(t, "listings", s.Name)
		assert.Equal(t, uint64(i+1), s.Version)
	}
	assert.Equal(t, []models.Book{book("2", models.StatusAvailable)}, got[2].Books)
}

func TestConcurrentWritersDoNotLoseUpdates(t *testing.T) {
	t.Parallel()

	c, err := New("wishlist", nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = c.Add(book(string(rune('A'+i)), models.StatusAvailable))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, c.Len())
	assert.Equal(t, uint64(50), c.Snapshot().Version)
}

func TestWithVersion(t *testing.T) {
	t.Parallel()

	c, err := New("listings", []models.Book{book("1", models.StatusAvailable)}, WithVersion(41))
	require.NoError(t, err)
	assert.Equal(t, uint64(41), c.Snapshot().Version)

	c.Update("1", models.Book.WithToggledStatus)
	assert.Equal(t, uint64(42), c.Snapshot().Version)
}
