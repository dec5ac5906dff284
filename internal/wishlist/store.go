package wishlist

import (
	"bookswap/internal/collection"
	"bookswap/pkg/models"
)

const CollectionName = "wishlist"

// Store holds the books the current user bookmarked from other users'
// listings. Entries are references: they are added or removed, never toggled.
type Store struct {
	books *collection.Collection
}

func NewStore(seed []models.Book, opts ...collection.Option) (*Store, error) {
	c, err := collection.New(CollectionName, seed, opts...)
	if err != nil {
		return nil, err
	}
	return &Store{books: c}, nil
}

func (s *Store) List() []models.Book {
	return s.books.List()
}

func (s *Store) Snapshot() collection.Snapshot {
	return s.books.Snapshot()
}

func (s *Store) Get(id string) (models.Book, bool) {
	return s.books.Get(id)
}

func (s *Store) Subscribe(o collection.Observer) {
	s.books.Subscribe(o)
}

// Add bookmarks a listing.
func (s *Store) Add(b models.Book) ([]models.Book, error) {
	return s.books.Add(b)
}

// Remove drops the bookmark immediately; the listing it points at is not
// affected. Unknown ids are a no-op.
func (s *Store) Remove(id string) []models.Book {
	books, _ := s.books.Remove(id)
	return books
}
