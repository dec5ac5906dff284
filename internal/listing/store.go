package listing

import (
	"bookswap/internal/collection"
	"bookswap/internal/confirm"
	"bookswap/pkg/models"
)

const CollectionName = "listings"

// DeletePrompt is shown before a listing is removed.
var DeletePrompt = confirm.Prompt{
	Title:   "Delete Listing",
	Message: "Are you sure you want to delete this listing?",
}

// Store holds the books the current user has posted, in insertion order.
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

// Add posts a listing built by the caller.
func (s *Store) Add(b models.Book) ([]models.Book, error) {
	return s.books.Add(b)
}

// ToggleStatus flips Available/Sold on the listing with the given id and
// returns the resulting listings. Unknown ids leave everything unchanged.
func (s *Store) ToggleStatus(id string) []models.Book {
	books, _ := s.books.Update(id, models.Book.WithToggledStatus)
	return books
}

// Delete asks c before removing the listing. Only the confirm path removes
// it; a cancel, or a nil confirmer, changes nothing. done, if set, receives
// the listings once the decision is made. Unknown ids skip the prompt.
func (s *Store) Delete(id string, c confirm.Confirmer, done func([]models.Book)) {
	finish := func(books []models.Book) {
		if done != nil {
			done(books)
		}
	}

	if _, ok := s.books.Get(id); !ok || c == nil {
		finish(s.books.List())
		return
	}

	c.Confirm(DeletePrompt,
		func() {
			books, _ := s.books.Remove(id)
			finish(books)
		},
		func() { finish(s.books.List()) },
	)
}
