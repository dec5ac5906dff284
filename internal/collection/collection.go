// Package collection holds an ordered, named set of books keyed by id.
//
// The current contents are an immutable slice. Every mutation builds a new
// slice from the previous one and publishes it in a single swap, so readers
// never observe a half-applied change. Writers are serialized; the last
// mutation wins.
package collection

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"bookswap/pkg/models"
)

var ErrDuplicateID = errors.New("duplicate book id")

// Snapshot is the state of a collection after one mutation.
type Snapshot struct {
	Name    string        `json:"name"`
	Version uint64        `json:"version"`
	Books   []models.Book `json:"books"`
}

// Observer is called after every mutation that changed the collection.
// Observers run on the mutating goroutine, in mutation order.
type Observer func(Snapshot)

type state struct {
	version uint64
	books   []models.Book
}

type Collection struct {
	name string

	mu        sync.Mutex // serializes writers and observer registration
	cur       atomic.Pointer[state]
	observers []Observer
}

type Option func(*state)

// WithVersion starts the collection at version v instead of zero, so a
// collection restored from a saved snapshot keeps counting from there.
func WithVersion(v uint64) Option {
	return func(s *state) { s.version = v }
}

func New(name string, seed []models.Book, opts ...Option) (*Collection, error) {
	seen := make(map[string]struct{}, len(seed))
	for _, b := range seed {
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("seed %s: %w", name, err)
		}
		if _, dup := seen[b.ID]; dup {
			return nil, fmt.Errorf("seed %s: %w: %s", name, ErrDuplicateID, b.ID)
		}
		seen[b.ID] = struct{}{}
	}

	st := &state{books: slices.Clone(seed)}
	for _, opt := range opts {
		opt(st)
	}

	c := &Collection{name: name}
	c.cur.Store(st)
	return c, nil
}

func (c *Collection) Name() string { return c.name }

// List returns a copy of the current books in insertion order.
func (c *Collection) List() []models.Book {
	return slices.Clone(c.cur.Load().books)
}

func (c *Collection) Snapshot() Snapshot {
	s := c.cur.Load()
	return Snapshot{Name: c.name, Version: s.version, Books: slices.Clone(s.books)}
}

func (c *Collection) Len() int {
	return len(c.cur.Load().books)
}

func (c *Collection) Get(id string) (models.Book, bool) {
	books := c.cur.Load().books
	if i := indexOf(books, id); i >= 0 {
		return books[i], true
	}
	return models.Book{}, false
}

func (c *Collection) Subscribe(o Observer) {
	if o == nil {
		return
	}
	c.mu.Lock()
	c.observers = append(c.observers, o)
	c.mu.Unlock()
}

// Add appends b. It fails if b is invalid or its id is already present.
func (c *Collection) Add(b models.Book) ([]models.Book, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.cur.Load()
	if indexOf(prev.books, b.ID) >= 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, b.ID)
	}

	next := make([]models.Book, 0, len(prev.books)+1)
	next = append(next, prev.books...)
	next = append(next, b)
	return c.publish(prev, next), nil
}

// Update replaces the book with the given id by fn's result. An absent id, or
// an fn that changes the id or produces an invalid book, leaves the
// collection untouched; ok reports whether anything changed.
func (c *Collection) Update(id string, fn func(models.Book) models.Book) (books []models.Book, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.cur.Load()
	i := indexOf(prev.books, id)
	if i < 0 {
		return slices.Clone(prev.books), false
	}

	updated := fn(prev.books[i])
	if updated.ID != id || updated.Validate() != nil {
		return slices.Clone(prev.books), false
	}

	next := slices.Clone(prev.books)
	next[i] = updated
	return c.publish(prev, next), true
}

// Remove drops the book with the given id. Absent ids are a no-op.
func (c *Collection) Remove(id string) (books []models.Book, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.cur.Load()
	i := indexOf(prev.books, id)
	if i < 0 {
		return slices.Clone(prev.books), false
	}

	next := make([]models.Book, 0, len(prev.books)-1)
	next = append(next, prev.books[:i]...)
	next = append(next, prev.books[i+1:]...)
	return c.publish(prev, next), true
}

// publish must be called with mu held.
func (c *Collection) publish(prev *state, next []models.Book) []models.Book {
	s := &state{version: prev.version + 1, books: next}
	c.cur.Store(s)

	for _, o := range c.observers {
		o(Snapshot{Name: c.name, Version: s.version, Books: slices.Clone(next)})
	}
	return slices.Clone(next)
}

func indexOf(books []models.Book, id string) int {
	return slices.IndexFunc(books, func(b models.Book) bool { return b.ID == id })
}
