// Package seed provides the records both stores start a session with.
package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"bookswap/pkg/models"
)

type Seed struct {
	Listings []models.Book `yaml:"listings"`
	Wishlist []models.Book `yaml:"wishlist"`
}

// Default is the demo session: two listings of the current user and two
// bookmarks of other users' books.
func Default() Seed {
	return Seed{
		Listings: []models.Book{
			{
				ID:          "1",
				Title:       "Introduction to Algorithms",
				Author:      "Cormen, Leiserson",
				Category:    "Computer Science",
				Condition:   "Good",
				Price:       45,
				ListingType: models.ListingSale,
				Status:      models.StatusAvailable,
				Contact:     "john@example.com",
			},
			{
				ID:          "2",
				Title:       "Database Systems",
				Author:      "Ramakrishnan",
				Category:    "Computer Science",
				Condition:   "Fair",
				Price:       30,
				ListingType: models.ListingSale,
				Status:      models.StatusSold,
				Contact:     "john@example.com",
			},
		},
		Wishlist: []models.Book{
			{
				ID:          "3",
				Title:       "Design Patterns",
				Author:      "Gang of Four",
				Category:    "Computer Science",
				Condition:   "Good",
				Price:       50,
				ListingType: models.ListingSale,
				Status:      models.StatusAvailable,
				Contact:     "alice@example.com",
			},
			{
				ID:          "4",
				Title:       "Clean Code",
				Author:      "Robert Martin",
				Category:    "Computer Science",
				Condition:   "Like New",
				Price:       0,
				ListingType: models.ListingDonation,
				Status:      models.StatusAvailable,
				Contact:     "bob@example.com",
			},
		},
	}
}

// Load reads a YAML seed file. An empty path yields Default.
func Load(path string) (Seed, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed file %q: %w", path, err)
	}

	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Seed{}, fmt.Errorf("parse seed file %q: %w", path, err)
	}

	// YAML authors write "sold" or "donation"; normalize before validation.
	for _, books := range [][]models.Book{s.Listings, s.Wishlist} {
		for i := range books {
			if st, err := models.ParseStatus(string(books[i].Status)); err == nil {
				books[i].Status = st
			}
			if lt, err := models.ParseListingType(string(books[i].ListingType)); err == nil {
				books[i].ListingType = lt
			}
		}
	}
	return s, nil
}
