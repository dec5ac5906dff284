package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBook() Book {
	return Book{
		ID:          "1",
		Title:       "Introduction to Algorithms",
		Author:      "Cormen, Leiserson",
		Category:    "Computer Science",
		Condition:   "Good",
		Price:       45,
		ListingType: ListingSale,
		Status:      StatusAvailable,
		Contact:     "john@example.com",
	}
}

func TestStatusToggle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, StatusSold, StatusAvailable.Toggle())
	assert.Equal(t, StatusAvailable, StatusSold.Toggle())
	assert.Equal(t, "Mark Sold", StatusAvailable.ToggleLabel())
	assert.Equal(t, "Mark Available", StatusSold.ToggleLabel())
}

func TestParseStatus(t *testing.T) {
	t.Parallel()

	s, err := ParseStatus(" sold ")
	require.NoError(t, err)
	assert.Equal(t, StatusSold, s)

	s, err = ParseStatus("AVAILABLE")
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, s)

	_, err = ParseStatus("reserved")
	assert.Error(t, err)
}

func TestParseListingType(t *testing.T) {
	t.Parallel()

	lt, err := ParseListingType("donation")
	require.NoError(t, err)
	assert.Equal(t, ListingDonation, lt)

	_, err = ParseListingType("auction")
	assert.Error(t, err)
}

func TestWithToggledStatus(t *testing.T) {
	t.Parallel()

	b := sampleBook()
	toggled := b.WithToggledStatus()

	assert.Equal(t, StatusSold, toggled.Status)
	toggled.Status = b.Status
	assert.Equal(t, b, toggled, "only status may change")

	assert.Equal(t, b, b.WithToggledStatus().WithToggledStatus())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Book)
		ok     bool
	}{
		{name: "valid", mutate: func(*Book) {}, ok: true},
		{name: "free donation", mutate: func(b *Book) { b.Price = 0; b.ListingType = ListingDonation }, ok: true},
		{name: "blank id", mutate: func(b *Book) { b.ID = "  " }},
		{name: "negative price", mutate: func(b *Book) { b.Price = -1 }},
		{name: "nan price", mutate: func(b *Book) { b.Price = math.NaN() }},
		{name: "unknown status", mutate: func(b *Book) { b.Status = "Reserved" }},
		{name: "missing listing type", mutate: func(b *Book) { b.ListingType = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := sampleBook()
			tt.mutate(&b)
			err := b.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidBook)
		})
	}
}

func TestHasPrice(t *testing.T) {
	t.Parallel()

	b := sampleBook()
	assert.True(t, b.HasPrice())
	b.Price = 0
	assert.False(t, b.HasPrice())
}
