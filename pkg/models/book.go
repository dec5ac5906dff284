package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrInvalidBook = errors.New("invalid book")

type Status string

const (
	StatusAvailable Status = "Available"
	StatusSold      Status = "Sold"
)

// ParseStatus normalizes user input ("sold", " AVAILABLE ") into a Status.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "available":
		return StatusAvailable, nil
	case "sold":
		return StatusSold, nil
	default:
		return "", fmt.Errorf("status must be one of: Available, Sold (got %q)", s)
	}
}

func (s Status) Valid() bool {
	return s == StatusAvailable || s == StatusSold
}

// Toggle flips Available and Sold. There is no third state.
func (s Status) Toggle() Status {
	if s == StatusAvailable {
		return StatusSold
	}
	return StatusAvailable
}

// ToggleLabel is the action a view offers for a listing in this status.
func (s Status) ToggleLabel() string {
	if s == StatusAvailable {
		return "Mark Sold"
	}
	return "Mark Available"
}

type ListingType string

const (
	ListingSale     ListingType = "Sale"
	ListingDonation ListingType = "Donation"
)

func ParseListingType(s string) (ListingType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sale":
		return ListingSale, nil
	case "donation":
		return ListingDonation, nil
	default:
		return "", fmt.Errorf("listing_type must be one of: Sale, Donation (got %q)", s)
	}
}

func (t ListingType) Valid() bool {
	return t == ListingSale || t == ListingDonation
}

// Book is a single listing. Only Status is ever changed after creation.
type Book struct {
	ID          string      `json:"id" yaml:"id"`
	Title       string      `json:"title" yaml:"title"`
	Author      string      `json:"author" yaml:"author"`
	Category    string      `json:"category" yaml:"category"`
	Condition   string      `json:"condition" yaml:"condition"` // opaque, e.g. "Good", "Like New"
	Price       float64     `json:"price" yaml:"price"`         // 0 means free/donation
	ListingType ListingType `json:"listing_type" yaml:"listing_type"`
	Status      Status      `json:"status" yaml:"status"`
	Contact     string      `json:"contact" yaml:"contact"`
}

func (b Book) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return fmt.Errorf("%w: id required", ErrInvalidBook)
	}
	if math.IsNaN(b.Price) || math.IsInf(b.Price, 0) || b.Price < 0 {
		return fmt.Errorf("%w: price must be >= 0", ErrInvalidBook)
	}
	if !b.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidBook, b.Status)
	}
	if !b.ListingType.Valid() {
		return fmt.Errorf("%w: unknown listing type %q", ErrInvalidBook, b.ListingType)
	}
	return nil
}

func (b Book) WithToggledStatus() Book {
	b.Status = b.Status.Toggle()
	return b
}

// HasPrice reports whether a price should be shown. A zero price on a Sale
// listing is indistinguishable from an omitted one.
func (b Book) HasPrice() bool {
	return b.Price > 0
}
