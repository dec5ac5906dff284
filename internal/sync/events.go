package sync

import (
	"encoding/json"
	"time"

	"bookswap/internal/collection"
	"bookswap/pkg/models"
)

// SnapshotEvent is pushed to every listener after a collection changes.
// Version grows by one per mutation. A client may see the same version twice
// when it connects while a change is in flight.
type SnapshotEvent struct {
	Type       string        `json:"type"` // "listings.snapshot" or "wishlist.snapshot"
	Collection string        `json:"collection"`
	Version    uint64        `json:"version"`
	Books      []models.Book `json:"books"`
	At         time.Time     `json:"at"`
}

func NewSnapshotEvent(s collection.Snapshot) SnapshotEvent {
	return SnapshotEvent{
		Type:       s.Name + ".snapshot",
		Collection: s.Name,
		Version:    s.Version,
		Books:      s.Books,
		At:         time.Now().UTC(),
	}
}

// line encodes ev as one newline-terminated JSON line.
func (ev SnapshotEvent) line() ([]byte, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}
