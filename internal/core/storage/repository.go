package storage

import (
	"context"

	v1 "github.com/fichron-lab/fichron/internal/api/v1"
)

// EventStore is the gateway to the single events table and its two secondary
// indexes. One index is keyed by propertyImdbId, the other by characterName.
// Result sets are assumed small; there is no pagination.
type EventStore interface {
	// PutEvent persists a fully resolved event record.
	PutEvent(ctx context.Context, event *v1.Event) error

	// QueryByPropertyID fetches all events for a canonical property IMDb ID.
	QueryByPropertyID(ctx context.Context, imdbID string) ([]*v1.Event, error)

	// QueryByCharacterName fetches all events for a character name. The index
	// is keyed by name alone, with no fiction scoping.
	QueryByCharacterName(ctx context.Context, characterName string) ([]*v1.Event, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error

	Close() error
}
