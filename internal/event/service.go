// Package event orchestrates event creation and retrieval: registry
// resolution, payload validation, persistence, and optional metadata
// enrichment.
package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	v1 "github.com/fichron-lab/fichron/internal/api/v1"
	"github.com/fichron-lab/fichron/internal/core/storage"
	"github.com/fichron-lab/fichron/internal/fiction"
)

// ErrInvalidEvent marks a create payload that failed validation.
var ErrInvalidEvent = errors.New("invalid event payload")

// MetadataClient fetches third-party property details by IMDb ID.
// Errors are non-fatal to callers: they degrade the response to "no details".
type MetadataClient interface {
	FetchDetails(ctx context.Context, imdbID string) (map[string]interface{}, error)
}

type Service struct {
	registry *fiction.Registry
	store    storage.EventStore
	metadata MetadataClient

	// Overridable for tests.
	nowFn func() time.Time
	newID func() string
}

func NewService(reg *fiction.Registry, store storage.EventStore, metadata MetadataClient) *Service {
	if reg == nil {
		panic("event: registry must not be nil")
	}
	if store == nil {
		panic("event: store must not be nil")
	}
	if metadata == nil {
		panic("event: metadata client must not be nil")
	}
	return &Service{
		registry: reg,
		store:    store,
		metadata: metadata,
		nowFn:    time.Now,
		newID:    uuid.NewString,
	}
}

// CreateEvent validates and persists one event. The property token resolves
// to its canonical IMDb ID before anything touches the store; an event is
// never written with an unresolved property.
func (s *Service) CreateEvent(ctx context.Context, fictionName, propertyToken string, req *v1.CreateEventRequest) (*v1.Event, error) {
	imdbID, err := s.registry.Resolve(fictionName, propertyToken)
	if err != nil {
		return nil, err
	}

	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	occurred, err := v1.ParseEventTime(req.EventDateAndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	now := s.nowFn().UTC().Format(time.RFC3339)
	evt := &v1.Event{
		ID:               s.newID(),
		FictionName:      fictionName,
		PropertyImdbID:   imdbID,
		CharacterName:    req.CharacterName,
		EventDateAndTime: occurred.Format(time.RFC3339),
		EventType:        req.EventType,
		Created:          now,
		Modified:         now,
	}

	if err := s.store.PutEvent(ctx, evt); err != nil {
		slog.Error("Failed to persist event", "error", err, "event_id", evt.ID)
		return nil, fmt.Errorf("persist event: %w", err)
	}

	slog.Info("Created event",
		"event_id", evt.ID,
		"fiction", fictionName,
		"property_imdb_id", imdbID,
		"event_type", evt.EventType)
	return evt, nil
}

// GetEventsByProperty resolves the property token and queries its index.
// When withDetails is set, the index query and the metadata fetch run
// concurrently; a metadata failure only leaves PropertyDetails absent.
func (s *Service) GetEventsByProperty(ctx context.Context, fictionName, propertyToken string, withDetails bool) (*v1.EventListResponse, error) {
	imdbID, err := s.registry.Resolve(fictionName, propertyToken)
	if err != nil {
		return nil, err
	}

	if !withDetails {
		items, err := s.store.QueryByPropertyID(ctx, imdbID)
		if err != nil {
			slog.Error("Failed to query events by property", "error", err, "property_imdb_id", imdbID)
			return nil, fmt.Errorf("query events by property: %w", err)
		}
		return &v1.EventListResponse{Items: nonNil(items)}, nil
	}

	var (
		items   []*v1.Event
		details map[string]interface{}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.store.QueryByPropertyID(gctx, imdbID)
		if err != nil {
			slog.Error("Failed to query events by property", "error", err, "property_imdb_id", imdbID)
			return fmt.Errorf("query events by property: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		d, err := s.metadata.FetchDetails(gctx, imdbID)
		if err != nil {
			slog.Warn("Property details unavailable", "error", err, "property_imdb_id", imdbID)
			return nil
		}
		details = d
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &v1.EventListResponse{Items: nonNil(items), PropertyDetails: details}, nil
}

// GetEventsByCharacter checks the fiction against the allow-list, then queries
// the character-name index.
//
// The index is keyed by name alone, so fictions sharing a character name have
// their events merged in this result. Scoping it per fiction needs a product
// decision on the index shape first.
func (s *Service) GetEventsByCharacter(ctx context.Context, fictionName, characterName string) (*v1.EventListResponse, error) {
	if _, ok := s.registry.Load(fictionName); !ok {
		return nil, fmt.Errorf("%w: %q", fiction.ErrUnknownFiction, fictionName)
	}

	items, err := s.store.QueryByCharacterName(ctx, characterName)
	if err != nil {
		slog.Error("Failed to query events by character", "error", err, "character_name", characterName)
		return nil, fmt.Errorf("query events by character: %w", err)
	}

	return &v1.EventListResponse{Items: nonNil(items)}, nil
}

// nonNil keeps empty result sets as [] rather than null in JSON responses.
func nonNil(items []*v1.Event) []*v1.Event {
	if items == nil {
		return []*v1.Event{}
	}
	return items
}
