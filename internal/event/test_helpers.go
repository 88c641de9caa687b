package event

import (
	"context"

	v1 "github.com/fichron-lab/fichron/internal/api/v1"
)

// InMemoryEventStore is a test helper that implements storage.EventStore.
// Calls are counted so tests can assert the store was never touched on
// rejected input.
type InMemoryEventStore struct {
	Events []*v1.Event

	PutErr   error
	QueryErr error

	PutCalls   int
	QueryCalls int
}

func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{}
}

func (s *InMemoryEventStore) PutEvent(ctx context.Context, event *v1.Event) error {
	s.PutCalls++
	if s.PutErr != nil {
		return s.PutErr
	}
	s.Events = append(s.Events, event)
	return nil
}

func (s *InMemoryEventStore) QueryByPropertyID(ctx context.Context, imdbID string) ([]*v1.Event, error) {
	s.QueryCalls++
	if s.QueryErr != nil {
		return nil, s.QueryErr
	}
	var items []*v1.Event
	for _, evt := range s.Events {
		if evt.PropertyImdbID == imdbID {
			items = append(items, evt)
		}
	}
	return items, nil
}

func (s *InMemoryEventStore) QueryByCharacterName(ctx context.Context, characterName string) ([]*v1.Event, error) {
	s.QueryCalls++
	if s.QueryErr != nil {
		return nil, s.QueryErr
	}
	var items []*v1.Event
	for _, evt := range s.Events {
		if evt.CharacterName == characterName {
			items = append(items, evt)
		}
	}
	return items, nil
}

func (s *InMemoryEventStore) Ping(ctx context.Context) error { return nil }

func (s *InMemoryEventStore) Close() error { return nil }

// StaticMetadataClient is a test helper that implements MetadataClient.
type StaticMetadataClient struct {
	Details map[string]interface{}
	Err     error

	FetchCalls int
}

func (c *StaticMetadataClient) FetchDetails(ctx context.Context, imdbID string) (map[string]interface{}, error) {
	c.FetchCalls++
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Details, nil
}
