package v1

import (
	"fmt"
	"time"
)

// Event is the persisted record for a single character moment within a fiction.
//
// Timestamps are stored as RFC3339 UTC strings so the record layout is stable
// across store backends. The dynamodbav tags double as the attribute names the
// secondary indexes are keyed on.
type Event struct {
	// ID is assigned by the service on creation and never changes.
	ID string `json:"id" dynamodbav:"id"`

	// FictionName is the universe this event belongs to, taken from the
	// request path, never from the body.
	FictionName string `json:"fictionName" dynamodbav:"fictionName"`

	// PropertyImdbID is the canonical external identifier of the associated
	// property. It is resolved server-side against the fiction registry;
	// raw client input is never stored here.
	PropertyImdbID string `json:"propertyImdbId" dynamodbav:"propertyImdbId"`

	CharacterName string `json:"characterName" dynamodbav:"characterName"`

	// EventDateAndTime is the client-supplied moment, normalized to RFC3339 UTC.
	EventDateAndTime string `json:"eventDateAndTime" dynamodbav:"eventDateAndTime"`

	EventType string `json:"eventType" dynamodbav:"eventType"`

	// Created and Modified are stamped identically at write time. No update
	// path exists, so they never diverge in practice.
	Created  string `json:"created" dynamodbav:"created"`
	Modified string `json:"modified" dynamodbav:"modified"`
}

// CreateEventRequest is the POST body for event creation. The fiction and
// property come from the request path, not the body.
type CreateEventRequest struct {
	CharacterName    string `json:"characterName"`
	EventDateAndTime string `json:"eventDateAndTime"`
	EventType        string `json:"eventType"`
}

// eventTimeLayouts are the accepted forms for eventDateAndTime. Date-only
// values are normalized to midnight UTC.
var eventTimeLayouts = []string{time.RFC3339, "2006-01-02"}

// ParseEventTime parses a client-supplied event timestamp and normalizes it to UTC.
func ParseEventTime(s string) (time.Time, error) {
	for _, layout := range eventTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("eventDateAndTime %q is not RFC3339 or YYYY-MM-DD", s)
}

// Validate ensures the request has all required fields and a parseable timestamp.
func (r *CreateEventRequest) Validate() error {
	if r.CharacterName == "" {
		return fmt.Errorf("characterName is required")
	}

	if r.EventDateAndTime == "" {
		return fmt.Errorf("eventDateAndTime is required")
	}

	if r.EventType == "" {
		return fmt.Errorf("eventType is required")
	}

	if _, err := ParseEventTime(r.EventDateAndTime); err != nil {
		return err
	}

	return nil
}

// EventListResponse is the body of both query endpoints. PropertyDetails is
// only present on property queries when details were requested and the
// metadata fetch succeeded.
type EventListResponse struct {
	Items           []*Event               `json:"items"`
	PropertyDetails map[string]interface{} `json:"propertyDetails,omitempty"`
}
