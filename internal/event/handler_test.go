package event

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	v1 "github.com/fichron-lab/fichron/internal/api/v1"
	httperr "github.com/fichron-lab/fichron/internal/core/errors"
	"github.com/fichron-lab/fichron/internal/fiction"
)

func newTestRouter(t *testing.T, store *InMemoryEventStore, metadata *StaticMetadataClient) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry, err := fiction.NewRegistry("")
	require.NoError(t, err)

	svc := NewService(registry, store, metadata)
	svc.nowFn = func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }

	r := gin.New()
	svc.RegisterRoutes(r)
	return r
}

func TestCreateEventHandler_Created(t *testing.T) {
	store := NewInMemoryEventStore()
	r := newTestRouter(t, store, &StaticMetadataClient{})

	body, _ := json.Marshal(v1.CreateEventRequest{
		CharacterName:    "Tony Stark",
		EventDateAndTime: "2010-05-07",
		EventType:        "appearance",
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/fictions/marvel/properties/Iron%20Man/events", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code)

	var evt v1.Event
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &evt))
	require.Equal(t, "tt0371746", evt.PropertyImdbID)
	require.Equal(t, "marvel", evt.FictionName)
	require.NotEmpty(t, evt.ID)
	require.Len(t, store.Events, 1)
}

func TestCreateEventHandler_UnknownPropertyNothingPersisted(t *testing.T) {
	store := NewInMemoryEventStore()
	r := newTestRouter(t, store, &StaticMetadataClient{})

	body, _ := json.Marshal(v1.CreateEventRequest{
		CharacterName:    "Tony Stark",
		EventDateAndTime: "2010-05-07",
		EventType:        "appearance",
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/fictions/marvel/properties/Unknown%20Movie/events", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)

	var errResp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	require.Equal(t, httperr.HttpUnknownPropertyError, errResp.ErrorType)
	require.Zero(t, store.PutCalls)
}

func TestCreateEventHandler_UnknownFiction(t *testing.T) {
	store := NewInMemoryEventStore()
	r := newTestRouter(t, store, &StaticMetadataClient{})

	body, _ := json.Marshal(v1.CreateEventRequest{
		CharacterName:    "Tony Stark",
		EventDateAndTime: "2010-05-07",
		EventType:        "appearance",
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/fictions/narnia/properties/Iron%20Man/events", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)

	var errResp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	require.Equal(t, httperr.HttpUnknownFictionError, errResp.ErrorType)
}

func TestCreateEventHandler_InvalidJSON(t *testing.T) {
	store := NewInMemoryEventStore()
	r := newTestRouter(t, store, &StaticMetadataClient{})

	req := httptest.NewRequest(http.MethodPost, "/v1/fictions/marvel/properties/Iron%20Man/events", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)

	var errResp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	require.Equal(t, httperr.HttpInvalidJsonError, errResp.ErrorType)
}

func TestCreateEventHandler_MissingFieldsRejected(t *testing.T) {
	store := NewInMemoryEventStore()
	r := newTestRouter(t, store, &StaticMetadataClient{})

	body, _ := json.Marshal(v1.CreateEventRequest{CharacterName: "Tony Stark"})

	req := httptest.NewRequest(http.MethodPost, "/v1/fictions/marvel/properties/Iron%20Man/events", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)

	var errResp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	require.Equal(t, httperr.HttpValidationError, errResp.ErrorType)
	require.Zero(t, store.PutCalls)
}

func TestCreateEventHandler_StoreFailureIs500(t *testing.T) {
	store := NewInMemoryEventStore()
	store.PutErr = errors.New("table unavailable")
	r := newTestRouter(t, store, &StaticMetadataClient{})

	body, _ := json.Marshal(v1.CreateEventRequest{
		CharacterName:    "Tony Stark",
		EventDateAndTime: "2010-05-07",
		EventType:        "appearance",
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/fictions/marvel/properties/Iron%20Man/events", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusInternalServerError, resp.Code)

	var errResp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	require.Equal(t, httperr.HttpInternalError, errResp.ErrorType)
}

func TestListEventsByPropertyHandler_ReturnsItems(t *testing.T) {
	store := NewInMemoryEventStore()
	store.Events = []*v1.Event{
		{ID: "1", FictionName: "marvel", PropertyImdbID: "tt0371746", CharacterName: "Tony Stark"},
	}
	r := newTestRouter(t, store, &StaticMetadataClient{})

	req := httptest.NewRequest(http.MethodGet, "/v1/fictions/marvel/properties/tt0371746/events", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var list v1.EventListResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	require.Len(t, list.Items, 1)
	require.Nil(t, list.PropertyDetails)
}

func TestListEventsByPropertyHandler_DetailsFlag(t *testing.T) {
	store := NewInMemoryEventStore()
	store.Events = []*v1.Event{
		{ID: "1", FictionName: "marvel", PropertyImdbID: "tt0371746", CharacterName: "Tony Stark"},
	}
	metadata := &StaticMetadataClient{Details: map[string]interface{}{"title": "Iron Man"}}
	r := newTestRouter(t, store, metadata)

	req := httptest.NewRequest(http.MethodGet, "/v1/fictions/marvel/properties/Iron%20Man/events?details=true", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var list v1.EventListResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	require.Len(t, list.Items, 1)
	require.Equal(t, "Iron Man", list.PropertyDetails["title"])
	require.Equal(t, 1, metadata.FetchCalls)
}

func TestListEventsByCharacterHandler_ReturnsItems(t *testing.T) {
	store := NewInMemoryEventStore()
	store.Events = []*v1.Event{
		{ID: "1", FictionName: "marvel", PropertyImdbID: "tt0371746", CharacterName: "Tony Stark"},
		{ID: "2", FictionName: "marvel", PropertyImdbID: "tt0848228", CharacterName: "Tony Stark"},
	}
	r := newTestRouter(t, store, &StaticMetadataClient{})

	req := httptest.NewRequest(http.MethodGet, "/v1/fictions/marvel/characters/Tony%20Stark/events", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var list v1.EventListResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	require.Len(t, list.Items, 2)
}
