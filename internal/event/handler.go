package event

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	v1 "github.com/fichron-lab/fichron/internal/api/v1"
	httperr "github.com/fichron-lab/fichron/internal/core/errors"
	"github.com/fichron-lab/fichron/internal/fiction"
)

const (
	msgInvalidJSON   = "Invalid JSON body"
	msgPersistFailed = "Failed to persist event"
	msgQueryFailed   = "Failed to query events"
)

// requestError carries the structured HTTP error shape from the service
// mapping back to the response writer.
type requestError struct {
	statusCode int
	errorType  string
	message    string
}

// RegisterRoutes registers the event endpoints.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/fictions/:fiction/properties/:property/events", s.CreateEventHandler)
	r.GET("/v1/fictions/:fiction/properties/:property/events", s.ListEventsByPropertyHandler)
	r.GET("/v1/fictions/:fiction/characters/:characterName/events", s.ListEventsByCharacterHandler)
}

// CreateEventHandler handles POST /v1/fictions/:fiction/properties/:property/events.
func (s *Service) CreateEventHandler(c *gin.Context) {
	var req v1.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, &requestError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    msgInvalidJSON,
		})
		return
	}

	evt, err := s.CreateEvent(c.Request.Context(), c.Param("fiction"), c.Param("property"), &req)
	if err != nil {
		writeError(c, mapServiceError(err, msgPersistFailed))
		return
	}

	c.JSON(http.StatusCreated, evt)
}

// ListEventsByPropertyHandler handles GET /v1/fictions/:fiction/properties/:property/events.
// The details query flag requests metadata enrichment.
func (s *Service) ListEventsByPropertyHandler(c *gin.Context) {
	// Unparseable flags mean "no details" rather than a rejected request.
	withDetails, _ := strconv.ParseBool(c.Query("details"))

	resp, err := s.GetEventsByProperty(c.Request.Context(), c.Param("fiction"), c.Param("property"), withDetails)
	if err != nil {
		writeError(c, mapServiceError(err, msgQueryFailed))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListEventsByCharacterHandler handles GET /v1/fictions/:fiction/characters/:characterName/events.
func (s *Service) ListEventsByCharacterHandler(c *gin.Context) {
	resp, err := s.GetEventsByCharacter(c.Request.Context(), c.Param("fiction"), c.Param("characterName"))
	if err != nil {
		writeError(c, mapServiceError(err, msgQueryFailed))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// mapServiceError translates service errors into the HTTP error shape.
// Input rejection stays a 400; anything else is an upstream failure and
// surfaces as a 500 without leaking transport detail.
func mapServiceError(err error, internalMsg string) *requestError {
	switch {
	case errors.Is(err, fiction.ErrUnknownFiction):
		return &requestError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpUnknownFictionError,
			message:    err.Error(),
		}
	case errors.Is(err, fiction.ErrUnknownProperty):
		return &requestError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpUnknownPropertyError,
			message:    err.Error(),
		}
	case errors.Is(err, ErrInvalidEvent):
		return &requestError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpValidationError,
			message:    err.Error(),
		}
	default:
		return &requestError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    internalMsg,
		}
	}
}

// writeError serializes a requestError as the JSON HTTP response.
func writeError(c *gin.Context, err *requestError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
	})
}
