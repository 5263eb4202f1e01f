package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/globalfaces/phoenix-backend/internal/domain"
	"github.com/globalfaces/phoenix-backend/internal/service"
	"github.com/globalfaces/phoenix-backend/pkg/response"
	"github.com/globalfaces/phoenix-backend/pkg/validator"
)

type EventHandler struct {
	service *service.EventService
}

func NewEventHandler(service *service.EventService) *EventHandler {
	return &EventHandler{service: service}
}

type LogEventRequest struct {
	EventType    string         `json:"event_type" validate:"required"`
	SessionID    string         `json:"session_id"`
	DonorID      string         `json:"donor_id"`
	FundraiserID string         `json:"fundraiser_id"`
	Attributes   map[string]any `json:"attributes"`
}

// LogEvent godoc
// @Summary Record a client event
// @Description Appends a client-originated event (screen transitions, connector boot) to the audit log
// @Tags events
// @Accept json
// @Produce json
// @Param event body LogEventRequest true "Event to record"
// @Success 200 {object} map[string]any
// @Failure 400 {object} response.ErrorResponse
// @Router /log-event [post]
func (h *EventHandler) LogEvent(c echo.Context) error {
	var req LogEventRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	eventID, err := h.service.Log(c.Request().Context(), domain.Event{
		EventType:    req.EventType,
		SessionID:    req.SessionID,
		DonorID:      req.DonorID,
		FundraiserID: req.FundraiserID,
		Attributes:   req.Attributes,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "event_id": eventID})
}
