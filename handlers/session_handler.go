package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/globalfaces/phoenix-backend/internal/service"
	"github.com/globalfaces/phoenix-backend/pkg/response"
	"github.com/globalfaces/phoenix-backend/pkg/validator"
)

type SessionHandler struct {
	service  *service.SessionService
	deviceID string
}

func NewSessionHandler(service *service.SessionService, deviceID string) *SessionHandler {
	return &SessionHandler{service: service, deviceID: deviceID}
}

type FundraiserLoginRequest struct {
	FundraiserID string `json:"fundraiser_id" validate:"required"`
	DeviceID     string `json:"device_id"`
}

// FundraiserLogin godoc
// @Summary Fundraiser login
// @Description Opens a tablet session for a fundraiser and returns the charity/campaign branding payload
// @Tags session
// @Accept json
// @Produce json
// @Param login body FundraiserLoginRequest true "Fundraiser credentials"
// @Success 200 {object} service.LoginResult
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /fundraiser/login [post]
func (h *SessionHandler) FundraiserLogin(c echo.Context) error {
	var req FundraiserLoginRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	deviceID := req.DeviceID
	if deviceID == "" {
		deviceID = h.deviceID
	}

	result, err := h.service.FundraiserLogin(c.Request().Context(), req.FundraiserID, deviceID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
