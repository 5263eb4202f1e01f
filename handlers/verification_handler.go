package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/globalfaces/phoenix-backend/internal/service"
	"github.com/globalfaces/phoenix-backend/pkg/response"
)

type VerificationHandler struct {
	service *service.VerificationService
}

func NewVerificationHandler(service *service.VerificationService) *VerificationHandler {
	return &VerificationHandler{service: service}
}

// SendSms godoc
// @Summary Send confirmation SMS
// @Description Composes the donation recap from the stored donor record and sends it for yes/no confirmation
// @Tags verification
// @Accept json
// @Produce json
// @Param send body service.SendInput true "Confirmation request"
// @Success 200 {object} map[string]any
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /verification/sms/send [post]
func (h *VerificationHandler) SendSms(c echo.Context) error {
	var req service.SendInput
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	result, err := h.service.Send(c.Request().Context(), req)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "sid": result.SID})
}

// Status godoc
// @Summary Verification status
// @Description Answers the tablet's polling loop with the latest confirmation outcome for a session/donor pair
// @Tags verification
// @Produce json
// @Param session_id query string true "Session ID"
// @Param donor_id query string true "Donor ID"
// @Success 200 {object} service.Status
// @Failure 400 {object} response.ErrorResponse
// @Router /verification/sms/status [get]
func (h *VerificationHandler) Status(c echo.Context) error {
	status, err := h.service.GetStatus(c.Request().Context(), c.QueryParam("session_id"), c.QueryParam("donor_id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, status)
}
