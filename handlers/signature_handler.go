package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/globalfaces/phoenix-backend/internal/service"
	"github.com/globalfaces/phoenix-backend/pkg/response"
)

type SignatureHandler struct {
	service *service.SignatureService
}

func NewSignatureHandler(service *service.SignatureService) *SignatureHandler {
	return &SignatureHandler{service: service}
}

// Upload godoc
// @Summary Upload a captured signature
// @Description Decodes a base64 PNG, stages it, and records the stage URI and SHA-256 content hash
// @Tags signature
// @Accept json
// @Produce json
// @Param signature body service.UploadInput true "Signature payload"
// @Success 200 {object} service.UploadResult
// @Failure 400 {object} response.ErrorResponse
// @Router /signature/upload [post]
func (h *SignatureHandler) Upload(c echo.Context) error {
	var req service.UploadInput
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	result, err := h.service.Upload(c.Request().Context(), req)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
