package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/globalfaces/phoenix-backend/internal/domain"
	"github.com/globalfaces/phoenix-backend/internal/service"
	"github.com/globalfaces/phoenix-backend/pkg/response"
)

type DonorHandler struct {
	service *service.DonorService
}

func NewDonorHandler(service *service.DonorService) *DonorHandler {
	return &DonorHandler{service: service}
}

// Upsert godoc
// @Summary Create or update a donor
// @Description Upserts the donor keyed by email, enforces the 25+ age floor, and links the donor to the session
// @Tags donor
// @Accept json
// @Produce json
// @Param donor body service.DonorInput true "Donor identity form"
// @Success 200 {object} service.UpsertResult
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /donor/upsert [post]
func (h *DonorHandler) Upsert(c echo.Context) error {
	var req service.DonorInput
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	result, err := h.service.Upsert(c.Request().Context(), req)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

type ConsentRequest struct {
	SessionID    string `json:"session_id"`
	DonorID      string `json:"donor_id"`
	ConsentSMS   bool   `json:"consent_sms"`
	ConsentEmail bool   `json:"consent_email"`
	ConsentMail  bool   `json:"consent_mail"`
}

// UpdateConsent godoc
// @Summary Update communication consents
// @Description Records the donor's SMS/email/mail opt-ins
// @Tags donor
// @Accept json
// @Produce json
// @Param consent body ConsentRequest true "Consent flags"
// @Success 200 {object} map[string]any
// @Failure 400 {object} response.ErrorResponse
// @Router /donor/consent [post]
func (h *DonorHandler) UpdateConsent(c echo.Context) error {
	var req ConsentRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	consent := domain.Consent{SMS: req.ConsentSMS, Email: req.ConsentEmail, Mail: req.ConsentMail}
	if err := h.service.UpdateConsent(c.Request().Context(), req.SessionID, req.DonorID, consent); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

// GetDonor godoc
// @Summary Donor contact details
// @Description Returns the reduced donor view used to prefill provider calls
// @Tags donor
// @Produce json
// @Param donor_id path string true "Donor ID"
// @Success 200 {object} domain.DonorContact
// @Failure 404 {object} response.ErrorResponse
// @Router /donor/{donor_id} [get]
func (h *DonorHandler) GetDonor(c echo.Context) error {
	contact, err := h.service.GetContact(c.Request().Context(), c.Param("donor_id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, contact)
}
