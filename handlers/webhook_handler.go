package handlers

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/globalfaces/phoenix-backend/internal/domain"
	"github.com/globalfaces/phoenix-backend/internal/service"
	"github.com/globalfaces/phoenix-backend/pkg/response"
	"github.com/globalfaces/phoenix-backend/pkg/twilio"
)

type WebhookHandler struct {
	webhooks        *service.WebhookService
	verifications   *service.VerificationService
	twilioValidator *twilio.Validator
}

func NewWebhookHandler(
	webhooks *service.WebhookService,
	verifications *service.VerificationService,
	twilioValidator *twilio.Validator,
) *WebhookHandler {
	return &WebhookHandler{
		webhooks:        webhooks,
		verifications:   verifications,
		twilioValidator: twilioValidator,
	}
}

// Stripe godoc
// @Summary Stripe webhook
// @Description Ingests Stripe callbacks; repeat deliveries of the same event collapse onto one audit row
// @Tags webhooks
// @Accept json
// @Produce json
// @Param Stripe-Signature header string false "Stripe signature header"
// @Success 200 {object} map[string]any
// @Failure 400 {object} response.ErrorResponse
// @Router /webhook/stripe [post]
func (h *WebhookHandler) Stripe(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return response.BadRequest(c, err)
	}

	sigHeader := c.Request().Header.Get("Stripe-Signature")
	if _, err := h.webhooks.HandleStripeEvent(c.Request().Context(), payload, sigHeader); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"received": true})
}

// TwilioInbound godoc
// @Summary Twilio inbound SMS
// @Description Receives the donor's yes/no reply, closes the open verification row, and acknowledges over TwiML
// @Tags webhooks
// @Accept x-www-form-urlencoded
// @Produce xml
// @Param X-Twilio-Signature header string false "Twilio signature header"
// @Success 200 {string} string "TwiML acknowledgement"
// @Failure 403 {object} response.ErrorResponse
// @Router /webhook/twilio [post]
func (h *WebhookHandler) TwilioInbound(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return response.BadRequest(c, err)
	}

	if h.twilioValidator != nil && h.twilioValidator.Enabled() {
		requestURL := c.Scheme() + "://" + c.Request().Host + c.Request().RequestURI
		signature := c.Request().Header.Get("X-Twilio-Signature")
		if !h.twilioValidator.Validate(requestURL, form, signature) {
			return response.Forbidden(c, "Invalid Twilio signature")
		}
	}

	result, err := h.verifications.HandleInbound(c.Request().Context(), service.InboundInput{
		MessageSID: form.Get("MessageSid"),
		From:       form.Get("From"),
		Body:       form.Get("Body"),
		SessionID:  form.Get("SessionId"),
		DonorID:    form.Get("DonorId"),
	})
	if err != nil {
		return writeServiceError(c, err)
	}

	text := "Thanks! Please proceed on the tablet."
	if result.Result == domain.VerificationInvalid {
		text = "Sorry, please reply YES or NO."
	}
	twiml := `<?xml version="1.0" encoding="UTF-8"?><Response><Message>` + text + `</Message></Response>`
	return c.Blob(http.StatusOK, "application/xml", []byte(twiml))
}
