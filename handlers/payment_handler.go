package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/globalfaces/phoenix-backend/internal/service"
	"github.com/globalfaces/phoenix-backend/pkg/response"
	"github.com/globalfaces/phoenix-backend/pkg/validator"
)

type PaymentHandler struct {
	service *service.PaymentService
}

func NewPaymentHandler(service *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// CreatePaymentIntent godoc
// @Summary Create a payment intent
// @Description Creates a one-time-gift payment intent; resubmitting for the same session reuses the same intent
// @Tags payments
// @Accept json
// @Produce json
// @Param intent body service.IntentInput true "Payment intent request"
// @Success 200 {object} service.IntentResult
// @Failure 400 {object} response.ErrorResponse
// @Router /payment_intent [post]
func (h *PaymentHandler) CreatePaymentIntent(c echo.Context) error {
	var req service.IntentInput
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	result, err := h.service.CreatePaymentIntent(c.Request().Context(), req)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// CreateTerminalPaymentIntent godoc
// @Summary Create a Terminal payment intent
// @Description Creates a card-present intent for the tablet reader; CAD payments additionally allow Interac
// @Tags payments
// @Accept json
// @Produce json
// @Param intent body service.IntentInput true "Terminal payment intent request"
// @Success 200 {object} service.IntentResult
// @Failure 400 {object} response.ErrorResponse
// @Router /terminal/payment_intent [post]
func (h *PaymentHandler) CreateTerminalPaymentIntent(c echo.Context) error {
	var req service.IntentInput
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	result, err := h.service.CreateTerminalPaymentIntent(c.Request().Context(), req)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// CreateSetupIntent godoc
// @Summary Create a setup intent
// @Description Saves a card for later off-session monthly charges
// @Tags payments
// @Accept json
// @Produce json
// @Param intent body service.SetupIntentInput true "Setup intent request"
// @Success 200 {object} service.IntentResult
// @Failure 400 {object} response.ErrorResponse
// @Router /setup_intent [post]
func (h *PaymentHandler) CreateSetupIntent(c echo.Context) error {
	var req service.SetupIntentInput
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	result, err := h.service.CreateSetupIntent(c.Request().Context(), req)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// CreateSubscription godoc
// @Summary Create a subscription
// @Description Starts a monthly gift charged automatically, bounded decades in the future
// @Tags payments
// @Accept json
// @Produce json
// @Param subscription body service.SubscriptionCreateInput true "Subscription request"
// @Success 200 {object} service.SubscriptionResult
// @Failure 400 {object} response.ErrorResponse
// @Router /subscriptions/create [post]
func (h *PaymentHandler) CreateSubscription(c echo.Context) error {
	var req service.SubscriptionCreateInput
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	result, err := h.service.CreateSubscription(c.Request().Context(), req)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

type CustomerUpsertRequest struct {
	Email    string            `json:"email" validate:"required,email"`
	Name     string            `json:"name"`
	Phone    string            `json:"phone"`
	Metadata map[string]string `json:"metadata"`
}

// UpsertCustomer godoc
// @Summary Upsert a Stripe customer
// @Description Resolves a Stripe customer by email, creating one when missing
// @Tags payments
// @Accept json
// @Produce json
// @Param customer body CustomerUpsertRequest true "Customer details"
// @Success 200 {object} map[string]any
// @Failure 400 {object} response.ErrorResponse
// @Router /customer/upsert [post]
func (h *PaymentHandler) UpsertCustomer(c echo.Context) error {
	var req CustomerUpsertRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	customerID, err := h.service.UpsertCustomer(c.Request().Context(), service.CustomerUpsertInput{
		Email:    req.Email,
		Name:     req.Name,
		Phone:    req.Phone,
		Metadata: req.Metadata,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"customer_id": customerID})
}

// AttachPaymentMethod godoc
// @Summary Attach a payment method
// @Description Attaches a payment method to a customer, sets it as default, and mirrors the link to the warehouse
// @Tags payments
// @Accept json
// @Produce json
// @Param attach body service.AttachInput true "Attach request"
// @Success 200 {object} service.AttachResult
// @Failure 400 {object} response.ErrorResponse
// @Router /payment_method/attach [post]
func (h *PaymentHandler) AttachPaymentMethod(c echo.Context) error {
	var req service.AttachInput
	req.SaveRow = true
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	result, err := h.service.AttachPaymentMethod(c.Request().Context(), req)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// PaymentMethodFromIntent godoc
// @Summary Payment method behind an intent
// @Description Recovers the reusable payment method from a finished intent, including Terminal generated cards
// @Tags payments
// @Produce json
// @Param payment_intent_id path string true "Payment intent ID"
// @Success 200 {object} service.PaymentMethodFromIntent
// @Failure 400 {object} response.ErrorResponse
// @Router /payment_intent/{payment_intent_id}/payment_method [get]
func (h *PaymentHandler) PaymentMethodFromIntent(c echo.Context) error {
	result, err := h.service.GetPaymentMethodFromIntent(c.Request().Context(), c.Param("payment_intent_id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// ConnectionToken godoc
// @Summary Terminal connection token
// @Description Mints a Stripe Terminal connection token for the tablet's reader SDK
// @Tags terminal
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 400 {object} response.ErrorResponse
// @Router /terminal/connection_token [post]
func (h *PaymentHandler) ConnectionToken(c echo.Context) error {
	secret, err := h.service.ConnectionToken(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"secret": secret})
}

// TerminalLocation godoc
// @Summary Terminal location
// @Description Returns the configured Stripe Terminal location ID
// @Tags terminal
// @Produce json
// @Success 200 {object} map[string]any
// @Router /terminal/location [get]
func (h *PaymentHandler) TerminalLocation(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"location_id": h.service.TerminalLocation()})
}

// RegisterReader godoc
// @Summary Register a Terminal reader
// @Description Pairs a physical reader with a Terminal location
// @Tags terminal
// @Accept json
// @Produce json
// @Param reader body service.RegisterReaderInput true "Reader registration"
// @Success 200 {object} service.RegisterReaderResult
// @Failure 400 {object} response.ErrorResponse
// @Router /terminal/register_device [post]
func (h *PaymentHandler) RegisterReader(c echo.Context) error {
	var req service.RegisterReaderInput
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	result, err := h.service.RegisterReader(c.Request().Context(), req)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
