package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/globalfaces/phoenix-backend/internal/service"
	"github.com/globalfaces/phoenix-backend/pkg/response"
)

type ProductHandler struct {
	service *service.SessionService
}

func NewProductHandler(service *service.SessionService) *ProductHandler {
	return &ProductHandler{service: service}
}

// CampaignProducts godoc
// @Summary Campaign product catalog
// @Description Lists a campaign's active donation products
// @Tags products
// @Produce json
// @Param campaign_id path string true "Campaign ID"
// @Success 200 {object} map[string]any
// @Failure 400 {object} response.ErrorResponse
// @Router /products/campaign/{campaign_id} [get]
func (h *ProductHandler) CampaignProducts(c echo.Context) error {
	products, err := h.service.CampaignProducts(c.Request().Context(), c.Param("campaign_id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"products": products})
}

// Lookup godoc
// @Summary Resolve a product
// @Description Resolves a campaign/amount/currency/type combination to its Stripe price
// @Tags products
// @Produce json
// @Param campaign_id query string true "Campaign ID"
// @Param amount_cents query int true "Amount in cents"
// @Param currency query string true "Currency code"
// @Param product_type query string false "MONTHLY or OTG (default MONTHLY)"
// @Success 200 {object} map[string]any
// @Failure 404 {object} response.ErrorResponse
// @Router /products/lookup [get]
func (h *ProductHandler) Lookup(c echo.Context) error {
	amountCents, err := strconv.ParseInt(c.QueryParam("amount_cents"), 10, 64)
	if err != nil {
		return response.BadRequestWithMessage(c, "amount_cents must be an integer")
	}

	product, err := h.service.LookupProduct(
		c.Request().Context(),
		c.QueryParam("campaign_id"),
		amountCents,
		c.QueryParam("currency"),
		c.QueryParam("product_type"),
	)
	if err != nil {
		return writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"stripe_price_id": product.StripePriceID,
		"product_id":      product.ProductID,
		"display_name":    product.DisplayName,
	})
}
