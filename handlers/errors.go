package handlers

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/globalfaces/phoenix-backend/internal/service"
	"github.com/globalfaces/phoenix-backend/pkg/response"
)

// writeServiceError maps the service error taxonomy onto HTTP statuses.
func writeServiceError(c echo.Context, err error) error {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return response.BadRequestWithMessage(c, verr.Message)
	}

	var perr *service.ProviderError
	if errors.As(err, &perr) {
		return response.BadRequest(c, perr)
	}

	switch {
	case errors.Is(err, service.ErrUnderage):
		return response.Forbidden(c, "Donor must be at least 25 years old")
	case errors.Is(err, service.ErrFundraiserNotFound):
		return response.NotFound(c, "Fundraiser not found or inactive")
	case errors.Is(err, service.ErrDonorNotFound):
		return response.NotFound(c, "Donor not found")
	case errors.Is(err, service.ErrProductNotFound):
		return response.NotFound(c, "No matching product found")
	case errors.Is(err, service.ErrVerificationNotFound):
		return response.NotFound(c, "No verification found")
	default:
		return response.InternalServerError(c, err)
	}
}
