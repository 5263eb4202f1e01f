package middlewares

import (
	"crypto/subtle"

	"github.com/labstack/echo/v4"

	"github.com/globalfaces/phoenix-backend/pkg/response"
)

const (
	APIKeyHeader = "x-app-auth-key"
)

// secureCompare compares two strings in a way that is safer against timing attacks.
func secureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// APIKeyAuth guards the tablet-facing endpoints with a shared key. With no
// key configured the middleware passes everything through, mirroring how the
// webhook secrets behave in development mode.
func APIKeyAuth(apiKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if apiKey == "" {
				return next(c)
			}

			token := c.Request().Header.Get(APIKeyHeader)
			if token == "" || !secureCompare(token, apiKey) {
				return response.Unauthorized(c)
			}

			return next(c)
		}
	}
}
