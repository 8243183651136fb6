package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"streamaccts/internal/client"
	"streamaccts/internal/model"
	"streamaccts/internal/service"
)

const identityKey = "identity"

// Authenticate resolves the bearer token into an identity stored on the
// context. Missing or rejected tokens stop the request with 401.
func Authenticate(verifier client.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				return service.Unauthorized("No token provided", nil)
			}

			identity, err := verifier.Verify(c.Request().Context(), strings.TrimSpace(token))
			if err != nil {
				return service.Unauthorized("Invalid or expired token", err)
			}

			c.Set(identityKey, identity)
			return next(c)
		}
	}
}

// RequireAdmin must run after Authenticate.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := Identity(c)
			if identity == nil || !identity.IsAdmin {
				return service.ErrAdminRequired
			}
			return next(c)
		}
	}
}

func Identity(c echo.Context) *model.Identity {
	identity, _ := c.Get(identityKey).(*model.Identity)
	return identity
}
