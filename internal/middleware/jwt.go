package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/feastly/food-ordering-backend/internal/utils"
)

// TokenDenylist answers whether an access token was invalidated by logout.
type TokenDenylist interface {
	Contains(ctx context.Context, token string) bool
}

// JWTAuth validates a Bearer access token, rejects denylisted tokens and
// injects the subject email into the request context under "email". The
// denylist check runs on every protected request, so a logout is effective
// across instances for the rest of the token's lifetime.
func JWTAuth(secret []byte, denylist TokenDenylist) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			subject, _, err := utils.VerifyAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			if denylist != nil && denylist.Contains(c.Request().Context(), raw) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token revoked"})
			}

			c.Set("email", subject)
			return next(c)
		}
	}
}

// Subject returns the authenticated email injected by JWTAuth, or "".
func Subject(c echo.Context) string {
	if v, ok := c.Get("email").(string); ok {
		return v
	}
	return ""
}
