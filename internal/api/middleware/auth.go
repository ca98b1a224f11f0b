package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// SessionVerifier is the slice of the token service the middleware needs.
type SessionVerifier interface {
	VerifySessionToken(token string) (userID string, err error)
}

// Auth validates the bearer session token and injects the subject into
// the request context under "user_id". It deliberately has no storage
// dependency: existence and active-flag checks happen in ActiveUser.
func Auth(verifier SessionVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			userID, err := verifier.VerifySessionToken(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set("user_id", userID)
			return next(c)
		}
	}
}
