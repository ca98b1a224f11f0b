package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/identikit/identity-api/internal/core/domain"
	"github.com/identikit/identity-api/internal/core/ports"
)

// ActiveUser resolves the authenticated user id to a stored identity and
// rejects inactive accounts. Runs after Auth; stores the record under
// "user".
func ActiveUser(repo ports.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, _ := c.Get("user_id").(string)
			if userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}

			user, err := repo.FindByID(c.Request().Context(), userID)
			if err != nil {
				return domain.ErrUserNotFound
			}
			if !user.IsActive {
				return domain.ErrInactiveUser
			}

			c.Set("user", user)
			return next(c)
		}
	}
}

// Superuser gates admin-only routes. Runs after ActiveUser.
func Superuser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, _ := c.Get("user").(*domain.User)
			if user == nil || !user.IsSuperuser {
				return echo.NewHTTPError(http.StatusForbidden, "the user doesn't have enough privileges")
			}
			return next(c)
		}
	}
}
