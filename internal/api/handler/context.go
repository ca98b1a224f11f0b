package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/identikit/identity-api/internal/core/domain"
)

// currentUser extracts the identity loaded by the ActiveUser middleware.
// Its absence means the route was wired without the middleware chain;
// fail closed.
func currentUser(c echo.Context) (*domain.User, error) {
	user, _ := c.Get("user").(*domain.User)
	if user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return user, nil
}
