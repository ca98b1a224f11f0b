package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/identikit/identity-api/internal/api/metrics"
	"github.com/identikit/identity-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to deterministic HTTP status codes.
//   - Logs unexpected errors internally without leaking details.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Password policy rejections carry their reason through verbatim.
	var pe *domain.PolicyError
	if errors.As(err, &pe) {
		metrics.PolicyRejectionsTotal.WithLabelValues(string(pe.Reason)).Inc()
		return http.StatusUnprocessableEntity, pe.Error()
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		// one shape for unknown email and wrong password alike
		return http.StatusBadRequest, "incorrect email or password"
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusBadRequest, "invalid token"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "user already exists"
	case errors.Is(err, domain.ErrInactiveUser):
		return http.StatusBadRequest, "inactive user"
	case errors.Is(err, domain.ErrPermissionDenied):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrPasswordNotSet):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrPasswordAlreadySet):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrVersionConflict):
		return http.StatusConflict, "concurrent update, please retry"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
