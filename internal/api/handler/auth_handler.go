package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/identikit/identity-api/internal/api/metrics"
	"github.com/identikit/identity-api/internal/core/ports"
)

// AuthHandler serves login, recovery and reset.
type AuthHandler struct {
	users  ports.UserService
	tokens ports.TokenService
}

func NewAuthHandler(users ports.UserService, tokens ports.TokenService) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

// Login authenticates a user and returns a bearer session token.
//
// @Summary      OAuth2 compatible token login
// @Tags         login
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials (email may travel as the username form field)"
// @Success      200   {object}  tokenResponse
// @Failure      400   {object}  errorResponse
// @Router       /v1/login/access-token [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.users.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return err
	}
	if !user.IsActive {
		// same shape as a bad credential, no account probing
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "incorrect email or password")
	}

	token, err := h.tokens.IssueSessionToken(user.ID)
	if err != nil {
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	metrics.TokensIssuedTotal.WithLabelValues("session").Inc()

	return c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

// TestToken echoes the authenticated user, proving the token works.
//
// @Summary      Test access token
// @Tags         login
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/login/test-token [post]
func (h *AuthHandler) TestToken(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// RecoverPassword requests a password-recovery mail. The response is
// identical whether or not the address is registered.
//
// @Summary      Password recovery
// @Tags         login
// @Produce      json
// @Param        email  path      string  true  "Account email"
// @Success      200    {object}  msgResponse
// @Router       /v1/password-recovery/{email} [post]
func (h *AuthHandler) RecoverPassword(c echo.Context) error {
	email := c.Param("email")

	if err := h.users.RecoverPassword(c.Request().Context(), email); err != nil {
		metrics.RecoveryRequestsTotal.WithLabelValues("error").Inc()
		return err
	}
	metrics.RecoveryRequestsTotal.WithLabelValues("accepted").Inc()
	metrics.TokensIssuedTotal.WithLabelValues("password_reset").Inc()

	return c.JSON(http.StatusOK, msgResponse{
		Msg: "If this email is valid, you will receive an email with your recovery link shortly.",
	})
}

// ResetPassword applies a recovery token and sets the new password.
//
// @Summary      Reset password
// @Tags         login
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Token and new password"
// @Success      200   {object}  msgResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/reset-password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.users.ResetPassword(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, msgResponse{Msg: "Password updated successfully"})
}
