package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/identikit/identity-api/internal/api/metrics"
	"github.com/identikit/identity-api/internal/core/ports"
)

// MeHandler serves the self-service profile routes.
type MeHandler struct {
	users ports.UserService
}

func NewMeHandler(users ports.UserService) *MeHandler {
	return &MeHandler{users: users}
}

// Get returns the current user.
//
// @Summary      Get current user
// @Tags         me
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/me [get]
func (h *MeHandler) Get(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Update patches the current user. Changing a set password requires the
// old one; changing a never-set password is forbidden.
//
// @Summary      Update current user
// @Tags         me
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateMeRequest  true  "Fields to change"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/me [put]
func (h *MeHandler) Update(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req updateMeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	updated, err := h.users.UpdateSelf(c.Request().Context(), user.ID, ports.UpdateUserInput{
		FullName:    req.FullName,
		Password:    req.Password,
		OldPassword: req.OldPassword,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(updated))
}

// Delete removes the current user's account.
//
// @Summary      Delete my account
// @Tags         me
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /v1/me [delete]
func (h *MeHandler) Delete(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.users.Delete(c.Request().Context(), user.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ChangeEmail mails a confirmation link to the new address. The account
// keeps its current email until the token is applied.
//
// @Summary      Request email change
// @Tags         me
// @Produce      json
// @Security     BearerAuth
// @Param        email  path      string  true  "New email address"
// @Success      200    {object}  msgResponse
// @Failure      401    {object}  errorResponse
// @Router       /v1/me/change-email/{email} [post]
func (h *MeHandler) ChangeEmail(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.users.RequestEmailChange(c.Request().Context(), user, c.Param("email")); err != nil {
		return err
	}
	metrics.TokensIssuedTotal.WithLabelValues("email_change").Inc()

	return c.JSON(http.StatusOK, msgResponse{Msg: "A confirmation email has been sent."})
}

// ValidateEmail applies an email-change token. Token validity and
// applicability are separate checks: a verified token whose subject no
// longer exists yields 404.
//
// @Summary      Confirm email change
// @Tags         me
// @Produce      json
// @Param        token  path      string  true  "Email-change token"
// @Success      200    {object}  msgResponse
// @Failure      400    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Failure      409    {object}  errorResponse
// @Router       /v1/validate-email/{token} [post]
func (h *MeHandler) ValidateEmail(c echo.Context) error {
	if _, err := h.users.ApplyEmailChange(c.Request().Context(), c.Param("token")); err != nil {
		return err
	}
	metrics.EmailChangesAppliedTotal.Inc()
	return c.JSON(http.StatusOK, msgResponse{Msg: "Email updated successfully"})
}
