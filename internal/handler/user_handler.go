package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"storefront/internal/service"
)

// UserHandler serves the admin user list.
type UserHandler struct {
	base
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{base: base{logger: logger}, svc: svc}
}

// ListUsers godoc
// @Summary List registered users
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/all-users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.svc.ListUsers(c.Request().Context())
	if err != nil {
		return h.fail(c, err, http.StatusInternalServerError, "Error while getting users")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "users": users})
}
