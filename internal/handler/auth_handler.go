package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "storefront/internal/errors"
	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	base
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{base: base{logger: logger}, authService: authService}
}

// RegisterRequest represents a sign-up request. Address may be a string or an object.
type RegisterRequest struct {
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Password string        `json:"password"`
	Phone    string        `json:"phone"`
	Address  model.Address `json:"address"`
	Answer   string        `json:"answer"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForgotPasswordRequest resets a password with the security answer.
type ForgotPasswordRequest struct {
	Email       string `json:"email"`
	Answer      string `json:"answer"`
	NewPassword string `json:"newPassword"`
}

// ProfileRequest updates the signed-in user. Email cannot be changed.
type ProfileRequest struct {
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Phone    string         `json:"phone"`
	Address  *model.Address `json:"address"`
}

// SessionUser is the user view returned on login and stored by clients.
type SessionUser struct {
	ID      uuid.UUID     `json:"_id"`
	Name    string        `json:"name"`
	Email   string        `json:"email"`
	Phone   string        `json:"phone"`
	Address model.Address `json:"address"`
	Role    model.Role    `json:"role"`
}

// LoginResponse represents a successful login.
type LoginResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	User    SessionUser `json:"user"`
	Token   string      `json:"token"`
}

// Register godoc
// @Summary Register a new customer
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.Fail("invalid request body", err))
	}

	user, err := h.authService.Register(c.Request().Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
		Answer:   req.Answer,
	})
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUserAlreadyExists) {
			return c.JSON(http.StatusOK, apperrors.Fail("Already registered, please login", nil))
		}
		return h.fail(c, err, http.StatusInternalServerError, "Error in Registration")
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "User Register Successfully",
		"user":    user,
	})
}

// Login godoc
// @Summary Sign in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} LoginResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.Fail("invalid request body", err))
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	switch {
	case apperrors.Is(err, apperrors.ErrInvalidCredentials):
		return c.JSON(http.StatusNotFound, apperrors.Fail("Invalid email or password", nil))
	case apperrors.Is(err, apperrors.ErrEmailNotRegistered):
		return c.JSON(http.StatusNotFound, apperrors.Fail("Email is not registered", nil))
	case apperrors.Is(err, apperrors.ErrInvalidPassword):
		return c.JSON(http.StatusOK, apperrors.Fail("Invalid Password", nil))
	case err != nil:
		return h.fail(c, err, http.StatusInternalServerError, "Error in login")
	}

	return c.JSON(http.StatusOK, LoginResponse{
		Success: true,
		Message: "login successfully",
		User: SessionUser{
			ID:      user.ID,
			Name:    user.Name,
			Email:   user.Email,
			Phone:   user.Phone,
			Address: user.Address,
			Role:    user.Role,
		},
		Token: token,
	})
}

// ForgotPassword godoc
// @Summary Reset a password with the security answer
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ForgotPasswordRequest true "Reset data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.Fail("invalid request body", err))
	}

	err := h.authService.ForgotPassword(c.Request().Context(), req.Email, req.Answer, req.NewPassword)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrWrongAnswer) {
			return c.JSON(http.StatusNotFound, apperrors.Fail("Wrong Email Or Answer", nil))
		}
		return h.fail(c, err, http.StatusInternalServerError, "Something went wrong")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Password Reset Successfully"})
}

// UpdateProfile godoc
// @Summary Update the signed-in user's profile
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ProfileRequest true "Profile fields"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Router /auth/profile [put]
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return h.fail(c, err, http.StatusUnauthorized, "UnAuthorized Access")
	}

	var req ProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.Fail("invalid request body", err))
	}

	updated, err := h.authService.UpdateProfile(c.Request().Context(), userID, service.ProfileInput{
		Name:     req.Name,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		return h.fail(c, err, http.StatusBadRequest, "Error While Update profile")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"message":     "Profile Updated Successfully",
		"updatedUser": updated,
	})
}

// Logout godoc
// @Summary Revoke the presented token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, apperrors.Fail("UnAuthorized Access", nil))
	}
	if err := h.authService.Logout(c.Request().Context(), claims); err != nil {
		return h.fail(c, err, http.StatusInternalServerError, "Error in logout")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Logged out successfully"})
}

// Test answers admins only.
func (h *AuthHandler) Test(c echo.Context) error {
	return c.String(http.StatusOK, "Protected Routes")
}

// UserAuth confirms a valid sign-in.
func (h *AuthHandler) UserAuth(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// AdminAuth confirms a valid admin sign-in.
func (h *AuthHandler) AdminAuth(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
