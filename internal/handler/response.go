package handler

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "storefront/internal/errors"
	"storefront/internal/middleware"
)

// base carries what every handler needs to answer failures.
type base struct {
	logger *zap.Logger
}

// fail answers err in the storefront's {success:false, message, error} shape.
// Validation errors keep their own status; known domain errors map through
// MapErrorToHTTP; anything else answers status with message.
func (b base) fail(c echo.Context, err error, status int, message string) error {
	if v, ok := apperrors.AsValidation(err); ok {
		return c.JSON(v.Status, apperrors.ErrorResponse{Success: false, Message: v.Message, Error: v.Message})
	}
	httpErr := apperrors.MapErrorToHTTP(err, status, message)
	if httpErr.StatusCode >= http.StatusInternalServerError {
		b.logger.Error(message,
			zap.String("path", c.Path()),
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			zap.Error(err))
	}
	return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
}

// paramID parses a uuid path parameter.
func paramID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s %q: %w", name, c.Param(name), apperrors.ErrInvalidID)
	}
	return id, nil
}

// currentUserID returns the signed-in user id.
func currentUserID(c echo.Context) (uuid.UUID, error) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return uuid.Nil, apperrors.ErrUnauthorized
	}
	return claims.UserID, nil
}
