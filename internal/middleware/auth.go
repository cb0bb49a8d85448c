// Package middleware holds the storefront's echo middleware.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"storefront/internal/auth"
	apperrors "storefront/internal/errors"
	"storefront/internal/model"
)

// ClaimsKey is the echo context key holding the verified *auth.Claims.
const ClaimsKey = "user"

var errTokenRevoked = errors.New("token has been revoked")

// RequireSignIn verifies the Authorization header. The token may be sent bare
// or with a "Bearer " prefix. Failures answer 401.
func RequireSignIn(jwtService *auth.JWTService, tokens auth.TokenStoreInterface, logger *zap.Logger) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  ClaimsKey,
		TokenLookup: "header:" + echo.HeaderAuthorization,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
			claims, err := jwtService.ValidateToken(token)
			if err != nil {
				return nil, err
			}
			revoked, err := tokens.IsRevoked(c.Request().Context(), claims.ID)
			if err != nil {
				return nil, err
			}
			if revoked {
				return nil, errTokenRevoked
			}
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			logger.Debug("sign-in required",
				zap.String("path", c.Path()),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				zap.Error(err))
			return c.JSON(http.StatusUnauthorized, apperrors.Fail("Unauthorized: sign in required", err))
		},
	})
}

// ClaimsFrom returns the claims RequireSignIn stored on the context.
func ClaimsFrom(c echo.Context) (*auth.Claims, bool) {
	claims, ok := c.Get(ClaimsKey).(*auth.Claims)
	return claims, ok && claims != nil
}

// UserLookup resolves the signed-in user.
type UserLookup interface {
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// IsAdmin lets the request through only for users with the admin role. It
// must run after RequireSignIn.
func IsAdmin(users UserLookup, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, apperrors.Fail("UnAuthorized Access", nil))
			}
			user, err := users.GetUser(c.Request().Context(), claims.UserID)
			if err != nil {
				logger.Warn("admin lookup failed", zap.String("user_id", claims.UserID.String()), zap.Error(err))
				return c.JSON(http.StatusUnauthorized, apperrors.Fail("Error in admin middleware", err))
			}
			if !user.IsAdmin() {
				return c.JSON(http.StatusUnauthorized, apperrors.Fail("UnAuthorized Access", nil))
			}
			return next(c)
		}
	}
}
