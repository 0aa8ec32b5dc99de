package auth

import (
	"strings"

	apperrors "projecthub/pkg/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Middleware authenticates bearer access tokens.
type Middleware struct {
	tokens *TokenService
	users  ActiveChecker
}

func NewMiddleware(tokens *TokenService, users ActiveChecker) *Middleware {
	return &Middleware{
		tokens: tokens,
		users:  users,
	}
}

// RequireJWT accepts a valid access token of an active user and stores the
// user id on the context. Errors go to the HTTP error handler.
func (m *Middleware) RequireJWT() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := extractBearerToken(c)
			if raw == "" {
				return apperrors.AuthInvalid(msgMissingAuthorization)
			}

			userID, err := m.tokens.Authenticate(raw)
			if err != nil {
				return err
			}

			if err := m.users.RequireActive(c.Request().Context(), userID); err != nil {
				return err
			}

			c.Set(ContextKeyUserID, userID)
			return next(c)
		}
	}
}

func extractBearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get(headerAuthorization)
	if authHeader == "" {
		return ""
	}

	parts := strings.Fields(authHeader)
	if len(parts) != authHeaderParts || strings.ToLower(parts[0]) != bearerScheme {
		return ""
	}

	return parts[1]
}

func GetUserID(c echo.Context) (uuid.UUID, error) {
	userID := c.Get(ContextKeyUserID)
	if userID == nil {
		return uuid.Nil, apperrors.AuthInvalid(msgUserNotAuthenticated)
	}

	id, ok := userID.(uuid.UUID)
	if !ok {
		return uuid.Nil, apperrors.Internal(msgInvalidUserIDCtx, nil)
	}

	return id, nil
}

// GetProjectID returns the project id resolved by the RBAC middleware.
func GetProjectID(c echo.Context) (uuid.UUID, error) {
	if id, ok := c.Get(ContextKeyProjectID).(uuid.UUID); ok && id != uuid.Nil {
		return id, nil
	}
	return extractProjectID(c)
}
