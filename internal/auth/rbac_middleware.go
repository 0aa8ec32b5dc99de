package auth

import (
	"projecthub/internal/rbac"
	apperrors "projecthub/pkg/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RBACMiddleware guards :project_id routes with the permission gate.
type RBACMiddleware struct {
	gate *rbac.Gate
}

func NewRBACMiddleware(gate *rbac.Gate) *RBACMiddleware {
	return &RBACMiddleware{gate: gate}
}

// RequireProjectRead lets the owner and any member through.
func (m *RBACMiddleware) RequireProjectRead() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, projectID, err := subject(c)
			if err != nil {
				return err
			}

			if err := m.gate.RequireRead(c.Request().Context(), projectID, userID); err != nil {
				return err
			}

			c.Set(ContextKeyProjectID, projectID)
			return next(c)
		}
	}
}

// RequireProjectPermission demands resource:action on the project.
func (m *RBACMiddleware) RequireProjectPermission(resource rbac.Resource, action rbac.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, projectID, err := subject(c)
			if err != nil {
				return err
			}

			if err := m.gate.Require(c.Request().Context(), projectID, userID, resource, action); err != nil {
				return err
			}

			c.Set(ContextKeyProjectID, projectID)
			return next(c)
		}
	}
}

func subject(c echo.Context) (uuid.UUID, uuid.UUID, error) {
	userID, err := GetUserID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	projectID, err := extractProjectID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	return userID, projectID, nil
}

func extractProjectID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(paramProjectID))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, apperrors.Validation(msgInvalidProjectID)
	}
	return id, nil
}
