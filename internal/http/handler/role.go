package handler

import (
	"projecthub/internal/rbac"

	"github.com/labstack/echo/v4"
)

// RoleHandler exposes the role catalog. Built-in roles are protected by the
// catalog itself.
type RoleHandler struct {
	roles RoleService
}

func NewRoleHandler(roles RoleService) *RoleHandler {
	return &RoleHandler{roles: roles}
}

type CreateRoleRequest struct {
	Name        string      `json:"name"`
	Permissions rbac.Matrix `json:"permissions"`
}

type UpdateRoleRequest struct {
	Name        *string     `json:"name"`
	Permissions rbac.Matrix `json:"permissions"`
}

func (h *RoleHandler) List(c echo.Context) error {
	roles, err := h.roles.List(c.Request().Context())
	if err != nil {
		return err
	}
	return respondOK(c, roles)
}

func (h *RoleHandler) Get(c echo.Context) error {
	id, err := uuidParam(c, paramID)
	if err != nil {
		return err
	}

	role, err := h.roles.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respondOK(c, role)
}

func (h *RoleHandler) Create(c echo.Context) error {
	var req CreateRoleRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return err
	}

	role, err := h.roles.Create(c.Request().Context(), rbac.CreateRoleInput{
		Name:        req.Name,
		Permissions: req.Permissions,
	})
	if err != nil {
		return err
	}
	return respondCreated(c, role)
}

func (h *RoleHandler) Update(c echo.Context) error {
	id, err := uuidParam(c, paramID)
	if err != nil {
		return err
	}

	var req UpdateRoleRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return err
	}

	role, err := h.roles.Update(c.Request().Context(), id, rbac.UpdateRoleInput{
		Name:        req.Name,
		Permissions: req.Permissions,
	})
	if err != nil {
		return err
	}
	return respondOK(c, role)
}

func (h *RoleHandler) Delete(c echo.Context) error {
	id, err := uuidParam(c, paramID)
	if err != nil {
		return err
	}

	if err := h.roles.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return respondMessage(c, msgDeleted)
}
