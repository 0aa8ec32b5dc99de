package handler

import (
	"projecthub/internal/auth"
	"projecthub/internal/domain/project"
	"projecthub/internal/projects"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type ProjectHandler struct {
	projects ProjectService
}

func NewProjectHandler(projects ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

type CreateProjectRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type UpdateProjectRequest struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Status      *project.Status `json:"status"`
}

type AddMemberRequest struct {
	UserID uuid.UUID `json:"userId"`
	RoleID uuid.UUID `json:"roleId"`
}

type UpdateMemberRoleRequest struct {
	RoleID uuid.UUID `json:"roleId"`
}

// caller returns the authenticated user and the :project_id path value.
func caller(c echo.Context) (uuid.UUID, uuid.UUID, error) {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	projectID, err := auth.GetProjectID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return userID, projectID, nil
}

func (h *ProjectHandler) CreateProject(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return err
	}

	var req CreateProjectRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return err
	}

	proj, err := h.projects.Create(c.Request().Context(), userID, projects.CreateInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return respondCreated(c, proj)
}

func (h *ProjectHandler) ListProjects(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return err
	}

	req, err := pageRequest(c)
	if err != nil {
		return err
	}

	var status *project.Status
	if raw := optionalQuery(c, queryStatus); raw != nil {
		s := project.Status(*raw)
		status = &s
	}

	result, err := h.projects.List(c.Request().Context(), userID, status, req)
	if err != nil {
		return err
	}
	return respondPage(c, result)
}

func (h *ProjectHandler) GetProject(c echo.Context) error {
	userID, projectID, err := caller(c)
	if err != nil {
		return err
	}

	proj, err := h.projects.Get(c.Request().Context(), userID, projectID)
	if err != nil {
		return err
	}
	return respondOK(c, proj)
}

func (h *ProjectHandler) UpdateProject(c echo.Context) error {
	userID, projectID, err := caller(c)
	if err != nil {
		return err
	}

	var req UpdateProjectRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return err
	}

	proj, err := h.projects.Update(c.Request().Context(), userID, projectID, project.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		return err
	}
	return respondOK(c, proj)
}

func (h *ProjectHandler) DeleteProject(c echo.Context) error {
	userID, projectID, err := caller(c)
	if err != nil {
		return err
	}

	if err := h.projects.Delete(c.Request().Context(), userID, projectID); err != nil {
		return err
	}
	return respondMessage(c, msgDeleted)
}

func (h *ProjectHandler) ListMembers(c echo.Context) error {
	userID, projectID, err := caller(c)
	if err != nil {
		return err
	}

	members, err := h.projects.ListMembers(c.Request().Context(), userID, projectID)
	if err != nil {
		return err
	}
	return respondOK(c, members)
}

func (h *ProjectHandler) AddMember(c echo.Context) error {
	userID, projectID, err := caller(c)
	if err != nil {
		return err
	}

	var req AddMemberRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return err
	}

	member, err := h.projects.AddMember(c.Request().Context(), userID, projectID, req.UserID, req.RoleID)
	if err != nil {
		return err
	}
	return respondCreated(c, member)
}

func (h *ProjectHandler) UpdateMemberRole(c echo.Context) error {
	userID, projectID, err := caller(c)
	if err != nil {
		return err
	}
	targetID, err := uuidParam(c, paramUserID)
	if err != nil {
		return err
	}

	var req UpdateMemberRoleRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return err
	}

	member, err := h.projects.UpdateMemberRole(c.Request().Context(), userID, projectID, targetID, req.RoleID)
	if err != nil {
		return err
	}
	return respondOK(c, member)
}

func (h *ProjectHandler) RemoveMember(c echo.Context) error {
	userID, projectID, err := caller(c)
	if err != nil {
		return err
	}
	targetID, err := uuidParam(c, paramUserID)
	if err != nil {
		return err
	}

	if err := h.projects.RemoveMember(c.Request().Context(), userID, projectID, targetID); err != nil {
		return err
	}
	return respondMessage(c, msgDeleted)
}
