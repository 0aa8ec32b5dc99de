package handler

import (
	"projecthub/internal/domain/task"
	"projecthub/internal/tasks"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type TaskHandler struct {
	tasks TaskService
}

func NewTaskHandler(tasks TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

type CreateTaskRequest struct {
	Title        string         `json:"title"`
	Description  *string        `json:"description"`
	Priority     *task.Priority `json:"priority"`
	DueDate      *string        `json:"dueDate"`
	ParentTaskID *uuid.UUID     `json:"parentTaskId"`
}

type UpdateTaskRequest struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Status      *task.Status   `json:"status"`
	Priority    *task.Priority `json:"priority"`
	DueDate     *string        `json:"dueDate"`
}

type AssignRequest struct {
	UserID uuid.UUID `json:"userId"`
}

func (h *TaskHandler) taskRoute(c echo.Context) (userID, projectID, taskID uuid.UUID, err error) {
	userID, projectID, err = caller(c)
	if err != nil {
		return
	}
	taskID, err = uuidParam(c, paramTaskID)
	return
}

func (h *TaskHandler) List(c echo.Context) error {
	userID, projectID, err := caller(c)
	if err != nil {
		return err
	}
	req, err := pageRequest(c)
	if err != nil {
		return err
	}

	filter := tasks.ListFilter{Search: c.QueryParam(querySearch)}
	if raw := optionalQuery(c, queryStatus); raw != nil {
		s := task.Status(*raw)
		filter.Status = &s
	}
	if raw := optionalQuery(c, queryPriority); raw != nil {
		p := task.Priority(*raw)
		filter.Priority = &p
	}
	if filter.AssigneeID, err = queryUUID(c, queryAssigneeID); err != nil {
		return err
	}
	if filter.LabelID, err = queryUUID(c, queryLabelID); err != nil {
		return err
	}

	result, err := h.tasks.List(c.Request().Context(), userID, projectID, filter, req)
	if err != nil {
		return err
	}
	return respondPage(c, result)
}

func (h *TaskHandler) Create(c echo.Context) error {
	userID, projectID, err := caller(c)
	if err != nil {
		return err
	}

	var req CreateTaskRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return err
	}
	due, err := parseTime(req.DueDate)
	if err != nil {
		return err
	}

	in := tasks.CreateInput{
		Title:        req.Title,
		Description:  req.Description,
		DueDate:      due,
		ParentTaskID: req.ParentTaskID,
	}
	if req.Priority != nil {
		in.Priority = *req.Priority
	}

	t, err := h.tasks.Create(c.Request().Context(), userID, projectID, in)
	if err != nil {
		return err
	}
	return respondCreated(c, t)
}

func (h *TaskHandler) Get(c echo.Context) error {
	userID, projectID, taskID, err := h.taskRoute(c)
	if err != nil {
		return err
	}

	t, err := h.tasks.Get(c.Request().Context(), userID, projectID, taskID)
	if err != nil {
		return err
	}
	return respondOK(c, t)
}

func (h *TaskHandler) Update(c echo.Context) error {
	userID, projectID, taskID, err := h.taskRoute(c)
	if err != nil {
		return err
	}

	var req UpdateTaskRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return err
	}
	due, err := parseTime(req.DueDate)
	if err != nil {
		return err
	}

	t, err := h.tasks.Update(c.Request().Context(), userID, projectID, taskID, task.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     due,
	})
	if err != nil {
		return err
	}
	return respondOK(c, t)
}

func (h *TaskHandler) Delete(c echo.Context) error {
	userID, projectID, taskID, err := h.taskRoute(c)
	if err != nil {
		return err
	}

	if err := h.tasks.Delete(c.Request().Context(), userID, projectID, taskID); err != nil {
		return err
	}
	return respondMessage(c, msgDeleted)
}

func (h *TaskHandler) Assign(c echo.Context) error {
	userID, projectID, taskID, err := h.taskRoute(c)
	if err != nil {
		return err
	}

	var req AssignRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return err
	}

	t, err := h.tasks.Assign(c.Request().Context(), userID, projectID, taskID, req.UserID)
	if err != nil {
		return err
	}
	return respondOK(c, t)
}

func (h *TaskHandler) Unassign(c echo.Context) error {
	userID, projectID, taskID, err := h.taskRoute(c)
	if err != nil {
		return err
	}
	assigneeID, err := uuidParam(c, paramUserID)
	if err != nil {
		return err
	}

	if err := h.tasks.Unassign(c.Request().Context(), userID, projectID, taskID, assigneeID); err != nil {
		return err
	}
	return respondMessage(c, msgDeleted)
}
