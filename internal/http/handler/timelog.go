package handler

import (
	"projecthub/internal/audit"
	"projecthub/internal/domain/timelog"
	"projecthub/internal/timelogs"

	"github.com/labstack/echo/v4"
)

type TimeLogHandler struct {
	logs TimeLogService
}

func NewTimeLogHandler(logs TimeLogService) *TimeLogHandler {
	return &TimeLogHandler{logs: logs}
}

type CreateTimeLogRequest struct {
	DurationMinutes int     `json:"durationMinutes"`
	Description     *string `json:"description"`
	LoggedAt        *string `json:"loggedAt"`
}

type UpdateTimeLogRequest struct {
	DurationMinutes *int    `json:"durationMinutes"`
	Description     *string `json:"description"`
	LoggedAt        *string `json:"loggedAt"`
}

func (h *TimeLogHandler) List(c echo.Context) error {
	userID, projectID, err := caller(c)
	if err != nil {
		return err
	}
	taskID, err := uuidParam(c, paramTaskID)
	if err != nil {
		return err
	}
	from, err := audit.ParseBound(c.QueryParam(queryFrom), false)
	if err != nil {
		return err
	}
	to, err := audit.ParseBound(c.QueryParam(queryTo), true)
	if err != nil {
		return err
	}

	list, err := h.logs.List(c.Request().Context(), userID, projectID, taskID, from, to)
	if err != nil {
		return err
	}
	return respondOK(c, list)
}

func (h *TimeLogHandler) Create(c echo.Context) error {
	userID, projectID, err := caller(c)
	if err != nil {
		return err
	}
	taskID, err := uuidParam(c, paramTaskID)
	if err != nil {
		return err
	}

	var req CreateTimeLogRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return err
	}
	loggedAt, err := parseTime(req.LoggedAt)
	if err != nil {
		return err
	}

	in := timelogs.CreateInput{DurationMinutes: req.DurationMinutes, Description: req.Description}
	if loggedAt != nil {
		in.LoggedAt = *loggedAt
	}

	l, err := h.logs.Create(c.Request().Context(), userID, projectID, taskID, in)
	if err != nil {
		return err
	}
	return respondCreated(c, l)
}

func (h *TimeLogHandler) Update(c echo.Context) error {
	userID, projectID, err := caller(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, paramTimeLogID)
	if err != nil {
		return err
	}

	var req UpdateTimeLogRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return err
	}
	loggedAt, err := parseTime(req.LoggedAt)
	if err != nil {
		return err
	}

	l, err := h.logs.Update(c.Request().Context(), userID, projectID, id, timelog.UpdateTimeLogInput{
		DurationMinutes: req.DurationMinutes,
		Description:     req.Description,
		LoggedAt:        loggedAt,
	})
	if err != nil {
		return err
	}
	return respondOK(c, l)
}

func (h *TimeLogHandler) Delete(c echo.Context) error {
	userID, projectID, err := caller(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, paramTimeLogID)
	if err != nil {
		return err
	}

	if err := h.logs.Delete(c.Request().Context(), userID, projectID, id); err != nil {
		return err
	}
	return respondMessage(c, msgDeleted)
}

func (h *TimeLogHandler) Report(c echo.Context) error {
	userID, projectID, err := caller(c)
	if err != nil {
		return err
	}
	from, err := audit.ParseBound(c.QueryParam(queryFrom), false)
	if err != nil {
		return err
	}
	to, err := audit.ParseBound(c.QueryParam(queryTo), true)
	if err != nil {
		return err
	}

	report, err := h.logs.Report(c.Request().Context(), userID, projectID, from, to)
	if err != nil {
		return err
	}
	return respondOK(c, report)
}
