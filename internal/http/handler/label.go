package handler

import (
	"projecthub/internal/domain/label"
	"projecthub/internal/labels"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type LabelHandler struct {
	labels LabelService
}

func NewLabelHandler(labels LabelService) *LabelHandler {
	return &LabelHandler{labels: labels}
}

type CreateLabelRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type UpdateLabelRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

type AttachLabelRequest struct {
	LabelID uuid.UUID `json:"labelId"`
}

func (h *LabelHandler) List(c echo.Context) error {
	userID, projectID, err := caller(c)
	if err != nil {
		return err
	}

	list, err := h.labels.List(c.Request().Context(), userID, projectID)
	if err != nil {
		return err
	}
	return respondOK(c, list)
}

func (h *LabelHandler) Create(c echo.Context) error {
	userID, projectID, err := caller(c)
	if err != nil {
		return err
	}

	var req CreateLabelRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return err
	}

	l, err := h.labels.Create(c.Request().Context(), userID, projectID, labels.CreateInput{Name: req.Name, Color: req.Color})
	if err != nil {
		return err
	}
	return respondCreated(c, l)
}

func (h *LabelHandler) Update(c echo.Context) error {
	userID, projectID, err := caller(c)
	if err != nil {
		return err
	}
	labelID, err := uuidParam(c, paramLabelID)
	if err != nil {
		return err
	}

	var req UpdateLabelRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return err
	}

	l, err := h.labels.Update(c.Request().Context(), userID, projectID, labelID, label.UpdateLabelInput{Name: req.Name, Color: req.Color})
	if err != nil {
		return err
	}
	return respondOK(c, l)
}

func (h *LabelHandler) Delete(c echo.Context) error {
	userID, projectID, err := caller(c)
	if err != nil {
		return err
	}
	labelID, err := uuidParam(c, paramLabelID)
	if err != nil {
		return err
	}

	if err := h.labels.Delete(c.Request().Context(), userID, projectID, labelID); err != nil {
		return err
	}
	return respondMessage(c, msgDeleted)
}

func (h *LabelHandler) ListForTask(c echo.Context) error {
	userID, projectID, err := caller(c)
	if err != nil {
		return err
	}
	taskID, err := uuidParam(c, paramTaskID)
	if err != nil {
		return err
	}

	list, err := h.labels.ListForTask(c.Request().Context(), userID, projectID, taskID)
	if err != nil {
		return err
	}
	return respondOK(c, list)
}

func (h *LabelHandler) Attach(c echo.Context) error {
	userID, projectID, err := caller(c)
	if err != nil {
		return err
	}
	taskID, err := uuidParam(c, paramTaskID)
	if err != nil {
		return err
	}

	var req AttachLabelRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return err
	}

	list, err := h.labels.Attach(c.Request().Context(), userID, projectID, taskID, req.LabelID)
	if err != nil {
		return err
	}
	return respondOK(c, list)
}

func (h *LabelHandler) Detach(c echo.Context) error {
	userID, projectID, err := caller(c)
	if err != nil {
		return err
	}
	taskID, err := uuidParam(c, paramTaskID)
	if err != nil {
		return err
	}
	labelID, err := uuidParam(c, paramLabelID)
	if err != nil {
		return err
	}

	if err := h.labels.Detach(c.Request().Context(), userID, projectID, taskID, labelID); err != nil {
		return err
	}
	return respondMessage(c, msgDeleted)
}
