package handler

import (
	"github.com/labstack/echo/v4"
)

type CommentHandler struct {
	comments CommentService
}

func NewCommentHandler(comments CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

type CommentRequest struct {
	Content string `json:"content"`
}

func (h *CommentHandler) List(c echo.Context) error {
	userID, projectID, err := caller(c)
	if err != nil {
		return err
	}
	taskID, err := uuidParam(c, paramTaskID)
	if err != nil {
		return err
	}

	list, err := h.comments.List(c.Request().Context(), userID, projectID, taskID)
	if err != nil {
		return err
	}
	return respondOK(c, list)
}

func (h *CommentHandler) Create(c echo.Context) error {
	userID, projectID, err := caller(c)
	if err != nil {
		return err
	}
	taskID, err := uuidParam(c, paramTaskID)
	if err != nil {
		return err
	}

	var req CommentRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return err
	}

	created, err := h.comments.Create(c.Request().Context(), userID, projectID, taskID, req.Content)
	if err != nil {
		return err
	}
	return respondCreated(c, created)
}

func (h *CommentHandler) Update(c echo.Context) error {
	userID, projectID, err := caller(c)
	if err != nil {
		return err
	}
	commentID, err := uuidParam(c, paramCommentID)
	if err != nil {
		return err
	}

	var req CommentRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return err
	}

	updated, err := h.comments.Update(c.Request().Context(), userID, projectID, commentID, req.Content)
	if err != nil {
		return err
	}
	return respondOK(c, updated)
}

func (h *CommentHandler) Delete(c echo.Context) error {
	userID, projectID, err := caller(c)
	if err != nil {
		return err
	}
	commentID, err := uuidParam(c, paramCommentID)
	if err != nil {
		return err
	}

	if err := h.comments.Delete(c.Request().Context(), userID, projectID, commentID); err != nil {
		return err
	}
	return respondMessage(c, msgDeleted)
}
