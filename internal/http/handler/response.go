package handler

import (
	"net/http"

	"projecthub/internal/domain/page"

	"github.com/labstack/echo/v4"
)

// Envelope wraps every successful response.
type Envelope struct {
	Success    bool       `json:"success"`
	StatusCode int        `json:"statusCode"`
	Message    string     `json:"message"`
	Data       any        `json:"data"`
	Meta       *page.Meta `json:"meta,omitempty"`
}

func respond(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Envelope{
		Success:    true,
		StatusCode: status,
		Message:    message,
		Data:       data,
	})
}

func respondOK(c echo.Context, data any) error {
	return respond(c, http.StatusOK, msgSuccess, data)
}

func respondCreated(c echo.Context, data any) error {
	return respond(c, http.StatusCreated, msgCreated, data)
}

func respondMessage(c echo.Context, message string) error {
	return respond(c, http.StatusOK, message, nil)
}

func respondPage[T any](c echo.Context, result *page.Result[T]) error {
	items := result.Items
	if items == nil {
		items = []T{}
	}
	meta := result.Meta
	return c.JSON(http.StatusOK, Envelope{
		Success:    true,
		StatusCode: http.StatusOK,
		Message:    msgSuccess,
		Data:       items,
		Meta:       &meta,
	})
}
