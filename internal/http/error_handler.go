package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	apperrors "projecthub/pkg/errors"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const msgInternalServerError = "Internal server error"

// ErrorEnvelope is the body of every failed response.
type ErrorEnvelope struct {
	Success    bool      `json:"success"`
	StatusCode int       `json:"statusCode"`
	Message    []string  `json:"message"`
	Errors     []string  `json:"errors"`
	Timestamp  time.Time `json:"timestamp"`
	Path       string    `json:"path"`
	Method     string    `json:"method"`
	RequestID  string    `json:"requestId"`
}

// statusFor maps sentinel errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrAuthInvalid),
		errors.Is(err, apperrors.ErrAuthExpired),
		errors.Is(err, apperrors.ErrAccountDisabled):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// NewErrorHandler returns the echo error handler. It maps sentinel errors to
// status codes, hides internal errors from clients, and logs every failure
// with the request id.
func NewErrorHandler(log logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := msgInternalServerError
		var details []string

		var httpErr *echo.HTTPError
		var appErr *apperrors.AppError
		switch {
		case errors.As(err, &httpErr):
			code = httpErr.Code
			message = fmt.Sprintf("%v", httpErr.Message)
		case errors.As(err, &appErr):
			code = statusFor(err)
			message = appErr.Message
			details = appErr.Details
		default:
			code = statusFor(err)
			if code < http.StatusInternalServerError {
				message = err.Error()
			}
		}

		requestID := c.Response().Header().Get(echo.HeaderXRequestID)
		entry := log.WithFields(logrus.Fields{
			"request_id": requestID,
			"status":     code,
			"method":     c.Request().Method,
			"path":       c.Request().URL.Path,
		}).WithError(err)

		if code >= http.StatusInternalServerError {
			entry.Error("internal_server_error")
			// Unavailable carries a message meant for clients; everything else is hidden.
			if !errors.Is(err, apperrors.ErrUnavailable) {
				message = msgInternalServerError
				details = nil
			}
		} else {
			entry.Warn("client_error")
		}

		body := ErrorEnvelope{
			Success:    false,
			StatusCode: code,
			Message:    []string{message},
			Errors:     details,
			Timestamp:  time.Now().UTC(),
			Path:       c.Request().URL.Path,
			Method:     c.Request().Method,
			RequestID:  requestID,
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, body)
		}
		if err != nil {
			log.WithError(err).Error("failed to write error response")
		}
	}
}
