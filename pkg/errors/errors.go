package errors

import (
	"errors"
	"fmt"
)

// Domain errors - Sentinel errors for use with errors.Is()
var (
	ErrValidation      = errors.New("validation error")
	ErrAuthInvalid     = errors.New("authentication invalid")
	ErrAuthExpired     = errors.New("authentication expired")
	ErrAccountDisabled = errors.New("account disabled")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("resource not found")
	ErrConflict        = errors.New("resource conflict")
	ErrUnavailable     = errors.New("service unavailable")
	ErrInternalServer  = errors.New("internal server error")
)

const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeAuthInvalid    = "AUTH_INVALID"
	CodeAuthExpired    = "AUTH_EXPIRED"
	CodeAccountDisable = "ACCOUNT_DISABLED"
	CodeForbidden      = "FORBIDDEN"
	CodeNotFound       = "NOT_FOUND"
	CodeConflict       = "CONFLICT"
	CodeUnavailable    = "UNAVAILABLE"
	CodeInternal       = "INTERNAL_SERVER_ERROR"

	msgInvalidCredentials = "invalid email or password"
)

// Custom error type with context
type AppError struct {
	Code    string
	Message string
	Err     error
	// Details carries per-field validation messages, if any.
	Details []string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Constructors
func Validation(msg string, details ...string) *AppError {
	return &AppError{Code: CodeValidation, Message: msg, Err: ErrValidation, Details: details}
}

func AuthInvalid(msg string) *AppError {
	return &AppError{Code: CodeAuthInvalid, Message: msg, Err: ErrAuthInvalid}
}

// InvalidCredentials is returned for both unknown email and wrong password.
func InvalidCredentials() *AppError {
	return AuthInvalid(msgInvalidCredentials)
}

func AuthExpired(msg string) *AppError {
	return &AppError{Code: CodeAuthExpired, Message: msg, Err: ErrAuthExpired}
}

func AccountDisabled(msg string) *AppError {
	return &AppError{Code: CodeAccountDisable, Message: msg, Err: ErrAccountDisabled}
}

func Forbidden(msg string) *AppError {
	return &AppError{Code: CodeForbidden, Message: msg, Err: ErrForbidden}
}

func NotFound(msg string) *AppError {
	return &AppError{Code: CodeNotFound, Message: msg, Err: ErrNotFound}
}

func Conflict(msg string) *AppError {
	return &AppError{Code: CodeConflict, Message: msg, Err: ErrConflict}
}

func Unavailable(msg string) *AppError {
	return &AppError{Code: CodeUnavailable, Message: msg, Err: ErrUnavailable}
}

func Internal(msg string, err error) *AppError {
	if err == nil {
		err = ErrInternalServer
	}
	return &AppError{Code: CodeInternal, Message: msg, Err: err}
}

// Is reports whether err matches target; re-exported so callers that import
// this package as apperrors don't also need the standard errors package.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As mirrors errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}
