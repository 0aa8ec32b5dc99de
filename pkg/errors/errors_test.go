package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsWrapSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		sentinel error
		code     string
	}{
		{"validation", Validation("bad"), ErrValidation, CodeValidation},
		{"auth invalid", AuthInvalid("nope"), ErrAuthInvalid, CodeAuthInvalid},
		{"credentials", InvalidCredentials(), ErrAuthInvalid, CodeAuthInvalid},
		{"expired", AuthExpired("old"), ErrAuthExpired, CodeAuthExpired},
		{"disabled", AccountDisabled("off"), ErrAccountDisabled, CodeAccountDisable},
		{"forbidden", Forbidden("no"), ErrForbidden, CodeForbidden},
		{"not found", NotFound("gone"), ErrNotFound, CodeNotFound},
		{"conflict", Conflict("dup"), ErrConflict, CodeConflict},
		{"unavailable", Unavailable("off"), ErrUnavailable, CodeUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, stderrors.Is(tt.err, tt.sentinel))
			assert.Equal(t, tt.code, tt.err.Code)

			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.True(t, Is(wrapped, tt.sentinel))

			var appErr *AppError
			assert.True(t, As(wrapped, &appErr))
			assert.Equal(t, tt.err.Message, appErr.Message)
		})
	}
}

func TestInvalidCredentialsMessageIsStable(t *testing.T) {
	// unknown email and wrong password must render identically
	assert.Equal(t, InvalidCredentials().Error(), InvalidCredentials().Error())
}

func TestInternalDefaultsToSentinel(t *testing.T) {
	err := Internal("boom", nil)
	assert.True(t, stderrors.Is(err, ErrInternalServer))

	cause := stderrors.New("db down")
	err = Internal("boom", cause)
	assert.True(t, stderrors.Is(err, cause))
	assert.Contains(t, err.Error(), "db down")
}

func TestValidationDetails(t *testing.T) {
	err := Validation("invalid role", "unknown resource: widgets", "unknown action task:fly")
	assert.Len(t, err.Details, 2)
}
