package handler

import (
	"net/http"

	"projecthub/internal/auth"
	apperrors "projecthub/pkg/errors"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	auth AuthService
}

func NewAuthHandler(auth AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return err
	}

	session, err := h.auth.Register(c.Request().Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		return err
	}
	return respondCreated(c, session)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return err
	}

	session, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, msgLoggedIn, session)
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return err
	}
	if req.RefreshToken == "" {
		return apperrors.Validation(msgRefreshTokenRequired)
	}

	pair, err := h.auth.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}
	return respondOK(c, pair)
}

// Logout revokes the posted refresh token, or every session of the caller
// when the body is empty.
func (h *AuthHandler) Logout(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return err
	}

	var req RefreshRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		return err
	}

	if err := h.auth.Logout(c.Request().Context(), userID, req.RefreshToken); err != nil {
		return err
	}
	return respondMessage(c, msgLogout)
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return err
	}

	var req ChangePasswordRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return err
	}

	if err := h.auth.ChangePassword(c.Request().Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return respondMessage(c, msgPasswordChanged)
}
