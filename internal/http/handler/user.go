package handler

import (
	"projecthub/internal/auth"
	"projecthub/internal/domain/user"

	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	users    ProfileService
	activity ActivityReader
}

func NewUserHandler(users ProfileService, activity ActivityReader) *UserHandler {
	return &UserHandler{
		users:    users,
		activity: activity,
	}
}

type UpdateProfileRequest struct {
	DisplayName *string `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl"`
}

func (h *UserHandler) Me(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return err
	}

	u, err := h.users.Get(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return respondOK(c, u.Profile())
}

func (h *UserHandler) UpdateMe(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return err
	}

	var req UpdateProfileRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return err
	}

	u, err := h.users.UpdateProfile(c.Request().Context(), userID, user.UpdateProfileInput{
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		return err
	}
	return respondOK(c, u.Profile())
}

// DeleteMe deactivates the account. Rows are kept for the activity history.
func (h *UserHandler) DeleteMe(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return err
	}

	if err := h.users.Deactivate(c.Request().Context(), userID); err != nil {
		return err
	}
	return respondMessage(c, msgAccountDeactivated)
}

func (h *UserHandler) MyActivity(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return err
	}

	req, err := pageRequest(c)
	if err != nil {
		return err
	}

	result, err := h.activity.ListForUser(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	return respondPage(c, result)
}
