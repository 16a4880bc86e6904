package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"authsvc/internal/service"
)

// UserHandler handles profile endpoints for the authenticated user.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UpdateProfileRequest represents a partial profile update; absent fields are
// left untouched.
type UpdateProfileRequest struct {
	Username      *string `json:"username,omitempty"`
	FullName      *string `json:"full_name,omitempty"`
	Age           *int    `json:"age,omitempty" validate:"omitempty,gte=0"`
	Gender        *string `json:"gender,omitempty"`
	LanguageLevel *string `json:"language_level,omitempty"`
}

// UpdateEmailRequest carries a replacement email address.
type UpdateEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// GetProfile godoc
// @Summary Retrieve current user profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /auth/profile [get]
func (h *UserHandler) GetProfile(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	profile, err := h.userService.GetProfile(c.Request().Context(), user.ID)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, profile)
}

// UpdateProfile godoc
// @Summary Update user profile
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Fields to update"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/profile [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updated, err := h.userService.UpdateProfile(c.Request().Context(), user, service.ProfileUpdate{
		Username:      req.Username,
		FullName:      req.FullName,
		Age:           req.Age,
		Gender:        req.Gender,
		LanguageLevel: req.LanguageLevel,
	})
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

// UpdateEmail godoc
// @Summary Update user email and reset verification
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateEmailRequest true "New email"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/profile/email [put]
func (h *UserHandler) UpdateEmail(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req UpdateEmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updated, err := h.userService.UpdateEmail(c.Request().Context(), user, req.Email)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

// Deactivate godoc
// @Summary Deactivate user account
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/profile [delete]
func (h *UserHandler) Deactivate(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.userService.Deactivate(c.Request().Context(), user); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "User account has been deactivated"})
}

// DeletePermanently godoc
// @Summary Permanently delete user account
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/profile/permanent [delete]
func (h *UserHandler) DeletePermanently(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.userService.DeletePermanently(c.Request().Context(), user); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "User account has been permanently deleted"})
}
