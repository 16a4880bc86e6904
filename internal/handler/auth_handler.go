package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"authsvc/internal/errors"
	"authsvc/internal/model"
	"authsvc/internal/service"
)

// ContextUserKey is the echo context key the auth guard stores the resolved user under.
const ContextUserKey = "user"

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Username *string `json:"username,omitempty"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	FullName string  `json:"full_name" validate:"required"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest represents a token refresh request.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ForgotPasswordRequest carries the email to start a password reset for.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest carries a reset token and the replacement password.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// ChangePasswordRequest carries the old and new passwords.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// MessageResponse is a plain confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.authService.Register(c.Request().Context(), service.RegisterParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		return respondError(err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Registration successful",
		"user":    user,
	})
}

// Login godoc
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} service.TokenPair
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	tokens, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, tokens)
}

// Refresh godoc
// @Summary Refresh access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} service.TokenPair
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/refresh-token [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	tokens, err := h.authService.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, tokens)
}

// Logout godoc
// @Summary Logout user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	token, err := bearerToken(c)
	if err != nil {
		return err
	}
	if err := h.authService.Revoke(c.Request().Context(), token); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Successfully logged out"})
}

// RevokeToken godoc
// @Summary Revoke token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/revoke-token [post]
func (h *AuthHandler) RevokeToken(c echo.Context) error {
	token, err := bearerToken(c)
	if err != nil {
		return err
	}
	if err := h.authService.Revoke(c.Request().Context(), token); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Token has been revoked"})
}

// InitiateEmailVerification godoc
// @Summary Initiate email verification
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/verify-email/initiate [post]
func (h *AuthHandler) InitiateEmailVerification(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	token, err := h.authService.InitiateEmailVerification(c.Request().Context(), user)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message":            "Verification email sent",
		"verification_token": token,
	})
}

// VerifyEmail godoc
// @Summary Verify user email
// @Tags auth
// @Produce json
// @Param token query string true "Verification token"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /auth/verify-email [get]
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing token")
	}

	if err := h.authService.VerifyEmail(c.Request().Context(), token); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Email successfully verified"})
}

// ForgotPassword godoc
// @Summary Initiate password reset flow
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ForgotPasswordRequest true "Account email"
// @Success 200 {object} map[string]string
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	resetToken, err := h.authService.ForgotPassword(c.Request().Context(), req.Email)
	if err != nil {
		return respondError(err)
	}

	// Uniform response whether or not the email exists.
	resp := map[string]string{
		"message": "If your email exists in the system, a password reset link was sent.",
	}
	if resetToken != "" {
		resp["reset_token"] = resetToken
	}
	return c.JSON(http.StatusOK, resp)
}

// ResetPassword godoc
// @Summary Reset password using token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "Reset token and new password"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authService.ResetPassword(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Password has been reset successfully"})
}

// ChangePassword godoc
// @Summary Change password for authenticated user
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChangePasswordRequest true "Old and new passwords"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authService.ChangePassword(c.Request().Context(), user, req.OldPassword, req.NewPassword); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Password has been changed successfully"})
}

// ValidateToken godoc
// @Summary Validate JWT token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/validate-token [post]
func (h *AuthHandler) ValidateToken(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"valid": true,
		"user": map[string]interface{}{
			"id":       user.ID.String(),
			"email":    user.Email,
			"username": user.Username,
		},
	})
}

// currentUser returns the user resolved by the auth guard.
func currentUser(c echo.Context) (*model.User, error) {
	user, ok := c.Get(ContextUserKey).(*model.User)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid authentication credentials")
	}
	return user, nil
}

// bearerToken extracts the raw token from the Authorization header.
func bearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" || token == header {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
	}
	return token, nil
}

// respondError translates a domain error into the HTTP error envelope.
func respondError(err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}
