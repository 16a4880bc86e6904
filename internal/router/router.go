package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	apperrors "authsvc/internal/errors"
	"authsvc/internal/handler"
	"authsvc/internal/service"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	authService service.AuthService,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	examHandler *handler.ExamHandler,
	healthHandler *handler.HealthHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/swagger/index.html")
	})
	e.GET("/health", healthHandler.Check)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authGroup := e.Group("/auth")

	// Public routes
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/refresh-token", authHandler.Refresh)
	authGroup.GET("/verify-email", authHandler.VerifyEmail)
	authGroup.POST("/forgot-password", authHandler.ForgotPassword)
	authGroup.POST("/reset-password", authHandler.ResetPassword)

	// Logout and revoke deny-list whatever bearer string is presented, so
	// they sit outside the guard: an expired token can still be revoked.
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.POST("/revoke-token", authHandler.RevokeToken)

	// Guarded routes: the token must not be revoked, must decode, and its
	// subject must resolve to a stored user.
	guard := AuthGuard(authService)

	secured := authGroup.Group("", guard)
	secured.POST("/verify-email/initiate", authHandler.InitiateEmailVerification)
	secured.POST("/change-password", authHandler.ChangePassword)
	secured.POST("/validate-token", authHandler.ValidateToken)
	secured.GET("/profile", userHandler.GetProfile)
	secured.PUT("/profile", userHandler.UpdateProfile)
	secured.PUT("/profile/email", userHandler.UpdateEmail)
	secured.DELETE("/profile", userHandler.Deactivate)
	secured.DELETE("/profile/permanent", userHandler.DeletePermanently)

	exam := e.Group("/exam-time", guard)
	exam.POST("/start", examHandler.Start)
	exam.GET("/status", examHandler.Status)
	exam.POST("/end", examHandler.End)
	exam.POST("/reset", examHandler.Reset)
}

// AuthGuard builds the JWT middleware. Token parsing is delegated to the
// session manager so the revocation check and user resolution run on every
// guarded request; the resolved user lands in the context under "user".
func AuthGuard(authService service.AuthService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  handler.ContextUserKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return authService.Authenticate(c.Request().Context(), auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			httpErr := apperrors.MapErrorToHTTP(err)
			if httpErr.StatusCode != http.StatusUnauthorized {
				httpErr = apperrors.NewHTTPError(http.StatusUnauthorized, "invalid or missing token", "UNAUTHENTICATED")
			}
			return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
