package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrEmailOrUsernameTaken is returned when registration collides with an existing account.
	ErrEmailOrUsernameTaken = errors.New("email or username already exists")
	// ErrUsernameTaken is returned when a profile update requests a username owned by another user.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	// ErrTokenRevoked is returned when a token was explicitly revoked before expiry.
	ErrTokenRevoked = errors.New("token has been revoked")
	// ErrUnauthenticated is returned when a bearer token fails signature or expiry checks.
	ErrUnauthenticated = errors.New("invalid authentication credentials")
	// ErrInvalidToken is returned when a special-purpose token (verification, reset) is malformed or expired.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrWrongPassword is returned when the old password does not verify on a password change.
	ErrWrongPassword = errors.New("old password is incorrect")
	// ErrNoExamRunning is returned when ending an exam that was never started.
	ErrNoExamRunning = errors.New("no exam is currently running")
	// ErrUserNotFound is returned when a referenced user no longer exists.
	ErrUserNotFound = errors.New("user not found")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Unknown errors collapse
// into a generic 500 so internals never leak to callers.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrEmailOrUsernameTaken):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "ALREADY_EXISTS")
	case errors.Is(err, ErrUsernameTaken):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "USERNAME_TAKEN")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrTokenRevoked):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "TOKEN_REVOKED")
	case errors.Is(err, ErrUnauthenticated):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "UNAUTHENTICATED")
	case errors.Is(err, ErrInvalidToken):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_TOKEN")
	case errors.Is(err, ErrWrongPassword):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "WRONG_PASSWORD")
	case errors.Is(err, ErrNoExamRunning):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "NO_EXAM_RUNNING")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
