package errors

import (
	"errors"
	"net/http"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("user with this username or email already exists")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInternalServer     = errors.New("internal server error")
	ErrBadRequest         = errors.New("bad request")
	ErrNotFound           = errors.New("resource not found")

	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrRefreshTokenExpired = errors.New("refresh token is expired or used")

	ErrInvalidUsername    = errors.New("invalid username")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrInvalidFullName    = errors.New("invalid full name")
	ErrInvalidRole        = errors.New("invalid role, must be 'user' or 'admin'")
	ErrInvalidStatus      = errors.New("invalid status, must be 'pending' or 'completed'")
	ErrInvalidTitle       = errors.New("title must be at least 3 characters long")
	ErrInvalidDescription = errors.New("description must be at least 5 characters long")
)

// APIError carries an HTTP status alongside a message so the single
// top-level converter can build the error envelope for any handler.
type APIError struct {
	StatusCode int
	Message    string
	Errs       []string
}

func (e *APIError) Error() string {
	return e.Message
}

func New(statusCode int, message string, errs ...string) *APIError {
	return &APIError{StatusCode: statusCode, Message: message, Errs: errs}
}

func BadRequest(message string) *APIError {
	return New(http.StatusBadRequest, message)
}

func Unauthorized(message string) *APIError {
	return New(http.StatusUnauthorized, message)
}

func Forbidden(message string) *APIError {
	return New(http.StatusForbidden, message)
}

func NotFound(message string) *APIError {
	return New(http.StatusNotFound, message)
}

func Internal(message string) *APIError {
	return New(http.StatusInternalServerError, message)
}

// FromError maps any error to an APIError, defaulting to 500 for
// anything without a known status.
func FromError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrTaskNotFound), errors.Is(err, ErrNotFound):
		return NotFound(err.Error())
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrInvalidToken), errors.Is(err, ErrRefreshTokenExpired):
		return Unauthorized(err.Error())
	case errors.Is(err, ErrForbidden):
		return Forbidden(err.Error())
	case errors.Is(err, ErrUserAlreadyExists), errors.Is(err, ErrBadRequest):
		return BadRequest(err.Error())
	default:
		return Internal(ErrInternalServer.Error())
	}
}
