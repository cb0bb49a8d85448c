package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailNotRegistered is returned when login targets an unknown email.
	ErrEmailNotRegistered = errors.New("email is not registered")
	// ErrInvalidPassword is returned when the password does not match.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrUserAlreadyExists is returned when registering an email twice.
	ErrUserAlreadyExists = errors.New("already registered, please login")
	// ErrWrongAnswer is returned when the email/security answer pair does not match.
	ErrWrongAnswer = errors.New("wrong email or answer")
	// ErrCategoryExists is returned when a category name is already taken.
	ErrCategoryExists = errors.New("category already exists")
	// ErrInvalidStatus is returned for order statuses outside the known set.
	ErrInvalidStatus = errors.New("invalid order status")
	// ErrInvalidID is returned when a path or body id cannot be parsed.
	ErrInvalidID = errors.New("invalid id")
	// ErrUnauthorized is returned when the caller is not allowed to proceed.
	ErrUnauthorized = errors.New("unauthorized access")
	// ErrPhotoNotFound is returned when a product has no stored photo.
	ErrPhotoNotFound = errors.New("photo not found")
)

// ErrorResponse is the failure payload the storefront client understands.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Fail builds an ErrorResponse, attaching the cause when present.
func Fail(message string, cause error) ErrorResponse {
	resp := ErrorResponse{Success: false, Message: message}
	if cause != nil {
		resp.Error = cause.Error()
	}
	return resp
}

// ValidationError reports the first failing required-field check of a request.
// Status is the HTTP status the storefront answers with for that resource.
type ValidationError struct {
	Field   string
	Message string
	Status  int
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a validation error answered with status.
func NewValidationError(field, message string, status int) *ValidationError {
	return &ValidationError{Field: field, Message: message, Status: status}
}

// Required is the "<Field> is Required" error used by catalog writes, answered with 500.
func Required(field string) *ValidationError {
	return NewValidationError(field, field+" is Required", http.StatusInternalServerError)
}

// AsValidation unwraps a ValidationError.
func AsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Cause      error
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message string, cause error) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Cause:      cause,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return Fail(e.Message, e.Cause)
}

// MapErrorToHTTP maps domain errors to HTTP errors. fallbackStatus and
// fallbackMessage describe the endpoint's generic failure answer.
func MapErrorToHTTP(err error, fallbackStatus int, fallbackMessage string) *HTTPError {
	switch {
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, ErrInvalidID), errors.Is(err, ErrInvalidStatus):
		return NewHTTPError(http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, ErrUnauthorized):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), nil)
	default:
		return NewHTTPError(fallbackStatus, fallbackMessage, err)
	}
}

// Is and As re-export the standard helpers so callers need a single errors import.
var (
	Is = errors.Is
	As = errors.As
)
