package fittrack

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/samber/oops"

	"github.com/fittrack/fittrack/mail"
	"github.com/fittrack/fittrack/password"
	"github.com/fittrack/fittrack/schema"
	"github.com/fittrack/fittrack/token"
)

// Error codes for categorizing errors.
const (
	CodeValidation         = "VALIDATION_FAILED"
	CodeEmailTaken         = "EMAIL_TAKEN"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeTokenInvalid       = "TOKEN_INVALID"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeDeliveryFailed     = "DELIVERY_FAILED"
	CodeConfigInvalid      = "CONFIG_INVALID"
	CodeInternal           = "INTERNAL"
)

// Sentinel errors for use with errors.Is().
var (
	// Account errors
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")

	// Verification errors
	ErrVerificationTokenInvalid = errors.New("verification link is invalid or has expired")

	// Config errors
	ErrConfigInvalid = errors.New("configuration is invalid")
)

// Error is a structured error type that includes an error code and optional wrapped error.
type Error struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error with the given code, message, and optional wrapped error.
func NewError(code, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ErrorCode returns the code for err: the Code of the outermost *Error or
// oops error if there is one, otherwise a code derived from the well-known
// sentinels.
func ErrorCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	if o, ok := oops.AsOops(err); ok {
		if code, ok := o.Code().(string); ok && code != "" {
			return code
		}
	}

	switch {
	case err == nil:
		return ""
	case errors.Is(err, schema.ErrValidation), errors.Is(err, password.ErrInvalidInput):
		return CodeValidation
	case errors.Is(err, ErrEmailTaken):
		return CodeEmailTaken
	case errors.Is(err, ErrInvalidCredentials):
		return CodeInvalidCredentials
	case errors.Is(err, ErrUserNotFound):
		return CodeUserNotFound
	case errors.Is(err, token.ErrTokenExpired):
		return CodeTokenExpired
	case token.IsValidationError(err), errors.Is(err, ErrVerificationTokenInvalid):
		return CodeTokenInvalid
	case errors.Is(err, mail.ErrDelivery):
		return CodeDeliveryFailed
	case errors.Is(err, ErrConfigInvalid):
		return CodeConfigInvalid
	default:
		return CodeInternal
	}
}

// ErrorToHTTPStatus converts an error to an HTTP status code.
func ErrorToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	switch ErrorCode(err) {
	case CodeValidation:
		return http.StatusUnprocessableEntity
	case CodeEmailTaken:
		return http.StatusConflict
	case CodeInvalidCredentials:
		return http.StatusUnauthorized
	case CodeUserNotFound:
		return http.StatusNotFound
	case CodeTokenInvalid, CodeTokenExpired:
		return http.StatusBadRequest
	case CodeDeliveryFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// IsTokenError returns true if the error is a token-related error.
func IsTokenError(err error) bool {
	return token.IsValidationError(err) || errors.Is(err, ErrVerificationTokenInvalid)
}

// IsConfigError returns true if the error is a configuration-related error.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfigInvalid) || errors.Is(err, mail.ErrConfigInvalid)
}
