package fittrack

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/samber/oops"

	"github.com/fittrack/fittrack/mail"
	"github.com/fittrack/fittrack/password"
	"github.com/fittrack/fittrack/schema"
	"github.com/fittrack/fittrack/token"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name: "with wrapped error",
			err: &Error{
				Code:    CodeEmailTaken,
				Message: "signup rejected",
				Err:     ErrEmailTaken,
			},
			expected: "EMAIL_TAKEN: signup rejected: email is already registered",
		},
		{
			name: "without wrapped error",
			err: &Error{
				Code:    CodeUserNotFound,
				Message: "no such account",
			},
			expected: "USER_NOT_FOUND: no such account",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error.Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	err := NewError(CodeInternal, "boom", underlying)

	if err.Unwrap() != underlying {
		t.Error("Unwrap() should return the underlying error")
	}
	if !errors.Is(err, underlying) {
		t.Error("errors.Is should find underlying error")
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"coded error wins", NewError(CodeTokenExpired, "x", ErrVerificationTokenInvalid), CodeTokenExpired},
		{"wrapped coded error", fmt.Errorf("outer: %w", NewError(CodeEmailTaken, "x", nil)), CodeEmailTaken},
		{"schema validation", &schema.ValidationError{Schema: schema.Signup}, CodeValidation},
		{"password input", &password.InvalidInputError{Field: "password", Reason: "empty"}, CodeValidation},
		{"email taken", ErrEmailTaken, CodeEmailTaken},
		{"invalid credentials", ErrInvalidCredentials, CodeInvalidCredentials},
		{"user not found", ErrUserNotFound, CodeUserNotFound},
		{"token expired", token.ErrTokenExpired, CodeTokenExpired},
		{"token signature", token.ErrTokenInvalidSig, CodeTokenInvalid},
		{"verification invalid", ErrVerificationTokenInvalid, CodeTokenInvalid},
		{"delivery", &mail.DeliveryError{Recipient: "a@b.c", Stage: mail.StageSend, Err: errors.New("dial")}, CodeDeliveryFailed},
		{"config", fmt.Errorf("%w: secret is required", ErrConfigInvalid), CodeConfigInvalid},
		{"unknown", errors.New("disk on fire"), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorCode(tt.err); got != tt.want {
				t.Errorf("ErrorCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorToHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", &schema.ValidationError{Schema: schema.Login}, http.StatusUnprocessableEntity},
		{"email taken", NewError(CodeEmailTaken, "x", ErrEmailTaken), http.StatusConflict},
		{"invalid credentials", ErrInvalidCredentials, http.StatusUnauthorized},
		{"user not found", ErrUserNotFound, http.StatusNotFound},
		{"token invalid", ErrVerificationTokenInvalid, http.StatusBadRequest},
		{"token expired", token.ErrTokenExpired, http.StatusBadRequest},
		{"delivery", &mail.DeliveryError{Stage: mail.StageSend, Err: context.DeadlineExceeded}, http.StatusBadGateway},
		{"oops internal", oops.Code(CodeInternal).Errorf("boom"), http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorToHTTPStatus(tt.err); got != tt.want {
				t.Errorf("ErrorToHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsTokenError(t *testing.T) {
	tokenErrors := []error{
		token.ErrTokenExpired,
		token.ErrTokenMalformed,
		token.ErrTokenInvalidSig,
		token.ErrTokenWrongPurpose,
		ErrVerificationTokenInvalid,
	}

	for _, err := range tokenErrors {
		if !IsTokenError(err) {
			t.Errorf("IsTokenError(%v) = false, want true", err)
		}
	}

	if IsTokenError(ErrEmailTaken) {
		t.Error("IsTokenError(ErrEmailTaken) = true, want false")
	}
}

func TestIsConfigError(t *testing.T) {
	if !IsConfigError(ErrConfigInvalid) {
		t.Error("IsConfigError(ErrConfigInvalid) = false, want true")
	}
	if !IsConfigError(mail.ErrConfigInvalid) {
		t.Error("IsConfigError(mail.ErrConfigInvalid) = false, want true")
	}
	if IsConfigError(ErrInvalidCredentials) {
		t.Error("IsConfigError(ErrInvalidCredentials) = true, want false")
	}
}

func TestErrorCode_Oops(t *testing.T) {
	inner := &password.InvalidInputError{Field: "hash", Reason: "corrupt"}
	err := oops.Code(CodeInternal).With("user_id", "01H").Wrap(inner)

	if got := ErrorCode(err); got != CodeInternal {
		t.Errorf("ErrorCode() = %q, want %q", got, CodeInternal)
	}
	if got := ErrorToHTTPStatus(err); got != http.StatusInternalServerError {
		t.Errorf("ErrorToHTTPStatus() = %d, want %d", got, http.StatusInternalServerError)
	}

	// Without a code the wrapped sentinel decides.
	if got := ErrorCode(oops.Wrap(ErrEmailTaken)); got != CodeEmailTaken {
		t.Errorf("ErrorCode() = %q, want %q", got, CodeEmailTaken)
	}
}
