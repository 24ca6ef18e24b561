package token

import "errors"

// Token-related errors.
var (
	// ErrTokenExpired indicates the token has expired.
	ErrTokenExpired = errors.New("token has expired")

	// ErrTokenNotYetValid indicates the token is not yet valid (iat in future).
	ErrTokenNotYetValid = errors.New("token is not yet valid")

	// ErrTokenMalformed indicates the token format is invalid.
	ErrTokenMalformed = errors.New("token is malformed")

	// ErrTokenInvalidSig indicates the token signature is invalid.
	ErrTokenInvalidSig = errors.New("token signature is invalid")

	// ErrTokenWrongPurpose indicates a well-formed token was presented where a
	// token of another purpose was expected.
	ErrTokenWrongPurpose = errors.New("token purpose does not match")

	// ErrEmptySubject indicates a token was requested for an empty email.
	ErrEmptySubject = errors.New("token subject is empty")
)

// IsValidationError reports whether err came from validating a presented
// token, as opposed to a failure to sign one.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenNotYetValid) ||
		errors.Is(err, ErrTokenMalformed) ||
		errors.Is(err, ErrTokenInvalidSig) ||
		errors.Is(err, ErrTokenWrongPurpose)
}
