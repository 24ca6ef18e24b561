// Package middleware authenticates net/http requests carrying a bearer
// access token.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/fittrack/fittrack/token"
)

// TokenValidator validates an access token and returns its claims.
type TokenValidator interface {
	ValidateAccessToken(ctx context.Context, tokenString string) (*token.Claims, error)
}

// ErrMissingToken is passed to the ErrorHandler when the request carries no
// bearer token.
var ErrMissingToken = errors.New("missing bearer token")

// ErrorHandler writes the response for a rejected request.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Config tunes Authenticate. A nil Config uses the Authorization header and
// DefaultErrorHandler.
type Config struct {
	Header       string
	ErrorHandler ErrorHandler
}

func (c *Config) header() string {
	if c == nil || c.Header == "" {
		return "Authorization"
	}
	return c.Header
}

func (c *Config) errorHandler() ErrorHandler {
	if c == nil || c.ErrorHandler == nil {
		return DefaultErrorHandler
	}
	return c.ErrorHandler
}

// BearerToken returns the token of a "Bearer <token>" header value, or ""
// when the header is absent or uses another scheme. The scheme match is
// case-insensitive.
func BearerToken(r *http.Request, header string) string {
	scheme, tok, ok := strings.Cut(r.Header.Get(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(tok)
}

// Authenticate rejects requests without a valid access token and stores the
// claims of accepted ones in the request context.
func Authenticate(v TokenValidator, cfg *Config) func(http.Handler) http.Handler {
	header, fail := cfg.header(), cfg.errorHandler()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := BearerToken(r, header)
			if tok == "" {
				fail(w, r, ErrMissingToken)
				return
			}

			claims, err := v.ValidateAccessToken(r.Context(), tok)
			if err != nil {
				fail(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// DefaultErrorHandler answers with a plain-text status and a bearer
// challenge on 401.
func DefaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	code := ErrorToHTTPStatus(err)
	if code == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="fittrack"`)
	}
	http.Error(w, http.StatusText(code), code)
}

// ErrorToHTTPStatus maps an authentication failure to a status code.
// Cancelled requests get 503, everything else is a 401.
func ErrorToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusUnauthorized
	}
}

type claimsKey struct{}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *token.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFrom returns the claims stored by Authenticate, or nil.
func ClaimsFrom(ctx context.Context) *token.Claims {
	c, _ := ctx.Value(claimsKey{}).(*token.Claims)
	return c
}

// EmailFrom returns the subject email of the authenticated request, or "".
func EmailFrom(ctx context.Context) string {
	if c := ClaimsFrom(ctx); c != nil {
		return c.GetEmail()
	}
	return ""
}
