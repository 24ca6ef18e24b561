// Package token issues and validates HS256 JWTs for account email addresses.
package token

import (
	"context"
	"time"
)

// Default lifetimes.
const (
	DefaultAccessTokenTTL       = 30 * 24 * time.Hour
	DefaultVerificationTokenTTL = 24 * time.Hour
)

// Issued is a freshly signed token together with its expiry.
type Issued struct {
	Token     string
	ExpiresAt time.Time
}

// Config holds configuration for the token service.
type Config struct {
	// Secret is the HMAC signing key.
	Secret string

	// AccessTokenTTL is the access token lifetime.
	AccessTokenTTL time.Duration

	// VerificationTokenTTL is the lifetime of email verification tokens.
	VerificationTokenTTL time.Duration

	// ClockSkew allows for clock differences between servers.
	ClockSkew time.Duration

	// Issuer, when set, is written to and required in the "iss" claim.
	Issuer string
}

// Service handles token generation and validation.
type Service struct {
	config *Config
	now    func() time.Time
}

// NewService creates a new token service. Zero TTLs fall back to the defaults.
func NewService(cfg *Config) *Service {
	c := *cfg
	if c.AccessTokenTTL <= 0 {
		c.AccessTokenTTL = DefaultAccessTokenTTL
	}
	if c.VerificationTokenTTL <= 0 {
		c.VerificationTokenTTL = DefaultVerificationTokenTTL
	}
	return &Service{config: &c, now: time.Now}
}

// AccessTokenTTL returns the configured access token lifetime.
func (s *Service) AccessTokenTTL() time.Duration {
	return s.config.AccessTokenTTL
}

// CreateAccessToken signs an access token whose subject is email and whose
// expiry is AccessTokenTTL from now.
func (s *Service) CreateAccessToken(email string) (*Issued, error) {
	tok, exp, err := s.signJWT(email, PurposeAccess, s.config.AccessTokenTTL)
	if err != nil {
		return nil, err
	}
	return &Issued{Token: tok, ExpiresAt: exp}, nil
}

// ValidateAccessToken validates an access token and returns the claims.
func (s *Service) ValidateAccessToken(ctx context.Context, tokenString string) (*Claims, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.parseAndValidateJWT(tokenString, PurposeAccess)
}

// CreateVerificationToken signs a token that proves control of email when it
// comes back through the verification link.
func (s *Service) CreateVerificationToken(email string) (*Issued, error) {
	tok, exp, err := s.signJWT(email, PurposeVerifyEmail, s.config.VerificationTokenTTL)
	if err != nil {
		return nil, err
	}
	return &Issued{Token: tok, ExpiresAt: exp}, nil
}

// ValidateVerificationToken validates a verification token and returns the
// email address it was issued for.
func (s *Service) ValidateVerificationToken(tokenString string) (string, error) {
	claims, err := s.parseAndValidateJWT(tokenString, PurposeVerifyEmail)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
