package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Purpose values carried in the "purpose" claim.
const (
	PurposeAccess      = "access"
	PurposeVerifyEmail = "verify_email"
)

// Claims represents the JWT claims structure. The subject is the account
// email address.
type Claims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// GetEmail returns the email address the token was issued for.
func (c *Claims) GetEmail() string {
	return c.Subject
}

// signJWT creates a signed HS256 token for email with the given purpose and lifetime.
func (s *Service) signJWT(email, purpose string, ttl time.Duration) (string, time.Time, error) {
	if email == "" {
		return "", time.Time{}, ErrEmptySubject
	}

	now := s.now()
	expiresAt := now.Add(ttl)

	claims := &Claims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// parseAndValidateJWT parses a token, checks its signature, expiry and purpose.
func (s *Service) parseAndValidateJWT(tokenString, purpose string) (*Claims, error) {
	claims := &Claims{}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(s.config.ClockSkew),
		jwt.WithTimeFunc(s.now),
	}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalidSig
		}
		return []byte(s.config.Secret), nil
	}, opts...)
	if err != nil {
		return nil, mapJWTError(err)
	}

	if !token.Valid || claims.Subject == "" {
		return nil, ErrTokenMalformed
	}

	if claims.Purpose != purpose {
		return nil, ErrTokenWrongPurpose
	}

	return claims, nil
}

// mapJWTError maps JWT library errors to our error types.
func mapJWTError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, jwt.ErrTokenExpired) {
		return ErrTokenExpired
	}
	if errors.Is(err, jwt.ErrTokenNotValidYet) || errors.Is(err, jwt.ErrTokenUsedBeforeIssued) {
		return ErrTokenNotYetValid
	}
	if errors.Is(err, jwt.ErrTokenMalformed) {
		return ErrTokenMalformed
	}
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) ||
		errors.Is(err, jwt.ErrSignatureInvalid) ||
		errors.Is(err, jwt.ErrTokenUnverifiable) {
		return ErrTokenInvalidSig
	}

	return ErrTokenMalformed
}
