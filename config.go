package fittrack

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/fittrack/fittrack/internal/metrics"
	"github.com/fittrack/fittrack/internal/users"
	"github.com/fittrack/fittrack/mail"
	"github.com/fittrack/fittrack/password"
	"github.com/fittrack/fittrack/token"
)

// Default configuration values.
const (
	DefaultAccessTokenTTL       = token.DefaultAccessTokenTTL
	DefaultVerificationTokenTTL = token.DefaultVerificationTokenTTL
	DefaultClockSkew            = 30 * time.Second
	DefaultPublicURL            = "http://localhost:8080"
	DefaultHashRounds           = 29000

	// MinSecretLength is the minimum required length for the secret key.
	MinSecretLength = 32

	// MinHashRounds is the lowest PBKDF2 iteration count accepted.
	MinHashRounds = 1000
)

// Config holds all configuration for the App.
type Config struct {
	// Secret is the key used for signing tokens.
	Secret string

	// AccessTokenTTL is how long access tokens are valid.
	AccessTokenTTL time.Duration

	// VerificationTokenTTL is how long email verification links are valid.
	VerificationTokenTTL time.Duration

	// ClockSkew is the leeway allowed when checking token times.
	ClockSkew time.Duration

	// Issuer is written to and required in the "iss" claim when set.
	Issuer string

	// PublicURL is the externally reachable base URL used in verification links.
	PublicURL string

	// HashRounds is the PBKDF2 iteration count for new password hashes.
	HashRounds int

	// Mail configures the SMTP transport used when Transport is nil.
	Mail mail.Config

	// Hasher overrides the password hasher built from HashRounds.
	Hasher password.Hasher

	// Transport overrides the mail transport built from Mail.
	Transport mail.Transport

	// Users is the account registry. A fresh in-memory store is used if nil.
	Users *users.Store

	// Logger receives application logs. Logs are discarded if nil.
	Logger *slog.Logger

	// Metrics receives application counters. A private registry is used if nil.
	Metrics *metrics.Metrics
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		AccessTokenTTL:       DefaultAccessTokenTTL,
		VerificationTokenTTL: DefaultVerificationTokenTTL,
		ClockSkew:            DefaultClockSkew,
		PublicURL:            DefaultPublicURL,
		HashRounds:           DefaultHashRounds,
		Mail:                 mail.DefaultConfig(),
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Secret == "" {
		return fmt.Errorf("%w: secret is required", ErrConfigInvalid)
	}
	if len(c.Secret) < MinSecretLength {
		return fmt.Errorf("%w: secret must be at least %d characters", ErrConfigInvalid, MinSecretLength)
	}

	// Validate TTL values
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("%w: access token TTL must be positive", ErrConfigInvalid)
	}
	if c.VerificationTokenTTL <= 0 {
		return fmt.Errorf("%w: verification token TTL must be positive", ErrConfigInvalid)
	}
	if c.ClockSkew < 0 {
		return fmt.Errorf("%w: clock skew cannot be negative", ErrConfigInvalid)
	}

	u, err := url.Parse(c.PublicURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: public URL %q must be an absolute http(s) URL", ErrConfigInvalid, c.PublicURL)
	}

	if c.Hasher == nil && c.HashRounds < MinHashRounds {
		return fmt.Errorf("%w: hash rounds must be at least %d", ErrConfigInvalid, MinHashRounds)
	}

	if c.Transport == nil && c.Mail.Server != "" {
		if err := c.Mail.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrConfigInvalid, err)
		}
	}

	return nil
}

// verificationLink builds the link mailed to new accounts.
func (c *Config) verificationLink(tok string) string {
	return strings.TrimRight(c.PublicURL, "/") + "/auth/verify?token=" + url.QueryEscape(tok)
}
