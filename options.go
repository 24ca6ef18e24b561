package fittrack

import (
	"log/slog"
	"time"

	"github.com/fittrack/fittrack/internal/metrics"
	"github.com/fittrack/fittrack/internal/users"
	"github.com/fittrack/fittrack/mail"
	"github.com/fittrack/fittrack/password"
)

// Option is a function that modifies the configuration.
type Option func(*Config)

// WithConfig replaces the whole configuration. Options applied after it
// still take effect.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		*c = cfg
	}
}

// WithSecret sets the secret key for HMAC signing.
// The secret must be at least 32 characters long.
func WithSecret(secret string) Option {
	return func(c *Config) {
		c.Secret = secret
	}
}

// WithAccessTokenTTL sets the access token time-to-live.
func WithAccessTokenTTL(ttl time.Duration) Option {
	return func(c *Config) {
		c.AccessTokenTTL = ttl
	}
}

// WithVerificationTokenTTL sets how long verification links stay valid.
func WithVerificationTokenTTL(ttl time.Duration) Option {
	return func(c *Config) {
		c.VerificationTokenTTL = ttl
	}
}

// WithClockSkew sets the leeway for token time checks.
func WithClockSkew(skew time.Duration) Option {
	return func(c *Config) {
		c.ClockSkew = skew
	}
}

// WithIssuer sets the token issuer.
func WithIssuer(issuer string) Option {
	return func(c *Config) {
		c.Issuer = issuer
	}
}

// WithPublicURL sets the base URL used in verification links.
func WithPublicURL(u string) Option {
	return func(c *Config) {
		c.PublicURL = u
	}
}

// WithHashRounds sets the PBKDF2 iteration count for new hashes.
func WithHashRounds(rounds int) Option {
	return func(c *Config) {
		c.HashRounds = rounds
	}
}

// WithMailConfig sets the SMTP settings.
func WithMailConfig(cfg mail.Config) Option {
	return func(c *Config) {
		c.Mail = cfg
	}
}

// WithPasswordHasher sets the password hashing algorithm.
func WithPasswordHasher(hasher password.Hasher) Option {
	return func(c *Config) {
		c.Hasher = hasher
	}
}

// WithMailTransport sets the transport used to deliver email.
func WithMailTransport(t mail.Transport) Option {
	return func(c *Config) {
		c.Transport = t
	}
}

// WithUserStore sets the account registry.
func WithUserStore(s *users.Store) Option {
	return func(c *Config) {
		c.Users = s
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Config) {
		c.Metrics = m
	}
}
