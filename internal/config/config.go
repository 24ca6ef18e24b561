// Package config loads the service configuration from defaults, an optional
// YAML file, the environment and command line flags, in that order.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/fittrack/fittrack"
	"github.com/fittrack/fittrack/cleanup"
	"github.com/fittrack/fittrack/internal/metrics"
	"github.com/fittrack/fittrack/mail"
)

// EnvPrefix is the prefix of service environment variables. A double
// underscore separates sections: FITTRACK_AUTH__SECRET sets auth.secret.
const EnvPrefix = "FITTRACK_"

// mailEnvPrefix selects the bare MAIL_* variables, e.g. MAIL_SERVER.
const mailEnvPrefix = "MAIL_"

const redacted = "<redacted>"

// ErrInvalid is wrapped by every error returned from Validate.
var ErrInvalid = errors.New("invalid configuration")

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Listen          string        `koanf:"listen" yaml:"listen"`
	ReadTimeout     time.Duration `koanf:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// AuthConfig configures password hashing and tokens.
type AuthConfig struct {
	Secret               string        `koanf:"secret" yaml:"secret"`
	Issuer               string        `koanf:"issuer" yaml:"issuer"`
	AccessTokenTTL       time.Duration `koanf:"access_token_ttl" yaml:"access_token_ttl"`
	VerificationTokenTTL time.Duration `koanf:"verification_token_ttl" yaml:"verification_token_ttl"`
	ClockSkew            time.Duration `koanf:"clock_skew" yaml:"clock_skew"`
	HashRounds           int           `koanf:"hash_rounds" yaml:"hash_rounds"`
}

// CleanupConfig configures pruning of unverified accounts. A zero
// UnverifiedMaxAge disables it.
type CleanupConfig struct {
	Interval         time.Duration `koanf:"interval" yaml:"interval"`
	UnverifiedMaxAge time.Duration `koanf:"unverified_max_age" yaml:"unverified_max_age"`
}

// Config is the complete service configuration.
type Config struct {
	PublicURL string        `koanf:"public_url" yaml:"public_url"`
	Server    ServerConfig  `koanf:"server" yaml:"server"`
	Log       LogConfig     `koanf:"log" yaml:"log"`
	Auth      AuthConfig    `koanf:"auth" yaml:"auth"`
	Mail      mail.Config   `koanf:"mail" yaml:"mail"`
	Cleanup   CleanupConfig `koanf:"cleanup" yaml:"cleanup"`
}

// FlagKeys maps command line flag names to configuration keys. Flags not
// listed here are not configuration.
var FlagKeys = map[string]string{
	"listen":     "server.listen",
	"public-url": "public_url",
	"log-level":  "log.level",
	"log-format": "log.format",
}

// Defaults returns the default configuration as a flat key map.
func Defaults() map[string]any {
	return map[string]any{
		"public_url":                  fittrack.DefaultPublicURL,
		"server.listen":               ":8080",
		"server.read_timeout":         15 * time.Second,
		"server.write_timeout":        15 * time.Second,
		"server.shutdown_timeout":     10 * time.Second,
		"log.level":                   "info",
		"log.format":                  "json",
		"auth.access_token_ttl":       fittrack.DefaultAccessTokenTTL,
		"auth.verification_token_ttl": fittrack.DefaultVerificationTokenTTL,
		"auth.clock_skew":             fittrack.DefaultClockSkew,
		"auth.hash_rounds":            fittrack.DefaultHashRounds,
		"mail.port":                   mail.DefaultPort,
		"mail.timeout":                mail.DefaultTimeout,
		"cleanup.interval":            cleanup.DefaultInterval,
		"cleanup.unverified_max_age":  time.Duration(0),
	}
}

// Load builds the configuration. path may be empty, in which case no file
// is read. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(mailEnvPrefix, ".", mailEnvKey), nil); err != nil {
		return nil, fmt.Errorf("load mail environment: %w", err)
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, flagKey), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// envKey turns FITTRACK_AUTH__SECRET into auth.secret.
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(s), "__", ".")
}

// mailEnvKey turns MAIL_SERVER into mail.server.
func mailEnvKey(s string) string {
	s = strings.TrimPrefix(s, mailEnvPrefix)
	if s == "" {
		return ""
	}
	return "mail." + strings.ToLower(s)
}

func flagKey(f *pflag.Flag) (string, any) {
	key, ok := FlagKeys[f.Name]
	if !ok {
		return "", nil
	}
	return key, f.Value.String()
}

// Validate checks the service-level settings and then the application
// settings they produce.
func (c *Config) Validate() error {
	if c.Server.Listen == "" {
		return fmt.Errorf("%w: server.listen is required", ErrInvalid)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: server.shutdown_timeout must be positive", ErrInvalid)
	}
	if c.Cleanup.UnverifiedMaxAge < 0 {
		return fmt.Errorf("%w: cleanup.unverified_max_age cannot be negative", ErrInvalid)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("%w: log.format must be 'json' or 'text', got %q", ErrInvalid, c.Log.Format)
	}

	app := fittrack.NewConfig()
	for _, opt := range c.AppOptions() {
		opt(app)
	}
	if err := app.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// AppOptions converts the configuration into fittrack options.
func (c *Config) AppOptions() []fittrack.Option {
	return []fittrack.Option{
		fittrack.WithSecret(c.Auth.Secret),
		fittrack.WithIssuer(c.Auth.Issuer),
		fittrack.WithAccessTokenTTL(c.Auth.AccessTokenTTL),
		fittrack.WithVerificationTokenTTL(c.Auth.VerificationTokenTTL),
		fittrack.WithClockSkew(c.Auth.ClockSkew),
		fittrack.WithHashRounds(c.Auth.HashRounds),
		fittrack.WithPublicURL(c.PublicURL),
		fittrack.WithMailConfig(c.Mail),
	}
}

// NewApp builds the application described by c.
func (c *Config) NewApp(logger *slog.Logger, m *metrics.Metrics) (*fittrack.App, error) {
	opts := append(c.AppOptions(), fittrack.WithLogger(logger), fittrack.WithMetrics(m))
	return fittrack.New(opts...)
}

// Redacted returns a copy of c with credentials masked.
func (c Config) Redacted() Config {
	if c.Auth.Secret != "" {
		c.Auth.Secret = redacted
	}
	if c.Mail.Password != "" {
		c.Mail.Password = redacted
	}
	return c
}

// YAML renders the redacted configuration.
func (c *Config) YAML() ([]byte, error) {
	out, err := yamlv3.Marshal(c.Redacted())
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return out, nil
}
