package mail

import (
	"errors"
	"fmt"
	"time"
)

// DefaultPort is the SMTP submission port used when none is configured.
const DefaultPort = 587

// DefaultTimeout bounds dialing and each SMTP command.
const DefaultTimeout = 10 * time.Second

// ErrConfigInvalid is returned by Config.Validate.
var ErrConfigInvalid = errors.New("invalid mail configuration")

// Config holds SMTP connection settings. The connection always upgrades with
// STARTTLS, never uses implicit TLS and always authenticates.
type Config struct {
	Username string        `koanf:"username" yaml:"username"`
	Password string        `koanf:"password" yaml:"password"`
	From     string        `koanf:"from" yaml:"from"`
	Server   string        `koanf:"server" yaml:"server"`
	Port     int           `koanf:"port" yaml:"port"`
	Timeout  time.Duration `koanf:"timeout" yaml:"timeout"`
}

// DefaultConfig returns a Config with the default port and timeout.
func DefaultConfig() Config {
	return Config{
		Port:    DefaultPort,
		Timeout: DefaultTimeout,
	}
}

// Validate checks that the settings needed to reach a server are present.
func (c *Config) Validate() error {
	if c.Server == "" {
		return fmt.Errorf("%w: server is required", ErrConfigInvalid)
	}
	if c.From == "" {
		return fmt.Errorf("%w: from address is required", ErrConfigInvalid)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrConfigInvalid, c.Port)
	}
	if c.Username == "" {
		return fmt.Errorf("%w: username is required", ErrConfigInvalid)
	}
	return nil
}
