package fittrack

import (
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fittrack/fittrack/internal/metrics"
	"github.com/fittrack/fittrack/internal/users"
	"github.com/fittrack/fittrack/mail"
	"github.com/fittrack/fittrack/password"
)

func TestWithSecret(t *testing.T) {
	cfg := NewConfig()
	WithSecret("my-secret-key")(cfg)

	if cfg.Secret != "my-secret-key" {
		t.Errorf("Secret = %q, want %q", cfg.Secret, "my-secret-key")
	}
}

func TestWithAccessTokenTTL(t *testing.T) {
	cfg := NewConfig()
	WithAccessTokenTTL(time.Hour)(cfg)

	if cfg.AccessTokenTTL != time.Hour {
		t.Errorf("AccessTokenTTL = %v, want %v", cfg.AccessTokenTTL, time.Hour)
	}
}

func TestWithVerificationTokenTTL(t *testing.T) {
	cfg := NewConfig()
	WithVerificationTokenTTL(2 * time.Hour)(cfg)

	if cfg.VerificationTokenTTL != 2*time.Hour {
		t.Errorf("VerificationTokenTTL = %v, want %v", cfg.VerificationTokenTTL, 2*time.Hour)
	}
}

func TestWithClockSkew(t *testing.T) {
	cfg := NewConfig()
	WithClockSkew(0)(cfg)

	if cfg.ClockSkew != 0 {
		t.Errorf("ClockSkew = %v, want 0", cfg.ClockSkew)
	}
}

func TestWithIssuer(t *testing.T) {
	cfg := NewConfig()
	WithIssuer("fittrack")(cfg)

	if cfg.Issuer != "fittrack" {
		t.Errorf("Issuer = %q, want %q", cfg.Issuer, "fittrack")
	}
}

func TestWithPublicURL(t *testing.T) {
	cfg := NewConfig()
	WithPublicURL("https://fit.example.com")(cfg)

	if cfg.PublicURL != "https://fit.example.com" {
		t.Errorf("PublicURL = %q, want %q", cfg.PublicURL, "https://fit.example.com")
	}
}

func TestWithHashRounds(t *testing.T) {
	cfg := NewConfig()
	WithHashRounds(5000)(cfg)

	if cfg.HashRounds != 5000 {
		t.Errorf("HashRounds = %d, want %d", cfg.HashRounds, 5000)
	}
}

func TestWithMailConfig(t *testing.T) {
	cfg := NewConfig()
	mc := mail.Config{Server: "smtp.example.com", Port: 2525, From: "noreply@example.com", Username: "u"}
	WithMailConfig(mc)(cfg)

	if cfg.Mail != mc {
		t.Errorf("Mail = %+v, want %+v", cfg.Mail, mc)
	}
}

func TestWithInjectedDependencies(t *testing.T) {
	cfg := NewConfig()
	hasher := password.NewPBKDF2Hasher(nil)
	transport := mail.NewLogTransport(slog.New(slog.DiscardHandler))
	store := users.NewStore()
	logger := slog.New(slog.DiscardHandler)
	m := metrics.NewMetrics(prometheus.NewRegistry())

	for _, opt := range []Option{
		WithPasswordHasher(hasher),
		WithMailTransport(transport),
		WithUserStore(store),
		WithLogger(logger),
		WithMetrics(m),
	} {
		opt(cfg)
	}

	if cfg.Hasher != hasher {
		t.Error("Hasher not set correctly")
	}
	if cfg.Transport != transport {
		t.Error("Transport not set correctly")
	}
	if cfg.Users != store {
		t.Error("Users not set correctly")
	}
	if cfg.Logger != logger {
		t.Error("Logger not set correctly")
	}
	if cfg.Metrics != m {
		t.Error("Metrics not set correctly")
	}
}

func TestWithConfig(t *testing.T) {
	base := *NewConfig()
	base.Secret = "from-base"
	base.Issuer = "base"

	cfg := NewConfig()
	for _, opt := range []Option{WithIssuer("ignored"), WithConfig(base), WithIssuer("after")} {
		opt(cfg)
	}

	if cfg.Secret != "from-base" {
		t.Errorf("Secret = %q, want %q", cfg.Secret, "from-base")
	}
	if cfg.Issuer != "after" {
		t.Errorf("Issuer = %q, want %q", cfg.Issuer, "after")
	}
}

func TestOptionChaining(t *testing.T) {
	cfg := NewConfig()

	options := []Option{
		WithSecret("this-is-a-32-character-secret!!!"),
		WithAccessTokenTTL(30 * time.Minute),
		WithVerificationTokenTTL(time.Hour),
		WithPublicURL("https://fit.example.com"),
	}

	for _, opt := range options {
		opt(cfg)
	}

	if cfg.Secret != "this-is-a-32-character-secret!!!" {
		t.Error("Secret not set correctly")
	}
	if cfg.AccessTokenTTL != 30*time.Minute {
		t.Error("AccessTokenTTL not set correctly")
	}
	if cfg.VerificationTokenTTL != time.Hour {
		t.Error("VerificationTokenTTL not set correctly")
	}
	if cfg.PublicURL != "https://fit.example.com" {
		t.Error("PublicURL not set correctly")
	}
}
