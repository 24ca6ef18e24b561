// Package fittrack is the account and progress backend of the Fitness App.
//
// An App ties together password hashing, token issuance, the verification
// mailer and the progress fixture:
//
//	app, err := fittrack.New(
//	    fittrack.WithSecret(os.Getenv("FITTRACK_AUTH__SECRET")),
//	    fittrack.WithPublicURL("https://fit.example.com"),
//	)
//
//	res, err := app.Signup(ctx, schema.SignupPayload{Name: "Ana", Email: "ana@example.com", Password: "..."})
//	login, err := app.Login(ctx, schema.LoginPayload{Email: "ana@example.com", Password: "..."})
package fittrack

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"

	"github.com/fittrack/fittrack/internal/logging"
	"github.com/fittrack/fittrack/internal/metrics"
	"github.com/fittrack/fittrack/internal/users"
	"github.com/fittrack/fittrack/mail"
	"github.com/fittrack/fittrack/password"
	"github.com/fittrack/fittrack/progress"
	"github.com/fittrack/fittrack/schema"
	"github.com/fittrack/fittrack/token"
)

// TokenType is the token_type reported with access tokens.
const TokenType = "Bearer"

// App is the main entry point for fittrack functionality.
type App struct {
	config  *Config
	hasher  password.Hasher
	tokens  *token.Service
	sender  *mail.Sender
	users   *users.Store
	logger  *slog.Logger
	metrics *metrics.Metrics

	// dummyHash is verified against when the email is unknown so that both
	// login failure paths cost one hash verification.
	dummyOnce sync.Once
	dummyHash string
}

// SignupResult is returned by a successful Signup.
type SignupResult struct {
	User             *users.User
	VerificationSent bool
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
	User        *users.User
}

// New creates a new App with the given options. At minimum, WithSecret must
// be provided.
func New(opts ...Option) (*App, error) {
	// Start with default config
	cfg := NewConfig()

	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	m := cfg.Metrics
	if m == nil {
		m = metrics.NewMetrics(prometheus.NewRegistry())
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = password.NewPBKDF2Hasher(&password.PBKDF2Config{Rounds: cfg.HashRounds})
	}

	transport := cfg.Transport
	if transport == nil {
		if cfg.Mail.Server == "" {
			logger.Warn("no smtp server configured, verification emails will only be logged")
			transport = mail.NewLogTransport(logger)
		} else {
			smtp, err := mail.NewSMTPTransport(cfg.Mail)
			if err != nil {
				return nil, oops.Code(CodeConfigInvalid).With("server", cfg.Mail.Server).Wrap(err)
			}
			transport = smtp
		}
	}

	store := cfg.Users
	if store == nil {
		store = users.NewStore()
	}

	return &App{
		config: cfg,
		hasher: hasher,
		tokens: token.NewService(&token.Config{
			Secret:               cfg.Secret,
			AccessTokenTTL:       cfg.AccessTokenTTL,
			VerificationTokenTTL: cfg.VerificationTokenTTL,
			ClockSkew:            cfg.ClockSkew,
			Issuer:               cfg.Issuer,
		}),
		sender:  mail.NewSender(cfg.Mail.From, transport),
		users:   store,
		logger:  logger,
		metrics: m,
	}, nil
}

// Config returns the current configuration.
// The returned config should not be modified.
func (a *App) Config() *Config {
	return a.config
}

// Users returns the account registry.
func (a *App) Users() *users.Store {
	return a.users
}

// Signup registers an account and mails a verification link to it.
// A delivery failure does not undo the registration; it is logged and
// reported through SignupResult.VerificationSent.
func (a *App) Signup(ctx context.Context, p schema.SignupPayload) (*SignupResult, error) {
	if err := p.Validate(); err != nil {
		a.metrics.SignupsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		return nil, err
	}

	hash, err := a.hasher.Hash(p.Password)
	if err != nil {
		a.metrics.SignupsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		if errors.Is(err, password.ErrInvalidInput) {
			return nil, &schema.ValidationError{
				Schema: schema.Signup,
				Fields: []schema.FieldError{{Field: "password", Message: "must not be empty"}},
			}
		}
		return nil, oops.Code(CodeInternal).Wrap(err)
	}

	user, err := a.users.Create(ctx, p.Email, p.Name, hash)
	if err != nil {
		if errors.Is(err, users.ErrUserExists) {
			a.metrics.SignupsTotal.WithLabelValues(metrics.ResultTaken).Inc()
			return nil, NewError(CodeEmailTaken, "signup rejected", ErrEmailTaken)
		}
		a.metrics.SignupsTotal.WithLabelValues(metrics.ResultError).Inc()
		return nil, oops.Code(CodeInternal).With("email", p.Email).Wrap(err)
	}

	a.metrics.SignupsTotal.WithLabelValues(metrics.ResultOK).Inc()
	a.logger.InfoContext(ctx, "account created", "user_id", user.ID.String())

	sent := a.sendVerification(ctx, user)
	return &SignupResult{User: user, VerificationSent: sent}, nil
}

// sendVerification issues a verification token for user and mails the link.
// Failures are logged and counted, never returned.
func (a *App) sendVerification(ctx context.Context, user *users.User) bool {
	issued, err := a.tokens.CreateVerificationToken(user.Email)
	if err != nil {
		a.metrics.VerificationEmailsTotal.WithLabelValues(metrics.ResultError).Inc()
		logging.LogError(ctx, a.logger, "issue verification token",
			oops.Code(CodeInternal).With("user_id", user.ID.String()).Wrap(err))
		return false
	}

	if err := a.sender.SendVerificationEmail(ctx, user.Email, a.config.verificationLink(issued.Token)); err != nil {
		a.metrics.VerificationEmailsTotal.WithLabelValues(metrics.ResultError).Inc()
		var de *mail.DeliveryError
		temporary := errors.As(err, &de) && de.Temporary()
		logging.LogError(ctx, a.logger, "send verification email",
			oops.Code(CodeDeliveryFailed).
				With("user_id", user.ID.String()).
				With("temporary", temporary).
				Wrap(err))
		return false
	}

	a.metrics.VerificationEmailsTotal.WithLabelValues(metrics.ResultOK).Inc()
	return true
}

// Login checks credentials and issues an access token. Unknown emails and
// wrong passwords produce the same ErrInvalidCredentials. Unverified
// accounts may log in.
func (a *App) Login(ctx context.Context, p schema.LoginPayload) (*LoginResult, error) {
	if err := p.Validate(); err != nil {
		a.metrics.LoginsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		return nil, err
	}

	user, err := a.users.GetByEmail(ctx, p.Email)
	if err != nil {
		// Keep the unknown-email path as slow as a real check.
		_, _ = a.hasher.Verify(p.Password, a.timingHash())
		a.metrics.LoginsTotal.WithLabelValues(metrics.ResultDenied).Inc()
		return nil, NewError(CodeInvalidCredentials, "login rejected", ErrInvalidCredentials)
	}

	ok, err := a.hasher.Verify(p.Password, user.PasswordHash)
	if err != nil {
		a.metrics.LoginsTotal.WithLabelValues(metrics.ResultError).Inc()
		return nil, oops.Code(CodeInternal).With("user_id", user.ID.String()).Wrapf(err, "stored hash unusable")
	}
	if !ok {
		a.metrics.LoginsTotal.WithLabelValues(metrics.ResultDenied).Inc()
		return nil, NewError(CodeInvalidCredentials, "login rejected", ErrInvalidCredentials)
	}

	if a.hasher.NeedsRehash(user.PasswordHash) {
		a.rehash(ctx, user, p.Password)
	}

	issued, err := a.tokens.CreateAccessToken(user.Email)
	if err != nil {
		a.metrics.LoginsTotal.WithLabelValues(metrics.ResultError).Inc()
		return nil, oops.Code(CodeInternal).With("user_id", user.ID.String()).Wrap(err)
	}

	a.metrics.LoginsTotal.WithLabelValues(metrics.ResultOK).Inc()
	return &LoginResult{
		AccessToken: issued.Token,
		TokenType:   TokenType,
		ExpiresAt:   issued.ExpiresAt,
		User:        user,
	}, nil
}

// rehash upgrades a stored hash to the current parameters. Failures are
// logged; the login itself still succeeds.
func (a *App) rehash(ctx context.Context, user *users.User, plain string) {
	hash, err := a.hasher.Hash(plain)
	if err == nil {
		err = a.users.UpdatePasswordHash(ctx, user.ID, hash)
	}
	if err != nil {
		logging.LogError(ctx, a.logger, "rehash password",
			oops.Code(CodeInternal).With("user_id", user.ID.String()).Wrap(err))
		return
	}
	user.PasswordHash = hash
	a.metrics.PasswordRehashesTotal.Inc()
}

func (a *App) timingHash() string {
	a.dummyOnce.Do(func() {
		h, err := a.hasher.Hash("fittrack-unknown-account")
		if err == nil {
			a.dummyHash = h
		}
	})
	return a.dummyHash
}

// VerifyEmail redeems a verification token and marks its account verified.
// Redeeming a token for an already verified account succeeds.
func (a *App) VerifyEmail(ctx context.Context, tok string) (*users.User, error) {
	email, err := a.tokens.ValidateVerificationToken(tok)
	if err != nil {
		a.metrics.VerificationsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		code := CodeTokenInvalid
		if errors.Is(err, token.ErrTokenExpired) {
			code = CodeTokenExpired
		}
		return nil, NewError(code, "verification rejected", errors.Join(ErrVerificationTokenInvalid, err))
	}

	user, changed, err := a.users.MarkVerified(ctx, email)
	if err != nil {
		a.metrics.VerificationsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, NewError(CodeUserNotFound, "verification rejected", ErrUserNotFound)
		}
		return nil, oops.Code(CodeInternal).Wrap(err)
	}

	a.metrics.VerificationsTotal.WithLabelValues(metrics.ResultOK).Inc()
	if changed {
		a.logger.InfoContext(ctx, "email verified", "user_id", user.ID.String())
	}
	return user, nil
}

// ResendVerification mails a fresh verification link to an unverified
// account. Unknown and already verified emails are ignored without an
// error. The send is synchronous, so a registered unverified address takes
// one mail round trip longer to answer. It reports whether a message was
// sent.
func (a *App) ResendVerification(ctx context.Context, email string) bool {
	user, err := a.users.GetByEmail(ctx, email)
	if err != nil || user.Verified {
		return false
	}
	return a.sendVerification(ctx, user)
}

// Profile returns the account for an authenticated email.
func (a *App) Profile(ctx context.Context, email string) (*users.User, error) {
	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, NewError(CodeUserNotFound, "profile unavailable", ErrUserNotFound)
	}
	return user, nil
}

// Progress returns a copy of the progress record.
func (a *App) Progress() progress.Progress {
	return progress.Snapshot()
}

// ValidateAccessToken validates an access token and returns the claims.
func (a *App) ValidateAccessToken(ctx context.Context, tok string) (*token.Claims, error) {
	return a.tokens.ValidateAccessToken(ctx, tok)
}

// CreateAccessToken issues an access token for email without a password
// check. It is meant for operator tooling.
func (a *App) CreateAccessToken(email string) (*token.Issued, error) {
	return a.tokens.CreateAccessToken(email)
}
