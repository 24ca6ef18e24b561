package mail

import (
	"context"
	"fmt"
	"log/slog"

	gomail "github.com/wneessen/go-mail"
)

// Message is a single plain-text email.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Transport delivers a composed message.
type Transport interface {
	Send(ctx context.Context, msg *Message) error
}

// SMTPTransport delivers messages over SMTP with mandatory STARTTLS and
// PLAIN authentication.
type SMTPTransport struct {
	client *gomail.Client
}

// NewSMTPTransport creates a transport from cfg. No connection is opened
// until Send.
func NewSMTPTransport(cfg Config) (*SMTPTransport, error) {
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	client, err := gomail.NewClient(cfg.Server,
		gomail.WithPort(port),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
		gomail.WithTimeout(timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	return &SMTPTransport{client: client}, nil
}

// Addr returns the host:port the transport dials.
func (t *SMTPTransport) Addr() string {
	return t.client.ServerAddr()
}

// Send dials the server, upgrades with STARTTLS, authenticates and sends msg.
func (t *SMTPTransport) Send(ctx context.Context, msg *Message) error {
	m, err := buildMsg(msg)
	if err != nil {
		return err
	}
	return t.client.DialAndSendWithContext(ctx, m)
}

func buildMsg(msg *Message) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("set from: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("set recipient: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetMessageID()
	m.SetBodyString(gomail.TypeTextPlain, msg.Body)
	return m, nil
}

var _ Transport = (*SMTPTransport)(nil)

// LogTransport writes messages to a logger instead of delivering them. It is
// used when no SMTP server is configured.
type LogTransport struct {
	logger *slog.Logger
}

// NewLogTransport creates a transport that logs every message at info level.
func NewLogTransport(logger *slog.Logger) *LogTransport {
	return &LogTransport{logger: logger}
}

// Send logs msg, including its body.
func (t *LogTransport) Send(ctx context.Context, msg *Message) error {
	t.logger.InfoContext(ctx, "mail not delivered, no smtp server configured",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}

var _ Transport = (*LogTransport)(nil)
