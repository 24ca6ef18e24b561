// Package mail sends transactional account emails.
package mail

import (
	"context"
)

// Verification email content.
const (
	VerificationSubject = "Verify your Fitness App account"
	verificationPrefix  = "Click this link to verify your account:\n"
)

// Sender composes account emails and hands them to a Transport.
type Sender struct {
	from      string
	transport Transport
}

// NewSender creates a Sender that sends from the given address.
func NewSender(from string, transport Transport) *Sender {
	return &Sender{from: from, transport: transport}
}

// VerificationBody returns the plain-text body for a verification link.
func VerificationBody(link string) string {
	return verificationPrefix + link
}

// SendVerificationEmail sends the account verification link to email.
// It blocks until the server accepts the message, ctx is done, or the
// transport gives up. Every failure is a *DeliveryError.
func (s *Sender) SendVerificationEmail(ctx context.Context, email, link string) error {
	if err := CheckAddress(email); err != nil {
		return &DeliveryError{Recipient: email, Stage: StageAddress, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return &DeliveryError{Recipient: email, Stage: StageSend, Err: err}
	}

	msg := &Message{
		From:    s.from,
		To:      email,
		Subject: VerificationSubject,
		Body:    VerificationBody(link),
	}
	if err := s.transport.Send(ctx, msg); err != nil {
		return &DeliveryError{Recipient: email, Stage: StageSend, Err: err}
	}
	return nil
}
