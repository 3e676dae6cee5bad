// Package mailer wraps the email provider behind a small interface so the
// reminder engine and tests never talk to Resend directly.
package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

// Message is one outbound email.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Sender delivers a single email. Failures are non-fatal to callers; the
// reminder engine logs and moves on.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Resend sends through the Resend REST API.
type Resend struct {
	client *resend.Client
}

func NewResend(apiKey string) *Resend {
	return &Resend{client: resend.NewClient(apiKey)}
}

func (r *Resend) Send(ctx context.Context, msg Message) error {
	_, err := r.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("resend send: %w", err)
	}
	return nil
}

// Stub logs emails instead of sending them. Used in development when no
// RESEND_API_KEY is configured.
type Stub struct {
	Logger *slog.Logger
}

func (s *Stub) Send(ctx context.Context, msg Message) error {
	if s.Logger != nil {
		s.Logger.Info("stub email", "to", msg.To, "subject", msg.Subject)
	}
	return nil
}
