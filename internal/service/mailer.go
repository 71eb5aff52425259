package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"mime"
	"strings"

	"github.com/msomdec/outreach/internal/domain"
	"github.com/oklog/ulid/v2"
)

// Email is a plain-text message to a single recipient.
type Email struct {
	To      string
	Subject string
	Body    string
}

func (e Email) validate() error {
	if strings.TrimSpace(e.To) == "" || strings.TrimSpace(e.Subject) == "" || strings.TrimSpace(e.Body) == "" {
		return fmt.Errorf("%w: to, subject and message are required", domain.ErrInvalidInput)
	}
	if !ValidEmail(strings.TrimSpace(e.To)) {
		return fmt.Errorf("%w: invalid recipient address", domain.ErrInvalidInput)
	}
	if strings.ContainsAny(e.To+e.Subject, "\r\n") {
		return fmt.Errorf("%w: header values cannot contain line breaks", domain.ErrInvalidInput)
	}
	return nil
}

// SendResult identifies a delivered message.
type SendResult struct {
	MessageID string
	ThreadID  string
	Simulated bool
}

// Mailer delivers an email.
type Mailer interface {
	Send(ctx context.Context, email Email) (*SendResult, error)
}

// LogMailer pretends to send mail by logging it.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, email Email) (*SendResult, error) {
	slog.Info("simulated email", "to", email.To, "subject", email.Subject, "preview", preview(email.Body, 100))
	return &SendResult{MessageID: "sim-" + ulid.Make().String(), Simulated: true}, nil
}

// preview keeps the first n runes of s, marking a cut with "...".
func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// MailerStatus reports which Gmail credentials are present.
type MailerStatus struct {
	GmailConfigured bool
	HasClientID     bool
	HasClientSecret bool
	HasRefreshToken bool
}

// EmailService validates outgoing mail and hands it to the active mailer.
type EmailService struct {
	mailer Mailer
	status MailerStatus
}

// NewEmailService creates a new EmailService.
func NewEmailService(mailer Mailer, status MailerStatus) *EmailService {
	return &EmailService{mailer: mailer, status: status}
}

// Status reports the mail configuration.
func (s *EmailService) Status() MailerStatus {
	return s.status
}

// Send validates and delivers email.
func (s *EmailService) Send(ctx context.Context, email Email) (*SendResult, error) {
	email.To = strings.TrimSpace(email.To)
	if err := email.validate(); err != nil {
		return nil, err
	}
	res, err := s.mailer.Send(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("send email: %w", err)
	}
	return res, nil
}

// buildRawMessage renders an RFC 822 message, base64url encoded without
// padding, as the Gmail API expects in Message.Raw.
func buildRawMessage(from string, email Email) string {
	if from == "" {
		from = "me"
	}
	lines := []string{
		"To: " + email.To,
		"From: " + from,
		"Subject: " + mime.QEncoding.Encode("utf-8", email.Subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"",
		email.Body,
	}
	return base64.RawURLEncoding.EncodeToString([]byte(strings.Join(lines, "\r\n")))
}
