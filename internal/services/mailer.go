package services

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/resend/resend-go/v2"
)

// Mailer delivers the email copy of a notification.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
	Enabled() bool
}

type resendMailer struct {
	client *resend.Client
	from   string
	logger *slog.Logger
}

// NewMailer returns a resend backed mailer, or a disabled one when no API
// key is configured.
func NewMailer(apiKey, from string, logger *slog.Logger) Mailer {
	if apiKey == "" || from == "" {
		return disabledMailer{}
	}
	return &resendMailer{
		client: resend.NewClient(apiKey),
		from:   from,
		logger: logger,
	}
}

func (m *resendMailer) Send(ctx context.Context, to, subject, body string) error {
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    textToHTML(body),
		Text:    body,
	}
	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send email via resend: %w", err)
	}
	m.logger.Debug("Email sent", "id", sent.Id, "to", to)
	return nil
}

func (m *resendMailer) Enabled() bool { return true }

type disabledMailer struct{}

func (disabledMailer) Send(context.Context, string, string, string) error { return nil }

func (disabledMailer) Enabled() bool { return false }

func textToHTML(body string) string {
	lines := strings.Split(html.EscapeString(body), "\n")
	return "<p>" + strings.Join(lines, "<br>") + "</p>"
}
