package otp

import (
	"context"
	"log/slog"
)

// Mailer is the email delivery collaborator. Actual SMTP wiring lives
// outside this repository.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer stands in for a real mail transport: it logs the message
// instead of delivering it.
type LogMailer struct {
	L *slog.Logger
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	l := m.L
	if l == nil {
		l = slog.Default()
	}
	l.InfoContext(ctx, "mail sent", "to", to, "subject", subject, "body", body)
	return nil
}
