package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"ssemi/internal/platform/config"

	"github.com/rs/zerolog"
)

// Mailer delivers notification emails. Delivery failures are reported to the
// caller but never abort the action that triggered them.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// New returns an SMTP mailer when a host is configured, otherwise a
// log-only mailer so local setups work without a mail relay.
func New(cfg *config.Config, log zerolog.Logger) Mailer {
	if cfg.SMTPHost == "" {
		return &logMailer{log: log}
	}
	return &smtpMailer{cfg: cfg}
}

type smtpMailer struct {
	cfg *config.Config
}

func (m *smtpMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	addr := m.cfg.SMTPHost + ":" + m.cfg.SMTPPort
	auth := smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPass, m.cfg.SMTPHost)

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.MailFrom)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(htmlBody)

	if err := smtp.SendMail(addr, auth, m.cfg.MailFrom, []string{to}, []byte(b.String())); err != nil {
		return fmt.Errorf("smtpMailer.Send: %w", err)
	}
	return nil
}

type logMailer struct {
	log zerolog.Logger
}

func (m *logMailer) Send(_ context.Context, to, subject, _ string) error {
	m.log.Info().Str("to", to).Str("subject", subject).Msg("mail delivery skipped (no SMTP host configured)")
	return nil
}
