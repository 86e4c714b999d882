package notify

import (
	"context"

	"github.com/cenkalti/backoff/v4"
	"github.com/wneessen/go-mail"
)

// Sender delivers one email.
type Sender interface {
	Send(ctx context.Context, e Email) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string // empty means Username
}

// Mailer submits mail over implicit TLS (SMTPS).
type Mailer struct {
	cfg SMTPConfig
}

func NewMailer(cfg SMTPConfig) *Mailer {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &Mailer{cfg: cfg}
}

// Send fails with a *backoff.PermanentError for malformed addresses so the
// retry loop gives up at once.
func (m *Mailer) Send(ctx context.Context, e Email) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return backoff.Permanent(err)
	}
	if err := msg.To(e.To); err != nil {
		return backoff.Permanent(err)
	}
	msg.Subject(e.Subject)
	msg.SetBodyString(mail.TypeTextHTML, e.HTML)

	opts := []mail.Option{mail.WithPort(m.cfg.Port), mail.WithSSL()}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	c, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return err
	}
	return c.DialAndSendWithContext(ctx, msg)
}
