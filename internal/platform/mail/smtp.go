package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/duesignal/duesignal/pkg/config"
)

// Mailer delivers a single message to one recipient. A failed delivery is an
// observability event for the caller, never a reason to roll anything back.
type Mailer interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

type SMTPMailer struct {
	addr string
	host string
	user string
	pass string
	from string
	log  *zap.SugaredLogger
}

func NewSMTPMailer(cfg *cfgpkg.Config, log *zap.SugaredLogger) *SMTPMailer {
	return &SMTPMailer{
		addr: fmt.Sprintf("%s:%d", cfg.SMTP.Host, cfg.SMTP.Port),
		host: cfg.SMTP.Host,
		user: cfg.SMTP.Username,
		pass: cfg.SMTP.Password,
		from: cfg.SMTP.From,
		log:  log,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, text, html string) error {
	if m.host == "" {
		return fmt.Errorf("smtp host is not configured")
	}

	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(text)
	if html != "" {
		e.HTML = []byte(html)
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}
	if err := e.Send(m.addr, auth); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

var Module = fx.Options(
	fx.Provide(NewSMTPMailer),
	fx.Provide(func(m *SMTPMailer) Mailer { return m }),
)
