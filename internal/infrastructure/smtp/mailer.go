package smtp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-api-accounts/internal/config"
	"github.com/go-api-accounts/internal/domain"
	"github.com/wneessen/go-mail"
)

// Mailer delivers email through an SMTP relay. Used for local runs against
// a mail catcher and for deployments without an API-based provider.
type Mailer struct {
	client *mail.Client
	from   string
}

func NewMailer(cfg *config.Config) (*Mailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithTimeout(cfg.OutboundTimeout),
	}
	if cfg.SMTPUsername != "" && cfg.SMTPPassword != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUsername),
			mail.WithPassword(cfg.SMTPPassword),
		)
	}
	if cfg.SMTPTLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	slog.Info("smtp mailer configured", "host", cfg.SMTPHost, "port", cfg.SMTPPort)
	return &Mailer{client: client, from: cfg.MailFrom}, nil
}

func (m *Mailer) Send(ctx context.Context, e domain.Email) error {
	msg, err := buildMsg(m.from, e)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("%w: smtp: %w", domain.ErrMailProvider, err)
	}
	return nil
}

func buildMsg(from string, e domain.Email) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("%w: invalid sender %q: %w", domain.ErrMailProvider, from, err)
	}
	if err := msg.To(e.To); err != nil {
		return nil, fmt.Errorf("%w: invalid recipient: %w", domain.ErrMailProvider, err)
	}
	msg.Subject(e.Subject)
	msg.SetDate()
	msg.SetBodyString(mail.TypeTextPlain, e.Text)
	if e.HTML != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, e.HTML)
	}
	return msg, nil
}
