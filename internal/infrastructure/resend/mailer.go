package resend

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-api-accounts/internal/domain"
	"github.com/resend/resend-go/v2"
)

type keySource interface {
	MailAPIKey(ctx context.Context) (string, error)
}

// Mailer sends email through the Resend API. The API key is resolved through
// the secret provider on first use and the client is reused afterwards.
type Mailer struct {
	keys      keySource
	from      string
	newClient func(apiKey string) *resend.Client

	mu     sync.Mutex
	client *resend.Client
}

func NewMailer(keys keySource, from string) *Mailer {
	return &Mailer{keys: keys, from: from, newClient: resend.NewClient}
}

func (m *Mailer) Send(ctx context.Context, e domain.Email) error {
	c, err := m.clientFor(ctx)
	if err != nil {
		return err
	}
	sent, err := c.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{e.To},
		Subject: e.Subject,
		Text:    e.Text,
		Html:    e.HTML,
	})
	if err != nil {
		return fmt.Errorf("%w: resend: %w", domain.ErrMailProvider, err)
	}
	slog.Debug("email accepted by provider", "to", e.To, "id", sent.Id)
	return nil
}

func (m *Mailer) clientFor(ctx context.Context) (*resend.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client != nil {
		return m.client, nil
	}
	key, err := m.keys.MailAPIKey(ctx)
	if err != nil {
		return nil, err
	}
	m.client = m.newClient(key)
	return m.client, nil
}
