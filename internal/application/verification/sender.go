package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/go-api-accounts/internal/domain"
	"github.com/go-api-accounts/internal/pkg/metrics"
)

type linkGenerator interface {
	Generate(email string) (domain.VerificationLink, error)
	Window() time.Duration
}

// Mailer delivers one rendered email.
type Mailer interface {
	Send(ctx context.Context, e domain.Email) error
}

type recordWriter interface {
	Create(ctx context.Context, rec *domain.VerificationRecord) error
}

// SenderDeps wires a Sender.
type SenderDeps struct {
	Links    linkGenerator
	Mailer   Mailer
	Records  recordWriter
	Provider string        // mail provider name used as a metrics label
	Timeout  time.Duration // bound on each outbound call
}

// Sender consumes verification requests: it issues a token, mails the link
// and then records the token. Any failure is returned so the channel redelivers,
// except malformed input which can never succeed.
type Sender struct {
	links    linkGenerator
	mailer   Mailer
	records  recordWriter
	provider string
	timeout  time.Duration
}

func NewSender(deps SenderDeps) *Sender {
	return &Sender{
		links:    deps.Links,
		mailer:   deps.Mailer,
		records:  deps.Records,
		provider: deps.Provider,
		timeout:  deps.Timeout,
	}
}

// Handle processes one delivery-channel message.
func (s *Sender) Handle(ctx context.Context, payload []byte) error {
	email, err := decodeMessage(payload)
	if err != nil {
		return err
	}

	link, err := s.links.Generate(email)
	if err != nil {
		return err
	}
	msg, err := buildEmail(email, link.Link, s.links.Window())
	if err != nil {
		return err
	}

	if err := s.send(ctx, msg); err != nil {
		metrics.MailSends.WithLabelValues(s.provider, "error").Inc()
		return err
	}
	metrics.MailSends.WithLabelValues(s.provider, "ok").Inc()

	rec := &domain.VerificationRecord{Email: email, Token: link.Token, ExpiresAt: link.ExpiresAt}
	cctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.records.Create(cctx, rec); err != nil {
		// The mail is out but its token is unknown; the user will get an
		// invalid-link answer until a redelivery records a fresh token.
		slog.Error("verification mail sent but record not stored", "email", email, "err", err)
		if !errors.Is(err, domain.ErrStorageUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
		}
		return err
	}

	slog.Info("verification email sent", "email", email, "expires_at", link.ExpiresAt)
	return nil
}

func (s *Sender) send(ctx context.Context, msg domain.Email) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	err := s.mailer.Send(ctx, msg)
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrSecretFetch) || errors.Is(err, domain.ErrMailProvider) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrMailProvider, err)
}

func decodeMessage(payload []byte) (string, error) {
	var m domain.VerificationMessage
	if err := json.Unmarshal(payload, &m); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrMalformedInput, err)
	}
	email := strings.TrimSpace(m.Email)
	if email == "" {
		return "", fmt.Errorf("%w: email is required", domain.ErrMalformedInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("%w: invalid email %q", domain.ErrMalformedInput, email)
	}
	return email, nil
}
