package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-api-accounts/internal/domain"
	"github.com/go-api-accounts/internal/pkg/metrics"
)

type Service interface {
	Verify(ctx context.Context, token string) (domain.VerifyResult, error)
}

type recordReader interface {
	FindByToken(ctx context.Context, token string) (*domain.VerificationRecord, error)
}

type emailVerifier interface {
	MarkEmailVerified(ctx context.Context, email string) (bool, error)
}

type service struct {
	records recordReader
	users   emailVerifier
	now     func() time.Time
	timeout time.Duration
}

type ServiceDeps struct {
	Records recordReader
	Users   emailVerifier
	Now     func() time.Time
	Timeout time.Duration
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{records: deps.Records, users: deps.Users, now: now, timeout: deps.Timeout}
}

// Verify confirms the email behind token. Unknown tokens yield ErrInvalidToken,
// tokens at or past their expiry yield ErrExpiredToken. Nothing is written on
// those paths, and a repeated confirmation inside the window writes nothing either.
func (s *service) Verify(ctx context.Context, token string) (domain.VerifyResult, error) {
	res, err := s.verify(ctx, token)
	metrics.Verifications.WithLabelValues(outcome(res, err)).Inc()
	return res, err
}

func (s *service) verify(ctx context.Context, token string) (domain.VerifyResult, error) {
	if token == "" {
		return domain.VerifyResult{}, domain.ErrInvalidToken
	}
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	rec, err := s.records.FindByToken(ctx, token)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.VerifyResult{}, domain.ErrInvalidToken
	}
	if err != nil {
		return domain.VerifyResult{}, storageErr(err)
	}

	if rec.Expired(s.now()) {
		return domain.VerifyResult{}, domain.ErrExpiredToken
	}

	already, err := s.users.MarkEmailVerified(ctx, rec.Email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.VerifyResult{}, fmt.Errorf("%w: account removed", domain.ErrInvalidToken)
	}
	if err != nil {
		return domain.VerifyResult{}, storageErr(err)
	}
	return domain.VerifyResult{Email: rec.Email, AlreadyVerified: already}, nil
}

func storageErr(err error) error {
	if errors.Is(err, domain.ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
}

func outcome(res domain.VerifyResult, err error) string {
	switch {
	case err == nil && res.AlreadyVerified:
		return "already_verified"
	case err == nil:
		return "verified"
	case errors.Is(err, domain.ErrInvalidToken):
		return "invalid"
	case errors.Is(err, domain.ErrExpiredToken):
		return "expired"
	default:
		return "error"
	}
}
