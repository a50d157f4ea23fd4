package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-api-accounts/internal/domain"
	"github.com/go-api-accounts/internal/pkg/metrics"
	"github.com/jmoiron/sqlx"
)

// VerificationRepo stores issued verification tokens in email_tracking.
type VerificationRepo struct {
	db *sqlx.DB
}

func NewVerificationRepo(db *sqlx.DB) *VerificationRepo {
	return &VerificationRepo{db: db}
}

func (r *VerificationRepo) Create(ctx context.Context, rec *domain.VerificationRecord) (err error) {
	defer func(start time.Time) { metrics.ObserveDB("email_tracking.create", start, err) }(time.Now())

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO email_tracking (email, token, expiry_time) VALUES ($1, $2, $3)`,
		rec.Email, rec.Token, rec.ExpiresAt)
	if err != nil {
		return fmt.Errorf("%w: insert verification record: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (r *VerificationRepo) FindByToken(ctx context.Context, token string) (_ *domain.VerificationRecord, err error) {
	defer func(start time.Time) { metrics.ObserveDB("email_tracking.find_by_token", start, err) }(time.Now())

	var rec domain.VerificationRecord
	err = r.db.GetContext(ctx, &rec,
		`SELECT email, token, expiry_time FROM email_tracking WHERE token = $1`, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("verification record: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}
	return &rec, nil
}
