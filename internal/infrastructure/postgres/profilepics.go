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

// ProfilePicRepo stores picture metadata in the images table, one row per user.
type ProfilePicRepo struct {
	db *sqlx.DB
}

func NewProfilePicRepo(db *sqlx.DB) *ProfilePicRepo {
	return &ProfilePicRepo{db: db}
}

func (r *ProfilePicRepo) GetByUser(ctx context.Context, userID string) (_ *domain.ProfilePic, err error) {
	defer func(start time.Time) { metrics.ObserveDB("images.get_by_user", start, err) }(time.Now())

	var p domain.ProfilePic
	err = r.db.GetContext(ctx, &p,
		`SELECT id, user_id, file_name, url, upload_date FROM images WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile picture: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &p, nil
}

// Put inserts the picture or replaces the user's existing one.
func (r *ProfilePicRepo) Put(ctx context.Context, p *domain.ProfilePic) (err error) {
	defer func(start time.Time) { metrics.ObserveDB("images.put", start, err) }(time.Now())

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO images (id, user_id, file_name, url, upload_date)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id) DO UPDATE
		 SET id = EXCLUDED.id, file_name = EXCLUDED.file_name, url = EXCLUDED.url, upload_date = EXCLUDED.upload_date`,
		p.ID, p.UserID, p.FileName, p.URL, p.UploadDate)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *ProfilePicRepo) DeleteByUser(ctx context.Context, userID string) (err error) {
	defer func(start time.Time) { metrics.ObserveDB("images.delete_by_user", start, err) }(time.Now())

	res, err := r.db.ExecContext(ctx, `DELETE FROM images WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("profile picture: %w", domain.ErrNotFound)
	}
	return nil
}
