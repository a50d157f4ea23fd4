package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-api-accounts/internal/domain"
	"github.com/go-api-accounts/internal/pkg/metrics"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

const userColumns = `id, first_name, last_name, email, password_hash, is_verified, account_created, account_updated`

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// UserRepo provides typed Postgres operations for the users table.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) (err error) {
	defer func(start time.Time) { metrics.ObserveDB("users.create", start, err) }(time.Now())

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.Verified, u.AccountCreated, u.AccountUpdated)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("email already registered: %w", domain.ErrConflict)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	return r.getOne(ctx, "users.get", `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, "users.get_by_email", `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepo) getOne(ctx context.Context, name, query string, arg string) (_ *domain.User, err error) {
	defer func(start time.Time) { metrics.ObserveDB(name, start, err) }(time.Now())

	var u domain.User
	if err = r.db.GetContext(ctx, &u, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &u, nil
}

// Update applies the non-nil fields of upd.
func (r *UserRepo) Update(ctx context.Context, userID string, upd domain.UserUpdate) (err error) {
	defer func(start time.Time) { metrics.ObserveDB("users.update", start, err) }(time.Now())

	var sets []string
	var args []interface{}
	add := func(col string, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if upd.FirstName != nil {
		add("first_name", *upd.FirstName)
	}
	if upd.LastName != nil {
		add("last_name", *upd.LastName)
	}
	if upd.PasswordHash != nil {
		add("password_hash", *upd.PasswordHash)
	}
	if len(sets) == 0 {
		return fmt.Errorf("no fields to update: %w", domain.ErrBadRequest)
	}
	add("account_updated", upd.UpdatedAt)
	args = append(args, userID)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// MarkEmailVerified sets is_verified for email. It writes only when the flag
// is still false and reports whether the user was verified already.
func (r *UserRepo) MarkEmailVerified(ctx context.Context, email string) (alreadyVerified bool, err error) {
	defer func(start time.Time) { metrics.ObserveDB("users.mark_verified", start, err) }(time.Now())

	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_verified = TRUE, account_updated = $2
		 WHERE email = $1 AND is_verified = FALSE`,
		email, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return false, nil
	}

	var verified bool
	err = r.db.GetContext(ctx, &verified, `SELECT is_verified FROM users WHERE email = $1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, domain.ErrUserNotFound
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	return true, nil
}

// Ping checks database connectivity for health probes.
func (r *UserRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
