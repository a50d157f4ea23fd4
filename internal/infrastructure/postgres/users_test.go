package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-api-accounts/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userCols = []string{"id", "first_name", "last_name", "email", "password_hash", "is_verified", "account_created", "account_updated"}

func TestUserCreate_Success(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	u := &domain.User{ID: "u-1", FirstName: "Ada", LastName: "L", Email: "ada@example.com", PasswordHash: "h", AccountCreated: now, AccountUpdated: now}

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+users`).
		WithArgs("u-1", "Ada", "L", "ada@example.com", "h", false, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewUserRepo(db).Create(context.Background(), u))
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err := NewUserRepo(db).Create(context.Background(), &domain.User{ID: "u-1"})
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestUserCreate_DBError(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+users`).WillReturnError(errors.New("db down"))

	err := NewUserRepo(db).Create(context.Background(), &domain.User{ID: "u-1"})
	assert.ErrorContains(t, err, "db error: db down")
}

func TestUserGetByEmail_Found(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+users\s+WHERE\s+email\s*=\s*\$1$`).
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("u-1", "Ada", "L", "ada@example.com", "h", true, now, now))

	u, err := NewUserRepo(db).GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)
	assert.True(t, u.Verified)
}

func TestUserGet_NotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err := NewUserRepo(db).Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, domain.ErrUserNotFound))
}

func TestUserUpdate_BuildsSetClause(t *testing.T) {
	db, mock := newMockDB(t)
	name, hash := "Grace", "newhash"
	now := time.Now().UTC()

	mock.ExpectExec(`^UPDATE users SET first_name = \$1, password_hash = \$2, account_updated = \$3 WHERE id = \$4$`).
		WithArgs("Grace", "newhash", now, "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewUserRepo(db).Update(context.Background(), "u-1", domain.UserUpdate{FirstName: &name, PasswordHash: &hash, UpdatedAt: now})
	require.NoError(t, err)
}

func TestUserUpdate_NoRows(t *testing.T) {
	db, mock := newMockDB(t)
	name := "Grace"

	mock.ExpectExec(`^UPDATE users SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewUserRepo(db).Update(context.Background(), "ghost", domain.UserUpdate{FirstName: &name})
	assert.True(t, errors.Is(err, domain.ErrUserNotFound))
}

func TestUserUpdate_Empty(t *testing.T) {
	db, _ := newMockDB(t)

	err := NewUserRepo(db).Update(context.Background(), "u-1", domain.UserUpdate{})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestMarkEmailVerified_FirstConfirmation(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`(?s)^UPDATE\s+users\s+SET\s+is_verified\s*=\s*TRUE.*WHERE\s+email\s*=\s*\$1\s+AND\s+is_verified\s*=\s*FALSE$`).
		WithArgs("ada@example.com", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	already, err := NewUserRepo(db).MarkEmailVerified(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.False(t, already)
}

func TestMarkEmailVerified_AlreadyVerified(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`(?s)^UPDATE\s+users\s+SET\s+is_verified`).
		WithArgs("ada@example.com", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`^SELECT is_verified FROM users WHERE email = \$1$`).
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"is_verified"}).AddRow(true))

	already, err := NewUserRepo(db).MarkEmailVerified(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.True(t, already)
}

func TestMarkEmailVerified_UnknownUser(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`(?s)^UPDATE\s+users\s+SET\s+is_verified`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`^SELECT is_verified FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"is_verified"}))

	_, err := NewUserRepo(db).MarkEmailVerified(context.Background(), "ghost@example.com")
	assert.True(t, errors.Is(err, domain.ErrUserNotFound))
}
