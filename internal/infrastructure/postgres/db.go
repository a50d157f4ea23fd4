package postgres

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-api-accounts/internal/config"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

// DriverName is the database/sql driver registered by pgx.
const DriverName = "pgx"

type passwordSource interface {
	DatabasePassword(ctx context.Context) (string, error)
}

// Open connects to Postgres. The password comes from the secret provider so
// deployments can keep it in Secrets Manager.
func Open(ctx context.Context, cfg config.Database, passwords passwordSource) (*sqlx.DB, error) {
	pw, err := passwords.DatabasePassword(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve database password: %w", err)
	}
	db, err := sqlx.ConnectContext(ctx, DriverName, DSN(cfg, pw))
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

// DSN builds a postgres:// connection URL.
func DSN(cfg config.Database, password string) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.Username, password),
		Host:     cfg.Host + ":" + cfg.Port,
		Path:     "/" + cfg.Name,
		RawQuery: url.Values{"sslmode": {cfg.SSLMode}}.Encode(),
	}
	return u.String()
}
