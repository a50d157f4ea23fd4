package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/go-api-accounts/internal/config"
	"github.com/go-api-accounts/internal/domain"
	"github.com/go-api-accounts/internal/infrastructure/awsconf"
	"github.com/go-api-accounts/internal/infrastructure/dynamo"
	"github.com/go-api-accounts/internal/infrastructure/postgres"
)

// UserStore is implemented by every backend's user repository.
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID string, upd domain.UserUpdate) error
	MarkEmailVerified(ctx context.Context, email string) (bool, error)
	Ping(ctx context.Context) error
}

// VerificationStore is implemented by every backend's email_tracking repository.
type VerificationStore interface {
	Create(ctx context.Context, rec *domain.VerificationRecord) error
	FindByToken(ctx context.Context, token string) (*domain.VerificationRecord, error)
}

// ProfilePicStore is implemented by every backend's images repository.
type ProfilePicStore interface {
	GetByUser(ctx context.Context, userID string) (*domain.ProfilePic, error)
	Put(ctx context.Context, p *domain.ProfilePic) error
	DeleteByUser(ctx context.Context, userID string) error
}

type passwordSource interface {
	DatabasePassword(ctx context.Context) (string, error)
}

// Stores bundles the repositories of the selected backend.
type Stores struct {
	Users         UserStore
	Verifications VerificationStore
	ProfilePics   ProfilePicStore
	Close         func() error
}

// Open connects to the backend chosen by cfg.StorageDriver. With prepare set,
// schema migrations (Postgres) or table creation (DynamoDB) run first.
func Open(ctx context.Context, cfg *config.Config, awsCfg aws.Config, passwords passwordSource, prepare bool) (*Stores, error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := postgres.Open(ctx, cfg.Database, passwords)
		if err != nil {
			return nil, err
		}
		if prepare {
			if err := postgres.Migrate(db.DB); err != nil {
				db.Close()
				return nil, err
			}
		}
		slog.Info("storage ready", "driver", cfg.StorageDriver, "host", cfg.Database.Host)
		return &Stores{
			Users:         postgres.NewUserRepo(db),
			Verifications: postgres.NewVerificationRepo(db),
			ProfilePics:   postgres.NewProfilePicRepo(db),
			Close:         db.Close,
		}, nil

	case config.StorageDynamo:
		client := dynamo.NewClient(awsCfg, awsconf.Endpoint(cfg))
		if prepare {
			dynamo.Bootstrap(ctx, client, cfg.DynamoTables)
		}
		slog.Info("storage ready", "driver", cfg.StorageDriver)
		return &Stores{
			Users:         dynamo.NewUserRepo(client, cfg.DynamoTables.Users),
			Verifications: dynamo.NewVerificationRepo(client, cfg.DynamoTables.EmailTracking),
			ProfilePics:   dynamo.NewProfilePicRepo(client, cfg.DynamoTables.ProfilePics),
			Close:         func() error { return nil },
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
