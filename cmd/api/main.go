package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-api-accounts/internal/application/profilepic"
	"github.com/go-api-accounts/internal/application/user"
	"github.com/go-api-accounts/internal/application/verification"
	"github.com/go-api-accounts/internal/config"
	"github.com/go-api-accounts/internal/infrastructure/awsconf"
	s3infra "github.com/go-api-accounts/internal/infrastructure/s3"
	"github.com/go-api-accounts/internal/infrastructure/secrets"
	"github.com/go-api-accounts/internal/infrastructure/sns"
	"github.com/go-api-accounts/internal/infrastructure/storage"
	"github.com/go-api-accounts/internal/logger"
	transporthttp "github.com/go-api-accounts/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	cfg := config.Load()
	logger.Init(cfg.IsDev(), cfg.SentryDSN)

	ctx := context.Background()
	awsCfg, err := awsconf.Load(ctx, cfg)
	if err != nil {
		fatal("aws config", err)
	}
	endpoint := awsconf.Endpoint(cfg)

	provider := secrets.NewProvider(
		secrets.NewSecretsManager(awsCfg, endpoint),
		secrets.Names{Mail: cfg.MailSecretName, Database: cfg.Database.SecretName},
		secrets.Fallback{MailAPIKey: cfg.MailAPIKey, DatabasePassword: cfg.Database.Password},
	)

	// Migrations (Postgres) or table creation (DynamoDB) run before serving.
	stores, err := storage.Open(ctx, cfg, awsCfg, provider, true)
	if err != nil {
		fatal("storage", err)
	}
	defer stores.Close()

	if cfg.SNSTopicARN == "" && !cfg.IsTest() {
		slog.Warn("SNS_TOPIC_ARN not set; new accounts will get a 500 until it is configured")
	}
	dispatcher := verification.NewDispatcher(
		sns.NewPublisher(sns.NewClient(awsCfg, endpoint), cfg.SNSTopicARN),
		cfg.OutboundTimeout,
	)
	objects := s3infra.NewStore(s3infra.NewClient(awsCfg, endpoint), cfg.S3BucketName, endpoint)

	deps := &transporthttp.Deps{
		Users: user.NewService(user.ServiceDeps{
			UserRepo:   stores.Users,
			Dispatcher: dispatcher,
			AutoVerify: cfg.IsTest(),
		}),
		Verification: verification.NewService(verification.ServiceDeps{
			Records: stores.Verifications,
			Users:   stores.Users,
			Timeout: cfg.OutboundTimeout,
		}),
		ProfilePics: profilepic.NewService(profilepic.ServiceDeps{
			Objects:  objects,
			Pics:     stores.ProfilePics,
			MaxBytes: cfg.MaxUploadBytes,
			Timeout:  cfg.OutboundTimeout,
		}),
		DB: stores.Users,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "storage", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "err", err)
		return
	}
	slog.Info("server stopped")
}

func fatal(what string, err error) {
	slog.Error("startup failed", "component", what, "err", err)
	os.Exit(1)
}
