// Command mailer is the Lambda that consumes verification requests from SNS,
// mails the link and records the token.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/getsentry/sentry-go"
	"github.com/go-api-accounts/internal/application/verification"
	"github.com/go-api-accounts/internal/config"
	"github.com/go-api-accounts/internal/infrastructure/awsconf"
	"github.com/go-api-accounts/internal/infrastructure/resend"
	"github.com/go-api-accounts/internal/infrastructure/secrets"
	"github.com/go-api-accounts/internal/infrastructure/smtp"
	"github.com/go-api-accounts/internal/infrastructure/storage"
	"github.com/go-api-accounts/internal/logger"
	"github.com/go-api-accounts/internal/pkg/token"
	lambdatransport "github.com/go-api-accounts/internal/transport/lambda"
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

	// Built once per cold start; warm invocations reuse the cached secrets.
	provider := secrets.NewProvider(
		secrets.NewSecretsManager(awsCfg, awsconf.Endpoint(cfg)),
		secrets.Names{Mail: cfg.MailSecretName, Database: cfg.Database.SecretName},
		secrets.Fallback{MailAPIKey: cfg.MailAPIKey, DatabasePassword: cfg.Database.Password},
	)

	stores, err := storage.Open(ctx, cfg, awsCfg, provider, false)
	if err != nil {
		fatal("storage", err)
	}

	sender := verification.NewSender(verification.SenderDeps{
		Links: token.NewGenerator(token.Options{
			Domain: cfg.DomainName,
			Window: cfg.VerificationWindow,
		}),
		Mailer:   newMailer(cfg, provider),
		Records:  stores.Verifications,
		Provider: cfg.MailDriver,
		Timeout:  cfg.OutboundTimeout,
	})

	handler := lambdatransport.NewSNSHandler(sender)
	if cfg.SentryDSN != "" {
		handler = lambdatransport.WithFlush(handler, sentry.Flush, 2*time.Second)
	}
	lambda.Start(handler)
}

func newMailer(cfg *config.Config, provider *secrets.Provider) verification.Mailer {
	switch cfg.MailDriver {
	case config.MailSMTP:
		m, err := smtp.NewMailer(cfg)
		if err != nil {
			fatal("smtp mailer", err)
		}
		return m
	case config.MailResend:
		return resend.NewMailer(provider, cfg.MailFrom)
	default:
		slog.Error("unknown mail driver", "driver", cfg.MailDriver)
		os.Exit(1)
		return nil
	}
}

func fatal(what string, err error) {
	slog.Error("startup failed", "component", what, "err", err)
	os.Exit(1)
}
