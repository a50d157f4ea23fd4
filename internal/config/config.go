package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageDynamo   = "dynamodb"
)

// Mail drivers.
const (
	MailResend = "resend"
	MailSMTP   = "smtp"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort        string
	AppEnv         string
	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	StorageDriver string
	Database      Database
	DynamoTables  DynamoTables

	S3BucketName string
	SNSTopicARN  string

	DomainName         string
	VerificationWindow time.Duration

	MailDriver     string
	MailFrom       string
	MailSecretName string
	MailAPIKey     string // used only when MailSecretName is empty
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
	SMTPTLS        bool

	OutboundTimeout time.Duration
	MaxUploadBytes  int64
	AllowedOrigins  []string // CORS allowed origins
	SentryDSN       string
}

// Database holds the relational store connection settings.
type Database struct {
	Host       string
	Port       string
	Name       string
	Username   string
	Password   string // used only when SecretName is empty
	SSLMode    string
	SecretName string
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users         string
	EmailTracking string
	ProfilePics   string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:        getEnv("APP_PORT", "8080"),
		AppEnv:         getEnv("APP_ENV", "development"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		StorageDriver:  getEnv("STORAGE_DRIVER", StoragePostgres),
		Database: Database{
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			Name:       getEnv("DB_DATABASE", "accounts"),
			Username:   getEnv("DB_USERNAME", "postgres"),
			Password:   getEnv("DB_PASSWORD", ""),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SecretName: getEnv("DB_SECRET_NAME", ""),
		},
		DynamoTables: DynamoTables{
			Users:         getEnv("DYNAMO_TABLE_USERS", "users"),
			EmailTracking: getEnv("DYNAMO_TABLE_EMAIL_TRACKING", "email_tracking"),
			ProfilePics:   getEnv("DYNAMO_TABLE_IMAGES", "images"),
		},
		S3BucketName:       getEnv("S3_BUCKET", "accounts-profile-pics"),
		SNSTopicARN:        getEnv("SNS_TOPIC_ARN", ""),
		DomainName:         getEnv("DOMAIN_NAME", "localhost:8080"),
		VerificationWindow: getEnvDuration("VERIFICATION_WINDOW", 2*time.Minute),
		MailDriver:         getEnv("MAIL_DRIVER", MailResend),
		MailFrom:           getEnv("MAIL_FROM", "noreply@example.com"),
		MailSecretName:     getEnv("MAIL_SECRET_NAME", ""),
		MailAPIKey:         getEnv("MAIL_API_KEY", ""),
		SMTPHost:           getEnv("SMTP_HOST", "localhost"),
		SMTPPort:           getEnvInt("SMTP_PORT", 1025),
		SMTPUsername:       getEnv("SMTP_USERNAME", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		SMTPTLS:            getEnv("SMTP_TLS", "false") == "true",
		OutboundTimeout:    getEnvDuration("OUTBOUND_TIMEOUT", 10*time.Second),
		MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_BYTES", 5<<20)),
		AllowedOrigins:     strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		SentryDSN:          getEnv("SENTRY_DSN", ""),
	}
}

// IsTest reports whether the service runs in test mode, where new accounts
// are verified on creation and no verification request is published.
func (c *Config) IsTest() bool { return c.AppEnv == "test" }

// IsDev reports whether the service runs on a developer machine.
func (c *Config) IsDev() bool { return c.AppEnv == "development" }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
