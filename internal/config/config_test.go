package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("VERIFICATION_WINDOW", "")
	t.Setenv("STORAGE_DRIVER", "")

	cfg := Load()

	assert.Equal(t, 2*time.Minute, cfg.VerificationWindow)
	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, 10*time.Second, cfg.OutboundTimeout)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("VERIFICATION_WINDOW", "15m")
	t.Setenv("STORAGE_DRIVER", StorageDynamo)
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg := Load()

	assert.Equal(t, 15*time.Minute, cfg.VerificationWindow)
	assert.Equal(t, StorageDynamo, cfg.StorageDriver)
	assert.Equal(t, 2525, cfg.SMTPPort)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestGetEnvDuration_InvalidFallsBack(t *testing.T) {
	t.Setenv("SOME_WINDOW", "soon")
	assert.Equal(t, time.Minute, getEnvDuration("SOME_WINDOW", time.Minute))

	t.Setenv("SOME_WINDOW", "-5s")
	assert.Equal(t, time.Minute, getEnvDuration("SOME_WINDOW", time.Minute))
}

func TestIsTest(t *testing.T) {
	assert.True(t, (&Config{AppEnv: "test"}).IsTest())
	assert.False(t, (&Config{AppEnv: "production"}).IsTest())
}
