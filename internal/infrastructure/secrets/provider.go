package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-api-accounts/internal/domain"
)

// Source fetches the raw secret string stored under name.
type Source interface {
	SecretString(ctx context.Context, name string) (string, error)
}

// Names identifies the secrets holding each credential. An empty name means
// the matching Fallback value is used and no fetch happens.
type Names struct {
	Mail     string
	Database string
}

// Fallback holds credentials taken from the environment for local runs.
type Fallback struct {
	MailAPIKey       string
	DatabasePassword string
}

// Provider resolves credentials lazily and keeps them for the process lifetime.
// Failed fetches are not cached, so the next call tries again.
type Provider struct {
	src      Source
	names    Names
	fallback Fallback

	mu    sync.Mutex
	cache map[string]map[string]string
}

func NewProvider(src Source, names Names, fallback Fallback) *Provider {
	return &Provider{
		src:      src,
		names:    names,
		fallback: fallback,
		cache:    make(map[string]map[string]string),
	}
}

// MailAPIKey returns the mail provider key stored in the "api_key" field.
func (p *Provider) MailAPIKey(ctx context.Context) (string, error) {
	if p.names.Mail == "" {
		return p.fallback.MailAPIKey, nil
	}
	return p.field(ctx, p.names.Mail, "api_key")
}

// DatabasePassword returns the database password stored in the "password" field.
func (p *Provider) DatabasePassword(ctx context.Context) (string, error) {
	if p.names.Database == "" {
		return p.fallback.DatabasePassword, nil
	}
	return p.field(ctx, p.names.Database, "password")
}

func (p *Provider) field(ctx context.Context, name, key string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fields, ok := p.cache[name]
	if !ok {
		raw, err := p.src.SecretString(ctx, name)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", domain.ErrSecretFetch, name, err)
		}
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			return "", fmt.Errorf("%w: %s is not a JSON object: %w", domain.ErrSecretFetch, name, err)
		}
		p.cache[name] = fields
	}
	v := fields[key]
	if v == "" {
		return "", fmt.Errorf("%w: %s has no %q field", domain.ErrSecretFetch, name, key)
	}
	return v, nil
}
