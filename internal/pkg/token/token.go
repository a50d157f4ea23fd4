package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/go-api-accounts/internal/domain"
)

// MinBytes is the smallest amount of entropy a verification token may carry.
const MinBytes = 20

// Options configures a Generator. Zero values fall back to defaults.
type Options struct {
	Domain string        // host[:port] used in the verification link
	Window time.Duration // lifetime of a token
	Bytes  int           // random bytes per token, at least MinBytes
	Now    func() time.Time
	Rand   io.Reader
}

// Generator produces verification tokens and links. It has no side effects.
type Generator struct {
	domain string
	window time.Duration
	bytes  int
	now    func() time.Time
	rand   io.Reader
}

func NewGenerator(opts Options) *Generator {
	g := &Generator{
		domain: opts.Domain,
		window: opts.Window,
		bytes:  opts.Bytes,
		now:    opts.Now,
		rand:   opts.Rand,
	}
	if g.bytes < MinBytes {
		g.bytes = MinBytes
	}
	if g.window <= 0 {
		g.window = 2 * time.Minute
	}
	if g.now == nil {
		g.now = time.Now
	}
	if g.rand == nil {
		g.rand = rand.Reader
	}
	return g
}

// Window returns the token lifetime.
func (g *Generator) Window() time.Duration { return g.window }

// Generate returns a new token for email with its link and absolute expiry.
func (g *Generator) Generate(email string) (domain.VerificationLink, error) {
	b := make([]byte, g.bytes)
	if _, err := io.ReadFull(g.rand, b); err != nil {
		return domain.VerificationLink{}, fmt.Errorf("generate verification token: %w", err)
	}
	tok := hex.EncodeToString(b)
	return domain.VerificationLink{
		Token:     tok,
		Link:      Link(g.domain, email, tok),
		ExpiresAt: g.now().UTC().Add(g.window),
	}, nil
}

// Link builds the URL a user follows to confirm email.
func Link(host, email, tok string) string {
	q := url.Values{}
	q.Set("email", email)
	q.Set("token", tok)
	return fmt.Sprintf("http://%s/verify?%s", host, q.Encode())
}
