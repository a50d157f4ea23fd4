package resend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-api-accounts/internal/domain"
	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubKeys struct {
	key   string
	err   error
	calls int
}

func (s *stubKeys) MailAPIKey(context.Context) (string, error) {
	s.calls++
	return s.key, s.err
}

func newTestMailer(t *testing.T, keys keySource, h http.HandlerFunc) *Mailer {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)

	m := NewMailer(keys, "noreply@example.com")
	m.newClient = func(apiKey string) *resend.Client {
		c := resend.NewCustomClient(srv.Client(), apiKey)
		c.BaseURL = base
		return c
	}
	return m
}

func TestSend_SecretFailure(t *testing.T) {
	keys := &stubKeys{err: fmt.Errorf("%w: throttled", domain.ErrSecretFetch)}
	m := newTestMailer(t, keys, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("provider must not be called without a key")
	})

	err := m.Send(context.Background(), domain.Email{To: "a@example.com"})
	assert.True(t, errors.Is(err, domain.ErrSecretFetch))
}

func TestSend_Success_ClientReused(t *testing.T) {
	keys := &stubKeys{key: "re_test"}
	var got map[string]interface{}
	m := newTestMailer(t, keys, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"email-1"}`))
	})

	e := domain.Email{To: "a@example.com", Subject: "Verify Your Email", Text: "t", HTML: "<p>h</p>"}
	require.NoError(t, m.Send(context.Background(), e))
	require.NoError(t, m.Send(context.Background(), e))

	assert.Equal(t, 1, keys.calls)
	assert.Equal(t, "Verify Your Email", got["subject"])
	assert.Equal(t, "noreply@example.com", got["from"])
}

func TestSend_ProviderRejects(t *testing.T) {
	keys := &stubKeys{key: "re_test"}
	m := newTestMailer(t, keys, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"Invalid from field"}`))
	})

	err := m.Send(context.Background(), domain.Email{To: "a@example.com"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMailProvider))
}
