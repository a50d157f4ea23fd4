package verification

import (
	"context"
	"time"

	"github.com/go-api-accounts/internal/domain"
	"github.com/stretchr/testify/mock"
)

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, message []byte) error {
	return m.Called(ctx, string(message)).Error(0)
}

type mockLinks struct{ mock.Mock }

func (m *mockLinks) Generate(email string) (domain.VerificationLink, error) {
	args := m.Called(email)
	return args.Get(0).(domain.VerificationLink), args.Error(1)
}

func (m *mockLinks) Window() time.Duration { return 2 * time.Minute }

type mockMailer struct{ mock.Mock }

func (m *mockMailer) Send(ctx context.Context, e domain.Email) error {
	return m.Called(ctx, e).Error(0)
}

type mockRecords struct{ mock.Mock }

func (m *mockRecords) Create(ctx context.Context, rec *domain.VerificationRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *mockRecords) FindByToken(ctx context.Context, token string) (*domain.VerificationRecord, error) {
	args := m.Called(ctx, token)
	if r, _ := args.Get(0).(*domain.VerificationRecord); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockUsers struct{ mock.Mock }

func (m *mockUsers) MarkEmailVerified(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}
