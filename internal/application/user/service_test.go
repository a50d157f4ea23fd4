package user

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-api-accounts/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Create(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, upd domain.UserUpdate) error {
	return m.Called(ctx, userID, upd).Error(0)
}

type mockDispatcher struct{ mock.Mock }

func (m *mockDispatcher) Enqueue(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

// --- helpers ---

func newService(us *mockUserStore, d *mockDispatcher, autoVerify bool) Service {
	deps := ServiceDeps{UserRepo: us, AutoVerify: autoVerify}
	if d != nil {
		deps.Dispatcher = d
	}
	return NewService(deps)
}

func baseReq() domain.CreateUserRequest {
	return domain.CreateUserRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "password123",
	}
}

func ptr[T any](v T) *T { return &v }

// --- Register tests ---

func TestRegister_ValidationError(t *testing.T) {
	us := &mockUserStore{}
	req := baseReq()
	req.Password = ""

	_, err := newService(us, nil, false).Register(context.Background(), req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	assert.ErrorContains(t, err, "password is required")
	us.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_EmailConflict(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "ada@example.com").Return(&domain.User{}, nil)

	_, err := newService(us, nil, false).Register(context.Background(), baseReq())

	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestRegister_HappyPath_EnqueuesVerification(t *testing.T) {
	us := &mockUserStore{}
	d := &mockDispatcher{}
	us.On("GetByEmail", mock.Anything, "ada@example.com").Return(nil, domain.ErrUserNotFound)
	us.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)
	d.On("Enqueue", mock.Anything, "ada@example.com").Return(nil)

	u, err := newService(us, d, false).Register(context.Background(), baseReq())

	require.NoError(t, err)
	assert.False(t, u.Verified)
	assert.Len(t, u.ID, 36)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("password123")))
	cost, _ := bcrypt.Cost([]byte(u.PasswordHash))
	assert.Equal(t, bcryptCost, cost)
	us.AssertExpectations(t)
	d.AssertExpectations(t)
}

func TestRegister_EnqueueFailure_KeepsAccount(t *testing.T) {
	us := &mockUserStore{}
	d := &mockDispatcher{}
	us.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, domain.ErrUserNotFound)
	us.On("Create", mock.Anything, mock.Anything).Return(nil)
	d.On("Enqueue", mock.Anything, mock.Anything).Return(domain.ErrEnqueueFailed)

	u, err := newService(us, d, false).Register(context.Background(), baseReq())

	assert.True(t, errors.Is(err, domain.ErrEnqueueFailed))
	require.NotNil(t, u)
	us.AssertCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_AutoVerify_SkipsDispatch(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, domain.ErrUserNotFound)
	us.On("Create", mock.Anything, mock.Anything).Return(nil)

	u, err := newService(us, nil, true).Register(context.Background(), baseReq())

	require.NoError(t, err)
	assert.True(t, u.Verified)
}

func TestRegister_LookupError(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	_, err := newService(us, nil, false).Register(context.Background(), baseReq())

	assert.ErrorContains(t, err, "db down")
}

// --- Update tests ---

func TestUpdate_NoFields(t *testing.T) {
	us := &mockUserStore{}

	err := newService(us, nil, false).Update(context.Background(), "u1", domain.UpdateUserRequest{})

	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestUpdate_EmptyPassword(t *testing.T) {
	us := &mockUserStore{}

	err := newService(us, nil, false).Update(context.Background(), "u1", domain.UpdateUserRequest{Password: ptr("")})

	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestUpdate_HashesPassword(t *testing.T) {
	us := &mockUserStore{}
	us.On("Update", mock.Anything, "u1", mock.MatchedBy(func(upd domain.UserUpdate) bool {
		return upd.PasswordHash != nil &&
			bcrypt.CompareHashAndPassword([]byte(*upd.PasswordHash), []byte("new-secret")) == nil &&
			*upd.FirstName == "Grace" && upd.LastName == nil
	})).Return(nil)

	err := newService(us, nil, false).Update(context.Background(), "u1", domain.UpdateUserRequest{
		FirstName: ptr("Grace"),
		Password:  ptr("new-secret"),
	})

	require.NoError(t, err)
	us.AssertExpectations(t)
}

// --- Authenticate tests ---

func TestAuthenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "ada@example.com").Return(&domain.User{ID: "u1", PasswordHash: string(hash)}, nil)
	us.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, domain.ErrUserNotFound)
	svc := newService(us, nil, false)

	u, err := svc.Authenticate(context.Background(), "ada@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	_, err = svc.Authenticate(context.Background(), "ada@example.com", "wrong")
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))

	_, err = svc.Authenticate(context.Background(), "ghost@example.com", "password123")
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

// --- password rules ---

func TestRegister_RejectsUnusablePasswords(t *testing.T) {
	cases := map[string]string{
		"blank":         "   ",
		"tabs":          "\t\n",
		"over 72 bytes": strings.Repeat("é", 40),
	}
	for name, pw := range cases {
		t.Run(name, func(t *testing.T) {
			us := &mockUserStore{}
			d := &mockDispatcher{}
			req := baseReq()
			req.Password = pw

			u, err := newService(us, d, false).Register(context.Background(), req)

			assert.Nil(t, u)
			assert.True(t, errors.Is(err, domain.ErrBadRequest))
			us.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			d.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
		})
	}
}

func TestUpdate_RejectsUnusablePasswords(t *testing.T) {
	for name, pw := range map[string]string{
		"blank":    "   ",
		"too long": strings.Repeat("a", 73),
	} {
		t.Run(name, func(t *testing.T) {
			us := &mockUserStore{}

			err := newService(us, nil, false).Update(context.Background(), "u1", domain.UpdateUserRequest{Password: ptr(pw)})

			assert.True(t, errors.Is(err, domain.ErrBadRequest))
			us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUpdate_AcceptsSeventyTwoBytes(t *testing.T) {
	us := &mockUserStore{}
	us.On("Update", mock.Anything, "u1", mock.Anything).Return(nil)

	err := newService(us, nil, false).Update(context.Background(), "u1", domain.UpdateUserRequest{Password: ptr(strings.Repeat("a", 72))})

	require.NoError(t, err)
}
