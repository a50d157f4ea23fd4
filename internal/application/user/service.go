package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-api-accounts/internal/domain"
	"github.com/go-api-accounts/internal/pkg/validate"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the hashes already stored for existing accounts.
const bcryptCost = 10

// maxPasswordBytes is the longest input bcrypt hashes.
const maxPasswordBytes = 72

type Service interface {
	Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, req domain.UpdateUserRequest) error
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
}

type userStore interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID string, upd domain.UserUpdate) error
}

type dispatcher interface {
	Enqueue(ctx context.Context, email string) error
}

type service struct {
	repo       userStore
	dispatcher dispatcher
	autoVerify bool
	now        func() time.Time
}

type ServiceDeps struct {
	UserRepo   userStore
	Dispatcher dispatcher
	// AutoVerify creates accounts already verified and skips the verification
	// request. Only enabled in test environments.
	AutoVerify bool
	Now        func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:       deps.UserRepo,
		dispatcher: deps.Dispatcher,
		autoVerify: deps.AutoVerify,
		now:        now,
	}
}

// Register creates the account and schedules its verification email. When
// scheduling fails the account is kept and an ErrEnqueueFailed error is
// returned alongside it.
func (s *service) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	if err := checkPassword(req.Password); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	u := &domain.User{
		ID:             uuid.NewString(),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		PasswordHash:   string(hash),
		Verified:       s.autoVerify,
		AccountCreated: now,
		AccountUpdated: now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	if s.autoVerify {
		return u, nil
	}
	if err := s.dispatcher.Enqueue(ctx, u.Email); err != nil {
		slog.Error("verification request not published", "user_id", u.ID, "err", err)
		return u, err
	}
	return u, nil
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}

func (s *service) Update(ctx context.Context, userID string, req domain.UpdateUserRequest) error {
	upd := domain.UserUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		UpdatedAt: s.now().UTC(),
	}
	if req.FirstName != nil && strings.TrimSpace(*req.FirstName) == "" {
		return fmt.Errorf("first_name cannot be empty: %w", domain.ErrBadRequest)
	}
	if req.LastName != nil && strings.TrimSpace(*req.LastName) == "" {
		return fmt.Errorf("last_name cannot be empty: %w", domain.ErrBadRequest)
	}
	if req.Password != nil {
		if err := checkPassword(*req.Password); err != nil {
			return err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcryptCost)
		if err != nil {
			return err
		}
		h := string(hash)
		upd.PasswordHash = &h
	}
	if upd.Empty() {
		return fmt.Errorf("no fields to update: %w", domain.ErrBadRequest)
	}
	return s.repo.Update(ctx, userID, upd)
}

// checkPassword rejects blank passwords and those bcrypt cannot hash. The
// limit is in bytes, so a short multi-byte password can still exceed it.
func checkPassword(pw string) error {
	if strings.TrimSpace(pw) == "" {
		return fmt.Errorf("password cannot be empty: %w", domain.ErrBadRequest)
	}
	if len(pw) > maxPasswordBytes {
		return fmt.Errorf("password must be at most %d bytes: %w", maxPasswordBytes, domain.ErrBadRequest)
	}
	return nil
}

// Authenticate checks basic-auth credentials. Unknown emails and wrong
// passwords both yield ErrUnauthorized.
func (s *service) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("unknown email: %w", domain.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("password mismatch: %w", domain.ErrUnauthorized)
	}
	return u, nil
}
