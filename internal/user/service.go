package user

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/shifts-logger/internal"
	"github.com/frahmantamala/shifts-logger/internal/core/common/validation"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Repository is the user directory storage. Lookups return ErrNotFound
// for unknown users and include roles in assignment order.
type Repository interface {
	Create(ctx context.Context, u *User, roles []string) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

type Service struct {
	repo       Repository
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Create registers a new employee. Duplicate emails are a Conflict,
// password policy failures a Validation error.
func (s *Service) Create(ctx context.Context, dto RegisterDTO) (*User, error) {
	email := NormalizeEmail(dto.Email)

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		s.logger.Warn("registration rejected: email already registered", "email", email)
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		s.logger.Error("registration lookup failed", "error", err, "email", email)
		return nil, internal.NewInternalError("failed to register user", err)
	}

	if appErr := validation.ValidatePassword(dto.Password); appErr != nil {
		return nil, appErr
	}

	hash, err := s.HashPassword(dto.Password)
	if err != nil {
		s.logger.Error("password hashing failed", "error", err, "email", email)
		return nil, internal.NewInternalError("failed to register user", err)
	}

	now := time.Now().UTC()
	u := &User{
		ID:           uuid.NewString(),
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		Email:        email,
		Department:   Department(dto.Department),
		PasswordHash: hash,
		Roles:        []string{RoleEmployee},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, u, u.Roles); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		s.logger.Error("failed to create user", "error", err, "email", email)
		return nil, internal.NewInternalError("failed to register user", err)
	}

	s.logger.Info("user registered", "user_id", u.ID, "department", u.Department)
	return u, nil
}

func (s *Service) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, NormalizeEmail(email))
}

func (s *Service) FindByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// CheckPassword reports whether password matches the stored hash.
func (s *Service) CheckPassword(u *User, password string) bool {
	if u == nil || u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
