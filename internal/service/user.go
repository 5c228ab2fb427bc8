package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/kortex-labs/kortex/internal/domain"
	"github.com/kortex-labs/kortex/internal/telemetry"
)

// UserRepositoryInterface defines the repository interface for user persistence
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// UserService maps OAuth identities onto stored users.
type UserService struct {
	repo    UserRepositoryInterface
	uuidGen UUIDGenerator
}

// NewUserService creates a new UserService instance
func NewUserService(repo UserRepositoryInterface) *UserService {
	return &UserService{
		repo:    repo,
		uuidGen: &DefaultUUIDGenerator{},
	}
}

// NewUserServiceWithUUIDGen creates a new UserService with custom UUID generator (for testing)
func NewUserServiceWithUUIDGen(repo UserRepositoryInterface, uuidGen UUIDGenerator) *UserService {
	return &UserService{
		repo:    repo,
		uuidGen: uuidGen,
	}
}

// GetOrCreate looks a user up by email, creating the record on first
// sign-in.
func (s *UserService) GetOrCreate(ctx context.Context, email, name, image string) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "UserService.GetOrCreate", telemetry.SpanAttributes{
		Operation: "get_or_create",
	})
	defer span.End()

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "email is required")
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	user := domain.NewUser(s.uuidGen.NewString(), email, name, image, time.Now().UTC())
	if err := domain.ValidateUser(user); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid user", err)
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}
