package service

import (
	"context"
	"strings"
	"time"

	"github.com/kortex-labs/kortex/internal/domain"
	"github.com/kortex-labs/kortex/internal/telemetry"
)

// SubjectRepositoryInterface defines the repository interface for subject persistence
type SubjectRepositoryInterface interface {
	Create(ctx context.Context, s *domain.Subject) error
	GetByID(ctx context.Context, id string) (*domain.Subject, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Subject, error)
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
}

// SubjectService handles business logic for subjects
type SubjectService struct {
	repo     SubjectRepositoryInterface
	activity ActivityRecorder
	uuidGen  UUIDGenerator
}

// NewSubjectService creates a new SubjectService instance
func NewSubjectService(repo SubjectRepositoryInterface, activity ActivityRecorder) *SubjectService {
	return &SubjectService{
		repo:     repo,
		activity: activity,
		uuidGen:  &DefaultUUIDGenerator{},
	}
}

// NewSubjectServiceWithUUIDGen creates a new SubjectService with custom UUID generator (for testing)
func NewSubjectServiceWithUUIDGen(repo SubjectRepositoryInterface, activity ActivityRecorder, uuidGen UUIDGenerator) *SubjectService {
	return &SubjectService{
		repo:     repo,
		activity: activity,
		uuidGen:  uuidGen,
	}
}

// Create creates a new subject owned by the given user
func (s *SubjectService) Create(ctx context.Context, userID, name string) (*domain.Subject, error) {
	ctx, span := telemetry.StartSpan(ctx, "SubjectService.Create", telemetry.SpanAttributes{
		UserID:    userID,
		Operation: "create",
	})
	defer span.End()

	subject := domain.NewSubject(s.uuidGen.NewString(), userID, strings.TrimSpace(name), time.Now().UTC())
	if err := domain.ValidateSubject(subject); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid subject", err)
	}

	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, err
	}

	if s.activity != nil {
		s.activity.Record(userID, domain.ActionCreateSubject, subject.ID, map[string]any{
			"name": subject.Name,
		})
	}

	return subject, nil
}

// GetByID retrieves a subject by ID
func (s *SubjectService) GetByID(ctx context.Context, id string) (*domain.Subject, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByUser retrieves all subjects owned by a user
func (s *SubjectService) ListByUser(ctx context.Context, userID string) ([]*domain.Subject, error) {
	ctx, span := telemetry.StartSpan(ctx, "SubjectService.ListByUser", telemetry.SpanAttributes{
		UserID:    userID,
		Operation: "list",
	})
	defer span.End()

	return s.repo.ListByUser(ctx, userID)
}

// Rename changes a subject's name. Ownership is enforced: the subject must
// belong to the requesting user.
func (s *SubjectService) Rename(ctx context.Context, id, userID, name string) (*domain.Subject, error) {
	ctx, span := telemetry.StartSpan(ctx, "SubjectService.Rename", telemetry.SpanAttributes{
		UserID:    userID,
		SubjectID: id,
		Operation: "update",
	})
	defer span.End()

	subject, err := s.ownedSubject(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "subject name is required")
	}

	if err := s.repo.Rename(ctx, id, name); err != nil {
		return nil, err
	}
	subject.Name = name

	if s.activity != nil {
		s.activity.Record(userID, domain.ActionUpdateSubject, id, map[string]any{
			"name": name,
		})
	}

	return subject, nil
}

// Delete removes a subject and, through the store's cascade, all of its
// documents and chunks.
func (s *SubjectService) Delete(ctx context.Context, id, userID string) error {
	ctx, span := telemetry.StartSpan(ctx, "SubjectService.Delete", telemetry.SpanAttributes{
		UserID:    userID,
		SubjectID: id,
		Operation: "delete",
	})
	defer span.End()

	subject, err := s.ownedSubject(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.activity != nil {
		s.activity.Record(userID, domain.ActionDeleteSubject, id, map[string]any{
			"name": subject.Name,
		})
	}

	return nil
}

func (s *SubjectService) ownedSubject(ctx context.Context, id, userID string) (*domain.Subject, error) {
	subject, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if subject.UserID != userID {
		return nil, domain.ErrSubjectNotFound
	}
	return subject, nil
}
