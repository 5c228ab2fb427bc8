package service

import (
	"context"
	"log"

	"github.com/kortex-labs/kortex/internal/domain"
	"github.com/kortex-labs/kortex/internal/pagination"
	"github.com/kortex-labs/kortex/internal/telemetry"
)

// DocumentRepositoryInterface defines the repository interface for document persistence
type DocumentRepositoryInterface interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	ListBySubjectWithCursor(ctx context.Context, subjectID string, cursor *pagination.Cursor, limit int) (*pagination.PageResult[*domain.Document], error)
	Delete(ctx context.Context, id string) error
}

// ListDocumentsInput carries the parameters of a document listing.
type ListDocumentsInput struct {
	SubjectID string
	Cursor    string
	Limit     int
}

// DocumentService handles listing and deleting uploaded documents.
type DocumentService struct {
	repo     DocumentRepositoryInterface
	archive  DocumentArchive
	activity ActivityRecorder
}

// NewDocumentService creates a new DocumentService instance
func NewDocumentService(repo DocumentRepositoryInterface, activity ActivityRecorder) *DocumentService {
	return &DocumentService{
		repo:     repo,
		activity: activity,
	}
}

// WithArchive configures the optional original-file archive, so deleting a
// document also removes its archived upload.
func (s *DocumentService) WithArchive(archive DocumentArchive) *DocumentService {
	s.archive = archive
	return s
}

// GetByID retrieves a document by ID
func (s *DocumentService) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns one page of a subject's documents, newest first. A cursor
// that does not decode is a caller error, not a silent restart from page one.
func (s *DocumentService) List(ctx context.Context, input ListDocumentsInput) (*pagination.PageResult[*domain.Document], error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.List", telemetry.SpanAttributes{
		SubjectID: input.SubjectID,
		Operation: "list",
	})
	defer span.End()

	cursor, err := pagination.DecodeCursor(input.Cursor)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	return s.repo.ListBySubjectWithCursor(ctx, input.SubjectID, cursor, limit)
}

// Delete removes a document; its chunks go with it through the store's
// cascade. The archived original, if any, is removed best effort.
func (s *DocumentService) Delete(ctx context.Context, id, userID string) error {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.Delete", telemetry.SpanAttributes{
		UserID:     userID,
		DocumentID: id,
		Operation:  "delete",
	})
	defer span.End()

	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if doc.UserID != userID {
		return domain.ErrDocumentNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.archive != nil && doc.StorageKey != "" {
		if err := s.archive.Remove(ctx, doc.StorageKey); err != nil {
			log.Printf("document: failed to remove archived file %s: %v", doc.StorageKey, err)
		}
	}

	if s.activity != nil {
		s.activity.Record(userID, domain.ActionDeleteDocument, id, map[string]any{
			"title":     doc.Title,
			"subjectId": doc.SubjectID,
		})
	}

	return nil
}
