package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kortex-labs/kortex/internal/domain"
	"github.com/kortex-labs/kortex/internal/telemetry"
)

// TextExtractor defines the interface for extracting text from uploaded files
type TextExtractor interface {
	Extract(ctx context.Context, fileBytes []byte) (string, error)
}

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// IngestionDocumentRepository defines the document persistence needed by ingestion
type IngestionDocumentRepository interface {
	Create(ctx context.Context, d *domain.Document) error
	Delete(ctx context.Context, id string) error
	SetStorageKey(ctx context.Context, id, storageKey string) error
}

// IngestionChunkRepository defines the chunk persistence needed by ingestion
type IngestionChunkRepository interface {
	CreateBatch(ctx context.Context, chunks []*domain.Chunk) error
}

// ActivityRecorder records user actions asynchronously, best effort.
type ActivityRecorder interface {
	Record(userID string, action domain.ActionType, entityID string, metadata map[string]any)
}

// DocumentArchive stores original uploaded files. Optional; ingestion works
// without one.
type DocumentArchive interface {
	Archive(ctx context.Context, key string, data []byte, contentType string) error
	Remove(ctx context.Context, key string) error
}

// IngestResult is what a completed ingestion returns to the caller.
type IngestResult struct {
	DocumentID string
	ChunkCount int
	Title      string
}

// IngestionService turns an uploaded file into an embedded, searchable
// document: extract text, chunk, embed each chunk, persist the batch.
type IngestionService struct {
	extractor  TextExtractor
	embedder   EmbeddingClient
	docRepo    IngestionDocumentRepository
	chunkRepo  IngestionChunkRepository
	activity   ActivityRecorder
	archive    DocumentArchive
	uuidGen    UUIDGenerator
	dimensions int
}

// NewIngestionService creates a new IngestionService instance
func NewIngestionService(
	extractor TextExtractor,
	embedder EmbeddingClient,
	docRepo IngestionDocumentRepository,
	chunkRepo IngestionChunkRepository,
	activity ActivityRecorder,
) *IngestionService {
	return &IngestionService{
		extractor:  extractor,
		embedder:   embedder,
		docRepo:    docRepo,
		chunkRepo:  chunkRepo,
		activity:   activity,
		uuidGen:    &DefaultUUIDGenerator{},
		dimensions: domain.EmbeddingDimensions,
	}
}

// WithArchive configures an optional original-file archive.
func (s *IngestionService) WithArchive(archive DocumentArchive) *IngestionService {
	s.archive = archive
	return s
}

// WithUUIDGen overrides the UUID generator (for testing).
func (s *IngestionService) WithUUIDGen(gen UUIDGenerator) *IngestionService {
	s.uuidGen = gen
	return s
}

// Ingest processes one uploaded file end to end. Every step is a hard
// failure point; on a failed chunk insert the already-created document is
// deleted so no partial chunk set stays visible.
func (s *IngestionService) Ingest(ctx context.Context, fileBytes []byte, fileName, subjectID, userID string) (*IngestResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "IngestionService.Ingest", telemetry.SpanAttributes{
		UserID:    userID,
		SubjectID: subjectID,
		Operation: "ingest",
	})
	defer span.End()

	log.Printf("ingestion: processing %q", fileName)

	// Step 1: extract text
	rawText, err := s.extractor.Extract(ctx, fileBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnreadableDocument, err)
	}
	if strings.TrimSpace(rawText) == "" {
		return nil, domain.ErrEmptyDocument
	}
	log.Printf("ingestion: extracted %d characters", len(rawText))

	// Step 2: create the document record before chunking so later failures
	// can be attributed to a document id the caller already has.
	now := time.Now().UTC()
	doc := domain.NewDocument(s.uuidGen.NewString(), subjectID, userID, fileName, now)
	if err := domain.ValidateDocument(doc); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid document", err)
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	// Step 3: chunk
	chunks := ChunkText(rawText, DefaultMaxChunkTokens, DefaultChunkOverlapTokens)
	if len(chunks) == 0 {
		// Extraction produced text but no sentences survived chunking.
		log.Printf("ingestion: no chunks generated for document %s", doc.ID)
		s.compensateDocument(ctx, doc.ID)
		return nil, domain.ErrNoChunksGenerated
	}
	log.Printf("ingestion: generated %d chunks", len(chunks))

	// Step 4: embed each chunk sequentially. Batching would be faster but
	// sequential calls bound load on the embedding service and keep error
	// attribution per chunk.
	records := make([]*domain.Chunk, len(chunks))
	for i, content := range chunks {
		embedding, err := s.embedder.GenerateEmbedding(ctx, content)
		if err != nil {
			s.compensateDocument(ctx, doc.ID)
			return nil, fmt.Errorf("failed to embed chunk %d: %w", i, err)
		}
		if len(embedding) != s.dimensions {
			s.compensateDocument(ctx, doc.ID)
			return nil, fmt.Errorf("%w: chunk %d has %d dimensions, want %d",
				domain.ErrEmbeddingDimensionMismatch, i, len(embedding), s.dimensions)
		}

		records[i] = &domain.Chunk{
			ID:         s.uuidGen.NewString(),
			DocumentID: doc.ID,
			SubjectID:  subjectID,
			UserID:     userID,
			Content:    content,
			Embedding:  embedding,
			Metadata:   ChunkMetadata(i, len(chunks)),
			CreatedAt:  now,
		}

		if (i+1)%10 == 0 {
			log.Printf("ingestion: progress %d/%d embeddings generated", i+1, len(chunks))
		}
	}

	// Step 5: persist all chunks as one batch
	if err := s.chunkRepo.CreateBatch(ctx, records); err != nil {
		s.compensateDocument(ctx, doc.ID)
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	if s.archive != nil {
		key := fmt.Sprintf("documents/%s/%s", subjectID, doc.ID)
		if err := s.archive.Archive(ctx, key, fileBytes, "application/pdf"); err != nil {
			log.Printf("ingestion: archive failed for document %s: %v", doc.ID, err)
		} else if err := s.docRepo.SetStorageKey(ctx, doc.ID, key); err != nil {
			log.Printf("ingestion: failed to record storage key for document %s: %v", doc.ID, err)
		}
	}

	if s.activity != nil {
		s.activity.Record(userID, domain.ActionUploadDocument, doc.ID, map[string]any{
			"title":      fileName,
			"subjectId":  subjectID,
			"chunkCount": len(chunks),
		})
	}

	log.Printf("ingestion: document %s complete (%d chunks)", doc.ID, len(chunks))

	return &IngestResult{
		DocumentID: doc.ID,
		ChunkCount: len(chunks),
		Title:      fileName,
	}, nil
}

// compensateDocument removes a document created earlier in a failed ingest.
func (s *IngestionService) compensateDocument(ctx context.Context, docID string) {
	if err := s.docRepo.Delete(ctx, docID); err != nil {
		log.Printf("ingestion: failed to clean up document %s: %v", docID, err)
	}
}
