package service

import (
	"context"
	"fmt"

	"github.com/kortex-labs/kortex/internal/domain"
	"github.com/kortex-labs/kortex/internal/telemetry"
)

// Default retrieval parameters.
const (
	DefaultSimilarityThreshold = 0.5
	DefaultMaxChunks           = 5
)

// ChunkSearcher defines the scoped vector-search interface
type ChunkSearcher interface {
	SearchChunks(ctx context.Context, embedding []float32, subjectID string, threshold float64, limit int) ([]domain.RetrievedChunk, error)
}

// RetrieverConfig controls retrieval behavior.
type RetrieverConfig struct {
	SimilarityThreshold float64
	MaxChunks           int
}

// DefaultRetrieverConfig returns the default retrieval configuration.
func DefaultRetrieverConfig() RetrieverConfig {
	return RetrieverConfig{
		SimilarityThreshold: DefaultSimilarityThreshold,
		MaxChunks:           DefaultMaxChunks,
	}
}

// Retriever embeds a question and runs a subject-scoped similarity search.
// The subject id is a hard filter: a chunk from another subject must never
// appear in the results. Confidence gating is the caller's job.
type Retriever struct {
	embedder EmbeddingClient
	searcher ChunkSearcher
	cfg      RetrieverConfig
}

// NewRetriever creates a new Retriever instance
func NewRetriever(embedder EmbeddingClient, searcher ChunkSearcher) *Retriever {
	return NewRetrieverWithConfig(embedder, searcher, DefaultRetrieverConfig())
}

// NewRetrieverWithConfig creates a new Retriever with explicit configuration.
func NewRetrieverWithConfig(embedder EmbeddingClient, searcher ChunkSearcher, cfg RetrieverConfig) *Retriever {
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if cfg.MaxChunks <= 0 {
		cfg.MaxChunks = DefaultMaxChunks
	}
	return &Retriever{
		embedder: embedder,
		searcher: searcher,
		cfg:      cfg,
	}
}

// Retrieve returns the chunks most similar to the question within one
// subject, ordered by descending similarity as produced by the store.
func (r *Retriever) Retrieve(ctx context.Context, question, subjectID string) ([]domain.RetrievedChunk, error) {
	ctx, span := telemetry.StartSpan(ctx, "Retriever.Retrieve", telemetry.SpanAttributes{
		SubjectID: subjectID,
		Operation: "retrieve",
	})
	defer span.End()

	embedding, err := r.embedder.GenerateEmbedding(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingFailure, err)
	}

	chunks, err := r.searcher.SearchChunks(ctx, embedding, subjectID, r.cfg.SimilarityThreshold, r.cfg.MaxChunks)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchFailure, err)
	}

	return chunks, nil
}
