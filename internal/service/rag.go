package service

import (
	"context"
	"fmt"
	"log"

	"github.com/kortex-labs/kortex/internal/domain"
	"github.com/kortex-labs/kortex/internal/telemetry"
)

// DefaultConfidenceFloor gates generation: when the best retrieved
// similarity falls below it, the model is not called. Independent from the
// search threshold even though both default to the same value.
const DefaultConfidenceFloor = 0.5

// Fixed answers for the two gated outcomes. Gating is a successful
// response, not an error.
const (
	noResultsAnswer = "I couldn't find any relevant information in your uploaded documents to answer this question. Please make sure you've uploaded documents related to this topic."

	lowConfidenceAnswer = "I found some passages that might be related, but none of them match your question closely enough for a confident answer. The retrieved passages are included below for reference. Try rephrasing your question or uploading documents that cover this topic."
)

// AnswerGenerator defines the interface for LLM answer generation
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, messages []domain.ChatMessage) (string, *domain.TokenUsage, error)
}

// ChunkRetriever defines the retrieval step consumed by the orchestrator
type ChunkRetriever interface {
	Retrieve(ctx context.Context, question, subjectID string) ([]domain.RetrievedChunk, error)
}

// RAGServiceConfig controls orchestration behavior.
type RAGServiceConfig struct {
	ConfidenceFloor float64
}

// RAGService runs one query end to end: retrieve, gate, assemble, generate.
// A linear pipeline with two early-exit branches and no retries.
type RAGService struct {
	retriever ChunkRetriever
	generator AnswerGenerator
	activity  ActivityRecorder
	cfg       RAGServiceConfig
}

// NewRAGService creates a new RAGService instance
func NewRAGService(retriever ChunkRetriever, generator AnswerGenerator, activity ActivityRecorder) *RAGService {
	return NewRAGServiceWithConfig(retriever, generator, activity, RAGServiceConfig{
		ConfidenceFloor: DefaultConfidenceFloor,
	})
}

// NewRAGServiceWithConfig creates a new RAGService with explicit configuration.
func NewRAGServiceWithConfig(retriever ChunkRetriever, generator AnswerGenerator, activity ActivityRecorder, cfg RAGServiceConfig) *RAGService {
	if cfg.ConfidenceFloor <= 0 {
		cfg.ConfidenceFloor = DefaultConfidenceFloor
	}
	return &RAGService{
		retriever: retriever,
		generator: generator,
		activity:  activity,
		cfg:       cfg,
	}
}

// Query answers a question from the documents of one subject. The result
// always carries the chunks shown to the model (or retrieved, in the
// low-confidence case) so callers can render the explainability trace.
func (s *RAGService) Query(ctx context.Context, question, subjectID, userID string) (*domain.RAGResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "RAGService.Query", telemetry.SpanAttributes{
		UserID:    userID,
		SubjectID: subjectID,
		Operation: "query",
	})
	defer span.End()

	log.Printf("rag: query for subject %s", subjectID)

	chunks, err := s.retriever.Retrieve(ctx, question, subjectID)
	if err != nil {
		return nil, err
	}

	if len(chunks) == 0 {
		log.Printf("rag: no relevant chunks found")
		s.recordQuery(userID, subjectID, question)
		return &domain.RAGResult{
			Answer:          noResultsAnswer,
			RetrievedChunks: []domain.RetrievedChunk{},
		}, nil
	}

	if maxSimilarity(chunks) < s.cfg.ConfidenceFloor {
		log.Printf("rag: best similarity %.3f below confidence floor %.3f", maxSimilarity(chunks), s.cfg.ConfidenceFloor)
		s.recordQuery(userID, subjectID, question)
		return &domain.RAGResult{
			Answer:          lowConfidenceAnswer,
			RetrievedChunks: chunks,
		}, nil
	}

	systemPrompt, userPrompt := AssemblePrompt(question, chunks)
	answer, usage, err := s.generator.GenerateAnswer(ctx, []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: systemPrompt},
		{Role: domain.RoleUser, Content: userPrompt},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationFailure, err)
	}

	log.Printf("rag: answer generated from %d chunks", len(chunks))

	s.recordQuery(userID, subjectID, question)

	return &domain.RAGResult{
		Answer:          answer,
		RetrievedChunks: chunks,
		TokensUsed:      usage,
	}, nil
}

func (s *RAGService) recordQuery(userID, subjectID, question string) {
	if s.activity == nil || userID == "" {
		return
	}
	s.activity.Record(userID, domain.ActionChatQuery, subjectID, map[string]any{
		"question": question,
	})
}

func maxSimilarity(chunks []domain.RetrievedChunk) float64 {
	best := 0.0
	for _, c := range chunks {
		if c.Similarity > best {
			best = c.Similarity
		}
	}
	return best
}
