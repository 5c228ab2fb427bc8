package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/kortex-labs/kortex/internal/api"
	"github.com/kortex-labs/kortex/internal/api/middleware"
	"github.com/kortex-labs/kortex/internal/domain"
)

type RAGService interface {
	Query(ctx context.Context, question, subjectID, userID string) (*domain.RAGResult, error)
}

type ChatHandler struct {
	svc RAGService
}

func NewChatHandler(svc RAGService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type ChatRequest struct {
	Question  string `json:"question"`
	SubjectID string `json:"subject_id"`
}

// ChatResponse carries the answer plus the retrieval trace: every chunk that
// informed (or failed to inform) the answer, with its similarity score.
type ChatResponse struct {
	Answer          string                  `json:"answer"`
	RetrievedChunks []domain.RetrievedChunk `json:"retrievedChunks"`
	TokensUsed      *domain.TokenUsage      `json:"tokensUsed,omitempty"`
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Question == "" {
		api.Error(w, http.StatusBadRequest, "question is required")
		return
	}
	if req.SubjectID == "" {
		api.Error(w, http.StatusBadRequest, "subject_id is required")
		return
	}

	result, err := h.svc.Query(r.Context(), req.Question, req.SubjectID, userID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, ChatResponse{
		Answer:          result.Answer,
		RetrievedChunks: result.RetrievedChunks,
		TokensUsed:      result.TokensUsed,
	})
}
