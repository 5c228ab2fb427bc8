package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kortex-labs/kortex/internal/api"
	"github.com/kortex-labs/kortex/internal/api/middleware"
	"github.com/kortex-labs/kortex/internal/domain"
)

type SubjectService interface {
	Create(ctx context.Context, userID, name string) (*domain.Subject, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Subject, error)
	Rename(ctx context.Context, id, userID, name string) (*domain.Subject, error)
	Delete(ctx context.Context, id, userID string) error
}

type SubjectHandler struct {
	svc SubjectService
}

func NewSubjectHandler(svc SubjectService) *SubjectHandler {
	return &SubjectHandler{svc: svc}
}

type CreateSubjectRequest struct {
	Name string `json:"name"`
}

type RenameSubjectRequest struct {
	Name string `json:"name"`
}

type SubjectResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

func subjectToResponse(s *domain.Subject) *SubjectResponse {
	return &SubjectResponse{
		ID:        s.ID,
		Name:      s.Name,
		CreatedAt: s.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func (h *SubjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateSubjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	subject, err := h.svc.Create(r.Context(), userID, req.Name)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, subjectToResponse(subject))
}

func (h *SubjectHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	subjects, err := h.svc.ListByUser(r.Context(), userID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*SubjectResponse, len(subjects))
	for i, s := range subjects {
		responses[i] = subjectToResponse(s)
	}

	api.Success(w, http.StatusOK, responses)
}

func (h *SubjectHandler) Rename(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	var req RenameSubjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	subject, err := h.svc.Rename(r.Context(), id, userID, req.Name)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, subjectToResponse(subject))
}

func (h *SubjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.svc.Delete(r.Context(), id, userID); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"id": id})
}
