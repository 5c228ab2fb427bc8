package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kortex-labs/kortex/internal/api"
	"github.com/kortex-labs/kortex/internal/api/middleware"
	"github.com/kortex-labs/kortex/internal/domain"
	"github.com/kortex-labs/kortex/internal/pagination"
	"github.com/kortex-labs/kortex/internal/service"
)

type DocumentService interface {
	List(ctx context.Context, input service.ListDocumentsInput) (*pagination.PageResult[*domain.Document], error)
	Delete(ctx context.Context, id, userID string) error
}

type DocumentHandler struct {
	svc DocumentService
}

func NewDocumentHandler(svc DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

type DocumentResponse struct {
	ID        string `json:"id"`
	SubjectID string `json:"subject_id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
}

type DocumentListResponse struct {
	Items   []*DocumentResponse `json:"items"`
	Cursor  string              `json:"cursor,omitempty"`
	HasMore bool                `json:"has_more"`
}

func documentToResponse(d *domain.Document) *DocumentResponse {
	return &DocumentResponse{
		ID:        d.ID,
		SubjectID: d.SubjectID,
		Title:     d.Title,
		CreatedAt: d.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	subjectID := r.URL.Query().Get("subject_id")
	if subjectID == "" {
		api.Error(w, http.StatusBadRequest, "subject_id is required")
		return
	}

	cursor := r.URL.Query().Get("cursor")
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	page, err := h.svc.List(r.Context(), service.ListDocumentsInput{
		SubjectID: subjectID,
		Cursor:    cursor,
		Limit:     limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*DocumentResponse, len(page.Items))
	for i, d := range page.Items {
		responses[i] = documentToResponse(d)
	}

	api.Success(w, http.StatusOK, DocumentListResponse{
		Items:   responses,
		Cursor:  page.Cursor,
		HasMore: page.HasMore,
	})
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
