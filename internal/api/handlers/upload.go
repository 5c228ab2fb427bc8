package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/kortex-labs/kortex/internal/api"
	"github.com/kortex-labs/kortex/internal/api/middleware"
	"github.com/kortex-labs/kortex/internal/domain"
	"github.com/kortex-labs/kortex/internal/service"
)

type IngestionService interface {
	Ingest(ctx context.Context, fileBytes []byte, fileName, subjectID, userID string) (*service.IngestResult, error)
}

type SubjectGetter interface {
	GetByID(ctx context.Context, id string) (*domain.Subject, error)
}

type UploadHandler struct {
	ingestion IngestionService
	subjects  SubjectGetter
	maxBytes  int64
}

const defaultMaxUploadBytes = 10 * 1024 * 1024

func NewUploadHandler(ingestion IngestionService, subjects SubjectGetter, maxBytes int64) *UploadHandler {
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	return &UploadHandler{
		ingestion: ingestion,
		subjects:  subjects,
		maxBytes:  maxBytes,
	}
}

type UploadResponse struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	ChunkCount int    `json:"chunk_count"`
}

// Upload ingests one PDF into a subject: multipart form with a "file" part
// and a "subject_id" field.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	subjectID := r.FormValue("subject_id")
	if subjectID == "" {
		api.Error(w, http.StatusBadRequest, "subject_id is required")
		return
	}

	subject, err := h.subjects.GetByID(r.Context(), subjectID)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if subject.UserID != userID {
		api.HandleError(w, domain.ErrSubjectNotFound)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		api.Error(w, http.StatusBadRequest, "only PDF files are supported")
		return
	}

	fileBytes, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "failed to read file")
		return
	}
	if int64(len(fileBytes)) > h.maxBytes {
		api.Error(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	result, err := h.ingestion.Ingest(r.Context(), fileBytes, header.Filename, subjectID, userID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, UploadResponse{
		DocumentID: result.DocumentID,
		Title:      result.Title,
		ChunkCount: result.ChunkCount,
	})
}
