package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kortex-labs/kortex/internal/domain"
	"github.com/kortex-labs/kortex/internal/pagination"
	"github.com/kortex-labs/kortex/internal/service"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) List(ctx context.Context, input service.ListDocumentsInput) (*pagination.PageResult[*domain.Document], error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pagination.PageResult[*domain.Document]), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func newTestDocument() *domain.Document {
	return &domain.Document{
		ID:        "doc-1",
		SubjectID: "subject-1",
		UserID:    "user-1",
		Title:     "notes.pdf",
		CreatedAt: time.Now().UTC(),
	}
}

func TestDocumentHandler_List_Success(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc)

	page := &pagination.PageResult[*domain.Document]{
		Items:   []*domain.Document{newTestDocument()},
		Cursor:  "next-cursor",
		HasMore: true,
	}
	mockSvc.On("List", mock.Anything, mock.MatchedBy(func(input service.ListDocumentsInput) bool {
		return input.SubjectID == "subject-1" && input.Limit == 2 && input.Cursor == "abc"
	})).Return(page, nil)

	req := requestWithUserID(http.MethodGet, "/api/documents?subject_id=subject-1&limit=2&cursor=abc", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data DocumentListResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Items, 1)
	assert.Equal(t, "doc-1", resp.Data.Items[0].ID)
	assert.Equal(t, "next-cursor", resp.Data.Cursor)
	assert.True(t, resp.Data.HasMore)
}

func TestDocumentHandler_List_MissingSubjectID(t *testing.T) {
	handler := NewDocumentHandler(new(MockDocumentService))

	req := requestWithUserID(http.MethodGet, "/api/documents", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentHandler_List_Unauthorized(t *testing.T) {
	handler := NewDocumentHandler(new(MockDocumentService))

	req := httptest.NewRequest(http.MethodGet, "/api/documents?subject_id=subject-1", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDocumentHandler_Delete_Success(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc)

	mockSvc.On("Delete", mock.Anything, "doc-1", "user-1").Return(nil)

	req := requestWithUserID(http.MethodDelete, "/api/documents/doc-1", nil)
	req = withURLParam(req, "id", "doc-1")
	w := httptest.NewRecorder()

	handler.Delete(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestDocumentHandler_Delete_NotFound(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc)

	mockSvc.On("Delete", mock.Anything, "ghost", "user-1").Return(domain.ErrDocumentNotFound)

	req := requestWithUserID(http.MethodDelete, "/api/documents/ghost", nil)
	req = withURLParam(req, "id", "ghost")
	w := httptest.NewRecorder()

	handler.Delete(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
