package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kortex-labs/kortex/internal/api/handlers"
	"github.com/kortex-labs/kortex/internal/domain"
	"github.com/kortex-labs/kortex/internal/pagination"
	"github.com/kortex-labs/kortex/internal/service"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetOrCreate(ctx context.Context, email, name, image string) (*domain.User, error) {
	args := m.Called(ctx, email, name, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockSubjectService struct {
	mock.Mock
}

func (m *MockSubjectService) Create(ctx context.Context, userID, name string) (*domain.Subject, error) {
	args := m.Called(ctx, userID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subject), args.Error(1)
}

func (m *MockSubjectService) ListByUser(ctx context.Context, userID string) ([]*domain.Subject, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Subject), args.Error(1)
}

func (m *MockSubjectService) Rename(ctx context.Context, id, userID, name string) (*domain.Subject, error) {
	args := m.Called(ctx, id, userID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subject), args.Error(1)
}

func (m *MockSubjectService) Delete(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockSubjectService) GetByID(ctx context.Context, id string) (*domain.Subject, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subject), args.Error(1)
}

type MockIngestionService struct {
	mock.Mock
}

func (m *MockIngestionService) Ingest(ctx context.Context, fileBytes []byte, fileName, subjectID, userID string) (*service.IngestResult, error) {
	args := m.Called(ctx, fileBytes, fileName, subjectID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.IngestResult), args.Error(1)
}

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

type MockRAGService struct {
	mock.Mock
}

func (m *MockRAGService) Query(ctx context.Context, question, subjectID, userID string) (*domain.RAGResult, error) {
	args := m.Called(ctx, question, subjectID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RAGResult), args.Error(1)
}

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Stats(ctx context.Context, userID string) (*service.DashboardStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DashboardStats), args.Error(1)
}

func (m *MockDashboardService) RecentActivity(ctx context.Context, userID string, limit int) ([]*domain.ActivityLog, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ActivityLog), args.Error(1)
}

type routerMocks struct {
	users     *MockUserService
	subjects  *MockSubjectService
	ingestion *MockIngestionService
	documents *MockDocumentService
	rag       *MockRAGService
	dashboard *MockDashboardService
}

func setupRouter() (http.Handler, *routerMocks) {
	mocks := &routerMocks{
		users:     new(MockUserService),
		subjects:  new(MockSubjectService),
		ingestion: new(MockIngestionService),
		documents: new(MockDocumentService),
		rag:       new(MockRAGService),
		dashboard: new(MockDashboardService),
	}

	cfg := RouterConfig{
		UserHandler:      handlers.NewUserHandler(mocks.users),
		SubjectHandler:   handlers.NewSubjectHandler(mocks.subjects),
		UploadHandler:    handlers.NewUploadHandler(mocks.ingestion, mocks.subjects, 0),
		DocumentHandler:  handlers.NewDocumentHandler(mocks.documents),
		ChatHandler:      handlers.NewChatHandler(mocks.rag),
		DashboardHandler: handlers.NewDashboardHandler(mocks.dashboard),
	}

	return NewRouter(cfg), mocks
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
}

func TestRouter_UserScopedRoutes_RequireUserHeader(t *testing.T) {
	router, _ := setupRouter()

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/subjects"},
		{http.MethodPost, "/api/subjects"},
		{http.MethodPatch, "/api/subjects/123"},
		{http.MethodDelete, "/api/subjects/123"},
		{http.MethodPost, "/api/upload"},
		{http.MethodGet, "/api/documents"},
		{http.MethodDelete, "/api/documents/123"},
		{http.MethodPost, "/api/chat"},
		{http.MethodGet, "/api/dashboard/stats"},
		{http.MethodGet, "/api/dashboard/activity"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			req := httptest.NewRequest(route.method, route.path, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRouter_ChatRoute_WithUserHeader(t *testing.T) {
	router, mocks := setupRouter()

	result := &domain.RAGResult{
		Answer:          "Mitochondria produce ATP.",
		RetrievedChunks: []domain.RetrievedChunk{},
	}
	mocks.rag.On("Query", mock.Anything, "What do mitochondria do?", "subject-1", "user-1").Return(result, nil)

	body := `{"question":"What do mitochondria do?","subject_id":"subject-1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader([]byte(body)))
	req.Header.Set("X-User-ID", "user-1")
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mocks.rag.AssertExpectations(t)
}

func TestRouter_SubjectList_WithUserHeader(t *testing.T) {
	router, mocks := setupRouter()

	subjects := []*domain.Subject{
		{ID: "subject-1", UserID: "user-1", Name: "Biology", CreatedAt: time.Now().UTC()},
	}
	mocks.subjects.On("ListByUser", mock.Anything, "user-1").Return(subjects, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/subjects", nil)
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mocks.subjects.AssertExpectations(t)
}

func TestRouter_GetOrCreateUser_NoUserHeaderNeeded(t *testing.T) {
	router, mocks := setupRouter()

	user := &domain.User{ID: "user-1", Email: "student@example.com", CreatedAt: time.Now().UTC()}
	mocks.users.On("GetOrCreate", mock.Anything, "student@example.com", "", "").Return(user, nil)

	body := `{"email":"student@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users/get-or-create", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mocks.users.AssertExpectations(t)
}

func TestRouter_RequestIDHeaderSet(t *testing.T) {
	router, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_BodyTooLargeRejected(t *testing.T) {
	router, _ := setupRouter()

	big := bytes.Repeat([]byte("x"), 11*1024*1024)
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(big))
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
