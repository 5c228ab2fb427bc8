//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kortex-labs/kortex/internal/api/handlers"
	"github.com/kortex-labs/kortex/internal/domain"
	"github.com/kortex-labs/kortex/internal/jobs"
	"github.com/kortex-labs/kortex/internal/repository"
	"github.com/kortex-labs/kortex/internal/server"
	"github.com/kortex-labs/kortex/internal/service"
	"github.com/kortex-labs/kortex/internal/storage"
	"github.com/kortex-labs/kortex/internal/testutil"
)

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	RustFSC      *testutil.RustFSContainer
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	S3Client     *storage.S3Client
	UserID       string
	HTTPClient   *http.Client
}

// SetupE2EEnv creates a full E2E test environment with containers and a
// server wired to stub embedding and chat providers.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	s3C := testutil.NewRustFSContainer(ctx, t)

	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        s3C.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     "rustfsadmin",
		SecretAccessKey: "rustfsadmin",
		Bucket:          "kortex-documents",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}

	if err := s3Client.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	serverURL, serverCloser := startServer(t, pool, s3Client, port)

	return &E2ETestEnv{
		T:            t,
		Ctx:          ctx,
		PostgresC:    pgC,
		RustFSC:      s3C,
		Pool:         pool,
		ServerURL:    serverURL,
		ServerCloser: serverCloser,
		S3Client:     s3Client,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.RustFSC != nil {
		e.RustFSC.Terminate(e.Ctx)
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

// Bootstrap registers a user and stores the id for subsequent requests
func (e *E2ETestEnv) Bootstrap() {
	resp, err := e.Post("/api/users/get-or-create", map[string]string{
		"email": "e2e@example.com",
		"name":  "E2E Tester",
	}, "")
	if err != nil {
		e.T.Fatalf("failed to create user: %v", err)
	}

	var user struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Data, &user); err != nil {
		e.T.Fatalf("failed to parse user response: %v", err)
	}
	e.UserID = user.ID
}

// APIResponse represents a standard API response
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
}

// Get performs a GET request
func (e *E2ETestEnv) Get(path, userID string) (*APIResponse, error) {
	return e.doRequest("GET", path, nil, userID)
}

// Post performs a POST request
func (e *E2ETestEnv) Post(path string, body interface{}, userID string) (*APIResponse, error) {
	return e.doRequest("POST", path, body, userID)
}

// Patch performs a PATCH request
func (e *E2ETestEnv) Patch(path string, body interface{}, userID string) (*APIResponse, error) {
	return e.doRequest("PATCH", path, body, userID)
}

// Delete performs a DELETE request
func (e *E2ETestEnv) Delete(path, userID string) (*APIResponse, error) {
	return e.doRequest("DELETE", path, nil, userID)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}, userID string) (*APIResponse, error) {
	url := e.ServerURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}

	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	req.Header.Set("Content-Type", "application/json")

	return e.send(req)
}

// UploadPDF posts a multipart upload request with the given file bytes
func (e *E2ETestEnv) UploadPDF(fileName, subjectID string, content []byte, userID string) (*APIResponse, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("subject_id", subjectID); err != nil {
		return nil, err
	}
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", e.ServerURL+"/api/upload", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-User-ID", userID)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return e.send(req)
}

func (e *E2ETestEnv) send(req *http.Request) (*APIResponse, error) {
	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiResp.Error)
	}

	return &apiResp, nil
}

// startServer starts the HTTP server with stub providers so no external
// embedding or chat API is needed.
func startServer(t *testing.T, pool *pgxpool.Pool, s3Client *storage.S3Client, port int) (string, func()) {
	ctx, cancel := context.WithCancel(context.Background())

	userRepo := repository.NewUserRepository(pool)
	subjectRepo := repository.NewSubjectRepository(pool)
	docRepo := repository.NewDocumentRepository(pool)
	chunkRepo := repository.NewChunkRepository(pool)
	activityRepo := repository.NewActivityLogRepository(pool)

	recorder := jobs.NewActivityRecorder(activityRepo)
	go recorder.Start(ctx)

	userSvc := service.NewUserService(userRepo)
	subjectSvc := service.NewSubjectService(subjectRepo, recorder)
	docSvc := service.NewDocumentService(docRepo, recorder).WithArchive(s3Client)
	dashboardSvc := service.NewDashboardService(activityRepo)

	embedder := &stubEmbedder{}
	ingestionSvc := service.NewIngestionService(
		&stubExtractor{},
		embedder,
		docRepo,
		chunkRepo,
		recorder,
	).WithArchive(s3Client)

	retriever := service.NewRetriever(embedder, chunkRepo)
	ragSvc := service.NewRAGService(retriever, &stubGenerator{}, recorder)

	cfg := server.RouterConfig{
		UserHandler:      handlers.NewUserHandler(userSvc),
		SubjectHandler:   handlers.NewSubjectHandler(subjectSvc),
		UploadHandler:    handlers.NewUploadHandler(ingestionSvc, subjectSvc, 0),
		DocumentHandler:  handlers.NewDocumentHandler(docSvc),
		ChatHandler:      handlers.NewChatHandler(ragSvc),
		DashboardHandler: handlers.NewDashboardHandler(dashboardSvc),
	}

	router := server.NewRouter(cfg)
	addr := fmt.Sprintf(":%d", port)

	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, serverURL, 10*time.Second)

	return serverURL, func() {
		recorder.Stop()
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

// BuildBinaries compiles the kortex and kortexd binaries into a temp dir
func BuildBinaries(t *testing.T) (kortexPath, kortexdPath string) {
	t.Helper()

	binDir := t.TempDir()
	kortexPath = binDir + "/kortex"
	kortexdPath = binDir + "/kortexd"

	build := func(out, pkg string) {
		cmd := exec.Command("go", "build", "-o", out, pkg)
		cmd.Dir = "../.."
		if output, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("failed to build %s: %v\n%s", pkg, err, output)
		}
	}

	build(kortexPath, "./cmd/kortex")
	build(kortexdPath, "./cmd/kortexd")
	return kortexPath, kortexdPath
}

// RunKortex executes the kortex CLI binary with the environment pointed at
// the test server and returns combined output
func (e *E2ETestEnv) RunKortex(binPath string, args ...string) (string, error) {
	cmd := exec.Command(binPath, args...)
	cmd.Env = append(os.Environ(),
		"KORTEX_USER_ID="+e.UserID,
		"KORTEX_API_URL="+e.ServerURL,
	)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// stubExtractor ignores the file bytes and returns fixed study text so the
// upload flow works without a real PDF parser round-trip.
type stubExtractor struct{}

const stubDocumentText = "Mitochondria are the powerhouse of the cell. " +
	"They generate most of the chemical energy needed to power the cell's biochemical reactions. " +
	"Chemical energy produced by the mitochondria is stored in a small molecule called ATP. " +
	"Mitochondria contain their own small chromosomes."

func (s *stubExtractor) Extract(ctx context.Context, fileBytes []byte) (string, error) {
	return stubDocumentText, nil
}

// stubEmbedder returns the same unit vector for every input, so every
// stored chunk matches every query with similarity 1.
type stubEmbedder struct{}

func (s *stubEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	embedding := make([]float32, domain.EmbeddingDimensions)
	embedding[0] = 1
	return embedding, nil
}

// stubGenerator returns a canned answer with token usage.
type stubGenerator struct{}

func (s *stubGenerator) GenerateAnswer(ctx context.Context, messages []domain.ChatMessage) (string, *domain.TokenUsage, error) {
	return "Mitochondria produce ATP, the cell's energy currency.", &domain.TokenUsage{
		Prompt:     120,
		Completion: 15,
		Total:      135,
	}, nil
}
