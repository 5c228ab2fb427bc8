package admin

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kortex-labs/kortex/internal/api/handlers"
	"github.com/kortex-labs/kortex/internal/config"
	"github.com/kortex-labs/kortex/internal/database"
	"github.com/kortex-labs/kortex/internal/domain"
	"github.com/kortex-labs/kortex/internal/extract"
	"github.com/kortex-labs/kortex/internal/jobs"
	"github.com/kortex-labs/kortex/internal/openai"
	"github.com/kortex-labs/kortex/internal/repository"
	"github.com/kortex-labs/kortex/internal/server"
	"github.com/kortex-labs/kortex/internal/service"
	"github.com/kortex-labs/kortex/internal/storage"
	"github.com/kortex-labs/kortex/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the kortex API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	// Run migrations unless --no-migrate flag is set
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	userRepo := repository.NewUserRepository(pool)
	subjectRepo := repository.NewSubjectRepository(pool)
	docRepo := repository.NewDocumentRepository(pool)
	chunkRepo := repository.NewChunkRepository(pool)
	activityRepo := repository.NewActivityLogRepository(pool)

	recorder := jobs.NewActivityRecorder(activityRepo)
	go recorder.Start(ctx)
	log.Println("activity recorder started")
	var activity service.ActivityRecorder = recorder

	var archive service.DocumentArchive
	if cfg.HasS3() {
		s3Config := storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		}
		s3Client, err := storage.NewS3Client(ctx, s3Config)
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		archive = s3Client
	}

	var embeddingClient service.EmbeddingClient
	if cfg.HasEmbedding() {
		embeddingClient = openai.NewClient(cfg.EmbeddingAPIKey, cfg.EmbeddingBaseURL)
	} else {
		log.Println("EMBEDDING_API_KEY not set: upload and chat disabled")
	}

	var generator service.AnswerGenerator
	if cfg.HasChat() {
		generator = openai.NewGenerator(openai.GeneratorConfig{
			APIKey:  cfg.GroqAPIKey,
			BaseURL: cfg.GroqBaseURL,
			Model:   cfg.ChatModel,
		})
	} else {
		log.Println("GROQ_API_KEY not set: chat disabled")
	}

	userSvc := service.NewUserService(userRepo)
	subjectSvc := service.NewSubjectService(subjectRepo, activity)
	docSvc := service.NewDocumentService(docRepo, activity)
	if archive != nil {
		docSvc = docSvc.WithArchive(archive)
	}
	dashboardSvc := service.NewDashboardService(activityRepo)

	var ingestionSvc handlers.IngestionService
	if embeddingClient != nil {
		svc := service.NewIngestionService(
			extract.NewPDFExtractor(),
			embeddingClient,
			docRepo,
			chunkRepo,
			activity,
		)
		if archive != nil {
			svc = svc.WithArchive(archive)
		}
		ingestionSvc = svc
	} else {
		ingestionSvc = &NoOpIngestionService{}
	}

	var ragSvc handlers.RAGService
	if embeddingClient != nil && generator != nil {
		retriever := service.NewRetrieverWithConfig(embeddingClient, chunkRepo, service.RetrieverConfig{
			SimilarityThreshold: cfg.SimilarityThreshold,
			MaxChunks:           cfg.MaxChunks,
		})
		ragSvc = service.NewRAGServiceWithConfig(retriever, generator, activity, service.RAGServiceConfig{
			ConfidenceFloor: cfg.ConfidenceFloor,
		})
	} else {
		ragSvc = &NoOpRAGService{}
	}

	routerCfg := server.RouterConfig{
		UserHandler:      handlers.NewUserHandler(userSvc),
		SubjectHandler:   handlers.NewSubjectHandler(subjectSvc),
		UploadHandler:    handlers.NewUploadHandler(ingestionSvc, subjectSvc, cfg.MaxUploadBytes),
		DocumentHandler:  handlers.NewDocumentHandler(docSvc),
		ChatHandler:      handlers.NewChatHandler(ragSvc),
		DashboardHandler: handlers.NewDashboardHandler(dashboardSvc),
		MaxBodyBytes:     cfg.MaxUploadBytes,
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	recorder.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// NoOpIngestionService rejects uploads when no embedding provider is
// configured.
type NoOpIngestionService struct{}

func (s *NoOpIngestionService) Ingest(ctx context.Context, fileBytes []byte, fileName, subjectID, userID string) (*service.IngestResult, error) {
	return nil, fmt.Errorf("ingestion not configured: EMBEDDING_API_KEY required")
}

// NoOpRAGService rejects queries when the embedding or chat provider is
// missing.
type NoOpRAGService struct{}

func (s *NoOpRAGService) Query(ctx context.Context, question, subjectID, userID string) (*domain.RAGResult, error) {
	return nil, fmt.Errorf("chat not configured: EMBEDDING_API_KEY and GROQ_API_KEY required")
}
