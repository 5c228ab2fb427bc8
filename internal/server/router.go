package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/kortex-labs/kortex/internal/api"
	"github.com/kortex-labs/kortex/internal/api/handlers"
	"github.com/kortex-labs/kortex/internal/api/middleware"
)

type RouterConfig struct {
	UserHandler      *handlers.UserHandler
	SubjectHandler   *handlers.SubjectHandler
	UploadHandler    *handlers.UploadHandler
	DocumentHandler  *handlers.DocumentHandler
	ChatHandler      *handlers.ChatHandler
	DashboardHandler *handlers.DashboardHandler
	MaxBodyBytes     int64
	AllowedOrigins   []string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	maxBodyBytes := cfg.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = 10 * 1024 * 1024
	}

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-User-ID", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.UserContext)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/users/get-or-create", cfg.UserHandler.GetOrCreate)

		r.Route("/subjects", func(r chi.Router) {
			r.Post("/", cfg.SubjectHandler.Create)
			r.Get("/", cfg.SubjectHandler.List)
			r.Patch("/{id}", cfg.SubjectHandler.Rename)
			r.Delete("/{id}", cfg.SubjectHandler.Delete)
		})

		r.Post("/upload", cfg.UploadHandler.Upload)

		r.Route("/documents", func(r chi.Router) {
			r.Get("/", cfg.DocumentHandler.List)
			r.Delete("/{id}", cfg.DocumentHandler.Delete)
		})

		r.Post("/chat", cfg.ChatHandler.Chat)

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/stats", cfg.DashboardHandler.Stats)
			r.Get("/activity", cfg.DashboardHandler.Activity)
		})
	})

	return r
}
