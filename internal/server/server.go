package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ch4uTR/TarimKocum/config"
	"github.com/ch4uTR/TarimKocum/internal/auth"
	"github.com/ch4uTR/TarimKocum/internal/classifier"
	"github.com/ch4uTR/TarimKocum/internal/db"
	"github.com/ch4uTR/TarimKocum/internal/describer"
	"github.com/ch4uTR/TarimKocum/internal/handlers"
	"github.com/ch4uTR/TarimKocum/internal/services"
	"github.com/ch4uTR/TarimKocum/internal/storage"
	"github.com/ch4uTR/TarimKocum/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
}

// New constructs a Server with all dependencies wired from config.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	dbConn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	signer, err := auth.NewSigner(cfg.JWT.Secret, cfg.JWT.Algorithm)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	fileStore, err := NewFileStore(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	if cfg.Gemini.APIKey == "" {
		log.Warn("gemini api key not configured, descriptions will be unavailable")
	}

	userRepo := store.NewUserRepository(dbConn)
	plantRepo := store.NewPlantRepository(dbConn)

	userService := services.NewUserService(userRepo)
	diagnosisService := services.NewDiagnosisService(
		plantRepo,
		fileStore,
		classifier.NewHTTPClient(cfg.Classifier),
		describer.NewGemini(cfg.Gemini, log),
		log,
	)

	authMiddleware := handlers.RequireAuth(signer)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(120*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, userService, signer, log)
	})
	router.Route("/plant", func(r chi.Router) {
		handlers.PlantRouter(r, diagnosisService, authMiddleware, log)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
	}, nil
}

// NewFileStore builds the configured file-store backend.
func NewFileStore(ctx context.Context, cfg config.StorageConfig) (*storage.FileStore, error) {
	switch cfg.Backend {
	case "", "local":
		backend, err := storage.NewLocalBackend(cfg.MediaDir)
		if err != nil {
			return nil, err
		}
		return storage.NewFileStore(backend), nil
	case "minio":
		backend, err := storage.NewMinioBackend(cfg.Minio)
		if err != nil {
			return nil, err
		}
		if err := backend.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return storage.NewFileStore(backend), nil
	case "gcs":
		backend, err := storage.NewGCSBackend(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}
		if err := backend.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return storage.NewFileStore(backend), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests and closes the database pool.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.db != nil {
		_ = s.db.Close()
	}
	return err
}
