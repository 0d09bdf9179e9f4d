package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/classpark/classpark-backend/internal/api/handlers"
	appMiddleware "github.com/classpark/classpark-backend/internal/api/middlewares"
	"github.com/classpark/classpark-backend/internal/config"
	"github.com/classpark/classpark-backend/internal/core"
	"github.com/classpark/classpark-backend/internal/core/ingest"
	"github.com/classpark/classpark-backend/internal/core/rag"
	"github.com/classpark/classpark-backend/internal/core/recording"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, logger *zap.Logger, indexer *ingest.Indexer, composer *rag.Composer, store core.Store, objects core.ObjectClient, processor *recording.Processor) *Server {
	indexHandler := handlers.NewIndexHandler(indexer, logger)
	chatHandler := handlers.NewChatHandler(composer, logger)
	materialHandler := handlers.NewMaterialHandler(store, objects, logger)
	recordingHandler := handlers.NewRecordingHandler(store, objects, processor, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(appMiddleware.JSONRecoverer(logger))
	// Indexing large materials means many sequential embedding calls; give
	// requests room before the router cuts them off.
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// Core pipeline endpoints.
	r.Post("/index-material", indexHandler.IndexMaterial)
	r.Post("/course-chat", chatHandler.CourseChat)

	r.Route("/api", func(api chi.Router) {
		api.Post("/materials", materialHandler.UploadMaterial)
		api.Get("/courses/{courseID}/materials", materialHandler.ListMaterials)
		api.Post("/recordings", recordingHandler.CreateRecording)
		api.Get("/recordings/{recordingID}", recordingHandler.GetRecording)
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv, logger: logger}
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
