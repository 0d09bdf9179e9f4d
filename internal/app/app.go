package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/classpark/classpark-backend/internal/config"
	"github.com/classpark/classpark-backend/internal/core"
	db "github.com/classpark/classpark-backend/internal/core/database"
	"github.com/classpark/classpark-backend/internal/core/extract"
	"github.com/classpark/classpark-backend/internal/core/ingest"
	"github.com/classpark/classpark-backend/internal/core/llm"
	objectclient "github.com/classpark/classpark-backend/internal/core/object-client"
	"github.com/classpark/classpark-backend/internal/core/rag"
	"github.com/classpark/classpark-backend/internal/core/recording"
	"github.com/classpark/classpark-backend/internal/job"
	"github.com/classpark/classpark-backend/internal/schedule"
)

// App owns every long-lived component; all collaborators are constructed here
// and injected, never built inside business logic.
type App struct {
	Store     core.Store
	Objects   core.ObjectClient
	Server    *Server
	scheduler *schedule.CronScheduler
	logger    *zap.Logger
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	initCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	store, err := db.NewDatabaseClient(initCtx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	logger.Info("database initialized")

	objects, err := objectclient.NewS3Client(initCtx, objectclient.S3Options{
		AccessKey: cfg.AwsAccessKey,
		SecretKey: cfg.AwsSecretKey,
		Region:    cfg.AwsRegion,
		Bucket:    cfg.BucketName,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("object storage client initialized")

	// Transcription always rides on Gemini; the provider switch below only
	// selects who serves embeddings and chat generation.
	gemini, err := llm.NewGeminiLLM(initCtx, cfg.GeminiAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}

	var embedder core.EmbeddingProvider
	var generator core.LLMProvider
	switch cfg.AIProvider {
	case "openai":
		oc, err := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.EmbedModel, cfg.GenModel)
		if err != nil {
			return nil, fmt.Errorf("init openai client: %w", err)
		}
		embedder, generator = oc, oc
	case "gemini", "":
		ge, err := llm.NewGeminiEmbedder(initCtx, cfg.GeminiAPIKey, cfg.EmbedModel)
		if err != nil {
			return nil, fmt.Errorf("init gemini embedder: %w", err)
		}
		embedder, generator = ge, gemini
	default:
		return nil, fmt.Errorf("unsupported AI_PROVIDER: %s", cfg.AIProvider)
	}

	embedder = llm.WrapLRUCache(embedder, cfg.EmbedCacheSize, time.Duration(cfg.EmbedCacheTTLMinutes)*time.Minute)

	extractor := extract.NewService()

	indexer := ingest.NewIndexer(store, objects, embedder, extractor, ingest.Options{
		ChunkSize:          cfg.ChunkSize,
		ChunkOverlap:       cfg.ChunkOverlap,
		ItemTokenLimit:     cfg.ItemTokenLimit,
		RequestTokenBudget: cfg.RequestTokenBudget,
		SignedURLTTL:       time.Duration(cfg.SignedURLTTLSeconds) * time.Second,
	}, logger)

	composer := rag.NewComposer(store, embedder, generator, cfg.TopK, cfg.MinSimilarity, logger)

	processor := recording.NewProcessor(store, objects, gemini, generator, logger)
	processor.Start(ctx, cfg.RecordingWorkers)

	scheduler := schedule.NewCronScheduler(logger)
	if err := scheduler.AddJob(job.NewChunkCleanupJob(store, logger), cfg.CleanupCron); err != nil {
		return nil, err
	}
	scheduler.Start(ctx)

	server := NewServer(cfg, logger, indexer, composer, store, objects, processor)

	return &App{
		Store:     store,
		Objects:   objects,
		Server:    server,
		scheduler: scheduler,
		logger:    logger,
	}, nil
}

func (a *App) Close() {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.Store != nil {
		_ = a.Store.Close()
	}
}
