// Package ingest orchestrates material indexing: fetch bytes, extract text,
// chunk, plan embedding batches, embed and persist.
package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/classpark/classpark-backend/internal/core"
	"github.com/classpark/classpark-backend/internal/core/apperr"
	"github.com/classpark/classpark-backend/internal/core/batch"
	"github.com/classpark/classpark-backend/internal/core/chunk"
	"github.com/classpark/classpark-backend/internal/models"
)

const defaultSignedURLTTL = 5 * time.Minute

// Options tunes the pipeline; zero values fall back to the package defaults.
type Options struct {
	ChunkSize          int
	ChunkOverlap       int
	ItemTokenLimit     int
	RequestTokenBudget int
	SignedURLTTL       time.Duration
	HTTPClient         *http.Client
}

// Indexer runs the ingestion pipeline for one material at a time per id.
// Concurrent calls for the same material collapse into a single run; a
// completed run replaces any previously stored chunks for the material.
type Indexer struct {
	store     core.Store
	objects   core.ObjectClient
	embedder  core.EmbeddingProvider
	extractor core.DocumentExtractor

	planner      batch.Planner
	httpClient   *http.Client
	chunkSize    int
	chunkOverlap int
	signedURLTTL time.Duration
	logger       *zap.Logger

	inflight singleflight.Group
}

func NewIndexer(store core.Store, objects core.ObjectClient, embedder core.EmbeddingProvider, extractor core.DocumentExtractor, opts Options, logger *zap.Logger) *Indexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	size := opts.ChunkSize
	if size <= 0 {
		size = chunk.DefaultSize
	}
	overlap := opts.ChunkOverlap
	if overlap <= 0 {
		overlap = chunk.DefaultOverlap
	}
	ttl := opts.SignedURLTTL
	if ttl <= 0 {
		ttl = defaultSignedURLTTL
	}
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return &Indexer{
		store:     store,
		objects:   objects,
		embedder:  embedder,
		extractor: extractor,
		planner: batch.Planner{
			ItemTokenLimit:     opts.ItemTokenLimit,
			RequestTokenBudget: opts.RequestTokenBudget,
		},
		httpClient:   client,
		chunkSize:    size,
		chunkOverlap: overlap,
		signedURLTTL: ttl,
		logger:       logger,
	}
}

// IndexMaterial extracts, chunks, embeds and persists one material and
// returns the number of chunks written. Re-indexing replaces prior chunks.
func (ix *Indexer) IndexMaterial(ctx context.Context, materialID string) (int, error) {
	if strings.TrimSpace(materialID) == "" {
		return 0, apperr.Invalidf("missing materialId")
	}
	v, err, _ := ix.inflight.Do(materialID, func() (any, error) {
		return ix.indexOne(ctx, materialID)
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

func (ix *Indexer) indexOne(ctx context.Context, materialID string) (int, error) {
	mat, err := ix.store.GetMaterialByID(ctx, materialID)
	if err != nil {
		return 0, fmt.Errorf("load material: %w", err)
	}
	if mat == nil {
		return 0, apperr.NotFoundf("material %s", materialID)
	}

	url, err := ix.objects.PresignGet(ctx, mat.StoragePath, ix.signedURLTTL)
	if err != nil {
		return 0, fmt.Errorf("sign material url: %w", err)
	}

	data, err := ix.fetch(ctx, url)
	if err != nil {
		return 0, err
	}

	text, kind, err := ix.extractor.ExtractText(data, mat.MimeType, mat.Title)
	if err != nil {
		return 0, err
	}
	if text == "" {
		return 0, &apperr.NoTextError{Kind: kind}
	}

	windows := chunk.Split(text, ix.chunkSize, ix.chunkOverlap)
	if len(windows) == 0 {
		return 0, fmt.Errorf("material %s produced no chunks", materialID)
	}

	batches := ix.planner.Plan(windows)

	// Batches go to the embedding provider strictly in order, one request per
	// batch. All vectors are collected before anything is written, so a
	// failure anywhere leaves the previous index untouched.
	var rows []models.MaterialChunk
	pos := 0
	for bi, items := range batches {
		vectors, err := ix.embedder.EmbedTexts(ctx, items)
		if err != nil {
			return 0, fmt.Errorf("embed batch %d/%d: %w", bi+1, len(batches), err)
		}
		if len(vectors) != len(items) {
			return 0, fmt.Errorf("embed batch %d/%d: got %d vectors for %d items", bi+1, len(batches), len(vectors), len(items))
		}
		for j, content := range items {
			rows = append(rows, models.MaterialChunk{
				ID:         uuid.NewString(),
				CourseID:   mat.CourseID,
				MaterialID: mat.ID,
				Position:   pos,
				Content:    content,
				Embedding:  vectors[j],
				CreatedAt:  time.Now(),
			})
			pos++
		}
	}

	if err := ix.store.ReplaceMaterialChunks(ctx, mat.ID, rows); err != nil {
		return 0, fmt.Errorf("persist chunks: %w", err)
	}

	ix.logger.Info("material indexed",
		zap.String("material_id", mat.ID),
		zap.String("course_id", mat.CourseID),
		zap.String("kind", kind),
		zap.Int("chunks", len(rows)),
		zap.Int("batches", len(batches)),
	)
	return len(rows), nil
}

func (ix *Indexer) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}
	resp, err := ix.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch material bytes: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch material bytes: unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read material bytes: %w", err)
	}
	return data, nil
}
