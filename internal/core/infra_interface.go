package core

import (
	"context"
	"time"

	"github.com/classpark/classpark-backend/internal/models"
)

// Store defines all persistence the ingestion and retrieval core needs.
// It abstracts Postgres/pgvector so higher layers never depend on a specific DB.
type Store interface {
	CreateMaterial(ctx context.Context, m *models.Material) error
	GetMaterialByID(ctx context.Context, id string) (*models.Material, error)
	ListMaterialsByCourse(ctx context.Context, courseID string) ([]models.Material, error)

	// ReplaceMaterialChunks atomically removes any prior chunks for the
	// material and inserts the given rows. Indexing is all-or-nothing from
	// the caller's point of view.
	ReplaceMaterialChunks(ctx context.Context, materialID string, chunks []models.MaterialChunk) error
	// SearchCourseChunks returns up to topK chunks in the course whose cosine
	// similarity to queryVec exceeds threshold, most similar first.
	SearchCourseChunks(ctx context.Context, courseID string, queryVec []float32, topK int, threshold float64) ([]models.ChunkMatch, error)
	DeleteOrphanChunks(ctx context.Context) (int64, error)

	CreateRecording(ctx context.Context, rec *models.Recording) error
	GetRecordingByID(ctx context.Context, id string) (*models.Recording, error)
	UpdateRecordingStatus(ctx context.Context, id string, status string) error
	SetRecordingResults(ctx context.Context, id string, transcript, notes string) error

	Close() error
}

// ObjectClient defines interactions with S3 or any compatible object storage.
type ObjectClient interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	// PresignGet returns a short-lived read URL for the stored object.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// EmbeddingProvider turns a batch of texts into one vector per text, in order.
type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// LLMProvider generates a completion from a system instruction and user turn.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error)
}

// Transcriber converts recorded audio into plain transcript text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// DocumentExtractor produces normalized plain text from raw file bytes. The
// MIME type and filename are best-effort hints, not ground truth; kind names
// the format the extractor settled on.
type DocumentExtractor interface {
	ExtractText(data []byte, mimeHint, nameHint string) (text string, kind string, err error)
}
