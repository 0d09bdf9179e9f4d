package models

import (
	"time"
)

// Recording lifecycle states.
const (
	RecordingStatusProcessing = "processing"
	RecordingStatusCompleted  = "completed"
	RecordingStatusFailed     = "failed"
)

// Material is an uploaded course document. Materials are created by the upload
// endpoint, read by the indexer, and deleted by the course-management
// collaborator; the indexing pipeline never mutates them.
type Material struct {
	ID          string    `db:"id" json:"id"`
	CourseID    string    `db:"course_id" json:"course_id"`
	Title       string    `db:"title" json:"title"`
	StoragePath string    `db:"storage_path" json:"storage_path"` // object key in the bucket
	MimeType    string    `db:"mime_type" json:"mime_type"`       // declared by the uploader, treated as a hint
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// MaterialChunk is one embedded slice of a material's extracted text.
// Positions are dense and zero-based within a material; emission order and
// stored order always agree.
type MaterialChunk struct {
	ID         string    `db:"id" json:"id"`
	CourseID   string    `db:"course_id" json:"course_id"`
	MaterialID string    `db:"material_id" json:"material_id"`
	Position   int       `db:"position" json:"position"`
	Content    string    `db:"content" json:"content"`
	Embedding  []float32 `db:"embedding" json:"-"` // pgvector column
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ChunkMatch is a similarity-search hit against material_chunks.
type ChunkMatch struct {
	ID         string  `db:"id" json:"id"`
	MaterialID string  `db:"material_id" json:"material_id"`
	Position   int     `db:"position" json:"position"`
	Content    string  `db:"content" json:"content"`
	Similarity float64 `db:"similarity" json:"similarity"`
}

// Recording is a lecture audio artifact with derived transcript and notes.
type Recording struct {
	ID          string    `db:"id" json:"id"`
	CourseID    string    `db:"course_id" json:"course_id"`
	Title       string    `db:"title" json:"title"`
	StoragePath string    `db:"storage_path" json:"storage_path"`
	MimeType    string    `db:"mime_type" json:"mime_type"`
	Status      string    `db:"status" json:"status"` // processing | completed | failed
	Transcript  string    `db:"transcript" json:"transcript,omitempty"`
	Notes       string    `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ChatMessage is one turn of a course chat conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant" or "system"
	Content string `json:"content"`
}
