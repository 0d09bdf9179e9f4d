package job

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/classpark/classpark-backend/internal/models"
)

type cleanupStore struct {
	deleted int64
	err     error
	runs    int
}

func (s *cleanupStore) CreateMaterial(context.Context, *models.Material) error { return nil }
func (s *cleanupStore) GetMaterialByID(context.Context, string) (*models.Material, error) {
	return nil, nil
}
func (s *cleanupStore) ListMaterialsByCourse(context.Context, string) ([]models.Material, error) {
	return nil, nil
}
func (s *cleanupStore) ReplaceMaterialChunks(context.Context, string, []models.MaterialChunk) error {
	return nil
}
func (s *cleanupStore) SearchCourseChunks(context.Context, string, []float32, int, float64) ([]models.ChunkMatch, error) {
	return nil, nil
}
func (s *cleanupStore) DeleteOrphanChunks(context.Context) (int64, error) {
	s.runs++
	return s.deleted, s.err
}
func (s *cleanupStore) CreateRecording(context.Context, *models.Recording) error { return nil }
func (s *cleanupStore) GetRecordingByID(context.Context, string) (*models.Recording, error) {
	return nil, nil
}
func (s *cleanupStore) UpdateRecordingStatus(context.Context, string, string) error { return nil }
func (s *cleanupStore) SetRecordingResults(context.Context, string, string, string) error {
	return nil
}
func (s *cleanupStore) Close() error { return nil }

func TestChunkCleanupJob_Run(t *testing.T) {
	store := &cleanupStore{deleted: 3}
	j := NewChunkCleanupJob(store, nil)
	require.Equal(t, "chunk_cleanup", j.Name())
	require.NoError(t, j.Run(context.Background()))
	require.Equal(t, 1, store.runs)
}

func TestChunkCleanupJob_RunError(t *testing.T) {
	store := &cleanupStore{err: errors.New("db gone")}
	j := NewChunkCleanupJob(store, nil)
	require.ErrorContains(t, j.Run(context.Background()), "db gone")
}
