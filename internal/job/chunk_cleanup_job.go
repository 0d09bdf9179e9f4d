// Package job holds the periodic maintenance jobs run by the scheduler.
package job

import (
	"context"

	"go.uber.org/zap"

	"github.com/classpark/classpark-backend/internal/core"
)

// ChunkCleanupJob removes chunk rows whose owning material was deleted by the
// course-management collaborator outside this service's transactions.
type ChunkCleanupJob struct {
	store  core.Store
	logger *zap.Logger
}

func NewChunkCleanupJob(store core.Store, logger *zap.Logger) *ChunkCleanupJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChunkCleanupJob{store: store, logger: logger}
}

func (j *ChunkCleanupJob) Name() string {
	return "chunk_cleanup"
}

func (j *ChunkCleanupJob) Run(ctx context.Context) error {
	n, err := j.store.DeleteOrphanChunks(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		j.logger.Info("removed orphan chunks", zap.Int64("rows", n))
	}
	return nil
}
