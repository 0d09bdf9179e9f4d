package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/classpark/classpark-backend/internal/core"
	"github.com/classpark/classpark-backend/internal/core/apperr"
	"github.com/classpark/classpark-backend/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

var _ core.Store = (*DatabaseClient)(nil)

func NewDatabaseClient(ctx context.Context, databaseURL string) (*DatabaseClient, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func (c *DatabaseClient) CreateMaterial(ctx context.Context, m *models.Material) error {
	if m == nil {
		return errors.New("nil material")
	}
	const q = `
		INSERT INTO materials (id, course_id, title, storage_path, mime_type, created_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		m.ID, m.CourseID, m.Title, m.StoragePath, m.MimeType, m.CreatedAt)
	return err
}

func (c *DatabaseClient) GetMaterialByID(ctx context.Context, id string) (*models.Material, error) {
	const q = `
		SELECT id, course_id, title, storage_path, mime_type, created_at
		FROM materials
		WHERE id = $1
	`
	var m models.Material
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&m.ID, &m.CourseID, &m.Title, &m.StoragePath, &m.MimeType, &m.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *DatabaseClient) ListMaterialsByCourse(ctx context.Context, courseID string) ([]models.Material, error) {
	const q = `
		SELECT id, course_id, title, storage_path, mime_type, created_at
		FROM materials
		WHERE course_id = $1
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Material
	for rows.Next() {
		var m models.Material
		if err := rows.Scan(&m.ID, &m.CourseID, &m.Title, &m.StoragePath, &m.MimeType, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ReplaceMaterialChunks deletes prior chunks for the material and inserts the
// new rows in one transaction, so a re-index replaces instead of appending and
// a mid-run failure leaves the previous index intact.
func (c *DatabaseClient) ReplaceMaterialChunks(ctx context.Context, materialID string, chunks []models.MaterialChunk) error {
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM material_chunks WHERE material_id = $1`, materialID); err != nil {
		_ = tx.Rollback()
		return err
	}

	const q = `
		INSERT INTO material_chunks
			(id, course_id, material_id, position, content, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, now()))
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range chunks {
		ch := &chunks[i]
		vec := pgvector.NewVector(ch.Embedding)
		if _, err := stmt.ExecContext(ctx,
			ch.ID, ch.CourseID, ch.MaterialID, ch.Position, ch.Content, vec, ch.CreatedAt,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// SearchCourseChunks finds the most similar chunks within a course for a query
// embedding. Similarity is cosine: 1 - (embedding <=> query).
func (c *DatabaseClient) SearchCourseChunks(ctx context.Context, courseID string, queryVec []float32, topK int, threshold float64) ([]models.ChunkMatch, error) {
	const q = `
		SELECT id, material_id, position, content, 1 - (embedding <=> $2) AS similarity
		FROM material_chunks
		WHERE course_id = $1 AND 1 - (embedding <=> $2) > $3
		ORDER BY embedding <=> $2
		LIMIT $4
	`
	vec := pgvector.NewVector(queryVec)
	rows, err := c.db.QueryContext(ctx, q, courseID, vec, threshold, topK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ChunkMatch
	for rows.Next() {
		var m models.ChunkMatch
		if err := rows.Scan(&m.ID, &m.MaterialID, &m.Position, &m.Content, &m.Similarity); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// DeleteOrphanChunks removes chunk rows whose owning material is gone.
// Same-database deletes cascade via the FK; this covers materials removed by
// external tooling.
func (c *DatabaseClient) DeleteOrphanChunks(ctx context.Context) (int64, error) {
	const q = `
		DELETE FROM material_chunks mc
		WHERE NOT EXISTS (SELECT 1 FROM materials m WHERE m.id = mc.material_id)
	`
	res, err := c.db.ExecContext(ctx, q)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (c *DatabaseClient) CreateRecording(ctx context.Context, rec *models.Recording) error {
	if rec == nil {
		return errors.New("nil recording")
	}
	const q = `
		INSERT INTO recordings
			(id, course_id, title, storage_path, mime_type, status, transcript, notes, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, now()), COALESCE($10, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		rec.ID, rec.CourseID, rec.Title, rec.StoragePath, rec.MimeType, rec.Status,
		rec.Transcript, rec.Notes, rec.CreatedAt, rec.UpdatedAt)
	return err
}

func (c *DatabaseClient) GetRecordingByID(ctx context.Context, id string) (*models.Recording, error) {
	const q = `
		SELECT id, course_id, title, storage_path, mime_type, status, transcript, notes, created_at, updated_at
		FROM recordings
		WHERE id = $1
	`
	var r models.Recording
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&r.ID, &r.CourseID, &r.Title, &r.StoragePath, &r.MimeType, &r.Status,
		&r.Transcript, &r.Notes, &r.CreatedAt, &r.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *DatabaseClient) UpdateRecordingStatus(ctx context.Context, id string, status string) error {
	const q = `
		UPDATE recordings
		SET status = $2, updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, id, status)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperr.NotFoundf("recording %s", id)
	}
	return nil
}

func (c *DatabaseClient) SetRecordingResults(ctx context.Context, id string, transcript, notes string) error {
	const q = `
		UPDATE recordings
		SET transcript = $2, notes = $3, status = $4, updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, id, transcript, notes, models.RecordingStatusCompleted)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperr.NotFoundf("recording %s", id)
	}
	return nil
}
