package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/classpark/classpark-backend/internal/core"
	"github.com/classpark/classpark-backend/internal/core/apperr"
	"github.com/classpark/classpark-backend/internal/models"
)

const maxUploadBytes = 50 << 20

type MaterialHandler struct {
	store   core.Store
	objects core.ObjectClient
	logger  *zap.Logger
}

func NewMaterialHandler(store core.Store, objects core.ObjectClient, logger *zap.Logger) *MaterialHandler {
	return &MaterialHandler{store: store, objects: objects, logger: logger}
}

// UploadMaterial stores the file bytes and creates the material row. Indexing
// is a separate, explicit call.
func (h *MaterialHandler) UploadMaterial(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, h.logger, apperr.Invalidf("invalid multipart form"))
		return
	}

	courseID := r.FormValue("course_id")
	if courseID == "" {
		writeError(w, h.logger, apperr.Invalidf("missing course_id"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, h.logger, apperr.Invalidf("missing file"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, h.logger, fmt.Errorf("read upload: %w", err))
		return
	}

	title := r.FormValue("title")
	if title == "" {
		title = header.Filename
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// Base strips any path components from the client-supplied filename.
	materialID := uuid.NewString()
	key := fmt.Sprintf("course/%s/%s/%s", courseID, materialID, filepath.Base(header.Filename))

	if err := h.objects.Upload(r.Context(), key, data, contentType); err != nil {
		writeError(w, h.logger, fmt.Errorf("store upload: %w", err))
		return
	}

	mat := &models.Material{
		ID:          materialID,
		CourseID:    courseID,
		Title:       title,
		StoragePath: key,
		MimeType:    contentType,
		CreatedAt:   time.Now(),
	}
	if err := h.store.CreateMaterial(r.Context(), mat); err != nil {
		writeError(w, h.logger, fmt.Errorf("store material metadata: %w", err))
		return
	}

	writeJSON(w, http.StatusCreated, mat)
}

func (h *MaterialHandler) ListMaterials(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")
	if courseID == "" {
		writeError(w, h.logger, apperr.Invalidf("missing courseID"))
		return
	}

	materials, err := h.store.ListMaterialsByCourse(r.Context(), courseID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if materials == nil {
		materials = []models.Material{}
	}
	writeJSON(w, http.StatusOK, materials)
}
