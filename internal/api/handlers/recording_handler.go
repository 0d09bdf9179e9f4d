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
	"github.com/classpark/classpark-backend/internal/core/recording"
	"github.com/classpark/classpark-backend/internal/models"
)

type RecordingHandler struct {
	store     core.Store
	objects   core.ObjectClient
	processor *recording.Processor
	logger    *zap.Logger
}

func NewRecordingHandler(store core.Store, objects core.ObjectClient, processor *recording.Processor, logger *zap.Logger) *RecordingHandler {
	return &RecordingHandler{store: store, objects: objects, processor: processor, logger: logger}
}

// CreateRecording stores the audio artifact, creates the row in "processing"
// and enqueues background transcription. The response is immediate; clients
// poll GetRecording for the terminal state.
func (h *RecordingHandler) CreateRecording(w http.ResponseWriter, r *http.Request) {
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

	audio, err := io.ReadAll(file)
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
		contentType = "audio/webm"
	}

	recordingID := uuid.NewString()
	key := fmt.Sprintf("course/%s/recordings/%s/%s", courseID, recordingID, filepath.Base(header.Filename))

	if err := h.objects.Upload(r.Context(), key, audio, contentType); err != nil {
		writeError(w, h.logger, fmt.Errorf("store upload: %w", err))
		return
	}

	rec := &models.Recording{
		ID:          recordingID,
		CourseID:    courseID,
		Title:       title,
		StoragePath: key,
		MimeType:    contentType,
		Status:      models.RecordingStatusProcessing,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := h.store.CreateRecording(r.Context(), rec); err != nil {
		writeError(w, h.logger, fmt.Errorf("store recording metadata: %w", err))
		return
	}

	h.processor.Enqueue(recordingID)
	writeJSON(w, http.StatusAccepted, rec)
}

func (h *RecordingHandler) GetRecording(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "recordingID")
	rec, err := h.store.GetRecordingByID(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if rec == nil {
		writeError(w, h.logger, apperr.NotFoundf("recording %s", id))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
