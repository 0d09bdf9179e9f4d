package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/classpark/classpark-backend/internal/models"
)

type handlerStore struct {
	materials        []models.Material
	createdMaterials []*models.Material
	listErr          error
	recording        *models.Recording
}

func (s *handlerStore) CreateMaterial(_ context.Context, m *models.Material) error {
	s.createdMaterials = append(s.createdMaterials, m)
	return nil
}
func (s *handlerStore) GetMaterialByID(context.Context, string) (*models.Material, error) {
	return nil, nil
}
func (s *handlerStore) ListMaterialsByCourse(context.Context, string) ([]models.Material, error) {
	return s.materials, s.listErr
}
func (s *handlerStore) ReplaceMaterialChunks(context.Context, string, []models.MaterialChunk) error {
	return nil
}
func (s *handlerStore) SearchCourseChunks(context.Context, string, []float32, int, float64) ([]models.ChunkMatch, error) {
	return nil, nil
}
func (s *handlerStore) DeleteOrphanChunks(context.Context) (int64, error)        { return 0, nil }
func (s *handlerStore) CreateRecording(context.Context, *models.Recording) error { return nil }
func (s *handlerStore) GetRecordingByID(context.Context, string) (*models.Recording, error) {
	return s.recording, nil
}
func (s *handlerStore) UpdateRecordingStatus(context.Context, string, string) error { return nil }
func (s *handlerStore) SetRecordingResults(context.Context, string, string, string) error {
	return nil
}
func (s *handlerStore) Close() error { return nil }

type handlerObjects struct {
	uploadedKey  string
	uploadedType string
}

func (o *handlerObjects) Upload(_ context.Context, key string, _ []byte, contentType string) error {
	o.uploadedKey = key
	o.uploadedType = contentType
	return nil
}
func (o *handlerObjects) PresignGet(context.Context, string, time.Duration) (string, error) {
	return "", nil
}
func (o *handlerObjects) Delete(context.Context, string) error { return nil }

func TestIndexMaterial_BadJSON(t *testing.T) {
	h := NewIndexHandler(nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/index-material", strings.NewReader("{nope"))
	rec := httptest.NewRecorder()
	h.IndexMaterial(rec, req)
	require.Equal(t, 400, rec.Code)
}

func TestIndexMaterial_MissingID(t *testing.T) {
	h := NewIndexHandler(nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/index-material", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.IndexMaterial(rec, req)
	require.Equal(t, 400, rec.Code)
	require.Contains(t, decodeBody(t, rec)["error"], "materialId")
}

func TestCourseChat_BadJSON(t *testing.T) {
	h := NewChatHandler(nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/course-chat", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	h.CourseChat(rec, req)
	require.Equal(t, 400, rec.Code)
}

func multipartBody(t *testing.T, fields map[string]string, fileField, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile(fileField, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadMaterial_CreatesRowAndObject(t *testing.T) {
	store := &handlerStore{}
	objects := &handlerObjects{}
	h := NewMaterialHandler(store, objects, nil)

	body, contentType := multipartBody(t,
		map[string]string{"course_id": "course-7", "title": "Week 1 slides"},
		"file", "../sneaky/week1.pptx", []byte("zipzip"))
	req := httptest.NewRequest(http.MethodPost, "/api/materials", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.UploadMaterial(rec, req)
	require.Equal(t, 201, rec.Code)
	require.Len(t, store.createdMaterials, 1)

	mat := store.createdMaterials[0]
	require.Equal(t, "course-7", mat.CourseID)
	require.Equal(t, "Week 1 slides", mat.Title)
	require.Equal(t, objects.uploadedKey, mat.StoragePath)
	require.True(t, strings.HasSuffix(mat.StoragePath, "/week1.pptx"),
		"client path components must be stripped: %s", mat.StoragePath)
	require.NotContains(t, mat.StoragePath, "..")

	var returned models.Material
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &returned))
	require.Equal(t, mat.ID, returned.ID)
}

func TestUploadMaterial_MissingCourseID(t *testing.T) {
	h := NewMaterialHandler(&handlerStore{}, &handlerObjects{}, nil)
	body, contentType := multipartBody(t, nil, "file", "a.txt", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/api/materials", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.UploadMaterial(rec, req)
	require.Equal(t, 400, rec.Code)
}

func TestListMaterials_EmptyIsArray(t *testing.T) {
	h := NewMaterialHandler(&handlerStore{}, &handlerObjects{}, nil)
	r := chi.NewRouter()
	r.Get("/api/courses/{courseID}/materials", h.ListMaterials)

	req := httptest.NewRequest(http.MethodGet, "/api/courses/course-1/materials", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	require.Equal(t, "[]", strings.TrimSpace(rec.Body.String()),
		"no materials must serialize as an empty array, not null")
}

func TestGetRecording_NotFound(t *testing.T) {
	h := NewRecordingHandler(&handlerStore{}, &handlerObjects{}, nil, nil)
	r := chi.NewRouter()
	r.Get("/api/recordings/{recordingID}", h.GetRecording)

	req := httptest.NewRequest(http.MethodGet, "/api/recordings/nope", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, 404, rec.Code)
}

func TestGetRecording_ReturnsRow(t *testing.T) {
	store := &handlerStore{recording: &models.Recording{
		ID:     "rec-9",
		Status: models.RecordingStatusCompleted,
	}}
	h := NewRecordingHandler(store, &handlerObjects{}, nil, nil)
	r := chi.NewRouter()
	r.Get("/api/recordings/{recordingID}", h.GetRecording)

	req := httptest.NewRequest(http.MethodGet, "/api/recordings/rec-9", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	var returned models.Recording
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &returned))
	require.Equal(t, models.RecordingStatusCompleted, returned.Status)
}
