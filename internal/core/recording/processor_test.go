package recording

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/classpark/classpark-backend/internal/core/apperr"
	"github.com/classpark/classpark-backend/internal/models"
)

type recStore struct {
	mu        sync.Mutex
	recording *models.Recording
	loadErr   error

	statusUpdates []string
	statusErr     error

	savedTranscript string
	savedNotes      string
	saveErr         error
}

func (s *recStore) CreateMaterial(context.Context, *models.Material) error { return nil }
func (s *recStore) GetMaterialByID(context.Context, string) (*models.Material, error) {
	return nil, nil
}
func (s *recStore) ListMaterialsByCourse(context.Context, string) ([]models.Material, error) {
	return nil, nil
}
func (s *recStore) ReplaceMaterialChunks(context.Context, string, []models.MaterialChunk) error {
	return nil
}
func (s *recStore) SearchCourseChunks(context.Context, string, []float32, int, float64) ([]models.ChunkMatch, error) {
	return nil, nil
}
func (s *recStore) DeleteOrphanChunks(context.Context) (int64, error)        { return 0, nil }
func (s *recStore) CreateRecording(context.Context, *models.Recording) error { return nil }
func (s *recStore) GetRecordingByID(context.Context, string) (*models.Recording, error) {
	return s.recording, s.loadErr
}
func (s *recStore) UpdateRecordingStatus(_ context.Context, _ string, status string) error {
	if s.statusErr != nil {
		return s.statusErr
	}
	s.statusUpdates = append(s.statusUpdates, status)
	return nil
}
func (s *recStore) SetRecordingResults(_ context.Context, _ string, transcript, notes string) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.savedTranscript = transcript
	s.savedNotes = notes
	return nil
}
func (s *recStore) Close() error { return nil }

func (s *recStore) notes() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.savedNotes
}

type recObjects struct {
	url string
	err error
}

func (o *recObjects) Upload(context.Context, string, []byte, string) error { return nil }
func (o *recObjects) PresignGet(context.Context, string, time.Duration) (string, error) {
	return o.url, o.err
}
func (o *recObjects) Delete(context.Context, string) error { return nil }

type stubSTT struct {
	transcript string
	err        error
	gotMime    string
	gotBytes   []byte
}

func (s *stubSTT) Transcribe(_ context.Context, audio []byte, mimeType string) (string, error) {
	s.gotBytes = audio
	s.gotMime = mimeType
	return s.transcript, s.err
}

type notesLLM struct {
	notes   string
	err     error
	gotUser string
}

func (l *notesLLM) Generate(_ context.Context, _, user string, _ float32) (string, error) {
	l.gotUser = user
	return l.notes, l.err
}

func audioServer(t *testing.T, body []byte, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testRecording() *models.Recording {
	return &models.Recording{
		ID:          "rec-1",
		CourseID:    "course-1",
		StoragePath: "course/course-1/recordings/rec-1.mp3",
		MimeType:    "audio/mpeg",
		Status:      models.RecordingStatusProcessing,
	}
}

func TestProcessOne_Success(t *testing.T) {
	srv := audioServer(t, []byte("mp3-bytes"), http.StatusOK)
	store := &recStore{recording: testRecording()}
	stt := &stubSTT{transcript: "today we cover graphs"}
	llm := &notesLLM{notes: "- graphs: nodes and edges"}
	p := NewProcessor(store, &recObjects{url: srv.URL}, stt, llm, nil)

	err := p.ProcessOne(context.Background(), "rec-1")
	require.NoError(t, err)
	require.Equal(t, []byte("mp3-bytes"), stt.gotBytes)
	require.Equal(t, "audio/mpeg", stt.gotMime)
	require.Equal(t, "today we cover graphs", llm.gotUser)
	require.Equal(t, "today we cover graphs", store.savedTranscript)
	require.Equal(t, "- graphs: nodes and edges", store.savedNotes)
	require.Empty(t, store.statusUpdates, "a successful run must not touch the status directly")
}

func TestProcessOne_NotFound(t *testing.T) {
	store := &recStore{}
	p := NewProcessor(store, &recObjects{}, &stubSTT{}, &notesLLM{}, nil)
	err := p.ProcessOne(context.Background(), "missing")
	require.True(t, apperr.IsNotFound(err))
	require.Empty(t, store.statusUpdates)
}

func TestProcessOne_FetchFailureMarksFailed(t *testing.T) {
	srv := audioServer(t, nil, http.StatusNotFound)
	store := &recStore{recording: testRecording()}
	p := NewProcessor(store, &recObjects{url: srv.URL}, &stubSTT{}, &notesLLM{}, nil)

	err := p.ProcessOne(context.Background(), "rec-1")
	require.ErrorContains(t, err, "unexpected status")
	require.Equal(t, []string{models.RecordingStatusFailed}, store.statusUpdates)
}

func TestProcessOne_TranscribeFailureMarksFailed(t *testing.T) {
	srv := audioServer(t, []byte("mp3-bytes"), http.StatusOK)
	store := &recStore{recording: testRecording()}
	p := NewProcessor(store, &recObjects{url: srv.URL}, &stubSTT{err: errors.New("model offline")}, &notesLLM{}, nil)

	err := p.ProcessOne(context.Background(), "rec-1")
	require.ErrorContains(t, err, "transcribe")
	require.Equal(t, []string{models.RecordingStatusFailed}, store.statusUpdates)
	require.Empty(t, store.savedTranscript)
}

func TestProcessOne_SummarizeFailureMarksFailed(t *testing.T) {
	srv := audioServer(t, []byte("mp3-bytes"), http.StatusOK)
	store := &recStore{recording: testRecording()}
	p := NewProcessor(store, &recObjects{url: srv.URL}, &stubSTT{transcript: "t"}, &notesLLM{err: errors.New("quota")}, nil)

	err := p.ProcessOne(context.Background(), "rec-1")
	require.ErrorContains(t, err, "summarize notes")
	require.Equal(t, []string{models.RecordingStatusFailed}, store.statusUpdates)
}

func TestProcessOne_MarkFailedIsBestEffort(t *testing.T) {
	store := &recStore{recording: testRecording(), statusErr: errors.New("db gone")}
	p := NewProcessor(store, &recObjects{err: errors.New("sign denied")}, &stubSTT{}, &notesLLM{}, nil)

	// The original error must win even when the failure marker cannot be written.
	err := p.ProcessOne(context.Background(), "rec-1")
	require.ErrorContains(t, err, "sign recording url")
}

func TestWorkersDrainQueue(t *testing.T) {
	srv := audioServer(t, []byte("mp3-bytes"), http.StatusOK)
	store := &recStore{recording: testRecording()}
	done := make(chan struct{})
	llm := &notesLLM{notes: "notes"}
	stt := &stubSTT{transcript: "t"}
	p := NewProcessor(store, &recObjects{url: srv.URL}, stt, llm, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx, 2)

	go func() {
		p.Enqueue("rec-1")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("enqueue blocked")
	}
	require.Eventually(t, func() bool {
		return store.notes() == "notes"
	}, 2*time.Second, 10*time.Millisecond)
}
