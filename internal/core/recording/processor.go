// Package recording processes lecture audio in the background: fetch the
// stored artifact, transcribe it, summarize the transcript into study notes
// and persist the results. A degenerate one-shot version of the material
// pipeline: speech-to-text stands in for the extractor, one summarization
// call stands in for chunk+embed.
package recording

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/classpark/classpark-backend/internal/core"
	"github.com/classpark/classpark-backend/internal/core/apperr"
	"github.com/classpark/classpark-backend/internal/models"
)

const (
	signedURLTTL = 5 * time.Minute

	notesTemperature = 0.3

	notesSystemPrompt = "You turn lecture transcripts into structured study notes. " +
		"Produce a short summary, the key concepts with one-line explanations, and any assignments or deadlines mentioned. " +
		"Use only what the transcript says."
)

// Processor runs a bounded job queue of recording IDs through transcription.
type Processor struct {
	store      core.Store
	objects    core.ObjectClient
	stt        core.Transcriber
	llm        core.LLMProvider
	httpClient *http.Client
	logger     *zap.Logger
	jobs       chan string
}

// NewProcessor constructs the processor with a bounded job queue (64).
func NewProcessor(store core.Store, objects core.ObjectClient, stt core.Transcriber, llm core.LLMProvider, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		store:      store,
		objects:    objects,
		stt:        stt,
		llm:        llm,
		httpClient: http.DefaultClient,
		logger:     logger,
		jobs:       make(chan string, 64),
	}
}

// Start launches worker goroutines reading from the job queue until ctx ends.
func (p *Processor) Start(ctx context.Context, numWorkers int) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	for w := 1; w <= numWorkers; w++ {
		go func(w int) {
			for {
				select {
				case <-ctx.Done():
					p.logger.Info("recording worker shutting down", zap.Int("worker", w))
					return
				case id := <-p.jobs:
					if err := p.ProcessOne(ctx, id); err != nil {
						p.logger.Error("recording processing failed",
							zap.String("recording_id", id),
							zap.Int("worker", w),
							zap.Error(err),
						)
					}
				}
			}
		}(w)
	}
}

// Enqueue schedules a recording for processing. Blocks if the queue is full.
func (p *Processor) Enqueue(recordingID string) {
	p.jobs <- recordingID
}

// ProcessOne runs the transcribe-then-summarize pipeline for one recording.
// Any failure marks the recording failed; that write is best-effort and its
// own failure is only logged.
func (p *Processor) ProcessOne(ctx context.Context, recordingID string) error {
	rec, err := p.store.GetRecordingByID(ctx, recordingID)
	if err != nil {
		return fmt.Errorf("load recording: %w", err)
	}
	if rec == nil {
		return apperr.NotFoundf("recording %s", recordingID)
	}

	url, err := p.objects.PresignGet(ctx, rec.StoragePath, signedURLTTL)
	if err != nil {
		p.markFailed(ctx, recordingID)
		return fmt.Errorf("sign recording url: %w", err)
	}

	audio, err := p.fetch(ctx, url)
	if err != nil {
		p.markFailed(ctx, recordingID)
		return err
	}

	transcript, err := p.stt.Transcribe(ctx, audio, rec.MimeType)
	if err != nil {
		p.markFailed(ctx, recordingID)
		return fmt.Errorf("transcribe: %w", err)
	}

	notes, err := p.llm.Generate(ctx, notesSystemPrompt, transcript, notesTemperature)
	if err != nil {
		p.markFailed(ctx, recordingID)
		return fmt.Errorf("summarize notes: %w", err)
	}

	if err := p.store.SetRecordingResults(ctx, recordingID, transcript, notes); err != nil {
		p.markFailed(ctx, recordingID)
		return fmt.Errorf("persist results: %w", err)
	}

	p.logger.Info("recording processed",
		zap.String("recording_id", recordingID),
		zap.Int("transcript_chars", len(transcript)),
	)
	return nil
}

func (p *Processor) markFailed(ctx context.Context, recordingID string) {
	if err := p.store.UpdateRecordingStatus(ctx, recordingID, models.RecordingStatusFailed); err != nil {
		p.logger.Warn("could not mark recording failed",
			zap.String("recording_id", recordingID),
			zap.Error(err),
		)
	}
}

func (p *Processor) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch recording bytes: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch recording bytes: unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read recording bytes: %w", err)
	}
	return data, nil
}
