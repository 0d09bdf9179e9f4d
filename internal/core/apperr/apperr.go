// Package apperr defines the error taxonomy shared by the ingestion and
// retrieval core. Components return these errors; the handler layer translates
// them to HTTP exactly once. Nothing in the core retries.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalid marks missing or malformed request input.
	ErrInvalid = errors.New("invalid request")
	// ErrNotFound marks a referenced entity that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrQuotaExhausted marks a generation-service quota rejection. It is kept
	// distinct from generic upstream failures so callers can answer 429
	// instead of 500.
	ErrQuotaExhausted = errors.New("no remaining AI credits")
)

// Invalidf wraps ErrInvalid with a formatted detail message.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// NotFoundf wraps ErrNotFound with a formatted detail message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalid)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsQuotaExhausted(err error) bool {
	return errors.Is(err, ErrQuotaExhausted)
}

// ExtractionError is a format-specific parse failure (corrupt archive, broken
// XML, unreadable stream). Format names the detected kind so operators can
// tell a bad PPTX from a bad PDF in logs.
type ExtractionError struct {
	Format string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Format, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// NoTextError reports that extraction succeeded but produced no text after
// normalization. For PDFs this almost always means an image-only scan that
// needs OCR, which is a caller-actionable condition, not a parser defect.
type NoTextError struct {
	Kind      string
	OCRLikely bool
}

func (e *NoTextError) Error() string {
	if e.OCRLikely {
		return fmt.Sprintf("no text layer found in %s document", e.Kind)
	}
	return fmt.Sprintf("no text extracted from %s document", e.Kind)
}

// Guidance is the remedy message surfaced to the uploader.
func (e *NoTextError) Guidance() string {
	if e.OCRLikely {
		return "This PDF appears to contain only scanned images. Run it through an OCR tool and upload the result, or upload a text-based export."
	}
	return "The file did not contain any extractable text. Upload a text-based version of the document."
}

// AsNoText returns the NoTextError within err, if any.
func AsNoText(err error) (*NoTextError, bool) {
	var nte *NoTextError
	if errors.As(err, &nte) {
		return nte, true
	}
	return nil, false
}
