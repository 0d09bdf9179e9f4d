package extract

import (
	"bytes"

	"code.sajari.com/docconv"

	"github.com/classpark/classpark-backend/internal/core/apperr"
)

// extractPDF runs docconv's PDF text-layer extraction. A structurally valid
// but image-only PDF comes back with an empty body, which finalize maps to
// the OCR-required condition.
func extractPDF(data []byte) (string, error) {
	body, _, err := docconv.ConvertPDF(bytes.NewReader(data))
	if err != nil {
		return "", &apperr.ExtractionError{Format: "pdf", Err: err}
	}
	return body, nil
}
