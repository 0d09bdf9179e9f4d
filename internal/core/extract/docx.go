package extract

import (
	"bytes"

	"code.sajari.com/docconv"

	"github.com/classpark/classpark-backend/internal/core/apperr"
)

// extractDocx pulls the raw text content of an Office Open XML word document,
// ignoring formatting, headers and footnotes.
func extractDocx(data []byte) (string, error) {
	body, _, err := docconv.ConvertDocx(bytes.NewReader(data))
	if err != nil {
		return "", &apperr.ExtractionError{Format: "docx", Err: err}
	}
	return body, nil
}
