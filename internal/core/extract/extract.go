// Package extract turns raw uploaded bytes into normalized plain text.
// One adapter per underlying format absorbs library- and archive-specific
// quirks; the rest of the pipeline only ever sees (text, kind, err).
package extract

import (
	"strings"

	"github.com/classpark/classpark-backend/internal/core/apperr"
)

// Service implements core.DocumentExtractor.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// ExtractText resolves the document kind once, runs the matching extractor and
// normalizes the result. Extraction is a pure function of bytes and hints.
func (s *Service) ExtractText(data []byte, mimeHint, nameHint string) (string, string, error) {
	kind := DetectKind(mimeHint, nameHint)

	var body string
	var err error
	switch kind {
	case KindPDF:
		body, err = extractPDF(data)
	case KindDocx:
		body, err = extractDocx(data)
	case KindPptx:
		body, err = extractPptx(data)
	default:
		// Plain text, markdown and anything unrecognized: best-effort decode.
		body = extractPlain(data)
	}
	if err != nil {
		return "", kind.String(), err
	}

	text, err := finalize(kind, body)
	return text, kind.String(), err
}

// finalize applies the shared whitespace normalization and maps an empty PDF
// text layer to the OCR-required condition rather than a generic failure.
func finalize(kind Kind, body string) (string, error) {
	text := Normalize(body)
	if text == "" && kind == KindPDF {
		return "", &apperr.NoTextError{Kind: kind.String(), OCRLikely: true}
	}
	return text, nil
}

// Normalize collapses every whitespace run to a single space and trims.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func extractPlain(data []byte) string {
	return strings.TrimPrefix(string(data), "﻿")
}
