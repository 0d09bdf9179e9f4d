package extract

import (
	"path/filepath"
	"strings"
)

// Kind is the document format the extractor settled on. It is computed once
// from the declared MIME type and the filename, in that order, and drives a
// single dispatch; the hints are best-effort and may be absent or wrong.
type Kind int

const (
	KindUnknown Kind = iota
	KindText
	KindPDF
	KindDocx
	KindPptx
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindPDF:
		return "pdf"
	case KindDocx:
		return "docx"
	case KindPptx:
		return "pptx"
	default:
		return "unknown"
	}
}

const (
	mimePDF  = "application/pdf"
	mimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimePptx = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

// DetectKind resolves the format from the MIME hint first, then the filename
// extension. Unrecognized inputs map to KindUnknown, never to an error.
func DetectKind(mimeHint, nameHint string) Kind {
	mt := strings.ToLower(strings.TrimSpace(mimeHint))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch {
	case mt == mimePDF:
		return KindPDF
	case mt == mimeDocx:
		return KindDocx
	case mt == mimePptx:
		return KindPptx
	case mt == "text/markdown" || mt == "application/markdown":
		return KindText
	case strings.HasPrefix(mt, "text/"):
		return KindText
	}

	switch strings.ToLower(filepath.Ext(nameHint)) {
	case ".pdf":
		return KindPDF
	case ".docx":
		return KindDocx
	case ".pptx":
		return KindPptx
	case ".txt", ".md", ".markdown":
		return KindText
	}
	return KindUnknown
}
