package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/classpark/classpark-backend/internal/core/apperr"
)

var slidePartRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// extractPptx treats the file as a zip archive, collects the slide XML parts
// in natural numeric order (slide10 after slide9, not after slide1) and joins
// every text run with spaces.
func extractPptx(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &apperr.ExtractionError{Format: "pptx", Err: err}
	}

	type slidePart struct {
		num  int
		file *zip.File
	}
	var slides []slidePart
	for _, f := range zr.File {
		m := slidePartRe.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		slides = append(slides, slidePart{num: n, file: f})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	var parts []string
	for _, s := range slides {
		rc, err := s.file.Open()
		if err != nil {
			return "", &apperr.ExtractionError{Format: "pptx", Err: err}
		}
		text, err := slideText(rc)
		rc.Close()
		if err != nil {
			return "", &apperr.ExtractionError{Format: "pptx", Err: err}
		}
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), nil
}

// slideText collects the character data of every <a:t> text-run element.
func slideText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var runs []string
	inRun := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inRun = true
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inRun = false
			}
		case xml.CharData:
			if inRun {
				runs = append(runs, string(t))
			}
		}
	}
	return strings.Join(runs, " "), nil
}
