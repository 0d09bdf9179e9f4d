// Package chunk splits normalized text into overlapping fixed-size character
// windows sized for embedding. Pure functions, no I/O.
package chunk

// Defaults tuned for ~300-token windows with enough overlap that a sentence
// straddling a boundary survives in at least one window.
const (
	DefaultSize    = 1200
	DefaultOverlap = 200
)

// Split slides a window of size characters over text, advancing by
// max(1, size-overlap) each step. The final window may be shorter; empty text
// yields no windows. Characters are counted as runes so multi-byte input does
// not tear.
func Split(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultSize
	}
	step := size - overlap
	if step < 1 {
		step = 1
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	var windows []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		windows = append(windows, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return windows
}
