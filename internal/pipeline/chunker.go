package pipeline

import (
	"strings"
	"unicode"
)

const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
)

// ChunkText splits text into overlapping windows of at most size runes.
// Consecutive chunks share overlap runes so sentences cut at a boundary
// stay searchable; when a window would split a word, the cut snaps back to
// the last whitespace in its second half. Every rune of the input is
// covered by at least one chunk.
func ChunkText(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
	}

	clean := strings.TrimSpace(text)
	if clean == "" {
		return nil
	}

	runes := []rune(clean)
	if len(runes) <= size {
		return []string{clean}
	}

	chunks := make([]string, 0, len(runes)/(size-overlap)+1)
	start := 0
	for start < len(runes) {
		end := start + size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}

		// Snap to whitespace so a word is never cut in half, but never
		// give back more than half the window.
		cut := end
		for i := end; i > start+size/2; i-- {
			if unicode.IsSpace(runes[i-1]) {
				cut = i
				break
			}
		}
		// The next window starts at cut-overlap; a snap that lands at or
		// before that point would stall or walk backwards, so keep the
		// mid-word cut instead.
		if cut-overlap <= start {
			cut = end
		}
		end = cut

		chunks = append(chunks, string(runes[start:end]))
		start = end - overlap
	}

	return chunks
}
