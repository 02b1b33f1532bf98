package segmenter

import (
	"strings"
	"unicode/utf8"
)

// Splitter performs greedy recursive character splitting: it prefers the
// earliest separator in its list that occurs in the text, splits on it,
// recurses into oversized pieces with the remaining separators and merges
// adjacent small pieces back up to the target size, carrying an overlap
// window between consecutive chunks.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// NewSplitter creates a splitter with the given target chunk size,
// overlap size (both in characters) and separator priority list. The
// empty separator, splitting between characters, is always appended as
// the last resort.
func NewSplitter(chunkSize, overlap int, separators []string) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}

	seps := make([]string, len(separators))
	copy(seps, separators)
	if len(seps) == 0 || seps[len(seps)-1] != "" {
		seps = append(seps, "")
	}

	return &Splitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: seps,
	}
}

// ChunkSize returns the configured target size in characters.
func (s *Splitter) ChunkSize() int { return s.chunkSize }

// Overlap returns the configured overlap size in characters.
func (s *Splitter) Overlap() int { return s.overlap }

// Split divides text into chunks of at most the target size, except for
// single unsplittable runs longer than the target. Empty and
// whitespace-only input yields nil.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.splitText(text, s.separators)
}

func (s *Splitter) splitText(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var remaining []string
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			separator = sep
			remaining = separators[i+1:]
			break
		}
	}

	splits := splitOn(text, separator)

	var chunks []string
	var pending []string

	for _, piece := range splits {
		if utf8.RuneCountInString(piece) < s.chunkSize {
			pending = append(pending, piece)
			continue
		}

		// Oversized piece: flush what we have, then split it further
		if len(pending) > 0 {
			chunks = append(chunks, s.merge(pending)...)
			pending = nil
		}
		if len(remaining) == 0 {
			chunks = append(chunks, piece)
		} else {
			chunks = append(chunks, s.splitText(piece, remaining)...)
		}
	}

	if len(pending) > 0 {
		chunks = append(chunks, s.merge(pending)...)
	}

	return chunks
}

// merge recombines adjacent small pieces into chunks near the target
// size. Pieces carry their trailing separator, so joining them back is
// plain concatenation. When a chunk is emitted, pieces are dropped from
// the front of the window until its length fits inside the overlap
// budget, so the retained tail reappears at the head of the next chunk.
func (s *Splitter) merge(splits []string) []string {
	var chunks []string
	var window []string
	total := 0

	for _, piece := range splits {
		pieceLen := utf8.RuneCountInString(piece)

		if total+pieceLen > s.chunkSize && len(window) > 0 {
			if chunk := joinPieces(window); chunk != "" {
				chunks = append(chunks, chunk)
			}
			// Shrink the window into the overlap budget
			for total > s.overlap || (total+pieceLen > s.chunkSize && total > 0) {
				total -= utf8.RuneCountInString(window[0])
				window = window[1:]
			}
		}

		total += pieceLen
		window = append(window, piece)
	}

	if chunk := joinPieces(window); chunk != "" {
		chunks = append(chunks, chunk)
	}

	return chunks
}

// splitOn splits text on separator, re-attaching the separator to the
// piece that precedes it so sentence punctuation and newlines survive
// chunk boundaries. The empty separator splits between characters.
func splitOn(text, separator string) []string {
	var splits []string
	if separator == "" {
		for _, r := range text {
			splits = append(splits, string(r))
		}
		return splits
	}

	parts := strings.Split(text, separator)
	for i, piece := range parts {
		if i < len(parts)-1 {
			piece += separator
		}
		if piece != "" {
			splits = append(splits, piece)
		}
	}
	return splits
}

func joinPieces(pieces []string) string {
	return strings.TrimSpace(strings.Join(pieces, ""))
}
