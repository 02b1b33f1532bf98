package interfaces

import (
	"github.com/tessera-ai/tessera/internal/models"
)

// SegmenterService splits extracted document text into indexable chunks.
// Segment is a pure function of its input: same text and strategy always
// yield the same chunk sequence.
type SegmenterService interface {
	// Segment splits text under the named strategy. Unknown strategy
	// names fall back to recursive with a warning, they never fail.
	Segment(text string, strategy models.Strategy) []models.Chunk
}

// StrategySelector chooses a segmentation strategy from document signals.
type StrategySelector interface {
	// Select applies the rule chain: explicit override, category rules,
	// table structure, readability, configured default. First match wins.
	Select(meta *models.DocumentMetadata, override string) models.Strategy

	// SuggestStrategy proposes a strategy from raw content shape when no
	// document metadata is available
	SuggestStrategy(content, filename string) models.Strategy
}
