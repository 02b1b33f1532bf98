package segmenter

import (
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/tessera-ai/tessera/internal/common"
	"github.com/tessera-ai/tessera/internal/interfaces"
	"github.com/tessera-ai/tessera/internal/models"
)

// Separator priority lists per strategy. Recursive prefers structural
// breaks down to raw characters; semantic adds sentence-ending
// punctuation; paragraph never splits below line boundaries.
var (
	recursiveSeparators = []string{"\n\n", "\n", " ", ""}
	semanticSeparators  = []string{"\n\n", ". ", "! ", "? ", "\n", " ", ""}
	paragraphSeparators = []string{"\n\n", "\n"}
)

// Service implements SegmenterService with three interchangeable
// splitting strategies derived from one configured size/overlap pair.
type Service struct {
	splitters map[models.Strategy]*Splitter
	logger    arbor.ILogger
}

// NewService creates a segmenter from the configured chunking defaults.
// Semantic uses 0.8x size with 1.5x overlap for small context-preserving
// chunks; paragraph uses 1.2x size restricted to paragraph/line breaks.
func NewService(cfg *common.ChunkingConfig, logger arbor.ILogger) interfaces.SegmenterService {
	if logger == nil {
		logger = common.GetLogger()
	}

	size := cfg.Size
	overlap := cfg.Overlap

	return &Service{
		splitters: map[models.Strategy]*Splitter{
			models.StrategyRecursive: NewSplitter(size, overlap, recursiveSeparators),
			models.StrategySemantic:  NewSplitter(size*8/10, overlap*3/2, semanticSeparators),
			models.StrategyParagraph: NewSplitter(size*12/10, overlap, paragraphSeparators),
		},
		logger: logger,
	}
}

// Segment splits text into analyzed chunks. Pure: same input, same
// output. Empty or whitespace-only text yields no chunks.
func (s *Service) Segment(text string, strategy models.Strategy) []models.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	splitter, ok := s.splitters[strategy]
	if !ok {
		s.logger.Warn().
			Str("strategy", string(strategy)).
			Msg("Unknown chunking strategy, using recursive")
		strategy = models.StrategyRecursive
		splitter = s.splitters[strategy]
	}

	pieces := splitter.Split(text)

	chunks := make([]models.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		chunk := models.Chunk{
			Text:        piece,
			Index:       i,
			ContentHash: common.ContentHash(piece),
			Strategy:    strategy,
		}
		analyzeChunk(&chunk)
		chunks = append(chunks, chunk)
	}

	s.logger.Debug().
		Str("strategy", string(strategy)).
		Int("chunks", len(chunks)).
		Msg("Segmented document text")

	return chunks
}
