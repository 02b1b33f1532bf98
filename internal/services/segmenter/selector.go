package segmenter

import (
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/tessera-ai/tessera/internal/common"
	"github.com/tessera-ai/tessera/internal/interfaces"
	"github.com/tessera-ai/tessera/internal/models"
)

// Readability thresholds for the selector's rule chain.
const (
	readabilityVeryHard = 30
	readabilityVeryEasy = 80
)

// Selector chooses a segmentation strategy from document metadata. The
// rule chain is fixed and only the first matching rule applies, so the
// same metadata always yields the same strategy.
type Selector struct {
	defaultStrategy models.Strategy
	logger          arbor.ILogger
}

// NewSelector creates a strategy selector with the configured default.
func NewSelector(defaultStrategy string, logger arbor.ILogger) interfaces.StrategySelector {
	if logger == nil {
		logger = common.GetLogger()
	}

	strategy, ok := models.ParseStrategy(defaultStrategy)
	if !ok {
		strategy = models.StrategyRecursive
	}

	return &Selector{
		defaultStrategy: strategy,
		logger:          logger,
	}
}

// Select applies the rule chain in priority order:
//  1. explicit override
//  2. content categories (technical/academic -> semantic, legal -> paragraph)
//  3. table structure -> paragraph
//  4. readability (<30 -> semantic, >80 -> recursive)
//  5. configured default
//
// An override outside the known strategy set is logged and treated as
// absent rather than failing the call.
func (s *Selector) Select(meta *models.DocumentMetadata, override string) models.Strategy {
	if override != "" {
		if strategy, ok := models.ParseStrategy(override); ok {
			return strategy
		}
		s.logger.Warn().
			Str("override", override).
			Msg("Unknown strategy override, falling back to metadata rules")
	}

	if meta == nil {
		return s.defaultStrategy
	}

	if meta.HasCategory("technical") || meta.HasCategory("academic") {
		return models.StrategySemantic
	}
	if meta.HasCategory("legal") {
		return models.StrategyParagraph
	}

	if meta.HasTables {
		return models.StrategyParagraph
	}

	if meta.ReadabilityScore < readabilityVeryHard {
		return models.StrategySemantic
	}
	if meta.ReadabilityScore > readabilityVeryEasy {
		return models.StrategyRecursive
	}

	return s.defaultStrategy
}

// SuggestStrategy proposes a strategy from raw content shape when no
// extraction metadata is available: spreadsheet-like files keep their
// structure, long well-paragraphed prose favors semantic chunks, short
// documents stay whole paragraphs.
func (s *Selector) SuggestStrategy(content, filename string) models.Strategy {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".csv" || ext == ".xlsx" || ext == ".xls" {
		return models.StrategyParagraph
	}

	lines := strings.Split(content, "\n")
	paragraphs := 0
	for _, p := range strings.Split(content, "\n\n") {
		if strings.TrimSpace(p) != "" {
			paragraphs++
		}
	}
	avgLineLength := float64(len(content)) / float64(max(len(lines), 1))

	switch {
	case paragraphs > 10 && avgLineLength > 100:
		return models.StrategySemantic
	case len(content) < 5000:
		return models.StrategyParagraph
	default:
		return models.StrategyRecursive
	}
}
