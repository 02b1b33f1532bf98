package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/tessera-ai/tessera/internal/common"
	"github.com/tessera-ai/tessera/internal/interfaces"
	"github.com/tessera-ai/tessera/internal/models"
)

// Ensure Service implements the interface.
var _ interfaces.SearchService = (*Service)(nil)

// Service fuses semantic and keyword retrieval over a tenant's corpus.
// The two sub-searches each over-fetch 2x the requested depth so that a
// chunk strong in only one signal can still survive fusion.
type Service struct {
	index  interfaces.IndexService
	logger arbor.ILogger
}

// NewService creates a hybrid search service on top of the dual index.
func NewService(index interfaces.IndexService, logger arbor.ILogger) *Service {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Service{
		index:  index,
		logger: logger,
	}
}

// HybridSearch runs both sub-searches, merges the result sets by chunk
// ID and ranks by weighted combined score. A zero weight skips its
// sub-search entirely, so pure semantic or pure keyword retrieval is
// this same call with the other weight at 0.
func (s *Service) HybridSearch(ctx context.Context, tenantID, query string, opts interfaces.SearchOptions) ([]models.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" || opts.TopK <= 0 {
		return []models.SearchResult{}, nil
	}

	fetchK := opts.TopK * 2

	var semantic []models.SearchResult
	if opts.SemanticWeight > 0 {
		var err error
		semantic, err = s.index.SemanticSearch(ctx, tenantID, query, fetchK, opts.Filter)
		if err != nil {
			return nil, fmt.Errorf("semantic search failed: %w", err)
		}
	}

	var keyword []models.SearchResult
	if opts.KeywordWeight > 0 {
		var err error
		keyword, err = s.index.KeywordSearch(ctx, tenantID, query, fetchK)
		if err != nil {
			return nil, fmt.Errorf("keyword search failed: %w", err)
		}
	}

	fused := fuse(semantic, keyword, opts.SemanticWeight, opts.KeywordWeight)

	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].CombinedScore > fused[j].CombinedScore
	})
	if len(fused) > opts.TopK {
		fused = fused[:opts.TopK]
	}

	s.logger.Debug().
		Str("tenant_id", tenantID).
		Int("semantic_hits", len(semantic)).
		Int("keyword_hits", len(keyword)).
		Int("returned", len(fused)).
		Msg("Hybrid search complete")

	return fused, nil
}

// fuse merges the two sub-result sets by chunk ID. Semantic results keep
// their original order ahead of keyword-only results, so the stable sort
// in HybridSearch breaks combined-score ties by semantic rank.
func fuse(semantic, keyword []models.SearchResult, semWeight, kwWeight float64) []models.SearchResult {
	merged := make([]models.SearchResult, 0, len(semantic)+len(keyword))
	position := make(map[string]int, len(semantic))

	for _, r := range semantic {
		position[r.ID] = len(merged)
		merged = append(merged, r)
	}
	for _, r := range keyword {
		if i, seen := position[r.ID]; seen {
			merged[i].KeywordScore = r.KeywordScore
			merged[i].SearchType = models.SearchTypeHybrid
			continue
		}
		merged = append(merged, r)
	}

	for i := range merged {
		merged[i].CombinedScore = merged[i].SemanticScore*semWeight + merged[i].KeywordScore*kwWeight
	}
	return merged
}
