package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/tessera-ai/tessera/internal/common"
	"github.com/tessera-ai/tessera/internal/interfaces"
	"github.com/tessera-ai/tessera/internal/models"
)

// Ensure Service implements the interface.
var _ interfaces.EngineService = (*Service)(nil)

// Service is the retrieval engine facade: it wires strategy selection,
// segmentation, dual indexing, hybrid ranking and quality
// classification behind one surface for ingestion endpoints and the
// response-generation layer.
type Service struct {
	selector  interfaces.StrategySelector
	segmenter interfaces.SegmenterService
	index     interfaces.IndexService
	search    interfaces.SearchService
	config    *common.Config
	logger    arbor.ILogger
}

// NewService creates the engine facade.
func NewService(
	selector interfaces.StrategySelector,
	segmenter interfaces.SegmenterService,
	index interfaces.IndexService,
	search interfaces.SearchService,
	config *common.Config,
	logger arbor.ILogger,
) *Service {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Service{
		selector:  selector,
		segmenter: segmenter,
		index:     index,
		search:    search,
		config:    config,
		logger:    logger,
	}
}

// ProcessDocument segments extracted text under the selected strategy
// and indexes the resulting chunks for the tenant. Runs synchronously
// to completion; the caller marks the document failed on error.
func (s *Service) ProcessDocument(ctx context.Context, text, tenantID, documentID string, meta *models.DocumentMetadata, strategyOverride string) (*models.ProcessResult, error) {
	start := time.Now()

	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant id is required", models.ErrValidation)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: document text is empty", models.ErrValidation)
	}
	if documentID == "" {
		documentID = common.NewDocumentID()
	}

	strategy := s.selector.Select(meta, strategyOverride)
	chunks := s.segmenter.Segment(text, strategy)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: segmentation produced no chunks", models.ErrValidation)
	}

	result, err := s.index.AddChunks(ctx, tenantID, documentID, chunks, meta)
	if err != nil {
		return nil, fmt.Errorf("failed to index document %s: %w", documentID, err)
	}

	contentTypes := make(map[string]int)
	wordCount := 0
	for _, chunk := range chunks {
		contentTypes[chunk.ContentType]++
		wordCount += chunk.WordCount
	}

	s.logger.Info().
		Str("tenant_id", tenantID).
		Str("document_id", documentID).
		Str("strategy", string(strategy)).
		Int("chunks", result.ChunksAdded).
		Dur("duration", time.Since(start)).
		Msg("Processed document")

	return &models.ProcessResult{
		DocumentID:   documentID,
		ChunkCount:   result.ChunksAdded,
		StrategyUsed: strategy,
		ContentTypes: contentTypes,
		WordCount:    wordCount,
		Duration:     time.Since(start),
	}, nil
}

// Query runs hybrid retrieval for the tenant, drops results below the
// minimum similarity floor and classifies the surviving context. Zero
// values in params fall back to configured defaults.
func (s *Service) Query(ctx context.Context, tenantID, query string, params interfaces.QueryParams) (*models.QueryResult, error) {
	start := time.Now()

	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant id is required", models.ErrValidation)
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is empty", models.ErrValidation)
	}

	topK := params.TopK
	if topK <= 0 {
		topK = s.config.Search.DefaultTopK
	}
	semWeight := params.SemanticWeight
	kwWeight := params.KeywordWeight
	if semWeight == 0 && kwWeight == 0 {
		semWeight = s.config.Search.SemanticWeight
		kwWeight = s.config.Search.KeywordWeight
	}
	minSimilarity := params.MinSimilarity
	if minSimilarity == 0 {
		minSimilarity = s.config.Search.MinSimilarity
	}

	results, err := s.search.HybridSearch(ctx, tenantID, query, interfaces.SearchOptions{
		TopK:           topK,
		SemanticWeight: semWeight,
		KeywordWeight:  kwWeight,
	})
	if err != nil {
		return nil, err
	}

	filtered := results[:0]
	for _, r := range results {
		// A strong semantic match survives even when keyword weighting
		// pulls its combined score under the floor.
		if r.CombinedScore >= minSimilarity || r.SemanticScore >= minSimilarity {
			filtered = append(filtered, r)
		}
	}

	analysis := s.search.AnalyzeContext(filtered, query)

	s.logger.Debug().
		Str("tenant_id", tenantID).
		Int("results", len(filtered)).
		Str("quality", string(analysis.QualityLevel)).
		Dur("duration", time.Since(start)).
		Msg("Query complete")

	return &models.QueryResult{
		Results:        filtered,
		QualityLevel:   analysis.QualityLevel,
		RelevanceScore: analysis.RelevanceScore,
		Sources:        analysis.DocumentSources,
		Duration:       time.Since(start),
	}, nil
}

// DeleteDocument removes a document's chunks from both indexes. Deleting
// a document that was never added succeeds with zero chunks deleted.
func (s *Service) DeleteDocument(ctx context.Context, tenantID, documentID string) (*models.DeleteResult, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant id is required", models.ErrValidation)
	}
	if documentID == "" {
		return nil, fmt.Errorf("%w: document id is required", models.ErrValidation)
	}

	deleted, err := s.index.DeleteDocumentChunks(ctx, documentID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete document %s: %w", documentID, err)
	}

	return &models.DeleteResult{ChunksDeleted: deleted}, nil
}

// TenantStats reports corpus statistics for one tenant.
func (s *Service) TenantStats(ctx context.Context, tenantID string) (*models.TenantStats, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant id is required", models.ErrValidation)
	}
	return s.index.CollectionStats(ctx, tenantID)
}
