package interfaces

import (
	"context"

	"github.com/tessera-ai/tessera/internal/models"
)

// SearchOptions configures a hybrid search call
type SearchOptions struct {
	// TopK limits the number of fused results
	TopK int

	// SemanticWeight and KeywordWeight scale the two score components.
	// Setting one to zero skips that sub-search entirely.
	SemanticWeight float64
	KeywordWeight  float64

	// Filter constrains semantic search to chunks whose metadata matches
	// all given key/value pairs exactly
	Filter map[string]string
}

// SearchService provides fused semantic + keyword retrieval over one
// tenant's corpus.
type SearchService interface {
	// HybridSearch runs both sub-searches, fuses the result sets by
	// weighted score and returns at most TopK results ordered by
	// combined score descending
	HybridSearch(ctx context.Context, tenantID, query string, opts SearchOptions) ([]models.SearchResult, error)

	// AnalyzeContext scores a fused result set and assigns the quality
	// tier consumed by response generation
	AnalyzeContext(results []models.SearchResult, query string) *models.ContextAnalysis
}
