package interfaces

import (
	"context"

	"github.com/tessera-ai/tessera/internal/models"
)

// QueryParams carries optional query-time overrides. Zero values fall
// back to configured defaults.
type QueryParams struct {
	TopK           int
	SemanticWeight float64
	KeywordWeight  float64
	MinSimilarity  float64
}

// EngineService is the surface exposed to ingestion endpoints and the
// chat/response-generation layer.
type EngineService interface {
	// ProcessDocument segments extracted text and indexes the chunks for
	// a tenant. An empty documentID is replaced with a generated one.
	ProcessDocument(ctx context.Context, text, tenantID, documentID string, meta *models.DocumentMetadata, strategyOverride string) (*models.ProcessResult, error)

	// Query retrieves ranked context for a natural-language query and
	// classifies its quality
	Query(ctx context.Context, tenantID, query string, params QueryParams) (*models.QueryResult, error)

	// DeleteDocument removes a document's chunks from both indexes
	DeleteDocument(ctx context.Context, tenantID, documentID string) (*models.DeleteResult, error)

	// TenantStats reports corpus statistics for one tenant
	TenantStats(ctx context.Context, tenantID string) (*models.TenantStats, error)
}
