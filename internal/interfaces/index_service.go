package interfaces

import (
	"context"

	"github.com/tessera-ai/tessera/internal/models"
)

// IndexService owns the per-tenant dual indexes: one semantic collection
// and one keyword corpus per tenant. Mutations for the same tenant are
// serialized; different tenants never block each other.
type IndexService interface {
	// AddChunks embeds and indexes one document's chunks. Embedding
	// failure for any chunk fails the whole call; keyword corpus rebuild
	// failure is logged and the call still succeeds.
	AddChunks(ctx context.Context, tenantID, documentID string, chunks []models.Chunk, meta *models.DocumentMetadata) (*models.IndexResult, error)

	// DeleteDocumentChunks removes a document's chunks from both indexes.
	// Returns 0 without error when nothing matches.
	DeleteDocumentChunks(ctx context.Context, documentID, tenantID string) (int, error)

	// SemanticSearch embeds the query and returns the topK nearest chunks
	// by vector similarity, optionally constrained by an exact-match
	// metadata filter
	SemanticSearch(ctx context.Context, tenantID, query string, topK int, filter map[string]string) ([]models.SearchResult, error)

	// KeywordSearch runs the query through the tenant's term-weight
	// vectorizer and returns the topK chunks with positive cosine
	// similarity. Empty when the tenant has no keyword corpus.
	KeywordSearch(ctx context.Context, tenantID, query string, topK int) ([]models.SearchResult, error)

	// CollectionStats reports chunk counts and metadata distributions
	CollectionStats(ctx context.Context, tenantID string) (*models.TenantStats, error)

	// RebuildTenant reconstructs a tenant's in-memory indexes from storage
	RebuildTenant(ctx context.Context, tenantID string) error

	// RebuildAll reconstructs every tenant found in storage
	RebuildAll(ctx context.Context) error
}
