package interfaces

import (
	"github.com/tessera-ai/tessera/internal/models"
)

// ChunkStorage persists indexed chunks for the semantic collections.
// The keyword corpus is never persisted: on restart it is rebuilt from
// the chunk text stored here.
type ChunkStorage interface {
	// SaveChunks upserts a batch of indexed chunks
	SaveChunks(chunks []*models.IndexedChunk) error

	// GetChunk retrieves a single chunk by ID
	GetChunk(id string) (*models.IndexedChunk, error)

	// ChunksByDocument returns all chunks of one document within a tenant,
	// ordered by chunk index
	ChunksByDocument(tenantID, documentID string) ([]*models.IndexedChunk, error)

	// ChunksByTenant returns all chunks of a tenant, insertion-ordered
	ChunksByTenant(tenantID string) ([]*models.IndexedChunk, error)

	// DeleteChunks removes chunks by ID
	DeleteChunks(ids []string) error

	// CountChunks returns the number of chunks a tenant owns
	CountChunks(tenantID string) (int, error)

	// SampleChunks returns up to limit chunks of a tenant for stats sampling
	SampleChunks(tenantID string, limit int) ([]*models.IndexedChunk, error)

	// TenantIDs lists all tenants with at least one stored chunk
	TenantIDs() ([]string, error)

	// Close closes the storage
	Close() error
}
