package badger

import (
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/tessera-ai/tessera/internal/interfaces"
	"github.com/tessera-ai/tessera/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// ChunkStorage implements the ChunkStorage interface for Badger
type ChunkStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewChunkStorage creates a new ChunkStorage instance
func NewChunkStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ChunkStorage {
	return &ChunkStorage{
		db:     db,
		logger: logger,
	}
}

func (s *ChunkStorage) SaveChunks(chunks []*models.IndexedChunk) error {
	now := time.Now()
	for _, chunk := range chunks {
		if chunk.ID == "" {
			return fmt.Errorf("chunk ID is required")
		}
		if chunk.CreatedAt.IsZero() {
			chunk.CreatedAt = now
		}
		if err := s.db.Store().Upsert(chunk.ID, chunk); err != nil {
			return fmt.Errorf("failed to save chunk %s: %w", chunk.ID, err)
		}
	}
	return nil
}

func (s *ChunkStorage) GetChunk(id string) (*models.IndexedChunk, error) {
	var chunk models.IndexedChunk
	if err := s.db.Store().Get(id, &chunk); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("chunk not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get chunk: %w", err)
	}
	return &chunk, nil
}

func (s *ChunkStorage) ChunksByDocument(tenantID, documentID string) ([]*models.IndexedChunk, error) {
	var chunks []models.IndexedChunk
	err := s.db.Store().Find(&chunks, badgerhold.Where("TenantID").Eq(tenantID).Index("TenantID").And("DocumentID").Eq(documentID))
	if err != nil {
		return nil, fmt.Errorf("failed to find chunks for document %s: %w", documentID, err)
	}

	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].ChunkIndex < chunks[j].ChunkIndex
	})

	result := make([]*models.IndexedChunk, len(chunks))
	for i := range chunks {
		result[i] = &chunks[i]
	}
	return result, nil
}

func (s *ChunkStorage) ChunksByTenant(tenantID string) ([]*models.IndexedChunk, error) {
	var chunks []models.IndexedChunk
	err := s.db.Store().Find(&chunks, badgerhold.Where("TenantID").Eq(tenantID).Index("TenantID"))
	if err != nil {
		return nil, fmt.Errorf("failed to find chunks for tenant %s: %w", tenantID, err)
	}

	// Insertion order: save time first, then document position for
	// chunks written in the same batch
	sort.SliceStable(chunks, func(i, j int) bool {
		if !chunks[i].CreatedAt.Equal(chunks[j].CreatedAt) {
			return chunks[i].CreatedAt.Before(chunks[j].CreatedAt)
		}
		if chunks[i].DocumentID != chunks[j].DocumentID {
			return chunks[i].DocumentID < chunks[j].DocumentID
		}
		return chunks[i].ChunkIndex < chunks[j].ChunkIndex
	})

	result := make([]*models.IndexedChunk, len(chunks))
	for i := range chunks {
		result[i] = &chunks[i]
	}
	return result, nil
}

func (s *ChunkStorage) DeleteChunks(ids []string) error {
	for _, id := range ids {
		if err := s.db.Store().Delete(id, &models.IndexedChunk{}); err != nil {
			if err == badgerhold.ErrNotFound {
				continue
			}
			return fmt.Errorf("failed to delete chunk %s: %w", id, err)
		}
	}
	return nil
}

func (s *ChunkStorage) CountChunks(tenantID string) (int, error) {
	count, err := s.db.Store().Count(&models.IndexedChunk{}, badgerhold.Where("TenantID").Eq(tenantID).Index("TenantID"))
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks for tenant %s: %w", tenantID, err)
	}
	return int(count), nil
}

func (s *ChunkStorage) SampleChunks(tenantID string, limit int) ([]*models.IndexedChunk, error) {
	var chunks []models.IndexedChunk
	err := s.db.Store().Find(&chunks, badgerhold.Where("TenantID").Eq(tenantID).Index("TenantID").Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to sample chunks for tenant %s: %w", tenantID, err)
	}

	result := make([]*models.IndexedChunk, len(chunks))
	for i := range chunks {
		result[i] = &chunks[i]
	}
	return result, nil
}

func (s *ChunkStorage) TenantIDs() ([]string, error) {
	var chunks []models.IndexedChunk
	if err := s.db.Store().Find(&chunks, nil); err != nil {
		return nil, fmt.Errorf("failed to list chunks: %w", err)
	}

	seen := make(map[string]struct{})
	var tenantIDs []string
	for i := range chunks {
		if _, ok := seen[chunks[i].TenantID]; ok {
			continue
		}
		seen[chunks[i].TenantID] = struct{}{}
		tenantIDs = append(tenantIDs, chunks[i].TenantID)
	}
	sort.Strings(tenantIDs)
	return tenantIDs, nil
}

func (s *ChunkStorage) Close() error {
	return s.db.Close()
}
