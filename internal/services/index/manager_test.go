package index

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tessera-ai/tessera/internal/common"
	"github.com/tessera-ai/tessera/internal/models"
)

// memoryStorage is an in-memory ChunkStorage for tests.
type memoryStorage struct {
	mu     sync.Mutex
	chunks map[string]*models.IndexedChunk
	order  []string
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{chunks: make(map[string]*models.IndexedChunk)}
}

func (m *memoryStorage) SaveChunks(chunks []*models.IndexedChunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range chunks {
		if _, ok := m.chunks[c.ID]; !ok {
			m.order = append(m.order, c.ID)
		}
		m.chunks[c.ID] = c
	}
	return nil
}

func (m *memoryStorage) GetChunk(id string) (*models.IndexedChunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.chunks[id]
	if !ok {
		return nil, fmt.Errorf("chunk not found: %s", id)
	}
	return c, nil
}

func (m *memoryStorage) ChunksByDocument(tenantID, documentID string) ([]*models.IndexedChunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.IndexedChunk
	for _, id := range m.order {
		c := m.chunks[id]
		if c.TenantID == tenantID && c.DocumentID == documentID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChunkIndex < out[j].ChunkIndex })
	return out, nil
}

func (m *memoryStorage) ChunksByTenant(tenantID string) ([]*models.IndexedChunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.IndexedChunk
	for _, id := range m.order {
		if m.chunks[id].TenantID == tenantID {
			out = append(out, m.chunks[id])
		}
	}
	return out, nil
}

func (m *memoryStorage) DeleteChunks(ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.chunks, id)
	}
	kept := m.order[:0]
	for _, id := range m.order {
		if _, ok := m.chunks[id]; ok {
			kept = append(kept, id)
		}
	}
	m.order = kept
	return nil
}

func (m *memoryStorage) CountChunks(tenantID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.chunks {
		if c.TenantID == tenantID {
			count++
		}
	}
	return count, nil
}

func (m *memoryStorage) SampleChunks(tenantID string, limit int) ([]*models.IndexedChunk, error) {
	all, err := m.ChunksByTenant(tenantID)
	if err != nil {
		return nil, err
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *memoryStorage) TenantIDs() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]struct{})
	var ids []string
	for _, id := range m.order {
		t := m.chunks[id].TenantID
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			ids = append(ids, t)
		}
	}
	return ids, nil
}

func (m *memoryStorage) Close() error { return nil }

// stubEmbedder maps known words to orthogonal axes so similarity is
// predictable in tests.
type stubEmbedder struct {
	mu    sync.Mutex
	fail  bool
	calls int
}

func (e *stubEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.calls++
	fail := e.fail
	e.mu.Unlock()
	if fail {
		return nil, fmt.Errorf("model unavailable")
	}

	vec := make([]float32, 3)
	lower := strings.ToLower(text)
	if strings.Contains(lower, "cat") {
		vec[0] = 1
	}
	if strings.Contains(lower, "dog") {
		vec[1] = 1
	}
	if vec[0] == 0 && vec[1] == 0 {
		vec[2] = 1
	}
	return vec, nil
}

func (e *stubEmbedder) GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error) {
	return e.GenerateEmbedding(ctx, query)
}

func (e *stubEmbedder) ModelName() string              { return "stub" }
func (e *stubEmbedder) Dimension() int                 { return 3 }
func (e *stubEmbedder) IsAvailable(context.Context) bool { return true }

func chunksFor(texts ...string) []models.Chunk {
	chunks := make([]models.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = models.Chunk{
			Text:        text,
			Index:       i,
			ContentHash: common.ContentHash(text),
			Strategy:    models.StrategyRecursive,
			WordCount:   len(strings.Fields(text)),
			ContentType: models.ContentTypeParagraph,
		}
	}
	return chunks
}

func newTestManager(t *testing.T) (*Manager, *memoryStorage, *stubEmbedder) {
	t.Helper()
	storage := newMemoryStorage()
	embedder := &stubEmbedder{}
	return NewManager(storage, embedder, 2, nil), storage, embedder
}

func TestManager_AddChunks(t *testing.T) {
	mgr, storage, _ := newTestManager(t)

	result, err := mgr.AddChunks(context.Background(), "t1", "doc1",
		chunksFor("the cat sat", "a dog barked"), nil)

	require.NoError(t, err)
	assert.Equal(t, 2, result.ChunksAdded)
	assert.Len(t, result.ChunkIDs, 2)
	assert.True(t, result.KeywordIndexed)
	assert.Contains(t, result.ChunkIDs[0], "doc1_chunk_0_")

	count, err := storage.CountChunks("t1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestManager_AddChunksValidation(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	ctx := context.Background()

	_, err := mgr.AddChunks(ctx, "", "doc1", chunksFor("text"), nil)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = mgr.AddChunks(ctx, "t1", "", chunksFor("text"), nil)
	assert.ErrorIs(t, err, models.ErrValidation)

	result, err := mgr.AddChunks(ctx, "t1", "doc1", nil, nil)
	require.NoError(t, err)
	assert.Zero(t, result.ChunksAdded)
}

func TestManager_AddChunksEmbeddingFailureIsAtomic(t *testing.T) {
	mgr, storage, embedder := newTestManager(t)
	embedder.fail = true

	_, err := mgr.AddChunks(context.Background(), "t1", "doc1",
		chunksFor("one", "two", "three"), nil)

	assert.ErrorIs(t, err, models.ErrEmbeddingFailure)

	count, cerr := storage.CountChunks("t1")
	require.NoError(t, cerr)
	assert.Zero(t, count, "no partial state after embedding failure")

	stats, serr := mgr.CollectionStats(context.Background(), "t1")
	require.NoError(t, serr)
	assert.Zero(t, stats.TotalChunks)
}

func TestManager_SemanticSearchRanksBySimilarity(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	ctx := context.Background()

	_, err := mgr.AddChunks(ctx, "t1", "doc1",
		chunksFor("the cat sat on the mat", "a dog barked loudly", "stock prices moved"), nil)
	require.NoError(t, err)

	results, err := mgr.SemanticSearch(ctx, "t1", "cat", 2, nil)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Contains(t, results[0].Text, "cat")
	assert.Equal(t, models.SearchTypeSemantic, results[0].SearchType)
	assert.InDelta(t, 1.0, results[0].SemanticScore, 1e-6)
	assert.Greater(t, results[0].SemanticScore, results[1].SemanticScore)
}

func TestManager_SemanticSearchUnknownTenant(t *testing.T) {
	mgr, _, _ := newTestManager(t)

	results, err := mgr.SemanticSearch(context.Background(), "ghost", "cat", 5, nil)

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestManager_SemanticSearchMetadataFilter(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	ctx := context.Background()

	_, err := mgr.AddChunks(ctx, "t1", "doc1", chunksFor("the cat sat"), nil)
	require.NoError(t, err)
	_, err = mgr.AddChunks(ctx, "t1", "doc2", chunksFor("another cat here"), nil)
	require.NoError(t, err)

	results, err := mgr.SemanticSearch(ctx, "t1", "cat", 10, map[string]string{"document_id": "doc2"})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "doc2", results[0].Metadata.DocumentID)
}

func TestManager_SemanticSearchEmbeddingFailure(t *testing.T) {
	mgr, _, embedder := newTestManager(t)
	ctx := context.Background()

	_, err := mgr.AddChunks(ctx, "t1", "doc1", chunksFor("the cat sat"), nil)
	require.NoError(t, err)

	embedder.fail = true
	_, err = mgr.SemanticSearch(ctx, "t1", "cat", 5, nil)

	assert.ErrorIs(t, err, models.ErrSearchBackend)
}

func TestManager_KeywordSearch(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	ctx := context.Background()

	_, err := mgr.AddChunks(ctx, "t1", "doc1",
		chunksFor("revenue grew strongly", "weather stayed sunny"), nil)
	require.NoError(t, err)

	results, err := mgr.KeywordSearch(ctx, "t1", "revenue grew", 5)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Text, "revenue")
	assert.Equal(t, models.SearchTypeKeyword, results[0].SearchType)
	assert.Greater(t, results[0].KeywordScore, 0.0)
}

func TestManager_KeywordSearchUnknownTenant(t *testing.T) {
	mgr, _, _ := newTestManager(t)

	results, err := mgr.KeywordSearch(context.Background(), "ghost", "revenue", 5)

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestManager_KeywordCorpusRebuiltOnEveryMutation(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	ctx := context.Background()

	_, err := mgr.AddChunks(ctx, "t1", "doc1", chunksFor("revenue grew strongly"), nil)
	require.NoError(t, err)
	_, err = mgr.AddChunks(ctx, "t1", "doc2", chunksFor("margins improved modestly"), nil)
	require.NoError(t, err)

	// Terms of both documents are searchable after the second add
	hits, err := mgr.KeywordSearch(ctx, "t1", "revenue", 5)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
	hits, err = mgr.KeywordSearch(ctx, "t1", "margins", 5)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	// After deleting doc1 its terms leave the vocabulary entirely
	deleted, err := mgr.DeleteDocumentChunks(ctx, "doc1", "t1")
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	hits, err = mgr.KeywordSearch(ctx, "t1", "revenue", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
	hits, err = mgr.KeywordSearch(ctx, "t1", "margins", 5)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestManager_DeleteDocumentChunks(t *testing.T) {
	mgr, storage, _ := newTestManager(t)
	ctx := context.Background()

	_, err := mgr.AddChunks(ctx, "t1", "doc1", chunksFor("the cat sat", "a dog barked"), nil)
	require.NoError(t, err)

	deleted, err := mgr.DeleteDocumentChunks(ctx, "doc1", "t1")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	count, err := storage.CountChunks("t1")
	require.NoError(t, err)
	assert.Zero(t, count)

	// Idempotent: repeating the delete is a no-op
	deleted, err = mgr.DeleteDocumentChunks(ctx, "doc1", "t1")
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestManager_DeleteUnknownTenant(t *testing.T) {
	mgr, _, _ := newTestManager(t)

	deleted, err := mgr.DeleteDocumentChunks(context.Background(), "doc1", "ghost")

	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestManager_TenantsAreIsolated(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	ctx := context.Background()

	_, err := mgr.AddChunks(ctx, "t1", "doc1", chunksFor("the cat sat"), nil)
	require.NoError(t, err)
	_, err = mgr.AddChunks(ctx, "t2", "doc1", chunksFor("a dog barked"), nil)
	require.NoError(t, err)

	results, err := mgr.SemanticSearch(ctx, "t1", "dog", 5, nil)
	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, "t1", r.Metadata.TenantID)
	}

	deleted, err := mgr.DeleteDocumentChunks(ctx, "doc1", "t2")
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	stats, err := mgr.CollectionStats(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalChunks)
}

func TestManager_CollectionStats(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	ctx := context.Background()

	stats, err := mgr.CollectionStats(ctx, "t1")
	require.NoError(t, err)
	assert.Zero(t, stats.TotalChunks)
	assert.Empty(t, stats.ContentTypes)

	meta := &models.DocumentMetadata{Language: "en", ContentQuality: "high"}
	_, err = mgr.AddChunks(ctx, "t1", "doc1", chunksFor("the cat sat", "a dog barked"), meta)
	require.NoError(t, err)

	stats, err = mgr.CollectionStats(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalChunks)
	assert.Equal(t, 2, stats.ContentTypes[models.ContentTypeParagraph])
	assert.Equal(t, 2, stats.Languages["en"])
	assert.Equal(t, 2, stats.QualityDistribution["high"])
	assert.True(t, stats.KeywordIndexed)
}

func TestManager_RebuildFromStorageAfterRestart(t *testing.T) {
	storage := newMemoryStorage()
	embedder := &stubEmbedder{}
	first := NewManager(storage, embedder, 2, nil)
	ctx := context.Background()

	_, err := first.AddChunks(ctx, "t1", "doc1", chunksFor("the cat sat", "revenue grew"), nil)
	require.NoError(t, err)

	// Fresh manager over the same storage simulates a restart
	second := NewManager(storage, embedder, 2, nil)
	require.NoError(t, second.RebuildAll(ctx))

	results, err := second.SemanticSearch(ctx, "t1", "cat", 5, nil)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Contains(t, results[0].Text, "cat")

	// Keyword corpus was rebuilt from stored chunk text
	hits, err := second.KeywordSearch(ctx, "t1", "revenue", 5)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestManager_LazyTenantLoad(t *testing.T) {
	storage := newMemoryStorage()
	embedder := &stubEmbedder{}
	first := NewManager(storage, embedder, 2, nil)
	ctx := context.Background()

	_, err := first.AddChunks(ctx, "t1", "doc1", chunksFor("the cat sat"), nil)
	require.NoError(t, err)

	// No explicit rebuild: the first query loads the tenant from storage
	second := NewManager(storage, embedder, 2, nil)
	results, err := second.SemanticSearch(ctx, "t1", "cat", 5, nil)

	require.NoError(t, err)
	require.Len(t, results, 1)
}
