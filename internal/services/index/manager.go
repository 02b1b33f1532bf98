package index

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/tessera-ai/tessera/internal/common"
	"github.com/tessera-ai/tessera/internal/interfaces"
	"github.com/tessera-ai/tessera/internal/models"
	"github.com/tessera-ai/tessera/internal/services/workers"
)

// statsSampleSize caps how many chunks feed the metadata distributions.
const statsSampleSize = 100

// Ensure Manager implements the interface.
var _ interfaces.IndexService = (*Manager)(nil)

// tenantIndex is one tenant's in-memory view of the dual index: the
// semantic collection entries in insertion order plus the keyword
// corpus derived from them. Its lock serializes mutations for this
// tenant only; other tenants proceed independently.
type tenantIndex struct {
	mu      sync.RWMutex
	entries []*models.IndexedChunk
	byID    map[string]*models.IndexedChunk
	keyword *keywordCorpus
}

// Manager owns one semantic collection and one keyword corpus per
// tenant. Chunks are persisted through ChunkStorage so the keyword
// corpus can be rebuilt from stored text after a restart.
type Manager struct {
	storage     interfaces.ChunkStorage
	embedder    interfaces.EmbeddingService
	concurrency int
	logger      arbor.ILogger

	mu      sync.RWMutex
	tenants map[string]*tenantIndex
}

// NewManager creates a dual index manager. concurrency bounds parallel
// per-chunk embedding calls within one ingestion batch.
func NewManager(storage interfaces.ChunkStorage, embedder interfaces.EmbeddingService, concurrency int, logger arbor.ILogger) *Manager {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Manager{
		storage:     storage,
		embedder:    embedder,
		concurrency: concurrency,
		logger:      logger,
		tenants:     make(map[string]*tenantIndex),
	}
}

// AddChunks embeds one document's chunks and inserts them into both
// indexes. All embeddings are generated before anything is written: a
// failure for any chunk fails the whole call with no partial semantic
// state. The keyword corpus rebuild runs last and its failure only
// degrades keyword search, never the call.
func (m *Manager) AddChunks(ctx context.Context, tenantID, documentID string, chunks []models.Chunk, meta *models.DocumentMetadata) (*models.IndexResult, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant id is required", models.ErrValidation)
	}
	if documentID == "" {
		return nil, fmt.Errorf("%w: document id is required", models.ErrValidation)
	}
	if len(chunks) == 0 {
		return &models.IndexResult{}, nil
	}

	embeddings, err := m.embedChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	indexed := make([]*models.IndexedChunk, len(chunks))
	ids := make([]string, len(chunks))
	for i, chunk := range chunks {
		ic := &models.IndexedChunk{
			ID:                 common.ChunkID(documentID, chunk.Index, chunk.ContentHash),
			TenantID:           tenantID,
			DocumentID:         documentID,
			ChunkIndex:         chunk.Index,
			Text:               chunk.Text,
			Embedding:          embeddings[i],
			Strategy:           chunk.Strategy,
			ContentType:        chunk.ContentType,
			WordCount:          chunk.WordCount,
			InformationDensity: chunk.InformationDensity,
			CreatedAt:          now,
		}
		if meta != nil {
			ic.Filename = meta.Filename
			ic.Language = meta.Language
			ic.Quality = meta.ContentQuality
			ic.Categories = meta.ContentCategories
		}
		indexed[i] = ic
		ids[i] = ic.ID
	}

	t := m.tenant(tenantID, true)
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := m.storage.SaveChunks(indexed); err != nil {
		return nil, fmt.Errorf("failed to save chunks for document %s: %w", documentID, err)
	}
	for _, ic := range indexed {
		t.entries = append(t.entries, ic)
		t.byID[ic.ID] = ic
	}

	m.rebuildKeywordLocked(t, tenantID)

	m.logger.Info().
		Str("tenant_id", tenantID).
		Str("document_id", documentID).
		Int("chunks", len(indexed)).
		Bool("keyword_indexed", t.keyword != nil).
		Msg("Added document chunks")

	return &models.IndexResult{
		ChunksAdded:    len(indexed),
		ChunkIDs:       ids,
		KeywordIndexed: t.keyword != nil,
	}, nil
}

// embedChunks generates one embedding per chunk through a bounded
// worker pool. Results land in index-keyed slots, so parallelism never
// reorders them.
func (m *Manager) embedChunks(ctx context.Context, chunks []models.Chunk) ([][]float32, error) {
	embeddings := make([][]float32, len(chunks))

	pool := workers.NewPool(m.concurrency, m.logger)
	pool.Start()
	for i := range chunks {
		i := i
		if err := pool.Submit(func(ctx context.Context) error {
			vec, err := m.embedder.GenerateEmbedding(ctx, chunks[i].Text)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", i, err)
			}
			embeddings[i] = vec
			return nil
		}); err != nil {
			break
		}
	}
	pool.Wait()

	if errs := pool.Errors(); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %d of %d chunks failed: %v",
			models.ErrEmbeddingFailure, len(errs), len(chunks), errors.Join(errs...))
	}

	return embeddings, nil
}

// DeleteDocumentChunks removes all of a document's chunks from both
// indexes. Unknown tenants and documents are a no-op returning 0: a
// retried delete stays idempotent.
func (m *Manager) DeleteDocumentChunks(ctx context.Context, documentID, tenantID string) (int, error) {
	t, ok, err := m.loadTenant(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var ids []string
	kept := make([]*models.IndexedChunk, 0, len(t.entries))
	for _, ic := range t.entries {
		if ic.DocumentID == documentID {
			ids = append(ids, ic.ID)
		} else {
			kept = append(kept, ic)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	if err := m.storage.DeleteChunks(ids); err != nil {
		return 0, fmt.Errorf("failed to delete chunks for document %s: %w", documentID, err)
	}
	t.entries = kept
	for _, id := range ids {
		delete(t.byID, id)
	}

	if len(t.entries) == 0 {
		// Tenant corpus emptied: release keyword corpus and vectorizer
		t.keyword = nil
		m.mu.Lock()
		delete(m.tenants, tenantID)
		m.mu.Unlock()
	} else {
		m.rebuildKeywordLocked(t, tenantID)
	}

	m.logger.Info().
		Str("tenant_id", tenantID).
		Str("document_id", documentID).
		Int("chunks_deleted", len(ids)).
		Msg("Deleted document chunks")

	return len(ids), nil
}

// SemanticSearch embeds the query and ranks the tenant's chunks by
// vector similarity. An unknown tenant yields empty results; an
// embedding or backend failure is a declared error, never an empty set.
func (m *Manager) SemanticSearch(ctx context.Context, tenantID, query string, topK int, filter map[string]string) ([]models.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" || topK <= 0 {
		return []models.SearchResult{}, nil
	}

	queryVec, err := m.embedder.GenerateQueryEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: query embedding: %v", models.ErrSearchBackend, err)
	}

	t, ok, err := m.loadTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.SearchResult{}, nil
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	type scored struct {
		chunk *models.IndexedChunk
		score float64
	}
	candidates := make([]scored, 0, len(t.entries))
	for _, ic := range t.entries {
		if !matchesFilter(ic, filter) {
			continue
		}
		candidates = append(candidates, scored{
			chunk: ic,
			score: cosineSimilarity(queryVec, ic.Embedding),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	results := make([]models.SearchResult, len(candidates))
	for i, c := range candidates {
		r := resultFromChunk(c.chunk)
		r.SemanticScore = c.score
		r.SearchType = models.SearchTypeSemantic
		results[i] = r
	}
	return results, nil
}

// KeywordSearch ranks the tenant's chunks by TF-IDF cosine similarity.
// A tenant with no keyword corpus, because no chunks were ever added or
// because the last rebuild failed, yields empty results so hybrid
// search degrades to pure semantic ranking.
func (m *Manager) KeywordSearch(ctx context.Context, tenantID, query string, topK int) ([]models.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" || topK <= 0 {
		return []models.SearchResult{}, nil
	}

	t, ok, err := m.loadTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.SearchResult{}, nil
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.keyword == nil {
		m.logger.Debug().
			Str("tenant_id", tenantID).
			Msg("No keyword corpus for tenant")
		return []models.SearchResult{}, nil
	}

	hits := t.keyword.search(query, topK)
	results := make([]models.SearchResult, 0, len(hits))
	for _, hit := range hits {
		ic, found := t.byID[hit.id]
		if !found {
			continue
		}
		r := resultFromChunk(ic)
		r.KeywordScore = hit.score
		r.SearchType = models.SearchTypeKeyword
		results = append(results, r)
	}
	return results, nil
}

// CollectionStats reports the tenant's chunk count plus content-type,
// language and quality distributions sampled from up to 100 chunks.
func (m *Manager) CollectionStats(ctx context.Context, tenantID string) (*models.TenantStats, error) {
	stats := &models.TenantStats{
		ContentTypes:        make(map[string]int),
		Languages:           make(map[string]int),
		QualityDistribution: make(map[string]int),
	}

	t, ok, err := m.loadTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return stats, nil
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	stats.TotalChunks = len(t.entries)
	stats.KeywordIndexed = t.keyword != nil

	sample := t.entries
	if len(sample) > statsSampleSize {
		sample = sample[:statsSampleSize]
	}
	for _, ic := range sample {
		stats.ContentTypes[orUnknown(ic.ContentType)]++
		stats.Languages[orUnknown(ic.Language)]++
		stats.QualityDistribution[orUnknown(ic.Quality)]++
	}

	return stats, nil
}

// RebuildTenant reconstructs a tenant's in-memory semantic entries and
// keyword corpus from stored chunks. Used on startup and after the
// tenant registry was emptied.
func (m *Manager) RebuildTenant(ctx context.Context, tenantID string) error {
	chunks, err := m.storage.ChunksByTenant(tenantID)
	if err != nil {
		return fmt.Errorf("failed to load chunks for tenant %s: %w", tenantID, err)
	}

	if len(chunks) == 0 {
		m.mu.Lock()
		delete(m.tenants, tenantID)
		m.mu.Unlock()
		return nil
	}

	t := &tenantIndex{
		entries: chunks,
		byID:    make(map[string]*models.IndexedChunk, len(chunks)),
	}
	for _, ic := range chunks {
		t.byID[ic.ID] = ic
	}
	m.rebuildKeywordLocked(t, tenantID)

	m.mu.Lock()
	m.tenants[tenantID] = t
	m.mu.Unlock()

	m.logger.Info().
		Str("tenant_id", tenantID).
		Int("chunks", len(chunks)).
		Bool("keyword_indexed", t.keyword != nil).
		Msg("Rebuilt tenant indexes from storage")

	return nil
}

// RebuildAll reconstructs every tenant found in storage.
func (m *Manager) RebuildAll(ctx context.Context) error {
	tenantIDs, err := m.storage.TenantIDs()
	if err != nil {
		return fmt.Errorf("failed to list tenants: %w", err)
	}
	for _, tenantID := range tenantIDs {
		if err := m.RebuildTenant(ctx, tenantID); err != nil {
			return err
		}
	}
	return nil
}

// rebuildKeywordLocked rebuilds the whole term-weight matrix from the
// tenant's current full chunk-text corpus. Correctness of global term
// weights is chosen over incremental-update cost. The caller holds the
// tenant lock. Failure releases the corpus: keyword search degrades to
// empty until the next successful rebuild.
func (m *Manager) rebuildKeywordLocked(t *tenantIndex, tenantID string) {
	if len(t.entries) == 0 {
		t.keyword = nil
		return
	}

	ids := make([]string, len(t.entries))
	texts := make(map[string]string, len(t.entries))
	for i, ic := range t.entries {
		ids[i] = ic.ID
		texts[ic.ID] = ic.Text
	}

	corpus, err := buildKeywordCorpus(ids, texts)
	if err != nil {
		m.logger.Warn().
			Err(err).
			Str("tenant_id", tenantID).
			Int("chunks", len(ids)).
			Msg("Keyword corpus rebuild failed, keyword search degraded")
		t.keyword = nil
		return
	}

	t.keyword = corpus
	m.logger.Debug().
		Str("tenant_id", tenantID).
		Int("chunks", corpus.size()).
		Int("vocabulary", corpus.vectorizer.VocabularySize()).
		Msg("Rebuilt keyword corpus")
}

// tenant returns the in-memory index for tenantID, creating it when
// create is set.
func (m *Manager) tenant(tenantID string, create bool) *tenantIndex {
	m.mu.RLock()
	t, ok := m.tenants[tenantID]
	m.mu.RUnlock()
	if ok || !create {
		return t
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok = m.tenants[tenantID]; ok {
		return t
	}
	t = &tenantIndex{byID: make(map[string]*models.IndexedChunk)}
	m.tenants[tenantID] = t
	return t
}

// loadTenant returns the tenant's in-memory index, lazily rebuilding it
// from storage when chunks exist there but not in memory (restart path).
func (m *Manager) loadTenant(ctx context.Context, tenantID string) (*tenantIndex, bool, error) {
	if t := m.tenant(tenantID, false); t != nil {
		return t, true, nil
	}

	count, err := m.storage.CountChunks(tenantID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to count chunks for tenant %s: %w", tenantID, err)
	}
	if count == 0 {
		return nil, false, nil
	}

	if err := m.RebuildTenant(ctx, tenantID); err != nil {
		return nil, false, err
	}
	t := m.tenant(tenantID, false)
	return t, t != nil, nil
}

// matchesFilter reports whether a chunk's metadata matches every
// key/value pair exactly.
func matchesFilter(ic *models.IndexedChunk, filter map[string]string) bool {
	for key, want := range filter {
		var got string
		switch key {
		case "document_id":
			got = ic.DocumentID
		case "content_type":
			got = ic.ContentType
		case "strategy":
			got = string(ic.Strategy)
		case "language":
			got = ic.Language
		case "quality":
			got = ic.Quality
		case "filename":
			got = ic.Filename
		default:
			return false
		}
		if got != want {
			return false
		}
	}
	return true
}

func resultFromChunk(ic *models.IndexedChunk) models.SearchResult {
	return models.SearchResult{
		ID:   ic.ID,
		Text: ic.Text,
		Metadata: models.ResultMetadata{
			TenantID:           ic.TenantID,
			DocumentID:         ic.DocumentID,
			ChunkIndex:         ic.ChunkIndex,
			Strategy:           ic.Strategy,
			ContentType:        ic.ContentType,
			InformationDensity: ic.InformationDensity,
			Filename:           ic.Filename,
			Language:           ic.Language,
			Quality:            ic.Quality,
			Categories:         ic.Categories,
		},
	}
}

func orUnknown(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
