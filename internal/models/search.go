package models

import "time"

// SearchType records which sub-search produced a result.
const (
	SearchTypeSemantic = "semantic"
	SearchTypeKeyword  = "keyword"
	SearchTypeHybrid   = "hybrid"
)

// ResultMetadata is the metadata carried on every search result:
// chunk-level fields plus the inherited document-level fields.
type ResultMetadata struct {
	TenantID           string   `json:"tenant_id"`
	DocumentID         string   `json:"document_id"`
	ChunkIndex         int      `json:"chunk_index"`
	Strategy           Strategy `json:"strategy"`
	ContentType        string   `json:"content_type"`
	InformationDensity float64  `json:"information_density"`
	Filename           string   `json:"filename"`
	Language           string   `json:"language"`
	Quality            string   `json:"quality"`
	Categories         []string `json:"categories"`
}

// SearchResult is one ranked snippet returned by a search call.
// CombinedScore is always recomputed at fusion time, never persisted.
type SearchResult struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Metadata ResultMetadata `json:"metadata"`

	// SemanticScore is similarity in [0,1]; 0 if the result came only
	// from keyword search. KeywordScore is TF-IDF cosine similarity in
	// [0,1]; 0 if the result came only from semantic search.
	SemanticScore float64 `json:"semantic_score"`
	KeywordScore  float64 `json:"keyword_score"`
	CombinedScore float64 `json:"combined_score"`
	SearchType    string  `json:"search_type"`
}

// QualityLevel classifies how well a result set answers a query. The
// downstream response generator uses it to choose a template family or
// decide whether to invoke free-form generation.
type QualityLevel string

const (
	QualityNoContext        QualityLevel = "no_context"
	QualityPartialContext   QualityLevel = "partial_context"
	QualityGoodContext      QualityLevel = "good_context"
	QualityTechnicalContent QualityLevel = "technical_content"
	QualityBusinessContent  QualityLevel = "business_content"
)

// ContextAnalysis is the quality classifier's verdict on a result set.
type ContextAnalysis struct {
	QualityLevel   QualityLevel `json:"quality_level"`
	RelevanceScore float64      `json:"relevance_score"`

	// Diversity counts distinct content-type tags among results.
	// Observability only, never a tier input.
	Diversity       int      `json:"context_diversity"`
	ContentTypes    []string `json:"content_types"`
	DocumentSources int      `json:"document_sources"`
	Categories      []string `json:"categories"`
}

// IndexResult reports the outcome of adding one document's chunks.
type IndexResult struct {
	ChunksAdded    int      `json:"chunks_added"`
	ChunkIDs       []string `json:"chunk_ids"`
	KeywordIndexed bool     `json:"keyword_indexed"`
}

// TenantStats summarizes a tenant's corpus. Distributions are sampled
// from up to 100 chunks.
type TenantStats struct {
	TotalChunks         int            `json:"total_chunks"`
	ContentTypes        map[string]int `json:"content_types"`
	Languages           map[string]int `json:"languages"`
	QualityDistribution map[string]int `json:"quality_distribution"`
	KeywordIndexed      bool           `json:"keyword_indexed"`
}

// ProcessResult is returned by the engine after ingesting one document.
type ProcessResult struct {
	DocumentID   string         `json:"document_id"`
	ChunkCount   int            `json:"chunk_count"`
	StrategyUsed Strategy       `json:"strategy_used"`
	ContentTypes map[string]int `json:"content_types"`
	WordCount    int            `json:"word_count"`
	Duration     time.Duration  `json:"duration"`
}

// QueryResult is returned by the engine for one query call.
type QueryResult struct {
	Results        []SearchResult `json:"results"`
	QualityLevel   QualityLevel   `json:"quality_level"`
	RelevanceScore float64        `json:"relevance_score"`
	Sources        int            `json:"sources"`
	Duration       time.Duration  `json:"duration"`
}

// DeleteResult is returned by the engine after deleting a document.
type DeleteResult struct {
	ChunksDeleted int `json:"chunks_deleted"`
}
