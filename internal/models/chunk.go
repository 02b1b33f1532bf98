package models

import (
	"time"
)

// Strategy identifies a chunk segmentation strategy. The set is closed:
// callers pass free-form strings at the edges, but everything past
// ParseStrategy works with these values only.
type Strategy string

const (
	// StrategyRecursive is greedy splitting on paragraph, line, space and
	// character boundaries. The default for general prose.
	StrategyRecursive Strategy = "recursive"
	// StrategySemantic uses smaller chunks with larger overlap and adds
	// sentence-ending punctuation as split points. Used for dense text.
	StrategySemantic Strategy = "semantic"
	// StrategyParagraph restricts splitting to paragraph and line
	// boundaries with a larger target size. Preserves structured layout.
	StrategyParagraph Strategy = "paragraph"
)

// ParseStrategy maps a strategy name to its Strategy value.
// Returns false for names outside the known set.
func ParseStrategy(name string) (Strategy, bool) {
	switch Strategy(name) {
	case StrategyRecursive, StrategySemantic, StrategyParagraph:
		return Strategy(name), true
	}
	return "", false
}

// Content type tags assigned by the chunk analyzer.
const (
	ContentTypeTable           = "table"
	ContentTypeFigureReference = "figure_reference"
	ContentTypeList            = "list"
	ContentTypeSectionHeader   = "section_header"
	ContentTypeParagraph       = "paragraph"
)

// Chunk is a contiguous span of a document's text produced by the
// segmenter. Analysis fields are computed once at creation and never
// change afterwards.
type Chunk struct {
	Text        string   `json:"text"`
	Index       int      `json:"chunk_index"`
	ContentHash string   `json:"content_hash"`
	Strategy    Strategy `json:"strategy"`

	// Analysis fields
	WordCount          int     `json:"word_count"`
	SentenceCount      int     `json:"sentence_count"`
	ContentType        string  `json:"content_type"`
	InformationDensity float64 `json:"information_density"`
	HasQuestions       bool    `json:"has_questions"`
	QuestionCount      int     `json:"question_count"`
}

// DocumentMetadata is the lightweight document-level metadata supplied
// by the text extraction collaborator alongside extracted plain text.
type DocumentMetadata struct {
	Filename          string   `json:"filename"`
	Language          string   `json:"language"`
	ReadabilityScore  float64  `json:"readability_score"`
	ContentQuality    string   `json:"content_quality"`
	ContentCategories []string `json:"content_categories"`
	HasTables         bool     `json:"has_tables"`
	HasImages         bool     `json:"has_images"`
}

// HasCategory reports whether the document carries the given category tag.
func (m *DocumentMetadata) HasCategory(category string) bool {
	for _, c := range m.ContentCategories {
		if c == category {
			return true
		}
	}
	return false
}

// IndexedChunk is a chunk as stored in a tenant's semantic collection:
// the segmenter's chunk plus tenant/document ownership, the embedding
// vector and merged document-level metadata.
type IndexedChunk struct {
	ID         string `json:"id" badgerhold:"key"`
	TenantID   string `json:"tenant_id" badgerhold:"index"`
	DocumentID string `json:"document_id" badgerhold:"index"`
	ChunkIndex int    `json:"chunk_index"`

	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding"`

	Strategy           Strategy `json:"strategy"`
	ContentType        string   `json:"content_type"`
	WordCount          int      `json:"word_count"`
	InformationDensity float64  `json:"information_density"`

	// Inherited document-level metadata
	Filename   string   `json:"filename"`
	Language   string   `json:"language"`
	Quality    string   `json:"quality"`
	Categories []string `json:"categories"`

	CreatedAt time.Time `json:"created_at"`
}
