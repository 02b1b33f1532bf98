package segmenter

import (
	"strings"

	"github.com/tessera-ai/tessera/internal/models"
)

var (
	tableKeywords  = []string{"table", "row", "column", "|", "\t"}
	figureKeywords = []string{"figure", "image", "chart", "graph"}
	headerKeywords = []string{"introduction", "conclusion", "summary"}
)

// analyzeChunk computes the immutable analysis fields for one chunk of
// text. Stateless: the classification depends on the chunk text alone.
func analyzeChunk(chunk *models.Chunk) {
	text := chunk.Text
	lower := strings.ToLower(text)

	words := strings.Fields(lower)
	chunk.WordCount = len(words)
	chunk.SentenceCount = countSentences(text)
	chunk.ContentType = classifyContent(text, lower)
	chunk.InformationDensity = informationDensity(words)
	chunk.QuestionCount = strings.Count(text, "?")
	chunk.HasQuestions = chunk.QuestionCount > 0
}

func classifyContent(text, lower string) string {
	if containsAny(lower, tableKeywords) {
		return models.ContentTypeTable
	}
	if containsAny(lower, figureKeywords) {
		return models.ContentTypeFigureReference
	}
	// Many line breaks relative to length reads as a list
	if strings.Count(text, "\n") > len(text)/50 {
		return models.ContentTypeList
	}
	if containsAny(lower, headerKeywords) {
		return models.ContentTypeSectionHeader
	}
	return models.ContentTypeParagraph
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func countSentences(text string) int {
	count := 0
	for _, s := range strings.Split(text, ".") {
		if strings.TrimSpace(s) != "" {
			count++
		}
	}
	return count
}

// informationDensity is the ratio of unique words to total words.
func informationDensity(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[w] = struct{}{}
	}
	return float64(len(unique)) / float64(len(words))
}
