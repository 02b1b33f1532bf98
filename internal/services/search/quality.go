package search

import (
	"sort"

	"github.com/tessera-ai/tessera/internal/models"
)

// Quality tier thresholds on mean combined score.
const (
	goodContextThreshold    = 0.7
	partialContextThreshold = 0.4
)

// Category tags that override the base quality tier. Technical is
// evaluated before business; a result set carrying both is classified
// technical.
const (
	categoryTechnical = "technical"
	categoryBusiness  = "business"
)

// AnalyzeContext scores a fused result set and assigns the quality tier
// the downstream response generator keys its template choice on. The
// tier is computed from the result set alone, identically for every
// consumer.
func (s *Service) AnalyzeContext(results []models.SearchResult, query string) *models.ContextAnalysis {
	if len(results) == 0 {
		return &models.ContextAnalysis{
			QualityLevel: models.QualityNoContext,
		}
	}

	var total float64
	for _, r := range results {
		score := r.CombinedScore
		if score == 0 {
			score = r.SemanticScore
		}
		total += score
	}
	relevance := total / float64(len(results))

	level := models.QualityNoContext
	switch {
	case relevance >= goodContextThreshold:
		level = models.QualityGoodContext
	case relevance >= partialContextThreshold:
		level = models.QualityPartialContext
	}

	categories := collectCategories(results)
	if level != models.QualityNoContext {
		if contains(categories, categoryTechnical) {
			level = models.QualityTechnicalContent
		} else if contains(categories, categoryBusiness) {
			level = models.QualityBusinessContent
		}
	}

	contentTypes := collectContentTypes(results)
	documents := make(map[string]struct{}, len(results))
	for _, r := range results {
		documents[r.Metadata.DocumentID] = struct{}{}
	}

	return &models.ContextAnalysis{
		QualityLevel:    level,
		RelevanceScore:  relevance,
		Diversity:       len(contentTypes),
		ContentTypes:    contentTypes,
		DocumentSources: len(documents),
		Categories:      categories,
	}
}

func collectCategories(results []models.SearchResult) []string {
	seen := make(map[string]struct{})
	var categories []string
	for _, r := range results {
		for _, c := range r.Metadata.Categories {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			categories = append(categories, c)
		}
	}
	sort.Strings(categories)
	return categories
}

func collectContentTypes(results []models.SearchResult) []string {
	seen := make(map[string]struct{})
	var types []string
	for _, r := range results {
		if r.Metadata.ContentType == "" {
			continue
		}
		if _, ok := seen[r.Metadata.ContentType]; ok {
			continue
		}
		seen[r.Metadata.ContentType] = struct{}{}
		types = append(types, r.Metadata.ContentType)
	}
	sort.Strings(types)
	return types
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
