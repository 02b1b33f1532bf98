package index

import (
	"sort"
)

// keywordHit is one scored match from the keyword corpus.
type keywordHit struct {
	id    string
	text  string
	score float64
}

// keywordCorpus holds one tenant's keyword index: the raw chunk texts in
// insertion order plus the term-weight matrix derived from them. Term
// weights depend on the full corpus, so the corpus is always built
// wholesale; mutation happens by building a replacement.
type keywordCorpus struct {
	ids        []string
	texts      map[string]string
	vectorizer *Vectorizer
	matrix     []SparseVector
}

// buildKeywordCorpus fits a fresh vectorizer over the full chunk-text
// corpus and vectorizes every chunk. Chunk order follows ids.
func buildKeywordCorpus(ids []string, texts map[string]string) (*keywordCorpus, error) {
	docs := make([]string, len(ids))
	for i, id := range ids {
		docs[i] = texts[id]
	}

	vectorizer, err := NewVectorizer(docs)
	if err != nil {
		return nil, err
	}

	matrix := make([]SparseVector, len(docs))
	for i, doc := range docs {
		matrix[i] = vectorizer.Transform(doc)
	}

	return &keywordCorpus{
		ids:        ids,
		texts:      texts,
		vectorizer: vectorizer,
		matrix:     matrix,
	}, nil
}

// search scores the query against every indexed chunk and returns the
// topK hits with strictly positive cosine similarity, highest first.
// Zero-similarity chunks are excluded rather than ranked last.
func (c *keywordCorpus) search(query string, topK int) []keywordHit {
	queryVec := c.vectorizer.Transform(query)
	if len(queryVec) == 0 {
		return nil
	}

	hits := make([]keywordHit, 0, topK)
	for i, docVec := range c.matrix {
		score := Dot(queryVec, docVec)
		if score <= 0 {
			continue
		}
		hits = append(hits, keywordHit{
			id:    c.ids[i],
			text:  c.texts[c.ids[i]],
			score: score,
		})
	}

	// Stable: equal scores keep corpus order
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}

// size returns the number of indexed chunks.
func (c *keywordCorpus) size() int {
	return len(c.ids)
}
