package index

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"
)

// Term-weighting parameters for the keyword corpus: unigrams and
// bigrams, capped vocabulary, document-frequency pruning at both ends.
const (
	maxFeatures = 5000
	minDocFreq  = 1
	maxDocRatio = 0.95
)

// Vectorizer converts text into L2-normalized TF-IDF vectors over a
// vocabulary learned from one tenant's chunk corpus. Vectors are sparse:
// index into the vocabulary -> weight.
type Vectorizer struct {
	vocabulary map[string]int
	idf        []float64
}

// SparseVector is a sparse term-weight vector keyed by vocabulary index.
type SparseVector map[int]float64

// NewVectorizer learns a vocabulary and IDF weights from the corpus.
// Terms are dropped when they appear in fewer than minDocFreq documents
// or in more than 95% of documents (rounded up, so a single-document
// corpus keeps its terms). Returns an error when nothing survives
// pruning, which callers treat as a failed rebuild.
func NewVectorizer(docs []string) (*Vectorizer, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("empty corpus")
	}

	df := make(map[string]int)
	totals := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, term := range ngrams(doc) {
			totals[term]++
			if _, ok := seen[term]; !ok {
				df[term]++
				seen[term] = struct{}{}
			}
		}
	}

	n := len(docs)
	maxDocCount := int(math.Ceil(maxDocRatio * float64(n)))
	if maxDocCount < minDocFreq {
		maxDocCount = minDocFreq
	}

	terms := make([]string, 0, len(df))
	for term, freq := range df {
		if freq < minDocFreq || freq > maxDocCount {
			continue
		}
		terms = append(terms, term)
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("no terms survived document-frequency pruning (%d docs)", n)
	}

	// Cap the vocabulary by corpus frequency, ties resolved
	// alphabetically so the vocabulary stays deterministic
	if len(terms) > maxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if totals[terms[i]] != totals[terms[j]] {
				return totals[terms[i]] > totals[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)

	v := &Vectorizer{
		vocabulary: make(map[string]int, len(terms)),
		idf:        make([]float64, len(terms)),
	}
	for i, term := range terms {
		v.vocabulary[term] = i
		// Smoothed IDF keeps unseen-term weights finite
		v.idf[i] = math.Log(float64(1+n)/float64(1+df[term])) + 1
	}

	return v, nil
}

// Transform converts text to a normalized sparse TF-IDF vector. Terms
// outside the vocabulary contribute nothing; a query sharing no terms
// with the corpus yields an empty vector.
func (v *Vectorizer) Transform(text string) SparseVector {
	counts := make(map[int]int)
	for _, term := range ngrams(text) {
		if idx, ok := v.vocabulary[term]; ok {
			counts[idx]++
		}
	}

	vec := make(SparseVector, len(counts))
	var norm float64
	for idx, count := range counts {
		w := float64(count) * v.idf[idx]
		vec[idx] = w
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for idx := range vec {
			vec[idx] /= norm
		}
	}

	return vec
}

// VocabularySize returns the number of learned terms.
func (v *Vectorizer) VocabularySize() int {
	return len(v.vocabulary)
}

// Dot returns the dot product of two sparse vectors. Both sides are
// L2-normalized by Transform, so this is their cosine similarity.
func Dot(a, b SparseVector) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for idx, w := range a {
		sum += w * b[idx]
	}
	return sum
}

// ngrams tokenizes text and returns unigrams plus bigrams with stop
// words removed before bigram formation.
func ngrams(text string) []string {
	tokens := tokenize(text)

	kept := tokens[:0]
	for _, tok := range tokens {
		if _, stop := stopWords[tok]; !stop {
			kept = append(kept, tok)
		}
	}

	terms := make([]string, 0, len(kept)*2)
	terms = append(terms, kept...)
	for i := 0; i+1 < len(kept); i++ {
		terms = append(terms, kept[i]+" "+kept[i+1])
	}
	return terms
}

// tokenize splits text into lowercase alphanumeric words.
func tokenize(text string) []string {
	var words []string
	var word strings.Builder

	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			word.WriteRune(r)
		} else if word.Len() > 0 {
			words = append(words, word.String())
			word.Reset()
		}
	}
	if word.Len() > 0 {
		words = append(words, word.String())
	}

	return words
}
