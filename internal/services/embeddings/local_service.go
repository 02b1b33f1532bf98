package embeddings

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/ternarybob/arbor"
	"github.com/tessera-ai/tessera/internal/common"
	"github.com/tessera-ai/tessera/internal/interfaces"
)

const localModelName = "local-hash"

// Ensure LocalService implements the interface.
var _ interfaces.EmbeddingService = (*LocalService)(nil)

// LocalService is a deterministic, fully local embedding provider.
// Tokens (unigrams plus bigrams) are hashed into fixed dimension
// buckets and the resulting vector is L2-normalized, so cosine
// similarity is a plain dot product and the same text always yields the
// same vector. It stands in for a remote embedding model when none is
// configured.
type LocalService struct {
	dimension int
	logger    arbor.ILogger
}

// NewLocalService creates a local hashing embedder with the given
// output dimension.
func NewLocalService(dimension int, logger arbor.ILogger) *LocalService {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &LocalService{
		dimension: dimension,
		logger:    logger,
	}
}

// GenerateEmbedding creates a vector embedding for text
func (s *LocalService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	vector := make([]float32, s.dimension)
	tokens := tokenize(text)
	for _, token := range tokens {
		bucket, sign := hashToken(token, s.dimension)
		vector[bucket] += sign
	}
	// Bigrams catch local word order that the bag of unigrams loses
	for i := 0; i+1 < len(tokens); i++ {
		bucket, sign := hashToken(tokens[i]+" "+tokens[i+1], s.dimension)
		vector[bucket] += sign * 0.5
	}

	normalize(vector)
	return vector, nil
}

// GenerateQueryEmbedding generates embedding for a search query. Queries
// share the document embedding space, no special prompt handling.
func (s *LocalService) GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error) {
	return s.GenerateEmbedding(ctx, query)
}

// ModelName returns the model name
func (s *LocalService) ModelName() string {
	return localModelName
}

// Dimension returns the embedding dimension
func (s *LocalService) Dimension() int {
	return s.dimension
}

// IsAvailable always reports true: the local embedder has no external
// dependency to health-check.
func (s *LocalService) IsAvailable(ctx context.Context) bool {
	return true
}

// hashToken maps a token to a bucket index and a +1/-1 sign. The sign
// bit keeps hash collisions from only ever accumulating, which would
// bias every vector toward the same quadrant.
func hashToken(token string, dimension int) (int, float32) {
	h := fnv.New64a()
	h.Write([]byte(token))
	sum := h.Sum64()

	bucket := int(sum % uint64(dimension))
	sign := float32(1)
	if (sum>>63)&1 == 1 {
		sign = -1
	}
	return bucket, sign
}

func normalize(vector []float32) {
	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares == 0 {
		return
	}
	norm := float32(math.Sqrt(sumSquares))
	for i := range vector {
		vector[i] /= norm
	}
}

// tokenize lowercases and splits on non-alphanumeric runes.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
