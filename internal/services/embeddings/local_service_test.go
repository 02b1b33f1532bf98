package embeddings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalService_Deterministic(t *testing.T) {
	svc := NewLocalService(384, nil)
	ctx := context.Background()

	first, err := svc.GenerateEmbedding(ctx, "revenue grew this quarter")
	require.NoError(t, err)
	second, err := svc.GenerateEmbedding(ctx, "revenue grew this quarter")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestLocalService_Dimension(t *testing.T) {
	svc := NewLocalService(64, nil)

	vec, err := svc.GenerateEmbedding(context.Background(), "some text")

	require.NoError(t, err)
	assert.Len(t, vec, 64)
	assert.Equal(t, 64, svc.Dimension())
}

func TestLocalService_Normalized(t *testing.T) {
	svc := NewLocalService(128, nil)

	vec, err := svc.GenerateEmbedding(context.Background(), "normalize me please")
	require.NoError(t, err)

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, norm, 1e-5)
}

func TestLocalService_IdenticalTextMaxSimilarity(t *testing.T) {
	svc := NewLocalService(128, nil)
	ctx := context.Background()

	a, err := svc.GenerateEmbedding(ctx, "the quick brown fox")
	require.NoError(t, err)
	b, err := svc.GenerateQueryEmbedding(ctx, "the quick brown fox")
	require.NoError(t, err)

	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	assert.InDelta(t, 1.0, dot, 1e-5)
}

func TestLocalService_SharedTermsScoreHigherThanDisjoint(t *testing.T) {
	svc := NewLocalService(256, nil)
	ctx := context.Background()

	query, err := svc.GenerateEmbedding(ctx, "revenue growth")
	require.NoError(t, err)
	related, err := svc.GenerateEmbedding(ctx, "revenue growth improved")
	require.NoError(t, err)
	unrelated, err := svc.GenerateEmbedding(ctx, "sunny weather outside")
	require.NoError(t, err)

	dot := func(a, b []float32) float64 {
		var sum float64
		for i := range a {
			sum += float64(a[i]) * float64(b[i])
		}
		return sum
	}

	assert.Greater(t, dot(query, related), dot(query, unrelated))
}

func TestLocalService_EmptyText(t *testing.T) {
	svc := NewLocalService(128, nil)

	_, err := svc.GenerateEmbedding(context.Background(), "   ")
	assert.Error(t, err)
}

func TestLocalService_CancelledContext(t *testing.T) {
	svc := NewLocalService(128, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.GenerateEmbedding(ctx, "text")
	assert.Error(t, err)
}

func TestLocalService_Metadata(t *testing.T) {
	svc := NewLocalService(128, nil)

	assert.Equal(t, "local-hash", svc.ModelName())
	assert.True(t, svc.IsAvailable(context.Background()))
}
