package index

import "math"

// dotProduct computes the dot product of two embedding vectors.
func dotProduct(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// cosineSimilarity computes cosine similarity between two embedding
// vectors, clamped to [0,1] to match the similarity = 1 - distance
// contract of the semantic collection.
func cosineSimilarity(a, b []float32) float64 {
	normA := math.Sqrt(dotProduct(a, a))
	normB := math.Sqrt(dotProduct(b, b))
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dotProduct(a, b) / (normA * normB)
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
