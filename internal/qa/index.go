package qa

import (
	"errors"
	"math"
	"sort"
)

// index is an ephemeral brute-force cosine similarity index over the chunks
// of a single document. It is rebuilt for every question and never persisted,
// so it always reflects the latest upload.
type index struct {
	chunks  []string
	vectors [][]float32
}

func newIndex(chunks []string, vectors [][]float32) (*index, error) {
	if len(chunks) != len(vectors) {
		return nil, errors.New("chunks and vectors length mismatch")
	}
	return &index{chunks: chunks, vectors: vectors}, nil
}

// Search returns the topK chunks ranked by cosine similarity to the query
// vector, highest first.
func (ix *index) Search(query []float32, topK int) []string {
	if topK <= 0 {
		topK = 4
	}

	type scored struct {
		idx   int
		score float32
	}
	scores := make([]scored, len(ix.vectors))
	for i, v := range ix.vectors {
		scores[i] = scored{idx: i, score: cosineSimilarity(query, v)}
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	if topK > len(scores) {
		topK = len(scores)
	}
	out := make([]string, 0, topK)
	for i := 0; i < topK; i++ {
		out = append(out, ix.chunks[scores[i].idx])
	}
	return out
}

// cosineSimilarity computes the cosine similarity between two vectors.
// Returns a value between -1 and 1, where 1 means identical direction.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}
