package search

import "math"

// CosineSimilarity returns the cosine similarity of two vectors in [-1, 1].
// It is total: absent, empty, length-mismatched, or zero-magnitude inputs
// yield 0 instead of an error. Every threshold decision in the pipeline goes
// through this function.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, magA, magB float64
	for i := range a {
		ai := float64(a[i])
		bi := float64(b[i])
		dot += ai * bi
		magA += ai * ai
		magB += bi * bi
	}

	if magA == 0 || magB == 0 {
		return 0
	}

	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
