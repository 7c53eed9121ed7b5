package embedding

import "math"

// Normalize returns v scaled to unit length, so dot product equals cosine similarity.
// A zero vector comes back as a zero vector of the same width.
func Normalize(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}

	out := make([]float32, len(v))
	if sum == 0 {
		return out
	}
	inv := 1 / math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}
