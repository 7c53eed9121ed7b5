package embedding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func magnitude(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    []float32
		expected []float32
	}{
		{"unit vector unchanged", []float32{1, 0, 0}, []float32{1, 0, 0}},
		{"three four five", []float32{3, 4}, []float32{0.6, 0.8}},
		{"negative values", []float32{-1, 1}, []float32{-float32(1 / math.Sqrt2), float32(1 / math.Sqrt2)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			assert.InDeltaSlice(t, tt.expected, got, 1e-6)
			assert.InDelta(t, 1.0, magnitude(got), 1e-6)
		})
	}
}

func TestNormalize_Degenerate(t *testing.T) {
	assert.Equal(t, []float32{0, 0, 0}, Normalize([]float32{0, 0, 0}))
	assert.Empty(t, Normalize([]float32{}))
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	in := []float32{3, 4}
	Normalize(in)
	assert.Equal(t, []float32{3, 4}, in)
}
