package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    []float64
		b    []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1.0},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0.0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1.0},
		{"dimension mismatch", []float64{1, 2}, []float64{1, 2, 3}, 0.0},
		{"zero vector", []float64{0, 0, 0}, []float64{1, 2, 3}, 0.0},
		{"both empty", nil, nil, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestCosineSimilarityScaleInvariant(t *testing.T) {
	a := []float64{0.3, 0.5, 0.8}
	scaled := []float64{0.6, 1.0, 1.6}
	assert.InDelta(t, 1.0, CosineSimilarity(a, scaled), 1e-9)
}
