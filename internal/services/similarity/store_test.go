package similarity

import (
	"math"
	"testing"
)

func TestCosineIdentical(t *testing.T) {
	v := []float64{1, 2, 3}
	if got := cosine(v, v); math.Abs(got-1) > 1e-12 {
		t.Fatalf("expected 1, got %v", got)
	}
}

func TestCosineOrthogonal(t *testing.T) {
	if got := cosine([]float64{1, 0}, []float64{0, 1}); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestCosineOpposite(t *testing.T) {
	if got := cosine([]float64{1, 1}, []float64{-1, -1}); math.Abs(got+1) > 1e-12 {
		t.Fatalf("expected -1, got %v", got)
	}
}

func TestCosineDegenerate(t *testing.T) {
	if got := cosine([]float64{1, 2}, []float64{1, 2, 3}); got != 0 {
		t.Fatalf("expected 0 on length mismatch, got %v", got)
	}
	if got := cosine([]float64{0, 0}, []float64{1, 2}); got != 0 {
		t.Fatalf("expected 0 on zero vector, got %v", got)
	}
	if got := cosine(nil, nil); got != 0 {
		t.Fatalf("expected 0 on empty vectors, got %v", got)
	}
}
