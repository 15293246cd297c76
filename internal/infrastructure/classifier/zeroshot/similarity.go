package zeroshot

import (
	"fmt"
	"math"
)

// cosine returns the cosine similarity of two equal-length vectors. A zero
// vector has similarity 0 with everything.
func cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("dimension mismatch: %d vs %d", len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	s := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if math.IsNaN(s) {
		return 0, fmt.Errorf("similarity is not a number")
	}
	return s, nil
}

// rescale maps a cosine in [-1, 1] onto [0, 1], clamping rounding overshoot.
func rescale(s float64) float64 {
	v := (s + 1) / 2
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
