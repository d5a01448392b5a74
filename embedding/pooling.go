package embedding

import (
	"fmt"
	"math"
)

// maskFloor keeps mean pooling finite when the mask is all zeros.
const maskFloor = 1e-9

// MeanPool averages token vectors weighted by the attention mask.
//
// hidden holds seqLen*dim values in row-major [seq][dim] order, as produced by
// a [1, seq, dim] output tensor. The mask sum is floored at 1e-9, so an all
// zero mask yields a zero vector.
func MeanPool(hidden []float32, mask []int64, dim int) ([]float32, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("invalid dimension %d", dim)
	}
	seqLen := len(mask)
	if len(hidden) != seqLen*dim {
		return nil, fmt.Errorf("hidden states have %d values, want %d (seq %d x dim %d)", len(hidden), seqLen*dim, seqLen, dim)
	}

	sums := make([]float64, dim)
	var count float64
	for t := 0; t < seqLen; t++ {
		w := float64(mask[t])
		if w == 0 {
			continue
		}
		count += w
		row := hidden[t*dim : (t+1)*dim]
		for i, v := range row {
			sums[i] += float64(v) * w
		}
	}
	count = math.Max(count, maskFloor)

	pooled := make([]float32, dim)
	for i, s := range sums {
		pooled[i] = float32(s / count)
	}
	return pooled, nil
}

// Norm returns the Euclidean length of v.
func Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// NormalizeL2 returns a unit-length copy of v.
// A zero vector is returned unchanged (as a copy).
func NormalizeL2(v []float32) []float32 {
	result := make([]float32, len(v))
	norm := Norm(v)
	if norm == 0 {
		copy(result, v)
		return result
	}
	for i, x := range v {
		result[i] = float32(float64(x) / norm)
	}
	return result
}
