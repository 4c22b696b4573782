package moe

import "fmt"

// AverageLogits returns the element-wise mean of the given vectors as a
// new slice. A single vector is returned as a copy.
//
// All vectors are produced by the dispatcher itself, so an empty set or
// vectors of different lengths indicate a bug and panic.
func AverageLogits(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		panic("moe: AverageLogits called with no vectors")
	}

	n := len(vectors[0])
	avg := make([]float32, n)
	for i, v := range vectors {
		if len(v) != n {
			panic(fmt.Sprintf("moe: AverageLogits vector %d has length %d, want %d", i, len(v), n))
		}
		for j, x := range v {
			avg[j] += x
		}
	}

	if len(vectors) == 1 {
		return avg
	}

	count := float32(len(vectors))
	for j := range avg {
		avg[j] /= count
	}

	return avg
}

// ArgMax returns the index of the largest value, the lowest index on ties.
// Panics on an empty vector.
func ArgMax(v []float32) int {
	if len(v) == 0 {
		panic("moe: ArgMax of empty vector")
	}

	maxIdx := 0
	maxVal := v[0]
	for i, x := range v[1:] {
		if x > maxVal {
			maxVal = x
			maxIdx = i + 1
		}
	}
	return maxIdx
}
