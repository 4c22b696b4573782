package moe

import (
	"fmt"
	"sort"
)

// TopK returns the k highest-scoring class indices and their scores,
// sorted by descending score. Equal scores keep ascending index order.
//
// logits is not modified. k must satisfy 1 <= k <= len(logits); anything
// else is a programming error and panics.
func TopK(logits []float32, k int) (indices []int, scores []float32) {
	if k < 1 || k > len(logits) {
		panic(fmt.Sprintf("moe: TopK k=%d out of range [1, %d]", k, len(logits)))
	}

	order := make([]int, len(logits))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return logits[order[a]] > logits[order[b]]
	})

	indices = make([]int, k)
	scores = make([]float32, k)
	for i := 0; i < k; i++ {
		indices[i] = order[i]
		scores[i] = logits[order[i]]
	}

	return indices, scores
}
