package ciplot

import (
	"math"
	"sort"
)

// Resolution is the smallest positive distance between two distinct
// values in xs, or 1 if there are fewer than two of them. NaNs are ignored.
func Resolution(xs []float64) float64 {
	distinct := NewFloatSet()
	for _, x := range xs {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			distinct.Add(x)
		}
	}
	vals := distinct.Elements()
	if len(vals) < 2 {
		return 1
	}
	res := math.Inf(1)
	for i := 1; i < len(vals); i++ {
		if d := vals[i] - vals[i-1]; d < res {
			res = d
		}
	}
	return res
}

// order returns the permutation that sorts keys lexicographically.
func order(keys [][]float64) []int {
	idx := make([]int, len(keys))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := keys[idx[a]], keys[idx[b]]
		for i := range ka {
			if ka[i] != kb[i] {
				return ka[i] < kb[i]
			}
		}
		return false
	})
	return idx
}
