package concentration

import (
	"math"
	"sort"
)

// Shares normalizes a non-negative count vector into shares.
// When the total is zero or negative the shares are all zero and the
// returned total is 0; callers must treat metrics as undefined then.
func Shares(values []float64) ([]float64, float64) {
	var total float64
	for _, v := range values {
		total += v
	}
	shares := make([]float64, len(values))
	if total <= 0 {
		return shares, 0
	}
	for i, v := range values {
		shares[i] = v / total
	}
	return shares, total
}

// HHI is the Herfindahl-Hirschman index: sum of squared shares.
func HHI(shares []float64) float64 {
	var sum float64
	for _, s := range shares {
		sum += s * s
	}
	return sum
}

// Entropy is Shannon entropy over the share distribution.
// Zero shares contribute nothing (0*ln(0) := 0).
func Entropy(shares []float64) float64 {
	var sum float64
	for _, s := range shares {
		if s > 0 {
			sum -= s * math.Log(s)
		}
	}
	return sum
}

// NormalizedEntropy divides entropy by its maximum for nActive
// categories. A single active category has no dispersion, so the
// result is defined as 0 rather than dividing by ln(1).
func NormalizedEntropy(entropy float64, nActive int) float64 {
	if nActive <= 1 {
		return 0
	}
	return entropy / math.Log(float64(nActive))
}

// Top1 returns the largest share, 0 for an empty vector.
func Top1(shares []float64) float64 {
	var max float64
	for _, s := range shares {
		if s > max {
			max = s
		}
	}
	return max
}

// Top1Index returns the index of the largest share, -1 when empty.
func Top1Index(values []float64) int {
	idx := -1
	for i, v := range values {
		if idx < 0 || v > values[idx] {
			idx = i
		}
	}
	return idx
}

// TopK sums the k largest shares. When fewer than k shares exist the
// sum runs over all of them.
func TopK(shares []float64, k int) float64 {
	if k <= 0 || len(shares) == 0 {
		return 0
	}
	sorted := make([]float64, len(shares))
	copy(sorted, shares)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	if k > len(sorted) {
		k = len(sorted)
	}
	var sum float64
	for _, s := range sorted[:k] {
		sum += s
	}
	return sum
}

// ActiveCount counts strictly positive entries.
func ActiveCount(values []float64) int {
	n := 0
	for _, v := range values {
		if v > 0 {
			n++
		}
	}
	return n
}
