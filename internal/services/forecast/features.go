package forecast

import "math"

// Growth-rate bounds. Predictions are clamped so a single bad input
// cannot explode the recursive loop.
const (
	growthFloor = -0.95
	growthCeil  = 2.0
)

// SafeGrowth computes (current-prev)/prev, returning 0 when the
// previous value is missing or non-positive.
func SafeGrowth(current, prev float64) float64 {
	if prev <= 0 {
		return 0
	}
	return (current - prev) / prev
}

// RollMean averages the last n values of the series; the full series
// when shorter. Returns 0 for an empty series.
func RollMean(series []float64, n int) float64 {
	if len(series) == 0 || n <= 0 {
		return 0
	}
	if n > len(series) {
		n = len(series)
	}
	var sum float64
	for _, v := range series[len(series)-n:] {
		sum += v
	}
	return sum / float64(n)
}

// SeasonalComponent is a deterministic function of calendar month,
// independent of year.
func SeasonalComponent(month int) float64 {
	return 0.015 * math.Sin(2*math.Pi*float64(month)/12.0)
}

// ClampGrowth bounds a growth rate to [-0.95, 2.0].
func ClampGrowth(v float64) float64 {
	return math.Max(growthFloor, math.Min(growthCeil, v))
}
