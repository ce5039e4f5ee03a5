package formulas

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// HistoricalVaR calculates the empirical Value-at-Risk of a return series
// at the given confidence level (e.g. 0.95). The result is the p-th
// percentile loss: positive when the tail return is a loss.
func HistoricalVaR(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	if len(returns) == 1 {
		return -math.Min(returns[0], 0)
	}

	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	// Index of the (1-confidence) quantile, worst returns first.
	idx := int(math.Floor(float64(len(sorted)) * (1 - confidence)))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}

	return -sorted[idx]
}

// ParametricVaR calculates Value-at-Risk assuming normally distributed
// returns, using the series mean and sample stddev.
func ParametricVaR(returns []float64, confidence float64) float64 {
	if len(returns) <= 1 {
		return 0
	}

	sigma := StdDev(returns)
	if sigma == 0 {
		return 0
	}

	dist := distuv.Normal{Mu: Mean(returns), Sigma: sigma}
	return -dist.Quantile(1 - confidence)
}

// CVaR calculates Conditional Value-at-Risk: the mean loss beyond the VaR
// threshold at the given confidence level. Positive for losses.
func CVaR(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	if len(returns) == 1 {
		return -math.Min(returns[0], 0)
	}

	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	tailCount := int(math.Ceil(float64(len(sorted)) * (1 - confidence)))
	if tailCount == 0 {
		tailCount = 1
	}
	if tailCount > len(sorted) {
		tailCount = len(sorted)
	}

	sum := 0.0
	for _, r := range sorted[:tailCount] {
		sum += r
	}

	return -sum / float64(tailCount)
}
