package formulas

import "math"

// SharpeRatio calculates the Sharpe ratio of a periodic return series
// against a per-period risk-free rate. Returns 0 when the series is too
// short or has zero volatility (guarded, never NaN/Inf).
func SharpeRatio(returns []float64, riskFreeRate float64) float64 {
	if len(returns) <= 1 {
		return 0
	}

	vol := StdDev(returns)
	if vol == 0 {
		return 0
	}

	return (Mean(returns) - riskFreeRate) / vol
}

// SortinoRatio calculates the Sortino ratio: excess return over the
// downside deviation. Only returns below the target (the risk-free rate)
// contribute to the denominator. Returns 0 when there is no downside.
func SortinoRatio(returns []float64, riskFreeRate float64) float64 {
	if len(returns) <= 1 {
		return 0
	}

	sumSq := 0.0
	for _, r := range returns {
		if r < riskFreeRate {
			d := r - riskFreeRate
			sumSq += d * d
		}
	}

	downside := math.Sqrt(sumSq / float64(len(returns)))
	if downside == 0 {
		return 0
	}

	return (Mean(returns) - riskFreeRate) / downside
}
