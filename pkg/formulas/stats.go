// Package formulas provides pure statistical and risk functions used by
// the analytics engine. Every function tolerates series of length 0 or 1
// by returning a neutral value instead of NaN/Inf.
package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear is the annualization base for daily return series.
const TradingDaysPerYear = 252

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation (ddof=1).
// Returns 0 for series shorter than 2 observations.
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// Variance calculates the sample variance of a slice of float64 values
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.Variance(data, nil)
}

// AnnualizedVolatility calculates annualized volatility from daily returns.
// Formula: sample stddev of daily returns x sqrt(252 trading days).
func AnnualizedVolatility(dailyReturns []float64) float64 {
	return StdDev(dailyReturns) * math.Sqrt(TradingDaysPerYear)
}

// Returns converts a price-like series to periodic percentage returns.
// Returns[i] = (Price[i] - Price[i-1]) / Price[i-1]. Zero previous prices
// produce a 0 return rather than a division blow-up.
func Returns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] != 0 {
			returns[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
		}
	}
	return returns
}

// Correlation calculates the Pearson correlation coefficient between two
// equally sized datasets. Mismatched or empty inputs yield 0.
func Correlation(x, y []float64) float64 {
	if len(x) == 0 || len(y) == 0 || len(x) != len(y) {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		// Flat series have zero variance; correlation is undefined there.
		return 0
	}
	return r
}

// Covariance calculates the covariance between two equally sized datasets.
func Covariance(x, y []float64) float64 {
	if len(x) == 0 || len(y) == 0 || len(x) != len(y) {
		return 0
	}
	return stat.Covariance(x, y, nil)
}

// CumulativeGrowth compounds periodic returns into a price-like index
// starting at base (e.g. 100): index[0]=base, index[t]=index[t-1]*(1+r_t).
func CumulativeGrowth(returns []float64, base float64) []float64 {
	index := make([]float64, len(returns)+1)
	index[0] = base
	for i, r := range returns {
		index[i+1] = index[i] * (1 + r)
	}
	return index
}
