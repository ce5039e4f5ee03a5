package formulas

// MaxDrawdown calculates the maximum peak-to-trough decline of a periodic
// return series, as a positive fraction. The series is first compounded
// into a price-like index starting at 100 so drawdowns are measured on
// values, not on raw returns. Always >= 0.
func MaxDrawdown(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	index := CumulativeGrowth(returns, 100)

	peak := index[0]
	maxDD := 0.0
	for _, v := range index {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			dd := (peak - v) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// MaxDrawdownFromValues calculates the maximum drawdown directly from a
// value series (e.g. reconstructed market values).
func MaxDrawdownFromValues(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	peak := values[0]
	maxDD := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			dd := (peak - v) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}
