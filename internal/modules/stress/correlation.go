// Package stress computes correlation structure and scenario or Monte
// Carlo stress simulations over asset return series.
package stress

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/wealthscope/wealthscope/internal/domain"
)

// ComputeCorrelationMatrix builds the pairwise Pearson correlation matrix
// across the assets' return vectors, aligned on the shortest common
// length. All series end at the current date, so alignment takes the
// trailing elements of each vector. Fewer than two assets or fewer than
// two aligned periods is insufficient data. The diagonal is forced to
// exactly 1 and the matrix is symmetric by construction.
func ComputeCorrelationMatrix(returnsByAsset map[string][]float64) (domain.CorrelationMatrix, error) {
	if len(returnsByAsset) < 2 {
		return domain.CorrelationMatrix{}, domain.ErrInsufficientData
	}

	assets := make([]string, 0, len(returnsByAsset))
	for asset := range returnsByAsset {
		assets = append(assets, asset)
	}
	sort.Strings(assets)

	periods := -1
	for _, asset := range assets {
		if n := len(returnsByAsset[asset]); periods < 0 || n < periods {
			periods = n
		}
	}
	if periods < 2 {
		return domain.CorrelationMatrix{}, domain.ErrInsufficientData
	}

	n := len(assets)
	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
		values[i][i] = 1
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			x := alignTail(returnsByAsset[assets[i]], periods)
			y := alignTail(returnsByAsset[assets[j]], periods)
			c := stat.Correlation(x, y, nil)
			if c != c { // NaN from a flat series
				c = 0
			}
			values[i][j] = c
			values[j][i] = c
		}
	}

	return domain.CorrelationMatrix{Assets: assets, Values: values}, nil
}

// alignTail keeps the most recent periods observations of a series.
func alignTail(v []float64, periods int) []float64 {
	return v[len(v)-periods:]
}
