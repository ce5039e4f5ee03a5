package stress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wealthscope/wealthscope/internal/domain"
)

func TestComputeCorrelationMatrix(t *testing.T) {
	returns := map[string][]float64{
		"AAPL":     {0.01, -0.02, 0.015, 0.005, -0.01},
		"PETR4.SA": {0.02, -0.01, 0.01, 0.0, -0.005},
		"VALE3.SA": {-0.01, 0.02, -0.015, -0.005, 0.01},
	}

	matrix, err := ComputeCorrelationMatrix(returns)

	require.NoError(t, err)
	require.Len(t, matrix.Assets, 3)
	// Assets are in deterministic sorted order.
	assert.Equal(t, []string{"AAPL", "PETR4.SA", "VALE3.SA"}, matrix.Assets)

	for i := range matrix.Assets {
		assert.Equal(t, 1.0, matrix.At(i, i))
		for j := range matrix.Assets {
			assert.Equal(t, matrix.At(i, j), matrix.At(j, i))
			assert.GreaterOrEqual(t, matrix.At(i, j), -1.0)
			assert.LessOrEqual(t, matrix.At(i, j), 1.0)
		}
	}
}

func TestComputeCorrelationMatrix_PerfectlyCorrelated(t *testing.T) {
	returns := map[string][]float64{
		"A": {0.01, 0.02, 0.03, 0.04},
		"B": {0.02, 0.04, 0.06, 0.08},
	}

	matrix, err := ComputeCorrelationMatrix(returns)

	require.NoError(t, err)
	assert.InDelta(t, 1.0, matrix.At(0, 1), 1e-9)
}

func TestComputeCorrelationMatrix_FlatSeriesYieldsZero(t *testing.T) {
	returns := map[string][]float64{
		"FLAT": {0.01, 0.01, 0.01},
		"MOVE": {0.01, -0.02, 0.03},
	}

	matrix, err := ComputeCorrelationMatrix(returns)

	require.NoError(t, err)
	assert.Zero(t, matrix.At(0, 1))
	assert.Equal(t, 1.0, matrix.At(0, 0))
}

func TestComputeCorrelationMatrix_InsufficientData(t *testing.T) {
	tests := []struct {
		name    string
		returns map[string][]float64
	}{
		{"single asset", map[string][]float64{"A": {0.01, 0.02}}},
		{"empty", map[string][]float64{}},
		{"single aligned period", map[string][]float64{
			"A": {0.01, 0.02},
			"B": {0.01},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeCorrelationMatrix(tt.returns)
			assert.ErrorIs(t, err, domain.ErrInsufficientData)
		})
	}
}

func TestComputeCorrelationMatrix_AlignsOnTrailingOverlap(t *testing.T) {
	// Series end at the current date, so the shorter series overlaps the
	// TAIL of the longer one. A moves opposite B early on but in lockstep
	// over the two most recent periods; only the tail counts.
	returns := map[string][]float64{
		"A": {0.05, -0.05, 0.01, 0.02},
		"B": {0.01, 0.02},
	}

	matrix, err := ComputeCorrelationMatrix(returns)

	require.NoError(t, err)
	require.Len(t, matrix.Assets, 2)
	assert.InDelta(t, 1.0, matrix.At(0, 1), 1e-9)
}

func TestComputeCorrelationMatrix_TrailingOverlapInverse(t *testing.T) {
	returns := map[string][]float64{
		"A": {0.01, 0.02, 0.01, 0.02, 0.03},
		"B": {-0.02, -0.03},
	}

	matrix, err := ComputeCorrelationMatrix(returns)

	require.NoError(t, err)
	assert.InDelta(t, -1.0, matrix.At(0, 1), 1e-9)
}
