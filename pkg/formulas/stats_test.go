package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStdDev(t *testing.T) {
	tests := []struct {
		name string
		data []float64
		want float64
	}{
		{"empty series", []float64{}, 0},
		{"single value", []float64{0.05}, 0},
		{"constant series", []float64{0.01, 0.01, 0.01}, 0},
		{"known sample stddev", []float64{2, 4, 4, 4, 5, 5, 7, 9}, 2.138089935},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, StdDev(tt.data), 1e-6)
		})
	}
}

func TestReturns(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		want   []float64
	}{
		{"empty", []float64{}, []float64{}},
		{"single price", []float64{100}, []float64{}},
		{"rising prices", []float64{100, 110, 121}, []float64{0.10, 0.10}},
		{"zero previous price guarded", []float64{0, 100}, []float64{0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Returns(tt.prices)
			assert.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-9)
			}
		})
	}
}

func TestAnnualizedVolatility(t *testing.T) {
	daily := []float64{0.01, -0.02, 0.015, -0.005, 0.002}
	want := StdDev(daily) * math.Sqrt(252)
	assert.InDelta(t, want, AnnualizedVolatility(daily), 1e-12)
	assert.GreaterOrEqual(t, AnnualizedVolatility(daily), 0.0)
	assert.Zero(t, AnnualizedVolatility(nil))
}

func TestCorrelation(t *testing.T) {
	x := []float64{0.01, 0.02, 0.03, 0.04}

	t.Run("perfect positive", func(t *testing.T) {
		assert.InDelta(t, 1.0, Correlation(x, x), 1e-9)
	})

	t.Run("perfect negative", func(t *testing.T) {
		y := []float64{-0.01, -0.02, -0.03, -0.04}
		assert.InDelta(t, -1.0, Correlation(x, y), 1e-9)
	})

	t.Run("mismatched lengths", func(t *testing.T) {
		assert.Zero(t, Correlation(x, []float64{0.01}))
	})

	t.Run("flat series is zero not NaN", func(t *testing.T) {
		flat := []float64{0.01, 0.01, 0.01, 0.01}
		assert.Zero(t, Correlation(x, flat))
	})
}

func TestCumulativeGrowth(t *testing.T) {
	index := CumulativeGrowth([]float64{0.10, -0.50}, 100)
	assert.Len(t, index, 3)
	assert.InDelta(t, 100.0, index[0], 1e-9)
	assert.InDelta(t, 110.0, index[1], 1e-9)
	assert.InDelta(t, 55.0, index[2], 1e-9)
}
