package performance

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wealthscope/wealthscope/internal/domain"
)

type countingPrices struct {
	mu         sync.Mutex
	inFlight   int
	maxSeen    int
	series     map[string]domain.PriceSeries
	failSymbol string
}

func (c *countingPrices) GetPriceHistory(symbol, period, interval string) (domain.PriceSeries, error) {
	c.mu.Lock()
	c.inFlight++
	if c.inFlight > c.maxSeen {
		c.maxSeen = c.inFlight
	}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight--
		c.mu.Unlock()
	}()

	if symbol == c.failSymbol {
		return nil, errors.New("upstream down")
	}
	return c.series[symbol], nil
}

func TestCoordinatorFetch_DegradesFailedSymbols(t *testing.T) {
	prices := &countingPrices{
		series:     map[string]domain.PriceSeries{"OK.SA": {"2024-03-04": 10.0}},
		failSymbol: "BAD.SA",
	}
	fx := &fakeFx{history: domain.FxSeries{"2024-03-04": 4.95}}

	coordinator := NewCoordinator(prices, fx, &fakeFixedIncome{}, 2, testLogger())

	positions := []domain.Position{
		{ID: "1", Symbol: "OK.SA", Quantity: 1, UnitCost: 10},
		{ID: "2", Symbol: "BAD.SA", Quantity: 1, UnitCost: 20},
	}

	result, err := coordinator.Fetch("portfolio-1", positions, "1y", "1d", "2024-03-04", "2024-03-04")

	require.NoError(t, err)
	assert.Equal(t, []string{"BAD.SA"}, result.FailedRefs)
	// The failed symbol still yields an empty series, never a missing key.
	series, ok := result.Prices["BAD.SA"]
	require.True(t, ok)
	assert.Empty(t, series)
	assert.Len(t, result.Prices["OK.SA"], 1)
	assert.NotEmpty(t, result.GenerationID)
}

func TestCoordinatorFetch_BoundedConcurrency(t *testing.T) {
	prices := &countingPrices{series: map[string]domain.PriceSeries{}}
	fx := &fakeFx{history: domain.FxSeries{"2024-03-04": 4.95}}

	coordinator := NewCoordinator(prices, fx, &fakeFixedIncome{}, 2, testLogger())

	positions := make([]domain.Position, 12)
	for i := range positions {
		positions[i] = domain.Position{ID: string(rune('a' + i)), Symbol: "SYM.SA", Quantity: 1, UnitCost: 10}
	}

	_, err := coordinator.Fetch("portfolio-1", positions, "1y", "1d", "2024-03-04", "2024-03-04")

	require.NoError(t, err)
	assert.LessOrEqual(t, prices.maxSeen, 2)
}

func TestCoordinator_GenerationSupersession(t *testing.T) {
	prices := &countingPrices{series: map[string]domain.PriceSeries{}}
	fx := &fakeFx{history: domain.FxSeries{"2024-03-04": 4.95}}

	coordinator := NewCoordinator(prices, fx, &fakeFixedIncome{}, 2, testLogger())

	first, err := coordinator.Fetch("portfolio-1", nil, "1y", "1d", "2024-03-04", "2024-03-04")
	require.NoError(t, err)
	assert.True(t, coordinator.Current("portfolio-1", first.GenerationID))

	second, err := coordinator.Fetch("portfolio-1", nil, "1y", "1d", "2024-03-04", "2024-03-04")
	require.NoError(t, err)

	// The first batch is stale once a newer one is issued for the same key.
	assert.False(t, coordinator.Current("portfolio-1", first.GenerationID))
	assert.True(t, coordinator.Current("portfolio-1", second.GenerationID))
}

func TestCoordinator_GenerationsIndependentPerKey(t *testing.T) {
	prices := &countingPrices{series: map[string]domain.PriceSeries{}}
	fx := &fakeFx{history: domain.FxSeries{"2024-03-04": 4.95}}

	coordinator := NewCoordinator(prices, fx, &fakeFixedIncome{}, 2, testLogger())

	alice, err := coordinator.Fetch("portfolio-alice", nil, "1y", "1d", "2024-03-04", "2024-03-04")
	require.NoError(t, err)

	bob, err := coordinator.Fetch("portfolio-bob", nil, "1y", "1d", "2024-03-04", "2024-03-04")
	require.NoError(t, err)

	// A fetch for one portfolio must not invalidate another portfolio's
	// in-flight batch.
	assert.True(t, coordinator.Current("portfolio-alice", alice.GenerationID))
	assert.True(t, coordinator.Current("portfolio-bob", bob.GenerationID))
}

func TestCoordinatorFetch_FixedIncomeRouted(t *testing.T) {
	fixed := &fakeFixedIncome{series: map[string]domain.FixedIncomeValuationSeries{
		"cdb-42": {"2024-03-04": {DirtyPrice: 1000.0}},
	}}
	fx := &fakeFx{history: domain.FxSeries{"2024-03-04": 4.95}}

	coordinator := NewCoordinator(&countingPrices{}, fx, fixed, 2, testLogger())

	result, err := coordinator.Fetch("portfolio-1", []domain.Position{
		{ID: "1", FixedIncomeID: "cdb-42", Quantity: 1, UnitCost: 1000},
	}, "1y", "1d", "2024-03-04", "2024-03-04")

	require.NoError(t, err)
	assert.Empty(t, result.FailedRefs)
	assert.InDelta(t, 1000.0, result.FixedIncome["cdb-42"]["2024-03-04"].DirtyPrice, 1e-9)
}
