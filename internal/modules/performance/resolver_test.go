package performance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wealthscope/wealthscope/internal/domain"
)

func TestResolver_EffectiveStart(t *testing.T) {
	cal := Calendar{"2024-03-04", "2024-03-05", "2024-03-06"}
	r := NewResolver(".SA")

	tests := []struct {
		name      string
		positions []domain.Position
		wantStart string
	}{
		{
			name:      "purchase date on calendar",
			positions: []domain.Position{{ID: "1", Symbol: "PETR4.SA", Quantity: 10, UnitCost: 30, PurchaseDate: "2024-03-05"}},
			wantStart: "2024-03-05",
		},
		{
			name:      "purchase before window clamps to first date",
			positions: []domain.Position{{ID: "1", Symbol: "PETR4.SA", Quantity: 10, UnitCost: 30, PurchaseDate: "2023-01-15"}},
			wantStart: "2024-03-04",
		},
		{
			name: "missing purchase date borrows earliest known",
			positions: []domain.Position{
				{ID: "1", Symbol: "PETR4.SA", Quantity: 10, UnitCost: 30},
				{ID: "2", Symbol: "VALE3.SA", Quantity: 5, UnitCost: 60, PurchaseDate: "2024-03-05"},
			},
			wantStart: "2024-03-05",
		},
		{
			name:      "no purchase dates anywhere falls back to calendar start",
			positions: []domain.Position{{ID: "1", Symbol: "PETR4.SA", Quantity: 10, UnitCost: 30}},
			wantStart: "2024-03-04",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved := r.Resolve(tt.positions, cal, nil)
			require.NotEmpty(t, resolved)
			assert.Equal(t, tt.wantStart, resolved[0].EffectiveStart)
		})
	}
}

func TestResolver_PurchaseOnGapSnapsForward(t *testing.T) {
	cal := Calendar{"2024-03-04", "2024-03-06"}
	r := NewResolver(".SA")

	resolved := r.Resolve([]domain.Position{
		{ID: "1", Symbol: "PETR4.SA", Quantity: 10, UnitCost: 30, PurchaseDate: "2024-03-05"},
	}, cal, nil)

	require.Len(t, resolved, 1)
	assert.Equal(t, "2024-03-06", resolved[0].EffectiveStart)
}

func TestResolver_DropsPositionsBeyondWindow(t *testing.T) {
	cal := Calendar{"2024-03-04", "2024-03-05"}
	r := NewResolver(".SA")

	resolved := r.Resolve([]domain.Position{
		{ID: "1", Symbol: "PETR4.SA", Quantity: 10, UnitCost: 30, PurchaseDate: "2024-06-01"},
	}, cal, nil)

	assert.Empty(t, resolved)
}

func TestResolver_CurrencyClass(t *testing.T) {
	cal := Calendar{"2024-03-04"}
	r := NewResolver(".SA")

	resolved := r.Resolve([]domain.Position{
		{ID: "1", Symbol: "PETR4.SA", Quantity: 1, UnitCost: 30, PurchaseDate: "2024-03-04"},
		{ID: "2", Symbol: "AAPL", Quantity: 1, UnitCost: 180, PurchaseDate: "2024-03-04"},
		{ID: "3", FixedIncomeID: "cdb-42", Quantity: 1, UnitCost: 1000, PurchaseDate: "2024-03-04"},
	}, cal, nil)

	require.Len(t, resolved, 3)
	assert.Equal(t, domain.CurrencyLocal, resolved[0].Class)
	assert.Equal(t, domain.CurrencyForeign, resolved[1].Class)
	assert.Equal(t, domain.CurrencyLocal, resolved[2].Class)
}

func TestResolver_RescaleFactor(t *testing.T) {
	cal := Calendar{"2024-03-04", "2024-03-05", "2024-03-06"}
	r := NewResolver(".SA")

	prices := map[string]domain.PriceSeries{
		"PETR4.SA": {"2024-03-05": 40.0, "2024-03-06": 41.0},
	}

	resolved := r.Resolve([]domain.Position{
		// Reference price is the first available on or after the start.
		{ID: "1", Symbol: "PETR4.SA", Quantity: 10, UnitCost: 20, PurchaseDate: "2024-03-04"},
		// No series at all leaves the scale at 0, meaning unscaled.
		{ID: "2", Symbol: "VALE3.SA", Quantity: 10, UnitCost: 60, PurchaseDate: "2024-03-04"},
	}, cal, prices)

	require.Len(t, resolved, 2)
	assert.InDelta(t, 0.5, resolved[0].Scale, 1e-12)
	assert.Zero(t, resolved[1].Scale)
}
