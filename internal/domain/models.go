// Package domain contains the core data model for the analytics engine.
// Domain types are pure: no infrastructure dependencies, no hidden state.
package domain

import (
	"errors"
	"sort"
	"time"
)

// DateKeyLayout is the ISO calendar-day key format used across all series.
// Keys in this format sort lexicographically in chronological order.
const DateKeyLayout = "2006-01-02"

// ErrInsufficientData is returned by public operations when the inputs
// cannot support a meaningful result (zero positions, fewer than two
// assets for a correlation matrix, and so on). It marks an explicit
// "unavailable" result, never a crash.
var ErrInsufficientData = errors.New("insufficient data")

// CurrencyClass tags a position as priced in the local (reporting) market
// currency or in the foreign currency. Resolved once by the position
// resolver; never re-derived from symbol suffixes at computation sites.
type CurrencyClass string

const (
	// CurrencyLocal means the instrument trades in the reporting currency.
	CurrencyLocal CurrencyClass = "LOCAL"
	// CurrencyForeign means the instrument trades in the foreign currency
	// and its values must be converted using the FX series.
	CurrencyForeign CurrencyClass = "FOREIGN"
)

// Position is a single holding as handed over by the portfolio CRUD layer.
// It is immutable for the duration of one analytics query.
type Position struct {
	ID            string  `json:"id"`
	Symbol        string  `json:"symbol"`          // ticker; empty for fixed-income positions
	FixedIncomeID string  `json:"fixed_income_id"` // valuation-service id; empty for equities/ETFs
	Quantity      float64 `json:"quantity"`        // >= 0
	UnitCost      float64 `json:"unit_cost"`       // recorded purchase price per unit, >= 0
	PurchaseDate  string  `json:"purchase_date"`   // ISO date key; empty when unknown
	CurrentPrice  float64 `json:"current_price"`   // latest unit price from the quote feed
}

// IsFixedIncome reports whether the position is valued through the
// fixed-income valuation collaborator rather than a price series.
func (p Position) IsFixedIncome() bool {
	return p.Symbol == "" && p.FixedIncomeID != ""
}

// Ref returns the instrument reference used in results: the ticker symbol
// for listed instruments, the fixed-income id otherwise.
func (p Position) Ref() string {
	if p.Symbol != "" {
		return p.Symbol
	}
	return p.FixedIncomeID
}

// PriceSeries maps ISO date keys to adjusted unit prices for one symbol.
// Append-only per query; a missing symbol is represented by an empty map.
type PriceSeries map[string]float64

// FxSeries maps ISO date keys to the foreign/local exchange rate.
type FxSeries map[string]float64

// FixedIncomeValuation is one day's valuation of a fixed-income position
// as produced by the external bond-math service.
type FixedIncomeValuation struct {
	DirtyPrice float64 `json:"dirty_price"`
	CleanPrice float64 `json:"clean_price"`
	Accrued    float64 `json:"accrued"`
	YTM        float64 `json:"ytm"`
	Duration   float64 `json:"duration"`
	Convexity  float64 `json:"convexity"`
}

// FixedIncomeValuationSeries maps ISO date keys to daily valuations for
// one fixed-income position.
type FixedIncomeValuationSeries map[string]FixedIncomeValuation

// ReturnPoint is one observation of the cumulative return series.
type ReturnPoint struct {
	Date                string  `json:"date"`
	CumulativeReturnPct float64 `json:"cumulative_return_pct"`
}

// ReturnSeries is the calibrated cumulative return history, expressed in
// percentage points relative to 0 at the first calendar date.
type ReturnSeries []ReturnPoint

// RiskMetricsSnapshot holds the scalar risk metrics derived once per query.
type RiskMetricsSnapshot struct {
	Sharpe      float64 `json:"sharpe"`
	Sortino     float64 `json:"sortino"`
	Volatility  float64 `json:"volatility"`
	MaxDrawdown float64 `json:"max_drawdown"`
	VaR95       float64 `json:"var_95"`
	VaR99       float64 `json:"var_99"`
}

// CorrelationMatrix is a square, symmetric Pearson correlation matrix.
// Assets holds the row/column order; Values[i][j] == Values[j][i] and
// Values[i][i] == 1 by construction.
type CorrelationMatrix struct {
	Assets []string    `json:"assets"`
	Values [][]float64 `json:"values"`
}

// At returns the correlation between assets i and j.
func (m CorrelationMatrix) At(i, j int) float64 {
	return m.Values[i][j]
}

// ScenarioImpact is a named historical stress scenario applied as a fixed
// percentage impact on the current portfolio value.
type ScenarioImpact struct {
	Name          string  `json:"scenario_name"`
	Description   string  `json:"description"`
	ImpactPct     float64 `json:"impact_pct"`
	AdjustedValue float64 `json:"adjusted_value,omitempty"`
}

// StressResult aggregates the Monte Carlo stress simulation outcome.
type StressResult struct {
	VaR95          float64 `json:"var_95"`
	VaR99          float64 `json:"var_99"`
	CVaR95         float64 `json:"cvar_95"`
	ExpectedReturn float64 `json:"expected_return"`
	WorstCase      float64 `json:"worst_case"`
	BestCase       float64 `json:"best_case"`
	NumSimulations int     `json:"num_simulations"`
}

// RebalanceAction is the advised direction for one instrument.
type RebalanceAction string

const (
	ActionBuy  RebalanceAction = "BUY"
	ActionSell RebalanceAction = "SELL"
	ActionHold RebalanceAction = "HOLD"
)

// RebalancingRecommendation is one advised adjustment toward the target
// allocation, with a templated rationale for the dashboard.
type RebalancingRecommendation struct {
	ID            string          `json:"id"`
	InstrumentRef string          `json:"instrument_ref"`
	CurrentWeight float64         `json:"current_weight"`
	TargetWeight  float64         `json:"target_weight"`
	Action        RebalanceAction `json:"action"`
	AmountPct     float64         `json:"amount_pct"`
	Rationale     string          `json:"rationale"`
}

// RebalanceConstraints carries the policy inputs the advisor references
// when explaining a recommendation.
type RebalanceConstraints struct {
	RiskProfile   string  `json:"risk_profile"`
	MaxVolatility float64 `json:"max_volatility"`
	TargetReturn  float64 `json:"target_return"`
}

// SortedDates returns the date keys of a series in ascending order.
// ISO keys sort lexicographically, so plain string sort suffices.
func SortedDates[V any](series map[string]V) []string {
	dates := make([]string, 0, len(series))
	for d := range series {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// IsBusinessDay reports whether t falls on Mon-Fri. There is no holiday
// calendar; gaps on exchange holidays are handled by carry-forward.
func IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}
