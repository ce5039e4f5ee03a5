package performance

import (
	"github.com/rs/zerolog"

	"github.com/wealthscope/wealthscope/internal/domain"
)

// DailyValuation is the reconstructed portfolio state on one calendar date.
// MarketValue and CapitalDeployed are in the reporting currency; NetFlow
// uses point-in-time FX and feeds the Modified Dietz calibration.
type DailyValuation struct {
	Date            string
	MarketValue     float64
	CapitalDeployed float64
	NetFlow         float64
}

// priceResolver is one step of the ordered unit-price fallback pipeline.
// It returns the resolved price and whether it applied.
type priceResolver func(rp ResolvedPosition, date string, dateIdx int) (float64, bool)

// Reconstructor computes the daily valuation series from resolved
// positions and fetched price/FX/fixed-income data.
type Reconstructor struct {
	lookbackDays int
	fxAnchor     float64
	log          zerolog.Logger
}

// NewReconstructor creates a reconstructor. fxAnchor is the live FX rate
// at query time used to convert all foreign capital to the reporting
// currency with a single fixed rate. lookbackDays bounds the backward
// price search; non-positive values disable the lookback.
func NewReconstructor(lookbackDays int, fxAnchor float64, log zerolog.Logger) *Reconstructor {
	if fxAnchor <= 0 {
		fxAnchor = 1
	}
	return &Reconstructor{
		lookbackDays: lookbackDays,
		fxAnchor:     fxAnchor,
		log:          log.With().Str("component", "valuation_reconstructor").Logger(),
	}
}

// Reconstruct computes one DailyValuation per calendar date. FX gaps are
// carried forward from the last known rate. Leading dates with zero
// deployed capital are dropped so the series starts at first deployment.
func (r *Reconstructor) Reconstruct(cal Calendar, resolved []ResolvedPosition, fetched *FetchResult) []DailyValuation {
	if len(cal) == 0 || len(resolved) == 0 {
		return nil
	}

	series := make([]DailyValuation, 0, len(cal))
	lastFx := 0.0
	capitalDeployed := 0.0
	netFlow := 0.0

	for i, date := range cal {
		fx := lastFx
		if rate, ok := fetched.FxHistory[date]; ok && rate > 0 {
			fx = rate
		}
		if fx <= 0 {
			fx = r.fxAnchor
		}
		lastFx = fx

		marketValue := 0.0
		for _, rp := range resolved {
			if date < rp.EffectiveStart || rp.Quantity <= 0 {
				continue
			}

			unit, ok := r.resolveUnitValue(rp, fetched, cal, date, i)
			if !ok {
				continue
			}
			if rp.Class == domain.CurrencyForeign {
				unit *= fx
			}
			marketValue += rp.Quantity * unit

			if date == rp.EffectiveStart {
				cost := rp.Quantity * rp.UnitCost
				if rp.Class == domain.CurrencyForeign {
					capitalDeployed += cost * r.fxAnchor
					netFlow += cost * fx
				} else {
					capitalDeployed += cost
					netFlow += cost
				}
			}
		}

		series = append(series, DailyValuation{
			Date:            date,
			MarketValue:     marketValue,
			CapitalDeployed: capitalDeployed,
			NetFlow:         netFlow,
		})
	}

	return trimLeadingZeroCapital(series)
}

// resolveUnitValue runs the ordered fallback pipeline for one position on
// one date: scaled series price, then bounded backward lookback, then the
// purchase price anchor on the effective-start date only.
func (r *Reconstructor) resolveUnitValue(rp ResolvedPosition, fetched *FetchResult, cal Calendar, date string, dateIdx int) (float64, bool) {
	var pipeline []priceResolver
	if rp.IsFixedIncome() {
		pipeline = []priceResolver{
			r.fixedIncomeResolver(fetched.FixedIncome[rp.Ref()]),
			r.fixedIncomeLookbackResolver(fetched.FixedIncome[rp.Ref()], cal),
			purchaseAnchorResolver(),
		}
	} else {
		pipeline = []priceResolver{
			scaledPriceResolver(fetched.Prices[rp.Ref()]),
			r.lookbackResolver(fetched.Prices[rp.Ref()], cal),
			purchaseAnchorResolver(),
		}
	}

	for _, resolve := range pipeline {
		if unit, ok := resolve(rp, date, dateIdx); ok {
			return unit, true
		}
	}
	return 0, false
}

func scaledPriceResolver(series domain.PriceSeries) priceResolver {
	return func(rp ResolvedPosition, date string, _ int) (float64, bool) {
		price, ok := series[date]
		if !ok || price <= 0 {
			return 0, false
		}
		if rp.Scale > 0 {
			return price * rp.Scale, true
		}
		return price, true
	}
}

func (r *Reconstructor) lookbackResolver(series domain.PriceSeries, cal Calendar) priceResolver {
	return func(rp ResolvedPosition, _ string, dateIdx int) (float64, bool) {
		if r.lookbackDays <= 0 || len(series) == 0 {
			return 0, false
		}
		for step := 1; step <= r.lookbackDays && dateIdx-step >= 0; step++ {
			prior := cal[dateIdx-step]
			if prior < rp.EffectiveStart {
				break
			}
			if price, ok := series[prior]; ok && price > 0 {
				if rp.Scale > 0 {
					return price * rp.Scale, true
				}
				return price, true
			}
		}
		return 0, false
	}
}

func (r *Reconstructor) fixedIncomeResolver(series domain.FixedIncomeValuationSeries) priceResolver {
	return func(_ ResolvedPosition, date string, _ int) (float64, bool) {
		val, ok := series[date]
		if !ok || val.DirtyPrice <= 0 {
			return 0, false
		}
		return val.DirtyPrice, true
	}
}

func (r *Reconstructor) fixedIncomeLookbackResolver(series domain.FixedIncomeValuationSeries, cal Calendar) priceResolver {
	return func(rp ResolvedPosition, _ string, dateIdx int) (float64, bool) {
		if len(series) == 0 {
			return 0, false
		}
		// Dirty prices carry forward without a lookback bound; the bond
		// valuation service reprices sparsely between coupon events.
		for j := dateIdx - 1; j >= 0; j-- {
			prior := cal[j]
			if prior < rp.EffectiveStart {
				break
			}
			if val, ok := series[prior]; ok && val.DirtyPrice > 0 {
				return val.DirtyPrice, true
			}
		}
		return 0, false
	}
}

// purchaseAnchorResolver prices a position at its recorded cost when no
// market data exists yet. It applies on every date so a symbol whose
// entire history failed to fetch still contributes its cost basis.
func purchaseAnchorResolver() priceResolver {
	return func(rp ResolvedPosition, _ string, _ int) (float64, bool) {
		if rp.UnitCost <= 0 {
			return 0, false
		}
		return rp.UnitCost, true
	}
}

func trimLeadingZeroCapital(series []DailyValuation) []DailyValuation {
	for i, dv := range series {
		if dv.CapitalDeployed > 0 {
			return series[i:]
		}
	}
	return nil
}
