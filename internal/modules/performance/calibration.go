package performance

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/wealthscope/wealthscope/internal/domain"
)

// Calibrator turns the daily valuation series into a cumulative return
// series. The primary method is a daily Modified Dietz index rescaled so
// its terminal point matches the independently computed live total
// return; when the rescaled index fails the acceptance predicate the
// calibrator selects a simple cost-basis series instead.
type Calibrator struct {
	tolerancePct float64
	floorPct     float64
	log          zerolog.Logger
}

// NewCalibrator creates a calibrator. tolerancePct is the maximum allowed
// deviation of the calibrated terminal point from the live return, in
// percentage points. floorPct is the implausibility floor below which a
// terminal value is rejected outright.
func NewCalibrator(tolerancePct, floorPct float64, log zerolog.Logger) *Calibrator {
	return &Calibrator{
		tolerancePct: tolerancePct,
		floorPct:     floorPct,
		log:          log.With().Str("component", "return_calibrator").Logger(),
	}
}

// Calibrate produces the return series in percentage points, starting at
// 0 on the first date. liveReturnPct is the live total return in
// percentage points computed from current quotes.
func (c *Calibrator) Calibrate(valuations []DailyValuation, liveReturnPct float64) domain.ReturnSeries {
	if len(valuations) == 0 {
		return nil
	}

	index := c.dietzIndex(valuations)
	primary, ok := c.rescale(index, valuations, liveReturnPct)
	if ok {
		return primary
	}

	c.log.Warn().
		Float64("live_return_pct", liveReturnPct).
		Msg("Modified Dietz calibration diverged, selecting cost-basis fallback series")
	return c.costBasisSeries(valuations, liveReturnPct)
}

// dietzIndex accumulates the daily Modified Dietz growth index:
// r = (V(cur) - V(prev) - flow) / (V(prev) + flow/2) with flow the net
// inflow dated on the current day, index(0) = 1.
func (c *Calibrator) dietzIndex(valuations []DailyValuation) []float64 {
	index := make([]float64, len(valuations))
	index[0] = 1

	for i := 1; i < len(valuations); i++ {
		prev, cur := valuations[i-1], valuations[i]
		flow := cur.NetFlow - prev.NetFlow

		r := 0.0
		denom := prev.MarketValue + flow/2
		if denom > 0 {
			r = (cur.MarketValue - prev.MarketValue - flow) / denom
		}
		index[i] = index[i-1] * (1 + r)
	}
	return index
}

// rescale multiplies the index so its terminal point matches the live
// return, converts to percentage points, and applies the acceptance
// predicate: terminal must be finite, above the floor, and within
// tolerance of the live return. The first point is forced to 0.
func (c *Calibrator) rescale(index []float64, valuations []DailyValuation, liveReturnPct float64) (domain.ReturnSeries, bool) {
	last := index[len(index)-1]
	if last == 0 || math.IsNaN(last) || math.IsInf(last, 0) {
		return nil, false
	}

	scale := (1 + liveReturnPct/100) / last

	series := make(domain.ReturnSeries, len(valuations))
	for i, dv := range valuations {
		pct := (index[i]*scale - 1) * 100
		series[i] = domain.ReturnPoint{Date: dv.Date, CumulativeReturnPct: pct}
	}
	series[0].CumulativeReturnPct = 0

	terminal := series[len(series)-1].CumulativeReturnPct
	if math.IsNaN(terminal) || math.IsInf(terminal, 0) {
		return nil, false
	}
	if terminal <= c.floorPct {
		return nil, false
	}
	if math.Abs(terminal-liveReturnPct) > c.tolerancePct {
		return nil, false
	}
	return series, true
}

// costBasisSeries is the fallback: pct(d) = (MV - CD) / CD * 100 with the
// terminal point forced to the live return exactly.
func (c *Calibrator) costBasisSeries(valuations []DailyValuation, liveReturnPct float64) domain.ReturnSeries {
	series := make(domain.ReturnSeries, len(valuations))
	for i, dv := range valuations {
		pct := 0.0
		if dv.CapitalDeployed > 0 {
			pct = (dv.MarketValue - dv.CapitalDeployed) / dv.CapitalDeployed * 100
		}
		if math.IsNaN(pct) || math.IsInf(pct, 0) {
			pct = 0
		}
		series[i] = domain.ReturnPoint{Date: dv.Date, CumulativeReturnPct: pct}
	}
	series[len(series)-1].CumulativeReturnPct = liveReturnPct
	series[0].CumulativeReturnPct = 0
	return series
}
