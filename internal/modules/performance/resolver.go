package performance

import (
	"strings"

	"github.com/wealthscope/wealthscope/internal/domain"
)

// ResolvedPosition is a position annotated with everything the valuation
// pass needs: its effective start date on the calendar, its currency
// class, and the adjusted-price rescale factor. Scale 0 means no
// reference price was found and raw prices are used unscaled.
type ResolvedPosition struct {
	domain.Position
	EffectiveStart string
	Class          domain.CurrencyClass
	Scale          float64
}

// Resolver derives effective-start dates, currency classes and price
// rescale factors for a batch of positions against one calendar.
type Resolver struct {
	localSuffix string
}

// NewResolver creates a resolver using the given local-market ticker
// suffix (for example ".SA") to classify symbols as local currency.
func NewResolver(localSuffix string) *Resolver {
	return &Resolver{localSuffix: localSuffix}
}

// Resolve annotates every position. Positions whose purchase date lies
// beyond the last calendar date are inactive for this window and are
// omitted from the result.
func (r *Resolver) Resolve(positions []domain.Position, cal Calendar, prices map[string]domain.PriceSeries) []ResolvedPosition {
	if len(cal) == 0 {
		return nil
	}

	earliest := earliestPurchase(positions)

	resolved := make([]ResolvedPosition, 0, len(positions))
	for _, pos := range positions {
		anchor := pos.PurchaseDate
		if anchor == "" {
			anchor = earliest
		}
		if anchor == "" {
			anchor = cal.First()
		}

		start := firstDateAtOrAfter(cal, anchor)
		if start == "" {
			continue
		}

		rp := ResolvedPosition{
			Position:       pos,
			EffectiveStart: start,
			Class:          r.classify(pos),
		}
		if !pos.IsFixedIncome() {
			rp.Scale = rescaleFactor(pos, start, cal, prices[pos.Ref()])
		}
		resolved = append(resolved, rp)
	}
	return resolved
}

// MinEffectiveStart returns the earliest effective start across the
// resolved batch, or "" when the batch is empty.
func MinEffectiveStart(resolved []ResolvedPosition) string {
	min := ""
	for _, rp := range resolved {
		if min == "" || rp.EffectiveStart < min {
			min = rp.EffectiveStart
		}
	}
	return min
}

func (r *Resolver) classify(pos domain.Position) domain.CurrencyClass {
	if pos.Symbol == "" {
		return domain.CurrencyLocal
	}
	if r.localSuffix != "" && strings.HasSuffix(pos.Symbol, r.localSuffix) {
		return domain.CurrencyLocal
	}
	return domain.CurrencyForeign
}

// rescaleFactor aligns the external adjusted-price series with the
// recorded purchase price at the effective start. The reference price is
// the first series value on or after the start date; without one the
// factor stays 0 and prices pass through unscaled.
func rescaleFactor(pos domain.Position, start string, cal Calendar, series domain.PriceSeries) float64 {
	if pos.UnitCost <= 0 || len(series) == 0 {
		return 0
	}
	idx := cal.Index(start)
	if idx < 0 {
		return 0
	}
	for _, d := range cal[idx:] {
		if price, ok := series[d]; ok && price > 0 {
			return pos.UnitCost / price
		}
	}
	return 0
}

func earliestPurchase(positions []domain.Position) string {
	earliest := ""
	for _, pos := range positions {
		if pos.PurchaseDate == "" {
			continue
		}
		if earliest == "" || pos.PurchaseDate < earliest {
			earliest = pos.PurchaseDate
		}
	}
	return earliest
}

func firstDateAtOrAfter(cal Calendar, anchor string) string {
	for _, d := range cal {
		if d >= anchor {
			return d
		}
	}
	// Reaching here means the purchase falls after the last calendar date.
	return ""
}
