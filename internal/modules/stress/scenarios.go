package stress

import (
	"github.com/wealthscope/wealthscope/internal/domain"
)

// scenarioCatalogue holds the named historical scenarios. Impacts are
// fixed percentage moves applied to the current portfolio value, not
// simulated.
var scenarioCatalogue = []domain.ScenarioImpact{
	{
		Name:        "2008 Financial Crisis",
		Description: "Global credit crunch and equity collapse, peak-to-trough",
		ImpactPct:   -20,
	},
	{
		Name:        "2020 Pandemic Crash",
		Description: "COVID-19 liquidity shock of March 2020",
		ImpactPct:   -15,
	},
	{
		Name:        "Interest Rate Shock",
		Description: "Abrupt 200bp policy rate hike hitting duration assets",
		ImpactPct:   -10,
	},
	{
		Name:        "Currency Devaluation",
		Description: "Sharp local currency devaluation against the dollar",
		ImpactPct:   -12,
	},
	{
		Name:        "Commodity Rally",
		Description: "Broad commodity upswing lifting exporter-heavy indices",
		ImpactPct:   8,
	},
}

// Scenarios returns the named historical scenario impacts applied to the
// given portfolio value. A non-positive value yields the raw catalogue
// with no adjusted values.
func Scenarios(portfolioValue float64) []domain.ScenarioImpact {
	out := make([]domain.ScenarioImpact, len(scenarioCatalogue))
	copy(out, scenarioCatalogue)
	if portfolioValue <= 0 {
		return out
	}
	for i := range out {
		out[i].AdjustedValue = portfolioValue * (1 + out[i].ImpactPct/100)
	}
	return out
}
