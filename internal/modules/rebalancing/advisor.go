// Package rebalancing maps current versus target allocations to buy,
// sell or hold recommendations with templated rationales.
package rebalancing

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wealthscope/wealthscope/internal/domain"
)

// Advisor generates rebalancing recommendations. Pure mapping from
// weights and constraints to advice, no portfolio state.
type Advisor struct {
	epsilon float64
	log     zerolog.Logger
}

// NewAdvisor creates an advisor. Weight deltas within +/- epsilon are
// reported as HOLD.
func NewAdvisor(epsilon float64, log zerolog.Logger) *Advisor {
	return &Advisor{
		epsilon: epsilon,
		log:     log.With().Str("service", "rebalancing").Logger(),
	}
}

// GenerateRecommendations emits one recommendation per instrument present
// in either weight map, ordered by instrument ref. Non-finite weights
// surface as insufficient data.
func (a *Advisor) GenerateRecommendations(current, target map[string]float64, constraints domain.RebalanceConstraints) ([]domain.RebalancingRecommendation, error) {
	if len(current) == 0 && len(target) == 0 {
		return nil, domain.ErrInsufficientData
	}

	refs := make(map[string]struct{}, len(current)+len(target))
	for ref, w := range current {
		if !isFinite(w) {
			return nil, domain.ErrInsufficientData
		}
		refs[ref] = struct{}{}
	}
	for ref, w := range target {
		if !isFinite(w) {
			return nil, domain.ErrInsufficientData
		}
		refs[ref] = struct{}{}
	}

	ordered := make([]string, 0, len(refs))
	for ref := range refs {
		ordered = append(ordered, ref)
	}
	sort.Strings(ordered)

	recommendations := make([]domain.RebalancingRecommendation, 0, len(ordered))
	for _, ref := range ordered {
		cw := current[ref]
		tw := target[ref]
		delta := tw - cw

		action := domain.ActionHold
		switch {
		case delta > a.epsilon:
			action = domain.ActionBuy
		case delta < -a.epsilon:
			action = domain.ActionSell
		}

		recommendations = append(recommendations, domain.RebalancingRecommendation{
			ID:            uuid.New().String(),
			InstrumentRef: ref,
			CurrentWeight: cw,
			TargetWeight:  tw,
			Action:        action,
			AmountPct:     math.Abs(delta) * 100,
			Rationale:     a.rationale(ref, action, delta, constraints),
		})
	}

	a.log.Debug().
		Int("instruments", len(recommendations)).
		Str("risk_profile", constraints.RiskProfile).
		Msg("Rebalancing recommendations generated")
	return recommendations, nil
}

func (a *Advisor) rationale(ref string, action domain.RebalanceAction, delta float64, constraints domain.RebalanceConstraints) string {
	profile := constraints.RiskProfile
	if profile == "" {
		profile = "balanced"
	}

	switch action {
	case domain.ActionBuy:
		return fmt.Sprintf(
			"%s is %.1f pct points below its target for the %s profile (target return %.1f%%); increase the allocation",
			ref, math.Abs(delta)*100, profile, constraints.TargetReturn*100)
	case domain.ActionSell:
		return fmt.Sprintf(
			"%s is %.1f pct points above its target for the %s profile (max volatility %.1f%%); reduce the allocation",
			ref, math.Abs(delta)*100, profile, constraints.MaxVolatility*100)
	default:
		return fmt.Sprintf(
			"%s is within %.1f pct points of its target; no action needed",
			ref, a.epsilon*100)
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
