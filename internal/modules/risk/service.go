// Package risk derives scalar risk metrics from return series.
package risk

import (
	"github.com/rs/zerolog"

	"github.com/wealthscope/wealthscope/internal/domain"
	"github.com/wealthscope/wealthscope/pkg/formulas"
)

// Service computes risk metric snapshots from periodic return series.
type Service struct {
	defaultRiskFree float64
	log             zerolog.Logger
}

// NewService creates a risk metrics service. defaultRiskFree is the
// per-period risk-free rate applied when the caller does not supply one.
func NewService(defaultRiskFree float64, log zerolog.Logger) *Service {
	return &Service{
		defaultRiskFree: defaultRiskFree,
		log:             log.With().Str("service", "risk").Logger(),
	}
}

// ComputeRiskMetrics derives the full snapshot from periodic returns.
// Series of length 0 or 1 surface as insufficient data rather than a
// snapshot of misleading zeros.
func (s *Service) ComputeRiskMetrics(returns []float64, riskFreeRate *float64) (domain.RiskMetricsSnapshot, error) {
	if len(returns) < 2 {
		return domain.RiskMetricsSnapshot{}, domain.ErrInsufficientData
	}

	rf := s.defaultRiskFree
	if riskFreeRate != nil {
		rf = *riskFreeRate
	}

	snapshot := domain.RiskMetricsSnapshot{
		Sharpe:      formulas.SharpeRatio(returns, rf),
		Sortino:     formulas.SortinoRatio(returns, rf),
		Volatility:  formulas.AnnualizedVolatility(returns),
		MaxDrawdown: formulas.MaxDrawdown(returns),
		VaR95:       formulas.HistoricalVaR(returns, 0.95),
		VaR99:       formulas.HistoricalVaR(returns, 0.99),
	}

	s.log.Debug().
		Int("periods", len(returns)).
		Float64("risk_free_rate", rf).
		Float64("volatility", snapshot.Volatility).
		Msg("Risk metrics computed")
	return snapshot, nil
}

// ReturnsFromSeries converts a cumulative return series in percentage
// points into periodic simple returns, the input the metric formulas
// expect.
func ReturnsFromSeries(series domain.ReturnSeries) []float64 {
	if len(series) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		prev := 1 + series[i-1].CumulativeReturnPct/100
		cur := 1 + series[i].CumulativeReturnPct/100
		if prev <= 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, cur/prev-1)
	}
	return returns
}
