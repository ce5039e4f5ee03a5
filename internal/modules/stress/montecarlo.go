package stress

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/wealthscope/wealthscope/internal/domain"
	"github.com/wealthscope/wealthscope/pkg/formulas"
)

// Engine runs Monte Carlo stress simulations over a parameterized
// multivariate return distribution.
type Engine struct {
	defaultSims int
	maxSims     int
	seed        int64
	log         zerolog.Logger
}

// NewEngine creates a stress engine. seed 0 means time-seeded draws;
// any other value makes simulations deterministic.
func NewEngine(defaultSims, maxSims int, seed int64, log zerolog.Logger) *Engine {
	return &Engine{
		defaultSims: defaultSims,
		maxSims:     maxSims,
		seed:        seed,
		log:         log.With().Str("service", "stress").Logger(),
	}
}

// StressInput parameterizes one simulation run. Weights, Volatilities
// and ExpectedReturns are aligned on the correlation matrix asset order.
type StressInput struct {
	Weights         []float64
	Volatilities    []float64
	ExpectedReturns []float64
	Correlation     domain.CorrelationMatrix
	NumSimulations  int
}

// RunStressTest draws portfolio returns from the multivariate normal
// implied by the inputs and derives tail statistics. When the implied
// covariance is not positive definite the engine degrades to independent
// univariate draws per asset.
func (e *Engine) RunStressTest(input StressInput) (domain.StressResult, error) {
	n := len(input.Weights)
	if n == 0 || len(input.Volatilities) != n || len(input.ExpectedReturns) != n {
		return domain.StressResult{}, domain.ErrInsufficientData
	}
	for _, w := range input.Weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return domain.StressResult{}, domain.ErrInsufficientData
		}
	}

	sims := input.NumSimulations
	if sims <= 0 {
		sims = e.defaultSims
	}
	if sims > e.maxSims {
		sims = e.maxSims
	}

	src := e.source()
	samples := e.samplePortfolioReturns(input, sims, src)

	result := domain.StressResult{
		VaR95:          formulas.HistoricalVaR(samples, 0.95),
		VaR99:          formulas.HistoricalVaR(samples, 0.99),
		CVaR95:         formulas.CVaR(samples, 0.95),
		ExpectedReturn: formulas.Mean(samples),
		WorstCase:      minOf(samples),
		BestCase:       maxOf(samples),
		NumSimulations: sims,
	}

	e.log.Debug().
		Int("simulations", sims).
		Int("assets", n).
		Float64("var_95", result.VaR95).
		Msg("Stress simulation complete")
	return result, nil
}

func (e *Engine) samplePortfolioReturns(input StressInput, sims int, src rand.Source) []float64 {
	n := len(input.Weights)

	if mvn, ok := e.multivariate(input, src); ok {
		samples := make([]float64, sims)
		draw := make([]float64, n)
		for i := 0; i < sims; i++ {
			mvn.Rand(draw)
			total := 0.0
			for j, w := range input.Weights {
				total += w * draw[j]
			}
			samples[i] = total
		}
		return samples
	}

	e.log.Warn().Msg("Covariance not positive definite, degrading to independent univariate draws")
	dists := make([]distuv.Normal, n)
	for j := 0; j < n; j++ {
		sigma := input.Volatilities[j]
		if sigma <= 0 {
			sigma = 1e-9
		}
		dists[j] = distuv.Normal{Mu: input.ExpectedReturns[j], Sigma: sigma, Src: src}
	}

	samples := make([]float64, sims)
	for i := 0; i < sims; i++ {
		total := 0.0
		for j, w := range input.Weights {
			total += w * dists[j].Rand()
		}
		samples[i] = total
	}
	return samples
}

// multivariate assembles the covariance Sigma[i][j] = corr[i][j] * vol_i
// * vol_j and attempts the multivariate normal factorization.
func (e *Engine) multivariate(input StressInput, src rand.Source) (*distmv.Normal, bool) {
	n := len(input.Weights)
	if len(input.Correlation.Values) != n {
		return nil, false
	}

	cov := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			cov.SetSym(i, j, input.Correlation.Values[i][j]*input.Volatilities[i]*input.Volatilities[j])
		}
	}

	return distmv.NewNormal(input.ExpectedReturns, cov, src)
}

func (e *Engine) source() rand.Source {
	seed := e.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.NewPCG(uint64(seed), uint64(seed)>>1)
}

func minOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

func maxOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}
