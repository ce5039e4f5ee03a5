package performance

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wealthscope/wealthscope/internal/domain"
)

// FetchResult bundles everything one valuation pass needs from upstream
// services. Missing per-position series are present as empty maps so the
// valuation stage can degrade per position instead of failing the request.
type FetchResult struct {
	Prices       map[string]domain.PriceSeries
	FxHistory    domain.FxSeries
	FixedIncome  map[string]domain.FixedIncomeValuationSeries
	FailedRefs   []string
	GenerationID string
}

// Coordinator fans position history fetches out over a bounded worker pool.
// Each batch is tagged with a generation token, tracked per query key, so
// a caller can discard results superseded by a newer query for the SAME
// portfolio without queries for other portfolios interfering.
type Coordinator struct {
	prices  domain.PriceHistoryProvider
	fx      domain.FxProvider
	fixed   domain.FixedIncomeValuer
	workers int
	log     zerolog.Logger

	mu          sync.Mutex
	generations map[string]string
}

// NewCoordinator creates a fetch coordinator with the given pool size.
// A non-positive workers value falls back to a single worker.
func NewCoordinator(prices domain.PriceHistoryProvider, fx domain.FxProvider, fixed domain.FixedIncomeValuer, workers int, log zerolog.Logger) *Coordinator {
	if workers < 1 {
		workers = 1
	}
	return &Coordinator{
		prices:      prices,
		fx:          fx,
		fixed:       fixed,
		workers:     workers,
		log:         log.With().Str("component", "fetch_coordinator").Logger(),
		generations: make(map[string]string),
	}
}

type fetchTask struct {
	position domain.Position
	start    string
	end      string
	period   string
	interval string
}

type fetchOutcome struct {
	ref    string
	prices domain.PriceSeries
	fixed  domain.FixedIncomeValuationSeries
	err    error
}

// Fetch retrieves the FX history plus one series per position. The FX
// series is mandatory and its absence fails the whole batch; individual
// position failures are recorded in FailedRefs and yield empty series.
// queryKey groups batches that supersede each other; typically the
// portfolio identifier.
func (c *Coordinator) Fetch(queryKey string, positions []domain.Position, period, interval, start, end string) (*FetchResult, error) {
	gen := uuid.New().String()
	c.mu.Lock()
	c.generations[queryKey] = gen
	c.mu.Unlock()

	fxHistory, err := c.fx.GetFxHistory(period, interval)
	if err != nil {
		return nil, err
	}

	tasks := make(chan fetchTask, len(positions))
	outcomes := make(chan fetchOutcome, len(positions))

	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range tasks {
				outcomes <- c.fetchOne(task)
			}
		}()
	}

	for _, pos := range positions {
		tasks <- fetchTask{position: pos, start: start, end: end, period: period, interval: interval}
	}
	close(tasks)
	wg.Wait()
	close(outcomes)

	result := &FetchResult{
		Prices:       make(map[string]domain.PriceSeries, len(positions)),
		FxHistory:    fxHistory,
		FixedIncome:  make(map[string]domain.FixedIncomeValuationSeries),
		GenerationID: gen,
	}

	for outcome := range outcomes {
		if outcome.err != nil {
			c.log.Warn().Err(outcome.err).Str("ref", outcome.ref).Msg("Position history fetch failed, degrading to empty series")
			result.FailedRefs = append(result.FailedRefs, outcome.ref)
		}
		if outcome.prices != nil {
			result.Prices[outcome.ref] = outcome.prices
		}
		if outcome.fixed != nil {
			result.FixedIncome[outcome.ref] = outcome.fixed
		}
	}

	return result, nil
}

// Current reports whether gen is still the latest generation issued for
// the query key.
func (c *Coordinator) Current(queryKey, gen string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[queryKey] == gen
}

func (c *Coordinator) fetchOne(task fetchTask) fetchOutcome {
	pos := task.position
	ref := pos.Ref()

	if pos.IsFixedIncome() {
		series, err := c.fixed.GetValuationSeries(pos.FixedIncomeID, task.start, task.end)
		if err != nil {
			return fetchOutcome{ref: ref, fixed: domain.FixedIncomeValuationSeries{}, err: err}
		}
		return fetchOutcome{ref: ref, fixed: series}
	}

	series, err := c.prices.GetPriceHistory(pos.Symbol, task.period, task.interval)
	if err != nil {
		return fetchOutcome{ref: ref, prices: domain.PriceSeries{}, err: err}
	}
	return fetchOutcome{ref: ref, prices: series}
}
