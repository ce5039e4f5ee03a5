package performance

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/wealthscope/wealthscope/internal/config"
	"github.com/wealthscope/wealthscope/internal/domain"
)

// ErrStaleGeneration is returned when a newer query superseded this one
// while its fetches were in flight; the caller discards the result.
var ErrStaleGeneration = errors.New("performance computation superseded by a newer query")

// Service orchestrates the full performance pipeline: fetch, calendar,
// resolution, valuation reconstruction, and return calibration.
type Service struct {
	cfg         *config.Config
	coordinator *Coordinator
	quotes      domain.QuoteProvider
	fx          domain.FxProvider
	resolver    *Resolver
	log         zerolog.Logger
	now         func() time.Time
}

// NewService creates the performance service with its collaborators.
func NewService(cfg *config.Config, coordinator *Coordinator, quotes domain.QuoteProvider, fx domain.FxProvider, log zerolog.Logger) *Service {
	return &Service{
		cfg:         cfg,
		coordinator: coordinator,
		quotes:      quotes,
		fx:          fx,
		resolver:    NewResolver(cfg.LocalMarketSuffix),
		log:         log.With().Str("service", "performance").Logger(),
		now:         time.Now,
	}
}

// ComputePerformanceSeries reconstructs the daily valuation history for
// the positions over the period and returns the calibrated cumulative
// return series. portfolioID scopes supersession: only a newer query for
// the same portfolio can invalidate this one. Individual upstream
// failures degrade to fallback pricing; only zero usable input surfaces
// as insufficient data.
func (s *Service) ComputePerformanceSeries(portfolioID string, positions []domain.Position, period string) (domain.ReturnSeries, error) {
	// Step 1: Validate input.
	if len(positions) == 0 {
		return nil, domain.ErrInsufficientData
	}

	today := s.now()
	start := periodStart(today, period).Format(domain.DateKeyLayout)
	end := today.Format(domain.DateKeyLayout)

	// Step 2: Fetch all series with bounded concurrency.
	fetched, err := s.coordinator.Fetch(portfolioID, positions, period, "1d", start, end)
	if err != nil {
		return nil, err
	}

	// Step 3: Anchor FX at the live rate for capital conversion.
	fxAnchor, err := s.fx.GetLiveRate()
	if err != nil || fxAnchor <= 0 {
		fxAnchor = lastKnownFx(fetched.FxHistory)
		s.log.Warn().Err(err).Float64("fallback_rate", fxAnchor).Msg("Live FX rate unavailable, anchoring on last historical rate")
	}

	// Step 4: Build the calendar and resolve positions against it.
	cal, fxHistory := BuildCalendar(fetched.FxHistory, today)
	fetched.FxHistory = fxHistory
	if len(cal) == 0 {
		return nil, domain.ErrInsufficientData
	}

	resolved := s.resolver.Resolve(positions, cal, fetched.Prices)
	if len(resolved) == 0 {
		return nil, domain.ErrInsufficientData
	}
	cal = cal.TrimStart(MinEffectiveStart(resolved))

	// Step 5: Reconstruct the daily valuation series.
	reconstructor := NewReconstructor(s.cfg.PriceLookbackDays, fxAnchor, s.log)
	valuations := reconstructor.Reconstruct(cal, resolved, fetched)
	if len(valuations) == 0 {
		return nil, domain.ErrInsufficientData
	}

	// Step 6: Compute the live total return and calibrate the index.
	liveReturnPct, err := s.liveReturnPct(resolved, fxAnchor)
	if err != nil {
		return nil, err
	}

	calibrator := NewCalibrator(s.cfg.CalibrationTolerancePct, s.cfg.CalibrationFloorPct, s.log)
	series := calibrator.Calibrate(valuations, liveReturnPct)

	// Step 7: Discard if a newer query for this portfolio superseded
	// this one mid-flight.
	if !s.coordinator.Current(portfolioID, fetched.GenerationID) {
		return nil, ErrStaleGeneration
	}

	s.log.Info().
		Str("portfolio_id", portfolioID).
		Int("positions", len(resolved)).
		Int("calendar_days", len(cal)).
		Int("failed_fetches", len(fetched.FailedRefs)).
		Float64("live_return_pct", liveReturnPct).
		Msg("Performance series computed")
	return series, nil
}

// liveReturnPct computes the independent live total return in percentage
// points: all foreign legs converted at the live anchor rate, position
// prices taken from the portfolio snapshot with a quote-feed fallback.
func (s *Service) liveReturnPct(resolved []ResolvedPosition, fxAnchor float64) (float64, error) {
	marketValue := 0.0
	capitalDeployed := 0.0

	for _, rp := range resolved {
		if rp.Quantity <= 0 {
			continue
		}

		price := rp.CurrentPrice
		if price <= 0 && !rp.IsFixedIncome() {
			quoted, err := s.quotes.GetQuote(rp.Symbol)
			if err != nil {
				s.log.Warn().Err(err).Str("symbol", rp.Symbol).Msg("Quote lookup failed, valuing at cost")
			} else {
				price = quoted
			}
		}
		if price <= 0 {
			price = rp.UnitCost
		}

		value := rp.Quantity * price
		cost := rp.Quantity * rp.UnitCost
		if rp.Class == domain.CurrencyForeign {
			value *= fxAnchor
			cost *= fxAnchor
		}
		marketValue += value
		capitalDeployed += cost
	}

	if capitalDeployed <= 0 {
		return 0, domain.ErrInsufficientData
	}
	return (marketValue - capitalDeployed) / capitalDeployed * 100, nil
}

// periodStart maps a history period token to its window start.
func periodStart(today time.Time, period string) time.Time {
	switch period {
	case "1mo":
		return today.AddDate(0, -1, 0)
	case "3mo":
		return today.AddDate(0, -3, 0)
	case "6mo":
		return today.AddDate(0, -6, 0)
	case "1y":
		return today.AddDate(-1, 0, 0)
	case "2y":
		return today.AddDate(-2, 0, 0)
	case "5y":
		return today.AddDate(-5, 0, 0)
	case "max":
		return today.AddDate(-30, 0, 0)
	default:
		return today.AddDate(-1, 0, 0)
	}
}

func lastKnownFx(fx domain.FxSeries) float64 {
	dates := domain.SortedDates(fx)
	for i := len(dates) - 1; i >= 0; i-- {
		if rate := fx[dates[i]]; rate > 0 {
			return rate
		}
	}
	return 1
}
