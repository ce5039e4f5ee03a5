package domain

// Interfaces for the external collaborators this engine consumes. The
// engine never originates prices or bond valuations; these adapters are
// implemented in internal/clients against the transport layer, and by
// fakes in tests.

// QuoteProvider returns the latest price for a symbol.
type QuoteProvider interface {
	GetQuote(symbol string) (float64, error)
}

// PriceHistoryProvider returns the adjusted daily price history for a
// symbol over a period (e.g. "1y") at an interval (e.g. "1d").
// Implementations return an empty series on upstream failure so that a
// single bad symbol never aborts a whole computation.
type PriceHistoryProvider interface {
	GetPriceHistory(symbol, period, interval string) (PriceSeries, error)
}

// FxProvider returns the foreign/local exchange-rate history and the
// current live rate used as the query-time conversion anchor.
type FxProvider interface {
	GetFxHistory(period, interval string) (FxSeries, error)
	GetLiveRate() (float64, error)
}

// FixedIncomeValuer is the external bond-math valuation service.
type FixedIncomeValuer interface {
	GetValuationSeries(positionID, start, end string) (FixedIncomeValuationSeries, error)
	GetValuation(positionID, asOf string) (FixedIncomeValuation, error)
}
