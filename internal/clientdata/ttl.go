package clientdata

import "time"

// TTL constants for different data types.
// These are added to time.Now() when storing to calculate expires_at.
const (
	// Daily series close only once per trading day.
	TTLPriceHistory = 12 * time.Hour // adjusted price histories
	TTLFxHistory    = 12 * time.Hour // exchange-rate histories

	// Bond valuations move with the curve but the service recomputes daily.
	TTLFixedIncome = 12 * time.Hour

	// Short-lived data (changes frequently)
	TTLCurrentQuote = 10 * time.Minute // live quotes and the FX anchor rate
)
