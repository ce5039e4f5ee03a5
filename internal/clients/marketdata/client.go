// Package marketdata provides the adapter for the external quote and
// price-history service, with persistent cache-first behavior.
package marketdata

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/wealthscope/wealthscope/internal/clientdata"
	"github.com/wealthscope/wealthscope/internal/domain"
)

// Client for the market-data transport service.
type Client struct {
	baseURL   string
	client    *http.Client
	log       zerolog.Logger
	cacheRepo *clientdata.Repository
}

// NewClient creates a new market-data client.
// cacheRepo is optional - if nil, caching is disabled.
func NewClient(baseURL string, cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	return &Client{
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 15 * time.Second},
		log:       log.With().Str("client", "marketdata").Logger(),
		cacheRepo: cacheRepo,
	}
}

// quoteResponse mirrors the get_quote contract of the transport layer.
type quoteResponse struct {
	CurrentPrice float64 `json:"current_price"`
}

// historyBar is one row of the get_price_history response.
type historyBar struct {
	Date          string  `json:"date"`
	Close         float64 `json:"close"`
	AdjustedClose float64 `json:"adjusted_close"`
}

// GetQuote fetches the latest price for a symbol, cache-first.
// If the API fails, returns stale cached data if available.
func (c *Client) GetQuote(symbol string) (float64, error) {
	if c.cacheRepo != nil {
		data, err := c.cacheRepo.GetIfFresh("current_quotes", symbol)
		if err == nil && data != nil {
			var cached quoteResponse
			if err := json.Unmarshal(data, &cached); err == nil {
				c.log.Debug().Str("symbol", symbol).Float64("price", cached.CurrentPrice).Msg("Cache hit")
				return cached.CurrentPrice, nil
			}
		}
	}

	endpoint := fmt.Sprintf("%s/quote?symbol=%s", c.baseURL, url.QueryEscape(symbol))
	resp, err := c.client.Get(endpoint)
	if err != nil {
		if stale, ok := c.staleQuote(symbol); ok {
			c.log.Warn().Err(err).Str("symbol", symbol).Float64("price", stale).
				Msg("API failed, using stale cached quote")
			return stale, nil
		}
		return 0, fmt.Errorf("quote request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if stale, ok := c.staleQuote(symbol); ok {
			return stale, nil
		}
		return 0, fmt.Errorf("quote request for %s returned status %d", symbol, resp.StatusCode)
	}

	var quote quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return 0, fmt.Errorf("failed to decode quote response: %w", err)
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store("current_quotes", symbol, quote, clientdata.TTLCurrentQuote); err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to cache quote")
		}
	}

	return quote.CurrentPrice, nil
}

// GetPriceHistory fetches the adjusted daily price history for a symbol.
// The returned series maps ISO date keys to adjusted close prices.
func (c *Client) GetPriceHistory(symbol, period, interval string) (domain.PriceSeries, error) {
	cacheKey := fmt.Sprintf("%s|%s|%s", symbol, period, interval)

	if c.cacheRepo != nil {
		data, err := c.cacheRepo.GetIfFresh("price_history", cacheKey)
		if err == nil && data != nil {
			var cached domain.PriceSeries
			if err := json.Unmarshal(data, &cached); err == nil {
				c.log.Debug().Str("symbol", symbol).Int("points", len(cached)).Msg("Cache hit")
				return cached, nil
			}
		}
	}

	endpoint := fmt.Sprintf("%s/history?symbol=%s&period=%s&interval=%s",
		c.baseURL, url.QueryEscape(symbol), url.QueryEscape(period), url.QueryEscape(interval))

	resp, err := c.client.Get(endpoint)
	if err != nil {
		if stale, ok := c.staleHistory(cacheKey); ok {
			c.log.Warn().Err(err).Str("symbol", symbol).Int("points", len(stale)).
				Msg("API failed, using stale cached history")
			return stale, nil
		}
		return nil, fmt.Errorf("history request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if stale, ok := c.staleHistory(cacheKey); ok {
			return stale, nil
		}
		return nil, fmt.Errorf("history request for %s returned status %d", symbol, resp.StatusCode)
	}

	var bars []historyBar
	if err := json.NewDecoder(resp.Body).Decode(&bars); err != nil {
		return nil, fmt.Errorf("failed to decode history response: %w", err)
	}

	series := make(domain.PriceSeries, len(bars))
	for _, bar := range bars {
		price := bar.AdjustedClose
		if price == 0 {
			price = bar.Close
		}
		if bar.Date != "" && price > 0 {
			series[bar.Date] = price
		}
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store("price_history", cacheKey, series, clientdata.TTLPriceHistory); err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to cache history")
		}
	}

	return series, nil
}

func (c *Client) staleQuote(symbol string) (float64, bool) {
	if c.cacheRepo == nil {
		return 0, false
	}
	data, err := c.cacheRepo.Get("current_quotes", symbol)
	if err != nil || data == nil {
		return 0, false
	}
	var cached quoteResponse
	if err := json.Unmarshal(data, &cached); err != nil {
		return 0, false
	}
	return cached.CurrentPrice, true
}

func (c *Client) staleHistory(cacheKey string) (domain.PriceSeries, bool) {
	if c.cacheRepo == nil {
		return nil, false
	}
	data, err := c.cacheRepo.Get("price_history", cacheKey)
	if err != nil || data == nil {
		return nil, false
	}
	var cached domain.PriceSeries
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false
	}
	return cached, true
}
