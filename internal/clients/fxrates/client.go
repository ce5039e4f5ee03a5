// Package fxrates provides exchange-rate history and live-rate fetching
// with persistent caching.
package fxrates

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

// Client for the exchange-rate transport service. All rates are quoted as
// foreign units priced in the local (reporting) currency.
type Client struct {
	baseURL       string
	fromCurrency  string // foreign currency, e.g. USD
	toCurrency    string // reporting currency, e.g. BRL
	client        *http.Client
	log           zerolog.Logger
	cacheRepo     *clientdata.Repository
}

// NewClient creates a new exchange-rate client for one currency pair.
// cacheRepo is optional - if nil, caching is disabled.
func NewClient(baseURL, fromCurrency, toCurrency string, cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	return &Client{
		baseURL:      baseURL,
		fromCurrency: fromCurrency,
		toCurrency:   toCurrency,
		client:       &http.Client{Timeout: 10 * time.Second},
		log:          log.With().Str("client", "fxrates").Logger(),
		cacheRepo:    cacheRepo,
	}
}

func (c *Client) pairKey() string {
	return c.fromCurrency + ":" + c.toCurrency
}

// cachedRate is the structure stored in the quote cache.
type cachedRate struct {
	Rate float64 `json:"rate"`
}

// GetLiveRate fetches the current exchange rate, cache-first.
// Identical currencies short-circuit to 1. On API failure a stale cached
// rate is returned before giving up.
func (c *Client) GetLiveRate() (float64, error) {
	if c.fromCurrency == c.toCurrency {
		return 1.0, nil
	}

	cacheKey := "fx:" + c.pairKey()

	if c.cacheRepo != nil {
		data, err := c.cacheRepo.GetIfFresh("current_quotes", cacheKey)
		if err == nil && data != nil {
			var cached cachedRate
			if err := json.Unmarshal(data, &cached); err == nil {
				c.log.Debug().Str("pair", c.pairKey()).Float64("rate", cached.Rate).Msg("Cache hit")
				return cached.Rate, nil
			}
		}
	}

	endpoint := fmt.Sprintf("%s/rate?from=%s&to=%s",
		c.baseURL, url.QueryEscape(c.fromCurrency), url.QueryEscape(c.toCurrency))

	resp, err := c.client.Get(endpoint)
	if err != nil {
		if stale, ok := c.staleRate(cacheKey); ok {
			c.log.Warn().Err(err).Str("pair", c.pairKey()).Float64("rate", stale).
				Msg("API failed, using stale cached rate")
			return stale, nil
		}
		return 0, fmt.Errorf("rate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if stale, ok := c.staleRate(cacheKey); ok {
			return stale, nil
		}
		return 0, fmt.Errorf("rate request for %s returned status %d", c.pairKey(), resp.StatusCode)
	}

	var rate cachedRate
	if err := json.NewDecoder(resp.Body).Decode(&rate); err != nil {
		return 0, fmt.Errorf("failed to decode rate response: %w", err)
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store("current_quotes", cacheKey, rate, clientdata.TTLCurrentQuote); err != nil {
			c.log.Warn().Err(err).Str("pair", c.pairKey()).Msg("Failed to cache rate")
		}
	}

	return rate.Rate, nil
}

// GetFxHistory fetches the daily exchange-rate history for the pair.
func (c *Client) GetFxHistory(period, interval string) (domain.FxSeries, error) {
	if c.fromCurrency == c.toCurrency {
		return domain.FxSeries{}, nil
	}

	cacheKey := fmt.Sprintf("%s|%s|%s", c.pairKey(), period, interval)

	if c.cacheRepo != nil {
		data, err := c.cacheRepo.GetIfFresh("fx_history", cacheKey)
		if err == nil && data != nil {
			var cached domain.FxSeries
			if err := json.Unmarshal(data, &cached); err == nil {
				c.log.Debug().Str("pair", c.pairKey()).Int("points", len(cached)).Msg("Cache hit")
				return cached, nil
			}
		}
	}

	endpoint := fmt.Sprintf("%s/history?from=%s&to=%s&period=%s&interval=%s",
		c.baseURL, url.QueryEscape(c.fromCurrency), url.QueryEscape(c.toCurrency),
		url.QueryEscape(period), url.QueryEscape(interval))

	resp, err := c.client.Get(endpoint)
	if err != nil {
		if stale, ok := c.staleHistory(cacheKey); ok {
			c.log.Warn().Err(err).Str("pair", c.pairKey()).Msg("API failed, using stale cached FX history")
			return stale, nil
		}
		return nil, fmt.Errorf("FX history request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if stale, ok := c.staleHistory(cacheKey); ok {
			return stale, nil
		}
		return nil, fmt.Errorf("FX history request for %s returned status %d", c.pairKey(), resp.StatusCode)
	}

	var series domain.FxSeries
	if err := json.NewDecoder(resp.Body).Decode(&series); err != nil {
		return nil, fmt.Errorf("failed to decode FX history response: %w", err)
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store("fx_history", cacheKey, series, clientdata.TTLFxHistory); err != nil {
			c.log.Warn().Err(err).Str("pair", c.pairKey()).Msg("Failed to cache FX history")
		}
	}

	return series, nil
}

func (c *Client) staleRate(cacheKey string) (float64, bool) {
	if c.cacheRepo == nil {
		return 0, false
	}
	data, err := c.cacheRepo.Get("current_quotes", cacheKey)
	if err != nil || data == nil {
		return 0, false
	}
	var cached cachedRate
	if err := json.Unmarshal(data, &cached); err != nil {
		return 0, false
	}
	return cached.Rate, true
}

func (c *Client) staleHistory(cacheKey string) (domain.FxSeries, bool) {
	if c.cacheRepo == nil {
		return nil, false
	}
	data, err := c.cacheRepo.Get("fx_history", cacheKey)
	if err != nil || data == nil {
		return nil, false
	}
	var cached domain.FxSeries
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false
	}
	return cached, true
}
