// Package fixedincome provides the adapter for the external bond-math
// valuation service (clean/dirty price, accrued interest, YTM, duration,
// convexity). This engine consumes valuations; it never computes them.
package fixedincome

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

// Client for the fixed-income valuation service.
type Client struct {
	baseURL   string
	client    *http.Client
	log       zerolog.Logger
	cacheRepo *clientdata.Repository
}

// NewClient creates a new fixed-income valuation client.
// cacheRepo is optional - if nil, caching is disabled.
func NewClient(baseURL string, cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	return &Client{
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 20 * time.Second},
		log:       log.With().Str("client", "fixedincome").Logger(),
		cacheRepo: cacheRepo,
	}
}

// GetValuationSeries fetches the daily valuation history for one position
// between start and end (ISO date keys, inclusive).
func (c *Client) GetValuationSeries(positionID, start, end string) (domain.FixedIncomeValuationSeries, error) {
	cacheKey := fmt.Sprintf("%s|%s|%s", positionID, start, end)

	if c.cacheRepo != nil {
		data, err := c.cacheRepo.GetIfFresh("fi_valuations", cacheKey)
		if err == nil && data != nil {
			var cached domain.FixedIncomeValuationSeries
			if err := json.Unmarshal(data, &cached); err == nil {
				c.log.Debug().Str("position_id", positionID).Int("points", len(cached)).Msg("Cache hit")
				return cached, nil
			}
		}
	}

	endpoint := fmt.Sprintf("%s/valuations?position_id=%s&start=%s&end=%s",
		c.baseURL, url.QueryEscape(positionID), url.QueryEscape(start), url.QueryEscape(end))

	resp, err := c.client.Get(endpoint)
	if err != nil {
		if stale, ok := c.staleSeries(cacheKey); ok {
			c.log.Warn().Err(err).Str("position_id", positionID).
				Msg("API failed, using stale cached valuations")
			return stale, nil
		}
		return nil, fmt.Errorf("valuation series request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if stale, ok := c.staleSeries(cacheKey); ok {
			return stale, nil
		}
		return nil, fmt.Errorf("valuation series request for %s returned status %d", positionID, resp.StatusCode)
	}

	var series domain.FixedIncomeValuationSeries
	if err := json.NewDecoder(resp.Body).Decode(&series); err != nil {
		return nil, fmt.Errorf("failed to decode valuation series response: %w", err)
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store("fi_valuations", cacheKey, series, clientdata.TTLFixedIncome); err != nil {
			c.log.Warn().Err(err).Str("position_id", positionID).Msg("Failed to cache valuations")
		}
	}

	return series, nil
}

// GetValuation fetches a single as-of valuation for one position.
func (c *Client) GetValuation(positionID, asOf string) (domain.FixedIncomeValuation, error) {
	series, err := c.GetValuationSeries(positionID, asOf, asOf)
	if err != nil {
		return domain.FixedIncomeValuation{}, err
	}

	valuation, ok := series[asOf]
	if !ok {
		return domain.FixedIncomeValuation{}, fmt.Errorf("no valuation for %s on %s", positionID, asOf)
	}

	return valuation, nil
}

func (c *Client) staleSeries(cacheKey string) (domain.FixedIncomeValuationSeries, bool) {
	if c.cacheRepo == nil {
		return nil, false
	}
	data, err := c.cacheRepo.Get("fi_valuations", cacheKey)
	if err != nil || data == nil {
		return nil, false
	}
	var cached domain.FixedIncomeValuationSeries
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false
	}
	return cached, true
}
