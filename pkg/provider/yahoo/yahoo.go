// Package yahoo provides a thin client for the Yahoo Finance chart API,
// used for historical price series. It returns raw documents;
// normalization happens in pkg/normalize.
package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/marketdash/market-proxy/pkg/provider"
)

// Config holds the Yahoo client configuration.
type Config struct {
	// BaseURL is the API root (default https://query1.finance.yahoo.com).
	BaseURL string

	// Timeout bounds each upstream call.
	Timeout time.Duration
}

// Client is an HTTP client for the Yahoo Finance chart API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// New creates a Yahoo client.
func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://query1.finance.yahoo.com"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.With().Str("component", "yahoo").Logger(),
	}
}

// History fetches the daily price chart for a ticker over a period
// (7d, 3mo, 6mo or 1y; validated by the transport layer).
func (c *Client) History(ctx context.Context, ticker, period string) (provider.Document, error) {
	query := url.Values{}
	query.Set("range", period)
	query.Set("interval", "1d")

	u := c.baseURL + "/v8/finance/chart/" + url.PathEscape(ticker) + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("ticker", ticker).Str("period", period).Msg("yahoo chart request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().
			Str("ticker", ticker).
			Int("status", resp.StatusCode).
			Msg("yahoo non-success response")
		return nil, provider.FromResponse(resp)
	}

	return provider.DecodeDocument(resp.Body)
}
