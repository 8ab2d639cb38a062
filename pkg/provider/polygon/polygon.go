// Package polygon provides a thin client for the Polygon.io REST API.
// It returns raw documents; normalization happens in pkg/normalize.
package polygon

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

// Config holds the Polygon client configuration.
type Config struct {
	// BaseURL is the API root (default https://api.polygon.io).
	BaseURL string

	// APIKey is the bearer token for authentication.
	APIKey string

	// Timeout bounds each upstream call.
	Timeout time.Duration
}

// Client is an HTTP client for Polygon.io.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger
}

// FinancialsQuery holds the filter parameters for the financials
// endpoint. Zero values mean "unset" and are omitted from the request.
type FinancialsQuery struct {
	Timeframe          string // annual | quarterly | ttm
	Limit              int
	Sort               string
	Order              string // asc | desc
	FilingDate         string
	PeriodOfReportDate string
	IncludeSources     bool
}

// New creates a Polygon client.
func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.polygon.io"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.With().Str("component", "polygon").Logger(),
	}
}

// TickerOverview fetches company reference data for a ticker.
// date is optional (YYYY-MM-DD) and addresses the reference data as of
// that date.
func (c *Client) TickerOverview(ctx context.Context, ticker, date string) (provider.Document, error) {
	query := url.Values{}
	if date != "" {
		query.Set("date", date)
	}
	return c.get(ctx, "/v3/reference/tickers/"+url.PathEscape(ticker), query)
}

// Financials fetches financial statements for a ticker.
func (c *Client) Financials(ctx context.Context, ticker string, q FinancialsQuery) (provider.Document, error) {
	query := url.Values{}
	query.Set("ticker", ticker)
	if q.Limit > 0 {
		query.Set("limit", fmt.Sprintf("%d", q.Limit))
	}
	if q.Timeframe != "" {
		query.Set("timeframe", q.Timeframe)
	}
	if q.Sort != "" {
		query.Set("sort", q.Sort)
	}
	if q.Order != "" {
		query.Set("order", q.Order)
	}
	if q.FilingDate != "" {
		query.Set("filing_date", q.FilingDate)
	}
	if q.PeriodOfReportDate != "" {
		query.Set("period_of_report_date", q.PeriodOfReportDate)
	}
	if q.IncludeSources {
		query.Set("include_sources", "true")
	}
	return c.get(ctx, "/vX/reference/financials", query)
}

// Snapshot fetches the real-time market snapshot for a ticker.
func (c *Client) Snapshot(ctx context.Context, ticker string) (provider.Document, error) {
	path := "/v2/snapshot/locale/us/markets/stocks/tickers/" + url.PathEscape(ticker)
	return c.get(ctx, path, nil)
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (provider.Document, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("path", path).Msg("polygon request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("polygon request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().
			Str("path", path).
			Int("status", resp.StatusCode).
			Msg("polygon non-success response")
		return nil, provider.FromResponse(resp)
	}

	return provider.DecodeDocument(resp.Body)
}
