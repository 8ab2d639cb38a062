package normalize

import (
	"strings"
)

// logoServiceURL is the third-party service used to derive company
// logo URLs from website domains.
const logoServiceURL = "https://logo.clearbit.com/"

// Overview is the canonical company-overview record. Every field except
// Ticker and Name may be absent; absence is represented by a nil
// pointer, never a default business value.
type Overview struct {
	Ticker      string   `json:"ticker"`
	Name        string   `json:"name"`
	Market      *string  `json:"market,omitempty"`
	Exchange    *string  `json:"exchange,omitempty"`
	Locale      *string  `json:"locale,omitempty"`
	Currency    *string  `json:"currency,omitempty"`
	MarketCap   *float64 `json:"market_cap,omitempty"`
	Description *string  `json:"description,omitempty"`
	Industry    *string  `json:"industry,omitempty"`
	LogoURL     *string  `json:"logo_url,omitempty"`
	Employees   *int64   `json:"employees,omitempty"`
	Source      string   `json:"source"`
}

// NormalizeOverview maps a raw provider document onto the canonical
// overview record. It fails with a ShapeError when the document lacks a
// resolvable symbol or name.
func NormalizeOverview(p Provider, raw map[string]any) (*Overview, error) {
	switch p {
	case ProviderPolygon:
		return polygonOverview(raw)
	case ProviderYahoo:
		return yahooOverview(raw)
	default:
		return nil, &ShapeError{Kind: "overview", Reason: "unknown provider " + string(p)}
	}
}

// polygonOverview maps a /v3/reference/tickers/{ticker} response.
func polygonOverview(raw map[string]any) (*Overview, error) {
	results := getMap(raw, "results")
	if results == nil {
		return nil, &ShapeError{Kind: "overview", Reason: "missing results object"}
	}

	ticker := getString(results, "ticker")
	if ticker == nil {
		return nil, &ShapeError{Kind: "overview", Reason: "no ticker symbol"}
	}

	name := *ticker
	if n := getString(results, "name"); n != nil {
		name = *n
	}

	o := &Overview{
		Ticker:      *ticker,
		Name:        name,
		Market:      getString(results, "market"),
		Exchange:    getString(results, "primary_exchange"),
		Locale:      getString(results, "locale"),
		Currency:    getString(results, "currency_name"),
		MarketCap:   getFloat(results, "market_cap"),
		Description: getString(results, "description"),
		Industry:    getString(results, "sic_description"),
		Employees:   getInt(results, "total_employees"),
		Source:      string(ProviderPolygon),
	}

	if site := getString(results, "homepage_url"); site != nil {
		o.LogoURL = logoURL(*site)
	}

	return o, nil
}

// yahooOverview maps a quote/profile document (yfinance info shape).
func yahooOverview(raw map[string]any) (*Overview, error) {
	ticker := getString(raw, "symbol")
	if ticker == nil {
		return nil, &ShapeError{Kind: "overview", Reason: "no ticker symbol"}
	}

	// Prefer the long-form name, fall back to short-form, then symbol.
	name := *ticker
	if n := getString(raw, "longName"); n != nil {
		name = *n
	} else if n := getString(raw, "shortName"); n != nil {
		name = *n
	}

	o := &Overview{
		Ticker:      *ticker,
		Name:        name,
		Market:      getString(raw, "market"),
		Exchange:    getString(raw, "fullExchangeName"),
		Locale:      getString(raw, "region"),
		Currency:    getString(raw, "currency"),
		MarketCap:   getFloat(raw, "marketCap"),
		Description: getString(raw, "longBusinessSummary"),
		Industry:    getString(raw, "industry"),
		Employees:   getInt(raw, "fullTimeEmployees"),
		Source:      string(ProviderYahoo),
	}

	if site := getString(raw, "website"); site != nil {
		o.LogoURL = logoURL(*site)
	}

	return o, nil
}

// logoURL derives a logo-service URL from a company website.
// The scheme and a leading "www." are stripped and only the host is
// kept. Returns nil when no usable host remains.
func logoURL(website string) *string {
	host := website
	if idx := strings.Index(host, "://"); idx >= 0 {
		host = host[idx+3:]
	}
	if idx := strings.IndexAny(host, "/?#"); idx >= 0 {
		host = host[:idx]
	}
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimSpace(host)
	if host == "" {
		return nil
	}

	u := logoServiceURL + host
	return &u
}
