package cache

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ResourceKind identifies the category of market data behind a cache key.
// Carrying the kind explicitly (instead of inferring it from the shape of
// the identifier string) guarantees that a ticker containing unusual
// characters can never be mistaken for a compound key.
type ResourceKind string

const (
	// KindOverview is the company overview for a ticker.
	KindOverview ResourceKind = "overview"

	// KindSnapshot is the real-time market snapshot for a ticker.
	KindSnapshot ResourceKind = "snapshot"

	// KindFinancials is the financial-statement history for a ticker.
	KindFinancials ResourceKind = "financials"

	// KindHistory is the historical price series for a ticker.
	KindHistory ResourceKind = "history"

	// KindPriceSummary is the derived price-change summary over a period.
	KindPriceSummary ResourceKind = "price_summary"
)

// TTLClass returns the expiration class for the resource kind.
func (k ResourceKind) TTLClass() TTLClass {
	switch k {
	case KindSnapshot:
		return TTLRealtime
	case KindHistory, KindPriceSummary:
		return TTLHistorical
	default:
		return TTLDefault
	}
}

// Key represents a unique identifier for a cached market-data document.
type Key struct {
	// Kind is the resource kind (e.g. overview, financials).
	Kind ResourceKind

	// Ticker is the upper-cased ticker symbol.
	Ticker string

	// Params are the request parameters that vary the response
	// (e.g. {"timeframe": "annual", "limit": "8"}). Unset parameters
	// must be present with an empty value so that two requests with the
	// same unset markers derive the same key.
	Params map[string]string

	// Bucket is the calendar-date freshness bucket (YYYY-MM-DD).
	// Empty for always-current resources such as snapshots.
	Bucket string
}

// String generates a deterministic cache key string.
// Format: mkt:kind:TICKER:param1=val1:param2=val2:bucket
//
// Example:
//
//	mkt:financials:AAPL:limit=8:order=:timeframe=annual:2024-06-01
func (k Key) String() string {
	parts := []string{"mkt", string(k.Kind), k.Ticker}

	// Add params (sorted for determinism)
	if len(k.Params) > 0 {
		paramKeys := make([]string, 0, len(k.Params))
		for key := range k.Params {
			paramKeys = append(paramKeys, key)
		}
		sort.Strings(paramKeys)

		for _, key := range paramKeys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.Params[key]))
		}
	}

	if k.Bucket != "" {
		parts = append(parts, k.Bucket)
	}

	return strings.Join(parts, ":")
}

// Deriver builds cache keys from request identifiers.
//
// Date-less requests receive the current UTC calendar date as their
// freshness bucket, so they roll over once per day regardless of TTL.
// Requests addressed to an explicit date keep that date verbatim and
// remain stable across day boundaries. Snapshot keys carry no bucket at
// all; their freshness is governed purely by the realtime TTL class,
// since daily bucketing would under-refresh intraday data.
type Deriver struct {
	// now is the clock used for the daily bucket (overridable in tests).
	now func() time.Time
}

// NewDeriver creates a key deriver using the system clock.
func NewDeriver() *Deriver {
	return &Deriver{now: time.Now}
}

// Derive builds the cache key for a request.
// Tickers are case-normalized so that "aapl" and "AAPL" share an entry.
// explicitDate must be empty or a validated YYYY-MM-DD string; validation
// is the transport layer's job.
func (d *Deriver) Derive(kind ResourceKind, ticker string, params map[string]string, explicitDate string) Key {
	key := Key{
		Kind:   kind,
		Ticker: strings.ToUpper(ticker),
		Params: params,
	}

	if kind == KindSnapshot {
		return key
	}

	if explicitDate != "" {
		key.Bucket = explicitDate
	} else {
		key.Bucket = d.now().UTC().Format("2006-01-02")
	}

	return key
}
