package normalize

import (
	"sort"
	"time"
)

// HistoryPoint is one daily bar of the canonical price series. Prices
// are rounded to two decimal places; volume is integral.
type HistoryPoint struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// History is the canonical historical price series, ascending by date.
type History struct {
	Ticker string         `json:"ticker"`
	Period string         `json:"period"`
	Points []HistoryPoint `json:"data"`
	Count  int            `json:"count"`
}

// PriceSummary is the derived price-change view over a history series.
type PriceSummary struct {
	Ticker        string  `json:"ticker"`
	Period        string  `json:"period"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	FirstClose    float64 `json:"first_close"`
	LastClose     float64 `json:"last_close"`
	PriceChange   float64 `json:"price_change"`
	PercentChange float64 `json:"percent_change"`
}

// NormalizeHistory maps a raw provider chart document onto the
// canonical history series. It fails with ErrNoData when the upstream
// returns an empty series for the requested ticker and period.
func NormalizeHistory(p Provider, raw map[string]any, ticker, period string) (*History, error) {
	if p != ProviderYahoo {
		return nil, &ShapeError{Kind: "history", Reason: "unknown provider " + string(p)}
	}

	points, err := yahooChartPoints(raw)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, ErrNoData
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})

	return &History{
		Ticker: ticker,
		Period: period,
		Points: points,
		Count:  len(points),
	}, nil
}

// yahooChartPoints extracts bars from a /v8/finance/chart response.
// Bars missing any finite OHLC value are dropped.
func yahooChartPoints(raw map[string]any) ([]HistoryPoint, error) {
	chart := getMap(raw, "chart")
	if chart == nil {
		return nil, &ShapeError{Kind: "history", Reason: "missing chart object"}
	}

	results := getSlice(chart, "result")
	if len(results) == 0 {
		return nil, ErrNoData
	}
	result, ok := results[0].(map[string]any)
	if !ok {
		return nil, &ShapeError{Kind: "history", Reason: "malformed chart result"}
	}

	timestamps := getSlice(result, "timestamp")

	indicators := getMap(result, "indicators")
	quotes := getSlice(indicators, "quote")
	if len(quotes) == 0 {
		return nil, ErrNoData
	}
	quote, ok := quotes[0].(map[string]any)
	if !ok {
		return nil, &ShapeError{Kind: "history", Reason: "malformed quote block"}
	}

	opens := getSlice(quote, "open")
	highs := getSlice(quote, "high")
	lows := getSlice(quote, "low")
	closes := getSlice(quote, "close")
	volumes := getSlice(quote, "volume")

	points := make([]HistoryPoint, 0, len(timestamps))
	for i, ts := range timestamps {
		sec, ok := asFloat(ts)
		if !ok {
			continue
		}

		open, okO := seriesAt(opens, i)
		high, okH := seriesAt(highs, i)
		low, okL := seriesAt(lows, i)
		closePx, okC := seriesAt(closes, i)
		if !okO || !okH || !okL || !okC {
			continue
		}

		var volume int64
		if v, ok := seriesAt(volumes, i); ok {
			volume = int64(v)
		}

		points = append(points, HistoryPoint{
			Date:   time.Unix(int64(sec), 0).UTC().Format("2006-01-02"),
			Open:   round2(open),
			High:   round2(high),
			Low:    round2(low),
			Close:  round2(closePx),
			Volume: volume,
		})
	}

	return points, nil
}

// seriesAt reads the i-th finite value of a series, false for null
// placeholders or out-of-range indexes.
func seriesAt(series []any, i int) (float64, bool) {
	if i < 0 || i >= len(series) {
		return 0, false
	}
	return asFloat(series[i])
}

// Summarize computes the derived price-change view over a history
// series. PercentChange is defined as 0 when the first close is 0; the
// zero-division case is a guarded result, not an error.
func Summarize(h *History) (*PriceSummary, error) {
	if h == nil || len(h.Points) == 0 {
		return nil, ErrNoData
	}

	first := h.Points[0]
	last := h.Points[len(h.Points)-1]

	change := last.Close - first.Close
	percent := 0.0
	if first.Close != 0 {
		percent = change / first.Close * 100
	}

	return &PriceSummary{
		Ticker:        h.Ticker,
		Period:        h.Period,
		StartDate:     first.Date,
		EndDate:       last.Date,
		FirstClose:    first.Close,
		LastClose:     last.Close,
		PriceChange:   change,
		PercentChange: percent,
	}, nil
}
