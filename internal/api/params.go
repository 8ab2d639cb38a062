package api

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
)

// Validation rules for query parameters. Invalid parameters are
// rejected here, before any request reaches the cache or a provider.
var (
	datePattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	tickerPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9.\-]{0,9}$`)

	validPeriods    = map[string]bool{"7d": true, "3mo": true, "6mo": true, "1y": true}
	validTimeframes = map[string]bool{"annual": true, "quarterly": true, "ttm": true}
	validOrders     = map[string]bool{"asc": true, "desc": true}
)

// paramError reports a rejected request parameter.
type paramError struct {
	name   string
	reason string
}

func (e *paramError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.name, e.reason)
}

func validateTicker(ticker string) error {
	if !tickerPattern.MatchString(ticker) {
		return &paramError{name: "ticker", reason: "must be 1-10 symbol characters"}
	}
	return nil
}

// optionalDate validates an optional YYYY-MM-DD query parameter.
func optionalDate(q url.Values, name string) (string, error) {
	v := q.Get(name)
	if v == "" {
		return "", nil
	}
	if !datePattern.MatchString(v) {
		return "", &paramError{name: name, reason: "must be YYYY-MM-DD"}
	}
	return v, nil
}

// periodParam validates the history period, defaulting to 7d.
func periodParam(q url.Values) (string, error) {
	v := q.Get("period")
	if v == "" {
		return "7d", nil
	}
	if !validPeriods[v] {
		return "", &paramError{name: "period", reason: "must be one of 7d, 3mo, 6mo, 1y"}
	}
	return v, nil
}

// timeframeParam validates the financials timeframe, defaulting to annual.
func timeframeParam(q url.Values) (string, error) {
	v := q.Get("timeframe")
	if v == "" {
		return "annual", nil
	}
	if !validTimeframes[v] {
		return "", &paramError{name: "timeframe", reason: "must be annual, quarterly or ttm"}
	}
	return v, nil
}

// orderParam validates the optional sort order.
func orderParam(q url.Values) (string, error) {
	v := q.Get("order")
	if v == "" {
		return "", nil
	}
	if !validOrders[v] {
		return "", &paramError{name: "order", reason: "must be asc or desc"}
	}
	return v, nil
}

// limitParam validates the result limit, range [1,100], defaulting to 8.
func limitParam(q url.Values) (int, error) {
	v := q.Get("limit")
	if v == "" {
		return 8, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > 100 {
		return 0, &paramError{name: "limit", reason: "must be an integer in [1,100]"}
	}
	return n, nil
}
