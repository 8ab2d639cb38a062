package normalize

import (
	"fmt"
	"sort"
	"time"
)

// DefaultAnnualPeriodLabel is the quarter label assigned to annual
// reporting periods. Treating a full fiscal year as "Q4" keeps periods
// sortable alongside quarterly data, but it is a source-observed
// approximation rather than a guaranteed convention, so it stays
// configurable.
const DefaultAnnualPeriodLabel = "Q4"

// LineItem is a single canonical financial-statement line.
type LineItem struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
	Label string  `json:"label"`
}

// FinancialPeriod is one canonical reporting period.
type FinancialPeriod struct {
	// FiscalYear is the 4-digit year of the period end date.
	FiscalYear string `json:"fiscal_year"`

	// FiscalPeriod is a quarter label Q1..Q4 (annual periods use the
	// configured annual label).
	FiscalPeriod string `json:"fiscal_period"`

	// Timeframe echoes the request: annual, quarterly or ttm.
	Timeframe string `json:"timeframe"`

	// EndDate is the period end date, YYYY-MM-DD.
	EndDate string `json:"end_date"`

	// Financials maps canonical line-item keys (e.g. "total_revenue")
	// to their values. Lines whose value is not a finite number are
	// dropped, never zero-filled.
	Financials map[string]LineItem `json:"financials"`
}

// FinancialsOptions controls financial-statement normalization.
type FinancialsOptions struct {
	// Timeframe is echoed into each period: annual, quarterly or ttm.
	Timeframe string

	// Limit caps the number of returned periods (most recent first).
	// Zero means no cap.
	Limit int

	// AnnualPeriodLabel is the fiscal-period label for annual periods.
	// Defaults to DefaultAnnualPeriodLabel.
	AnnualPeriodLabel string
}

// statement table keys in a raw Yahoo financials document.
var yahooStatements = []string{"income_statement", "balance_sheet", "cash_flow"}

// polygon statement section keys inside results[].financials.
var polygonStatements = []string{"income_statement", "balance_sheet", "cash_flow_statement", "comprehensive_income"}

// NormalizeFinancials maps a raw provider financials document onto an
// ordered sequence of canonical periods, most recent first.
func NormalizeFinancials(p Provider, raw map[string]any, opts FinancialsOptions) ([]FinancialPeriod, error) {
	if opts.AnnualPeriodLabel == "" {
		opts.AnnualPeriodLabel = DefaultAnnualPeriodLabel
	}

	var (
		periods []FinancialPeriod
		err     error
	)
	switch p {
	case ProviderYahoo:
		periods, err = yahooFinancials(raw, opts)
	case ProviderPolygon:
		periods, err = polygonFinancials(raw, opts)
	default:
		return nil, &ShapeError{Kind: "financials", Reason: "unknown provider " + string(p)}
	}
	if err != nil {
		return nil, err
	}

	if len(periods) == 0 {
		return nil, ErrNoData
	}

	// Most recent period first. Ties (one statement per period) keep
	// their existing order.
	sort.SliceStable(periods, func(i, j int) bool {
		return periods[i].EndDate > periods[j].EndDate
	})

	if opts.Limit > 0 && len(periods) > opts.Limit {
		periods = periods[:opts.Limit]
	}

	return periods, nil
}

// yahooFinancials maps statement tables keyed label -> end-date -> value
// (the yfinance frame shape).
func yahooFinancials(raw map[string]any, opts FinancialsOptions) ([]FinancialPeriod, error) {
	found := false
	byEndDate := make(map[string]*FinancialPeriod)

	for _, stmt := range yahooStatements {
		table := getMap(raw, stmt)
		if table == nil {
			continue
		}
		found = true

		for label, columns := range table {
			cols, ok := columns.(map[string]any)
			if !ok {
				continue
			}
			key := canonicalKey(label)

			for col, value := range cols {
				endDate, ok := parseEndDate(col)
				if !ok {
					// Columns without a usable year cannot be sorted
					// chronologically and are excluded entirely.
					continue
				}

				v, ok := asFloat(value)
				if !ok {
					continue
				}

				period := byEndDate[endDate]
				if period == nil {
					period = newPeriod(endDate, opts)
					byEndDate[endDate] = period
				}
				period.Financials[key] = LineItem{Value: v, Unit: "USD", Label: label}
			}
		}
	}

	if !found {
		return nil, &ShapeError{Kind: "financials", Reason: "no statement tables"}
	}

	periods := make([]FinancialPeriod, 0, len(byEndDate))
	for _, p := range byEndDate {
		periods = append(periods, *p)
	}
	return periods, nil
}

// polygonFinancials maps a /vX/reference/financials response.
func polygonFinancials(raw map[string]any, opts FinancialsOptions) ([]FinancialPeriod, error) {
	results := getSlice(raw, "results")
	if results == nil {
		return nil, &ShapeError{Kind: "financials", Reason: "missing results array"}
	}

	periods := make([]FinancialPeriod, 0, len(results))
	for _, r := range results {
		result, ok := r.(map[string]any)
		if !ok {
			continue
		}

		endDateRaw := getString(result, "end_date")
		if endDateRaw == nil {
			continue
		}
		endDate, ok := parseEndDate(*endDateRaw)
		if !ok {
			continue
		}

		period := newPeriod(endDate, opts)
		if fy := getString(result, "fiscal_year"); fy != nil {
			period.FiscalYear = *fy
		}
		if fp := getString(result, "fiscal_period"); fp != nil {
			if *fp == "FY" {
				period.FiscalPeriod = opts.AnnualPeriodLabel
			} else {
				period.FiscalPeriod = *fp
			}
		}

		sections := getMap(result, "financials")
		for _, stmt := range polygonStatements {
			section := getMap(sections, stmt)
			for key, item := range section {
				line, ok := item.(map[string]any)
				if !ok {
					continue
				}
				v, ok := asFloat(line["value"])
				if !ok {
					continue
				}

				unit := "USD"
				if u := getString(line, "unit"); u != nil {
					unit = *u
				}
				label := key
				if l := getString(line, "label"); l != nil {
					label = *l
				}
				period.Financials[canonicalKey(key)] = LineItem{Value: v, Unit: unit, Label: label}
			}
		}

		periods = append(periods, *period)
	}

	return periods, nil
}

// newPeriod builds a period skeleton from its end date.
func newPeriod(endDate string, opts FinancialsOptions) *FinancialPeriod {
	end, _ := time.Parse("2006-01-02", endDate)

	fiscalPeriod := opts.AnnualPeriodLabel
	if opts.Timeframe == "quarterly" {
		fiscalPeriod = fmt.Sprintf("Q%d", (int(end.Month())+2)/3)
	}

	return &FinancialPeriod{
		FiscalYear:   end.Format("2006"),
		FiscalPeriod: fiscalPeriod,
		Timeframe:    opts.Timeframe,
		EndDate:      endDate,
		Financials:   make(map[string]LineItem),
	}
}

// parseEndDate normalizes a column header to YYYY-MM-DD. Headers may
// carry a trailing timestamp ("2023-09-30 00:00:00"). Returns false for
// headers without a parseable date.
func parseEndDate(col string) (string, bool) {
	if len(col) > 10 {
		col = col[:10]
	}
	t, err := time.Parse("2006-01-02", col)
	if err != nil {
		return "", false
	}
	return t.Format("2006-01-02"), true
}
