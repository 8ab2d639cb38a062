package normalize

import (
	"errors"
	"testing"
	"time"
)

func chartDoc(timestamps []any, quote map[string]any) map[string]any {
	return map[string]any{
		"chart": map[string]any{
			"result": []any{
				map[string]any{
					"timestamp": timestamps,
					"indicators": map[string]any{
						"quote": []any{quote},
					},
				},
			},
		},
	}
}

func unixDay(t *testing.T, date string) float64 {
	t.Helper()
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		t.Fatalf("bad test date %q: %v", date, err)
	}
	return float64(day.Unix())
}

func TestNormalizeHistory_Yahoo(t *testing.T) {
	raw := chartDoc(
		[]any{unixDay(t, "2024-01-05"), unixDay(t, "2024-01-01")},
		map[string]any{
			"open":   []any{109.4567, 99.123},
			"high":   []any{111.999, 101.005},
			"low":    []any{108.3, 98.7},
			"close":  []any{110.456, 100.004},
			"volume": []any{52345678.0, 48765432.0},
		},
	)

	h, err := NormalizeHistory(ProviderYahoo, raw, "AAPL", "7d")
	if err != nil {
		t.Fatalf("NormalizeHistory failed: %v", err)
	}

	if h.Count != 2 || len(h.Points) != 2 {
		t.Fatalf("Count = %d, want 2", h.Count)
	}

	// Ascending by date regardless of upstream order
	if h.Points[0].Date != "2024-01-01" || h.Points[1].Date != "2024-01-05" {
		t.Errorf("dates = [%s, %s], want ascending", h.Points[0].Date, h.Points[1].Date)
	}

	first := h.Points[0]
	if first.Open != 99.12 || first.Close != 100.0 {
		t.Errorf("first bar = open %v close %v, want 2-decimal rounding", first.Open, first.Close)
	}
	if first.Volume != 48765432 {
		t.Errorf("Volume = %d, want integral 48765432", first.Volume)
	}
}

func TestNormalizeHistory_DropsIncompleteBars(t *testing.T) {
	raw := chartDoc(
		[]any{unixDay(t, "2024-01-01"), unixDay(t, "2024-01-02")},
		map[string]any{
			"open":   []any{100.0, nil},
			"high":   []any{101.0, nil},
			"low":    []any{99.0, nil},
			"close":  []any{100.5, nil},
			"volume": []any{1000.0, nil},
		},
	)

	h, err := NormalizeHistory(ProviderYahoo, raw, "AAPL", "7d")
	if err != nil {
		t.Fatalf("NormalizeHistory failed: %v", err)
	}
	if h.Count != 1 {
		t.Errorf("Count = %d, want 1 (null bar dropped)", h.Count)
	}
}

func TestNormalizeHistory_NoData(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
	}{
		{
			name: "empty result array",
			raw:  map[string]any{"chart": map[string]any{"result": []any{}}},
		},
		{
			name: "empty series",
			raw: chartDoc([]any{}, map[string]any{
				"open": []any{}, "high": []any{}, "low": []any{}, "close": []any{}, "volume": []any{},
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeHistory(ProviderYahoo, tt.raw, "UNKNOWN", "7d")
			if !errors.Is(err, ErrNoData) {
				t.Errorf("error = %v, want ErrNoData", err)
			}
		})
	}
}

func TestNormalizeHistory_UnrecognizedShape(t *testing.T) {
	_, err := NormalizeHistory(ProviderYahoo, map[string]any{"unexpected": true}, "AAPL", "7d")
	var shapeErr *ShapeError
	if !errors.As(err, &shapeErr) {
		t.Errorf("error = %v, want ShapeError", err)
	}
}

func TestSummarize(t *testing.T) {
	h := &History{
		Ticker: "AAPL",
		Period: "7d",
		Points: []HistoryPoint{
			{Date: "2024-01-01", Close: 100},
			{Date: "2024-01-05", Close: 110},
		},
	}

	s, err := Summarize(h)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if s.PriceChange != 10 {
		t.Errorf("PriceChange = %v, want 10", s.PriceChange)
	}
	if s.PercentChange != 10.0 {
		t.Errorf("PercentChange = %v, want 10.0", s.PercentChange)
	}
	if s.StartDate != "2024-01-01" || s.EndDate != "2024-01-05" {
		t.Errorf("window = [%s, %s], want series bounds", s.StartDate, s.EndDate)
	}
}

func TestSummarize_ZeroFirstClose(t *testing.T) {
	h := &History{
		Ticker: "XYZ",
		Period: "7d",
		Points: []HistoryPoint{
			{Date: "2024-01-01", Close: 0},
			{Date: "2024-01-05", Close: 5},
		},
	}

	s, err := Summarize(h)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if s.PercentChange != 0 {
		t.Errorf("PercentChange = %v, want 0 (zero-division guard)", s.PercentChange)
	}
	if s.PriceChange != 5 {
		t.Errorf("PriceChange = %v, want 5", s.PriceChange)
	}
}

func TestSummarize_EmptySeries(t *testing.T) {
	if _, err := Summarize(&History{}); !errors.Is(err, ErrNoData) {
		t.Errorf("error = %v, want ErrNoData", err)
	}
}
