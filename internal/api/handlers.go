// Package api exposes the proxy's HTTP surface: route wiring,
// parameter validation, CORS, and the mapping of core errors onto
// HTTP responses.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/marketdash/market-proxy/pkg/cache"
	"github.com/marketdash/market-proxy/pkg/logging"
	"github.com/marketdash/market-proxy/pkg/normalize"
	"github.com/marketdash/market-proxy/pkg/provider"
	"github.com/marketdash/market-proxy/pkg/provider/polygon"
	"github.com/marketdash/market-proxy/pkg/provider/yahoo"
)

// Handler serves the market-data API. All dependencies are injected;
// there is no package-level state.
type Handler struct {
	cache       *cache.Cache
	polygon     *polygon.Client
	yahoo       *yahoo.Client
	annualLabel string
	logger      zerolog.Logger
}

// New creates the API handler.
func New(c *cache.Cache, pg *polygon.Client, yh *yahoo.Client, annualLabel string) *Handler {
	if annualLabel == "" {
		annualLabel = normalize.DefaultAnnualPeriodLabel
	}
	return &Handler{
		cache:       c,
		polygon:     pg,
		yahoo:       yh,
		annualLabel: annualLabel,
		logger:      logging.NewLogger("api"),
	}
}

// Routes returns the route table.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("GET /api/ticker/{ticker}", h.overview)
	mux.HandleFunc("GET /api/ticker/{ticker}/financials", h.financials)
	mux.HandleFunc("GET /api/ticker/{ticker}/history", h.history)
	mux.HandleFunc("GET /api/ticker/{ticker}/price-summary", h.priceSummary)
	mux.HandleFunc("GET /api/ticker/{ticker}/snapshot", h.snapshot)
	return mux
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"healthy","cache_ttl":%d}`, int(h.cache.TTL(cache.KindOverview).Seconds()))
}

// financialsResponse is the envelope around normalized statement periods.
type financialsResponse struct {
	Ticker    string                      `json:"ticker"`
	Timeframe string                      `json:"timeframe"`
	Count     int                         `json:"count"`
	Results   []normalize.FinancialPeriod `json:"results"`
}

func (h *Handler) overview(w http.ResponseWriter, r *http.Request) {
	ticker := r.PathValue("ticker")
	if err := validateTicker(ticker); err != nil {
		h.writeError(w, cache.KindOverview, err)
		return
	}
	date, err := optionalDate(r.URL.Query(), "date")
	if err != nil {
		h.writeError(w, cache.KindOverview, err)
		return
	}

	doc, status, err := h.cache.LookupOrFetch(r.Context(), cache.KindOverview, ticker, nil, date,
		func(ctx context.Context) (any, error) {
			raw, err := h.polygon.TickerOverview(ctx, strings.ToUpper(ticker), date)
			if err != nil {
				return nil, err
			}
			return normalize.NormalizeOverview(normalize.ProviderPolygon, raw)
		})
	if err != nil {
		h.writeError(w, cache.KindOverview, err)
		return
	}

	h.writeDocument(w, cache.KindOverview, doc, status)
}

func (h *Handler) financials(w http.ResponseWriter, r *http.Request) {
	ticker := r.PathValue("ticker")
	if err := validateTicker(ticker); err != nil {
		h.writeError(w, cache.KindFinancials, err)
		return
	}

	q := r.URL.Query()
	timeframe, err := timeframeParam(q)
	if err != nil {
		h.writeError(w, cache.KindFinancials, err)
		return
	}
	limit, err := limitParam(q)
	if err != nil {
		h.writeError(w, cache.KindFinancials, err)
		return
	}
	order, err := orderParam(q)
	if err != nil {
		h.writeError(w, cache.KindFinancials, err)
		return
	}
	filingDate, err := optionalDate(q, "filing_date")
	if err != nil {
		h.writeError(w, cache.KindFinancials, err)
		return
	}
	reportDate, err := optionalDate(q, "period_of_report_date")
	if err != nil {
		h.writeError(w, cache.KindFinancials, err)
		return
	}
	sortField := q.Get("sort")

	// Every parameter appears in the bag, unset ones as empty markers,
	// so each distinct filter combination gets its own cache entry.
	params := map[string]string{
		"timeframe":             timeframe,
		"limit":                 strconv.Itoa(limit),
		"sort":                  sortField,
		"order":                 order,
		"filing_date":           filingDate,
		"period_of_report_date": reportDate,
	}

	upperTicker := strings.ToUpper(ticker)
	doc, status, err := h.cache.LookupOrFetch(r.Context(), cache.KindFinancials, ticker, params, "",
		func(ctx context.Context) (any, error) {
			raw, err := h.polygon.Financials(ctx, upperTicker, polygon.FinancialsQuery{
				Timeframe:          timeframe,
				Limit:              limit,
				Sort:               sortField,
				Order:              order,
				FilingDate:         filingDate,
				PeriodOfReportDate: reportDate,
			})
			if err != nil {
				return nil, err
			}

			periods, err := normalize.NormalizeFinancials(normalize.ProviderPolygon, raw, normalize.FinancialsOptions{
				Timeframe:         timeframe,
				Limit:             limit,
				AnnualPeriodLabel: h.annualLabel,
			})
			if err != nil {
				return nil, err
			}

			return &financialsResponse{
				Ticker:    upperTicker,
				Timeframe: timeframe,
				Count:     len(periods),
				Results:   periods,
			}, nil
		})
	if err != nil {
		h.writeError(w, cache.KindFinancials, err)
		return
	}

	h.writeDocument(w, cache.KindFinancials, doc, status)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	h.serveHistory(w, r, cache.KindHistory)
}

func (h *Handler) priceSummary(w http.ResponseWriter, r *http.Request) {
	h.serveHistory(w, r, cache.KindPriceSummary)
}

// serveHistory handles both the history series and its derived
// price-summary view; the two differ only in the final mapping step.
func (h *Handler) serveHistory(w http.ResponseWriter, r *http.Request, kind cache.ResourceKind) {
	ticker := r.PathValue("ticker")
	if err := validateTicker(ticker); err != nil {
		h.writeError(w, kind, err)
		return
	}
	period, err := periodParam(r.URL.Query())
	if err != nil {
		h.writeError(w, kind, err)
		return
	}

	params := map[string]string{"period": period}
	upperTicker := strings.ToUpper(ticker)

	doc, status, err := h.cache.LookupOrFetch(r.Context(), kind, ticker, params, "",
		func(ctx context.Context) (any, error) {
			raw, err := h.yahoo.History(ctx, upperTicker, period)
			if err != nil {
				return nil, err
			}
			history, err := normalize.NormalizeHistory(normalize.ProviderYahoo, raw, upperTicker, period)
			if err != nil {
				return nil, err
			}
			if kind == cache.KindPriceSummary {
				return normalize.Summarize(history)
			}
			return history, nil
		})
	if err != nil {
		h.writeError(w, kind, err)
		return
	}

	h.writeDocument(w, kind, doc, status)
}

func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	ticker := r.PathValue("ticker")
	if err := validateTicker(ticker); err != nil {
		h.writeError(w, cache.KindSnapshot, err)
		return
	}

	// Single-source resource: the provider's structure passes through
	// unchanged.
	doc, status, err := h.cache.LookupOrFetch(r.Context(), cache.KindSnapshot, ticker, nil, "",
		func(ctx context.Context) (any, error) {
			return h.polygon.Snapshot(ctx, strings.ToUpper(ticker))
		})
	if err != nil {
		h.writeError(w, cache.KindSnapshot, err)
		return
	}

	h.writeDocument(w, cache.KindSnapshot, doc, status)
}

// writeDocument writes a cached JSON document with cache disposition
// headers.
func (h *Handler) writeDocument(w http.ResponseWriter, kind cache.ResourceKind, doc []byte, status cache.Status) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", string(status))
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(h.cache.TTL(kind).Seconds())))
	w.Write(doc)
}

// writeError maps core errors onto HTTP responses: invalid parameters
// are rejected with 400, an upstream non-success is propagated with its
// status and body untouched, an empty result set becomes 404, and an
// unrecognized document shape becomes 500.
func (h *Handler) writeError(w http.ResponseWriter, kind cache.ResourceKind, err error) {
	var paramErr *paramError
	if errors.As(err, &paramErr) {
		writeJSONError(w, http.StatusBadRequest, paramErr.Error())
		return
	}

	var upstreamErr *provider.Error
	if errors.As(err, &upstreamErr) {
		h.logger.Warn().
			Str("kind", string(kind)).
			Int("status", upstreamErr.StatusCode).
			Msg("upstream error")
		if len(upstreamErr.Body) > 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(upstreamErr.StatusCode)
			w.Write(upstreamErr.Body)
			return
		}
		writeJSONError(w, upstreamErr.StatusCode, "upstream error")
		return
	}

	if errors.Is(err, normalize.ErrNoData) {
		writeJSONError(w, http.StatusNotFound, "no data for requested resource")
		return
	}

	var shapeErr *normalize.ShapeError
	if errors.As(err, &shapeErr) {
		h.logger.Error().
			Str("kind", string(kind)).
			Str("reason", shapeErr.Reason).
			Msg("unrecognized upstream document shape")
		writeJSONError(w, http.StatusInternalServerError, "upstream document could not be normalized")
		return
	}

	h.logger.Error().Err(err).Str("kind", string(kind)).Msg("request failed")
	writeJSONError(w, http.StatusBadGateway, "upstream request failed")
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
