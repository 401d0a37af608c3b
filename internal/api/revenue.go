package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dennisdiepolder/fleetpulse/internal/aggregator"
	"github.com/dennisdiepolder/fleetpulse/internal/cache"
	"github.com/dennisdiepolder/fleetpulse/internal/metrics"
	"github.com/dennisdiepolder/fleetpulse/internal/shiftclock"
	"github.com/dennisdiepolder/fleetpulse/internal/storage"
	"github.com/dennisdiepolder/fleetpulse/internal/types"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// RevenueHandler serves weekly revenue reports and records ledger entries
type RevenueHandler struct {
	roster *cache.RosterStore
	store  storage.Store
	weeks  cache.WeekCache
	clock  shiftclock.Clock
	logger zerolog.Logger
}

// NewRevenueHandler creates a new RevenueHandler
func NewRevenueHandler(roster *cache.RosterStore, store storage.Store, weeks cache.WeekCache, clock shiftclock.Clock, logger zerolog.Logger) *RevenueHandler {
	return &RevenueHandler{
		roster: roster,
		store:  store,
		weeks:  weeks,
		clock:  clock,
		logger: logger.With().Str("component", "revenue_handler").Logger(),
	}
}

// GetWeek returns the report for the week containing ?start, or the
// current week when it is omitted
// GET /api/revenue/week
func (h *RevenueHandler) GetWeek(w http.ResponseWriter, r *http.Request) {
	window := aggregator.MondayOf(h.clock.Now())

	if start := r.URL.Query().Get("start"); start != "" {
		var err error
		window, err = aggregator.ParseWeek(start)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	h.serveWeek(w, r, window)
}

// NavigateWeek returns the report for the week before or after {start}
// GET /api/revenue/week/{start}/{direction}
func (h *RevenueHandler) NavigateWeek(w http.ResponseWriter, r *http.Request) {
	start, err := time.Parse(types.DateLayout, chi.URLParam(r, "start"))
	if err != nil {
		http.Error(w, "start must be a date (YYYY-MM-DD)", http.StatusBadRequest)
		return
	}
	if start.Weekday() != time.Monday {
		http.Error(w, "start must be a Monday", http.StatusBadRequest)
		return
	}

	direction, err := aggregator.ParseDirection(chi.URLParam(r, "direction"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.serveWeek(w, r, aggregator.NavigateWeek(aggregator.WeekWindow{Start: start}, direction))
}

func (h *RevenueHandler) serveWeek(w http.ResponseWriter, r *http.Request, window aggregator.WeekWindow) {
	report, err := h.Report(r.Context(), window)
	if err != nil {
		h.logger.Error().Err(err).Str("week_start", window.String()).Msg("failed to build week report")
		http.Error(w, "failed to build week report", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Report builds the report for window from the current roster and the
// ledger. Finished weeks are served from and written to the week cache.
func (h *RevenueHandler) Report(ctx context.Context, window aggregator.WeekWindow) (types.WeekReport, error) {
	m := metrics.Get()
	roster := h.roster.Snapshot()

	// the running week still collects revenue
	cacheable := !window.Contains(h.clock.Now())

	if cacheable {
		cached, ok, err := h.weeks.Get(ctx, window.String(), roster.Version)
		if err != nil {
			h.logger.Warn().Err(err).Str("week_start", window.String()).Msg("week cache read failed")
		}
		m.RecordWeekCache(ok)
		if ok {
			return *cached, nil
		}
	}

	start := time.Now()

	driverIDs := make([]string, len(roster.Drivers))
	for i, d := range roster.Drivers {
		driverIDs[i] = d.ID
	}

	entries, err := h.store.GetDailyRevenue(ctx, driverIDs, window.Start, window.End())
	if err != nil {
		m.RecordLedgerError()
		return types.WeekReport{}, fmt.Errorf("failed to load revenue for week %s: %w", window, err)
	}

	amounts := make(map[string]float64, len(entries))
	for _, e := range entries {
		amounts[e.DriverID+"|"+e.Date] += e.Amount
	}

	report := aggregator.BuildReport(window, roster.Drivers, func(date time.Time, driverID string) float64 {
		return amounts[driverID+"|"+date.Format(types.DateLayout)]
	})
	m.RecordWeekBuilt(time.Since(start))

	if cacheable {
		if err := h.weeks.Set(ctx, window.String(), roster.Version, report); err != nil {
			h.logger.Warn().Err(err).Str("week_start", window.String()).Msg("week cache write failed")
		}
	}

	h.logger.Debug().
		Str("week_start", report.WeekStart).
		Int("drivers", len(roster.Drivers)).
		Int("ledger_rows", len(entries)).
		Float64("week_total", report.WeekTotal).
		Msg("week report built")

	return report, nil
}

// RecordRevenue stores one driver's revenue for one day
// POST /api/revenue
func (h *RevenueHandler) RecordRevenue(w http.ResponseWriter, r *http.Request) {
	var entry types.RevenueEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	entry.DriverID = strings.TrimSpace(entry.DriverID)
	if _, ok := h.roster.Driver(entry.DriverID); !ok {
		http.Error(w, fmt.Sprintf("unknown driver %q", entry.DriverID), http.StatusBadRequest)
		return
	}

	date, err := time.Parse(types.DateLayout, entry.Date)
	if err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	if entry.Amount < 0 {
		http.Error(w, "amount must not be negative", http.StatusBadRequest)
		return
	}

	if err := h.store.SaveDailyRevenue(r.Context(), entry); err != nil {
		metrics.Get().RecordLedgerError()
		h.logger.Error().Err(err).
			Str("driver_id", entry.DriverID).
			Str("date", entry.Date).
			Msg("failed to save revenue")
		http.Error(w, "failed to save revenue", http.StatusInternalServerError)
		return
	}
	metrics.Get().RecordRevenueSaved()

	week := aggregator.MondayOf(date)
	if err := h.weeks.Delete(r.Context(), week.String(), h.roster.Version()); err != nil {
		h.logger.Warn().Err(err).Str("week_start", week.String()).Msg("week cache eviction failed")
	}

	h.logger.Info().
		Str("driver_id", entry.DriverID).
		Str("date", entry.Date).
		Float64("amount", entry.Amount).
		Msg("revenue recorded")

	writeJSON(w, http.StatusCreated, entry)
}
