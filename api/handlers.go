/*
handlers.go - HTTP API handlers for the payroll engine

PURPOSE:
  Exposes work entries, the monthly summary and the tax engine via REST.
  Handles HTTP request/response and JSON serialization, and delegates to
  the summary service and the stores.

ENDPOINTS:
  Entries:
    GET    /api/entries?from=&to=     Entries in a date range
    POST   /api/entries               Create entry
    GET    /api/entries/{id}          Get entry
    PUT    /api/entries/{id}          Replace entry
    DELETE /api/entries/{id}          Delete entry

  Summary:
    GET    /api/months/{year}/{month} Monthly aggregate + net estimate

  Settings:
    GET    /api/settings              Effective settings
    PUT    /api/settings              Merge a partial document and save

  Tax:
    POST   /api/net                   Gross to net
    POST   /api/gross-from-net        Net to gross (iterative)

  Calendar:
    GET    /api/holidays/{year}       National holidays + patron saint

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Entries and settings persistence
  - Summary: Month aggregation and net estimation
  - Settings: JSON to Settings conversion

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, malformed breakdowns
  - 404: Entry not found
  - 409: Second entry for the same date
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bzrenis/workt-sub001/factory"
	"github.com/bzrenis/workt-sub001/generic"
	"github.com/bzrenis/workt-sub001/monthly"
	"github.com/bzrenis/workt-sub001/summary"
	"github.com/bzrenis/workt-sub001/tax"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is the persistence the API needs on top of the summary stores.
type Store interface {
	summary.Store
	Reset(ctx context.Context) error
	Ping(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    Store
	Summary  *summary.Service
	Settings *factory.SettingsFactory

	logger *zap.Logger

	// Track currently loaded scenario
	mu              sync.RWMutex
	currentScenario string
}

// NewHandler creates a new handler.
func NewHandler(store Store, svc *summary.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Store:    store,
		Summary:  svc,
		Settings: factory.NewSettingsFactory(),
		logger:   logger,
	}
}

// =============================================================================
// ENTRY HANDLERS
// =============================================================================

// ListEntries returns the entries between from and to (inclusive).
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := generic.ParseDate(q.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
		return
	}
	to, err := generic.ParseDate(q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
		return
	}
	period := generic.Period{Start: from, End: to}
	if err := period.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}

	entries, err := h.Store.EntriesInRange(r.Context(), period)
	if err != nil {
		h.writeDomainError(w, r, "Failed to list entries", err)
		return
	}

	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEntry returns a single entry.
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	e, err := h.Store.GetEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, "Failed to get entry", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTO(e))
}

// CreateEntry creates a new entry.
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req SaveEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.ID = ""
	h.saveEntry(w, r, req, http.StatusCreated)
}

// UpdateEntry replaces an existing entry.
func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.Store.GetEntry(r.Context(), id); err != nil {
		h.writeDomainError(w, r, "Failed to get entry", err)
		return
	}

	var req SaveEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.ID = id
	h.saveEntry(w, r, req, http.StatusOK)
}

func (h *Handler) saveEntry(w http.ResponseWriter, r *http.Request, req SaveEntryRequest, status int) {
	date, err := generic.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	if req.MealLunchCash < 0 || req.MealDinnerCash < 0 {
		writeError(w, http.StatusBadRequest, "Meal cash amounts must not be negative", nil)
		return
	}

	entry := req.toEntry(date)
	if entry.Breakdown != nil {
		if _, err := monthly.DecodeBreakdown(entry.Breakdown); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid breakdown", err)
			return
		}
	}

	saved, err := h.Store.SaveEntry(r.Context(), entry)
	if err != nil {
		h.writeDomainError(w, r, "Failed to save entry", err)
		return
	}
	writeJSON(w, status, toEntryDTO(saved))
}

// DeleteEntry removes an entry.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteEntry(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, r, "Failed to delete entry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SUMMARY HANDLERS
// =============================================================================

// GetMonth returns the monthly summary.
// GET /api/months/{year}/{month}
func (h *Handler) GetMonth(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return
	}

	sum, err := h.Summary.Month(r.Context(), year, month)
	if err != nil {
		h.writeDomainError(w, r, "Failed to compute month", err)
		return
	}
	writeJSON(w, http.StatusOK, toMonthSummaryDTO(sum))
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// GetSettings returns the effective settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	st, err := h.Store.LoadSettings(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "Failed to load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Settings.ToJSON(st))
}

// UpdateSettings merges a partial settings document over the current
// settings and saves the result.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req factory.SettingsJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	current, err := h.Store.LoadSettings(ctx)
	if err != nil {
		h.writeDomainError(w, r, "Failed to load settings", err)
		return
	}

	merged, err := h.Settings.FromJSON(current, req)
	if err != nil {
		h.writeDomainError(w, r, "Invalid settings", err)
		return
	}
	if err := h.Store.SaveSettings(ctx, merged); err != nil {
		h.writeDomainError(w, r, "Failed to save settings", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Settings.ToJSON(merged))
}

// =============================================================================
// TAX HANDLERS
// =============================================================================

// CalculateNet converts a gross monthly amount.
// POST /api/net
func (h *Handler) CalculateNet(w http.ResponseWriter, r *http.Request) {
	var req NetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ns, err := h.netSettings(r.Context(), req.Method, req.CustomDeductionRate)
	if err != nil {
		h.writeDomainError(w, r, "Invalid net calculation settings", err)
		return
	}

	result := h.Summary.Net(decimal.NewFromFloat(req.Gross), ns)
	writeJSON(w, http.StatusOK, toNetDTO(result))
}

// GrossFromNet finds the gross that yields the requested net.
// POST /api/gross-from-net
func (h *Handler) GrossFromNet(w http.ResponseWriter, r *http.Request) {
	var req GrossFromNetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Net < 0 {
		writeError(w, http.StatusBadRequest, "Net must not be negative", nil)
		return
	}

	ns, err := h.netSettings(r.Context(), req.Method, req.CustomDeductionRate)
	if err != nil {
		h.writeDomainError(w, r, "Invalid net calculation settings", err)
		return
	}

	inv := h.Summary.GrossFromNet(decimal.NewFromFloat(req.Net), ns)
	writeJSON(w, http.StatusOK, GrossFromNetDTO{
		Gross:      toFloat(inv.Estimate),
		Converged:  inv.Converged,
		Iterations: inv.Iterations,
	})
}

// netSettings starts from the saved settings and applies the overrides.
func (h *Handler) netSettings(ctx context.Context, method *string, rate *float64) (tax.Settings, error) {
	st, err := h.Store.LoadSettings(ctx)
	if err != nil {
		return tax.Settings{}, err
	}
	ns := st.NetCalculation
	if method != nil {
		ns.Method = tax.Method(strings.ToLower(strings.TrimSpace(*method)))
	}
	if rate != nil {
		ns.CustomDeductionRate = decimal.NewFromFloat(*rate)
	}

	st.NetCalculation = ns
	if err := st.Validate(); err != nil {
		return tax.Settings{}, err
	}
	return ns, nil
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns the holidays of a year for the saved patron saint.
// GET /api/holidays/{year}
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1900 || year > 9999 {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	st, err := h.Store.LoadSettings(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "Failed to load settings", err)
		return
	}

	holidays := st.Calendar().HolidaysIn(year)
	dtos := make([]HolidayDTO, len(holidays))
	for i, hd := range holidays {
		dtos[i] = HolidayDTO{Date: hd.Date.String(), Name: hd.Name, Recurring: hd.Recurring}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HEALTH
// =============================================================================

// Health reports liveness and database reachability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.Store.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "database": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain errors to HTTP status codes.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, message string, err error) {
	switch {
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Entry not found", err)
	case generic.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, context.Canceled):
		// client went away
		w.WriteHeader(499)
	default:
		h.logger.Error(message,
			zap.Error(err),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
