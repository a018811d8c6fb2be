/*
scenarios.go - Demo months for testing and demonstrations

PURPOSE:

	Provides pre-built months that populate the database with realistic
	entries (each with its breakdown) so the summary screen can be shown
	without a client computing breakdowns.

AVAILABLE SCENARIOS:

	ordinary-month:  Weekdays of 8 hours, travel allowance on half of them
	standby-week:    Ordinary days plus a standby week with night call-outs
	overtime-month:  Long days with extra work and travel hours, dinner cash

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Save settings
 3. Save one entry per worked day of March 2025, each with its breakdown

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "standby-week"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Entry and summary handlers
  - factory/settings.go: Default settings
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bzrenis/workt-sub001/factory"
	"github.com/bzrenis/workt-sub001/generic"
	"github.com/bzrenis/workt-sub001/monthly"
	"github.com/bzrenis/workt-sub001/settings"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "ordinary-month",
		Name:        "Ordinary Month",
		Description: "March 2025, 8-hour weekdays, full travel allowance every other day",
	},
	{
		ID:          "standby-week",
		Name:        "Standby Week",
		Description: "Ordinary days plus a standby week with night interventions",
	},
	{
		ID:          "overtime-month",
		Name:        "Overtime Month",
		Description: "10-hour days with extra work and travel, dinner cash reimbursed",
	},
}

var scenarioLoaders = map[string]func(h *Handler, ctx context.Context) error{
	"ordinary-month": (*Handler).loadOrdinaryMonthScenario,
	"standby-week":   (*Handler).loadStandbyWeekScenario,
	"overtime-month": (*Handler).loadOvertimeMonthScenario,
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	current := h.currentScenario
	h.mu.RUnlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	load, ok := scenarioLoaders[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	ctx := r.Context()
	h.mu.Lock()
	defer h.mu.Unlock()

	// Reset first
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	if err := load(h, ctx); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all entries and settings.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

const scenarioYear, scenarioMonth = 2025, time.March

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ordinaryDay is an 8-hour weekday at the level 5 daily rate.
func ordinaryDay(s settings.Settings) monthly.DailyBreakdown {
	daily := s.Contract.DailyRate
	return monthly.DailyBreakdown{
		TotalEarnings: daily,
		Ordinary: monthly.Ordinary{
			Total:    daily,
			Hours:    monthly.OrdinaryHours{DailyWork: dec("8")},
			Earnings: monthly.OrdinaryEarnings{Daily: daily},
		},
	}
}

func withTravelAllowance(b monthly.DailyBreakdown, amount decimal.Decimal) monthly.DailyBreakdown {
	b.Allowances.Travel = amount
	b.TotalEarnings = b.TotalEarnings.Add(amount)
	return b
}

// weekdays returns the Monday-Friday dates of the scenario month that are
// not holidays.
func weekdays(s settings.Settings) []generic.TimePoint {
	cal := s.Calendar()
	var days []generic.TimePoint
	for _, d := range generic.MonthPeriod(scenarioYear, scenarioMonth).Days() {
		if d.IsWorkdayWithHolidays(cal) {
			days = append(days, d)
		}
	}
	return days
}

func (h *Handler) saveDay(ctx context.Context, e monthly.WorkEntry, b monthly.DailyBreakdown) error {
	raw, err := monthly.EncodeBreakdown(b)
	if err != nil {
		return err
	}
	e.Breakdown = raw
	_, err = h.Store.SaveEntry(ctx, e)
	return err
}

func (h *Handler) loadOrdinaryMonthScenario(ctx context.Context) error {
	s := factory.DefaultSettings()
	if err := h.Store.SaveSettings(ctx, s); err != nil {
		return err
	}

	for i, day := range weekdays(s) {
		e := monthly.WorkEntry{Date: day, SiteName: "Officina", MealLunchVoucher: true}
		b := ordinaryDay(s)
		if i%2 == 0 {
			e.TravelAllowance = true
			e.SiteName = "Cantiere Brescia"
			b = withTravelAllowance(b, s.TravelDailyAmount())
		}
		if err := h.saveDay(ctx, e, b); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadStandbyWeekScenario(ctx context.Context) error {
	s := factory.DefaultSettings()
	if err := h.Store.SaveSettings(ctx, s); err != nil {
		return err
	}

	standbyFrom := generic.NewTimePoint(scenarioYear, scenarioMonth, 10)
	standbyTo := generic.NewTimePoint(scenarioYear, scenarioMonth, 16)
	hourly := s.Contract.HourlyRate

	for _, day := range generic.MonthPeriod(scenarioYear, scenarioMonth).Days() {
		inStandby := day.AfterOrEqual(standbyFrom) && day.BeforeOrEqual(standbyTo)
		if !inStandby && !day.IsWorkdayWithHolidays(s.Calendar()) {
			continue
		}

		e := monthly.WorkEntry{Date: day, MealLunchVoucher: !day.IsWeekend()}
		var b monthly.DailyBreakdown
		if !day.IsWeekend() {
			b = ordinaryDay(s)
		}

		if inStandby {
			e.IsStandbyDay = true
			b.Allowances.Standby = s.Standby.DailyAllowance
			b.TotalEarnings = b.TotalEarnings.Add(s.Standby.DailyAllowance)

			if day.Day()%2 == 0 {
				// night call-out: 2h work at +35%, 1h travel
				e.Interventions = []monthly.Intervention{{Start: "23:00", End: "02:00", Description: "Guasto linea"}}
				work := hourly.Mul(dec("1.35")).Mul(dec("2"))
				travel := hourly
				b.Standby = monthly.Standby{
					TotalEarnings:  work.Add(travel),
					WorkHours:      monthly.Bands{Night: dec("2")},
					TravelHours:    monthly.Bands{Ordinary: dec("1")},
					WorkEarnings:   monthly.Bands{Night: work},
					TravelEarnings: monthly.Bands{Ordinary: travel},
				}
				b.TotalEarnings = b.TotalEarnings.Add(b.Standby.TotalEarnings)
			}
		}

		if err := h.saveDay(ctx, e, b); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadOvertimeMonthScenario(ctx context.Context) error {
	s := factory.DefaultSettings()
	s.MealAllowances.Dinner.CashAmount = dec("12.00")
	if err := h.Store.SaveSettings(ctx, s); err != nil {
		return err
	}

	hourly := s.Contract.HourlyRate
	extraWork := hourly.Mul(dec("1.25")).Mul(dec("1.5"))
	extraTravel := hourly.Mul(dec("0.5"))

	for i, day := range weekdays(s) {
		e := monthly.WorkEntry{
			Date:             day,
			SiteName:         "Cantiere Verona",
			TravelAllowance:  true,
			MealLunchVoucher: true,
		}
		b := ordinaryDay(s)
		b.Ordinary.Hours.ExtraWork = dec("1.5")
		b.Ordinary.Hours.ExtraTravel = dec("0.5")
		b.Ordinary.Earnings.ExtraWork = extraWork
		b.Ordinary.Earnings.ExtraTravel = extraTravel
		b.Ordinary.Total = generic.Sum(b.Ordinary.Total, extraWork, extraTravel)
		b.TotalEarnings = b.Ordinary.Total

		// every fourth day the site pays only 78% of the allowance
		travel := s.TravelDailyAmount()
		if i%4 == 3 {
			travel = travel.Mul(dec("0.78"))
		}
		b = withTravelAllowance(b, travel)

		if i%3 == 0 {
			e.MealDinnerCash = dec("15.50")
		}
		if err := h.saveDay(ctx, e, b); err != nil {
			return err
		}
	}
	return nil
}
