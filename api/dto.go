/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

NUMBERS:
  Amounts go over the wire as JSON numbers (float64) rounded to cents.
  The full-precision aggregate is also returned as decimal strings under
  "aggregate", and "display" carries Italian-formatted strings
  ("1.234,56 €") for screens that show them verbatim.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/settings.go: SettingsJSON type
*/
package api

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bzrenis/workt-sub001/generic"
	"github.com/bzrenis/workt-sub001/monthly"
	"github.com/bzrenis/workt-sub001/summary"
	"github.com/bzrenis/workt-sub001/tax"
)

// =============================================================================
// WORK ENTRIES
// =============================================================================

type InterventionDTO struct {
	Start       string `json:"start"`
	End         string `json:"end"`
	Description string `json:"description,omitempty"`
}

// EntryDTO represents a work entry in API responses.
type EntryDTO struct {
	ID                string            `json:"id"`
	Date              string            `json:"date"`
	SiteName          string            `json:"site_name,omitempty"`
	Notes             string            `json:"notes,omitempty"`
	IsStandbyDay      bool              `json:"is_standby_day"`
	TravelAllowance   bool              `json:"travel_allowance"`
	MealLunchVoucher  bool              `json:"meal_lunch_voucher"`
	MealLunchCash     float64           `json:"meal_lunch_cash"`
	MealDinnerVoucher bool              `json:"meal_dinner_voucher"`
	MealDinnerCash    float64           `json:"meal_dinner_cash"`
	Interventions     []InterventionDTO `json:"interventi"`
	Breakdown         json.RawMessage   `json:"breakdown,omitempty"`
	CreatedAt         string            `json:"created_at,omitempty"`
	UpdatedAt         string            `json:"updated_at,omitempty"`
}

// SaveEntryRequest creates (no id) or replaces (id set) an entry.
type SaveEntryRequest struct {
	ID                string            `json:"id"`
	Date              string            `json:"date"`
	SiteName          string            `json:"site_name"`
	Notes             string            `json:"notes"`
	IsStandbyDay      bool              `json:"is_standby_day"`
	TravelAllowance   bool              `json:"travel_allowance"`
	MealLunchVoucher  bool              `json:"meal_lunch_voucher"`
	MealLunchCash     float64           `json:"meal_lunch_cash"`
	MealDinnerVoucher bool              `json:"meal_dinner_voucher"`
	MealDinnerCash    float64           `json:"meal_dinner_cash"`
	Interventions     []InterventionDTO `json:"interventi"`
	Breakdown         json.RawMessage   `json:"breakdown"`
}

func (r SaveEntryRequest) toEntry(date generic.TimePoint) monthly.WorkEntry {
	e := monthly.WorkEntry{
		ID:                r.ID,
		Date:              date,
		SiteName:          r.SiteName,
		Notes:             r.Notes,
		IsStandbyDay:      r.IsStandbyDay,
		TravelAllowance:   r.TravelAllowance,
		MealLunchVoucher:  r.MealLunchVoucher,
		MealLunchCash:     decimal.NewFromFloat(r.MealLunchCash),
		MealDinnerVoucher: r.MealDinnerVoucher,
		MealDinnerCash:    decimal.NewFromFloat(r.MealDinnerCash),
	}
	for _, iv := range r.Interventions {
		e.Interventions = append(e.Interventions, monthly.Intervention(iv))
	}
	if len(r.Breakdown) > 0 && string(r.Breakdown) != "null" {
		e.Breakdown = r.Breakdown
	}
	return e
}

func toEntryDTO(e monthly.WorkEntry) EntryDTO {
	dto := EntryDTO{
		ID:                e.ID,
		Date:              e.Date.String(),
		SiteName:          e.SiteName,
		Notes:             e.Notes,
		IsStandbyDay:      e.IsStandbyDay,
		TravelAllowance:   e.TravelAllowance,
		MealLunchVoucher:  e.MealLunchVoucher,
		MealLunchCash:     toFloat(e.MealLunchCash),
		MealDinnerVoucher: e.MealDinnerVoucher,
		MealDinnerCash:    toFloat(e.MealDinnerCash),
		Interventions:     []InterventionDTO{},
		Breakdown:         e.Breakdown,
	}
	for _, iv := range e.Interventions {
		dto.Interventions = append(dto.Interventions, InterventionDTO(iv))
	}
	if !e.CreatedAt.IsZero() {
		dto.CreatedAt = e.CreatedAt.Format(time.RFC3339)
	}
	if !e.UpdatedAt.IsZero() {
		dto.UpdatedAt = e.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}

// =============================================================================
// MONTH SUMMARY
// =============================================================================

// MonthSummaryDTO is the monthly summary screen.
type MonthSummaryDTO struct {
	Year           int                      `json:"year"`
	Month          int                      `json:"month"`
	DaysWorked     int                      `json:"days_worked"`
	TotalHours     float64                  `json:"total_hours"`
	TotalEarnings  float64                  `json:"total_earnings"`
	OrdinaryTotal  float64                  `json:"ordinary_total"`
	StandbyTotal   float64                  `json:"standby_total"`
	AllowanceTotal float64                  `json:"allowance_total"`
	Net            NetDTO                   `json:"net"`
	Display        SummaryDisplayDTO        `json:"display"`
	Aggregate      monthly.MonthlyAggregate `json:"aggregate"`
	Skipped        []SkippedDayDTO          `json:"skipped"`
}

// SummaryDisplayDTO carries Italian-formatted strings.
type SummaryDisplayDTO struct {
	TotalEarnings      string `json:"total_earnings"`
	TotalHours         string `json:"total_hours"`
	Net                string `json:"net"`
	DeductionRate      string `json:"deduction_rate"`
	OvertimePercentage string `json:"overtime_percentage"`
	AverageDailyPay    string `json:"average_daily_pay"`
	TravelAllowance    string `json:"travel_allowance"`
	MealAllowance      string `json:"meal_allowance"`
	StandbyAllowance   string `json:"standby_allowance"`
}

type SkippedDayDTO struct {
	EntryID string `json:"entry_id"`
	Date    string `json:"date"`
	Reason  string `json:"reason"`
}

func toMonthSummaryDTO(s summary.MonthSummary) MonthSummaryDTO {
	a := s.Aggregate
	allowances := generic.Sum(a.Allowances.Travel, a.Allowances.Meal, a.Allowances.Standby)

	dto := MonthSummaryDTO{
		Year:           s.Year,
		Month:          int(s.Month),
		DaysWorked:     a.DaysWorked,
		TotalHours:     toFloat(a.TotalHours),
		TotalEarnings:  toFloat(a.TotalEarnings),
		OrdinaryTotal:  toFloat(a.Ordinary.Total),
		StandbyTotal:   toFloat(a.Standby.TotalEarnings),
		AllowanceTotal: toFloat(allowances),
		Net:            toNetDTO(s.Net),
		Display: SummaryDisplayDTO{
			TotalEarnings:      generic.FormatEuro(a.TotalEarnings),
			TotalHours:         generic.FormatHours(a.TotalHours),
			Net:                generic.FormatEuro(s.Net.Net),
			DeductionRate:      deductionRateDisplay(s.Net),
			OvertimePercentage: generic.FormatPercent(a.Analytics.OvertimePercentage),
			AverageDailyPay:    generic.FormatEuro(a.Analytics.AverageEarningsPerDay),
			TravelAllowance:    generic.FormatEuro(a.Allowances.Travel),
			MealAllowance:      generic.FormatEuro(a.Allowances.Meal),
			StandbyAllowance:   generic.FormatEuro(a.Allowances.Standby),
		},
		Aggregate: a,
		Skipped:   []SkippedDayDTO{},
	}
	for _, sk := range s.Skipped {
		dto.Skipped = append(dto.Skipped, SkippedDayDTO{
			EntryID: sk.EntryID,
			Date:    sk.Date.String(),
			Reason:  sk.Err.Error(),
		})
	}
	return dto
}

// =============================================================================
// NET / GROSS
// =============================================================================

// NetRequest converts a gross amount. Method and rate default to the
// saved settings.
type NetRequest struct {
	Gross               float64  `json:"gross"`
	Method              *string  `json:"method,omitempty"`
	CustomDeductionRate *float64 `json:"custom_deduction_rate,omitempty"`
}

// GrossFromNetRequest asks for the gross that yields Net.
type GrossFromNetRequest struct {
	Net                 float64  `json:"net"`
	Method              *string  `json:"method,omitempty"`
	CustomDeductionRate *float64 `json:"custom_deduction_rate,omitempty"`
}

type NetDTO struct {
	Method          string             `json:"method"`
	Gross           float64            `json:"gross"`
	Net             float64            `json:"net"`
	TotalDeductions float64            `json:"total_deductions"`
	DeductionRate   *float64           `json:"deduction_rate"` // null when undefined
	Breakdown       map[string]float64 `json:"breakdown"`
}

type GrossFromNetDTO struct {
	Gross      float64 `json:"gross"`
	Converged  bool    `json:"converged"`
	Iterations int     `json:"iterations"`
}

func toNetDTO(r tax.Result) NetDTO {
	dto := NetDTO{
		Method:          string(r.Method),
		Gross:           toFloat(r.Gross),
		Net:             toFloat(r.Net),
		TotalDeductions: toFloat(r.TotalDeductions),
		Breakdown:       make(map[string]float64, len(r.Breakdown)),
	}
	if r.RateDefined {
		rate, _ := r.DeductionRate.Round(4).Float64()
		dto.DeductionRate = &rate
	}
	for k, v := range r.Breakdown {
		dto.Breakdown[string(k)] = toFloat(v)
	}
	return dto
}

func deductionRateDisplay(r tax.Result) string {
	if !r.RateDefined {
		return "n/d"
	}
	return generic.FormatPercent(r.DeductionRate.Mul(decimal.NewFromInt(100)))
}

// =============================================================================
// HOLIDAYS
// =============================================================================

type HolidayDTO struct {
	Date      string `json:"date"`
	Name      string `json:"name"`
	Recurring bool   `json:"recurring"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// ERRORS
// =============================================================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := generic.Round2(d).Float64()
	return f
}
