/*
Package factory provides JSON to Go settings conversion.

PURPOSE:
  Converts partial JSON settings documents (what the client stores or
  sends) into complete settings.Settings values. Missing fields keep the
  CCNL Metalmeccanico defaults, so the engine always sees "effective
  settings".

JSON SCHEMA (every field optional):
  {
    "contract": {"name": "...", "level": "5", "monthlySalary": 2839.07,
                 "dailyRate": 109.19, "hourlyRate": 16.41},
    "travelAllowance": {"enabled": true, "dailyAmount": 15},
    "mealAllowances": {
      "lunch":  {"voucherAmount": 5.29, "cashAmount": 0},
      "dinner": {"voucherAmount": 0,    "cashAmount": 0}
    },
    "standby": {"dailyAllowance": 7.50},
    "netCalculation": {"method": "irpef", "customDeductionRate": 25},
    "patronSaint": "06-24"
  }

  Amounts may be JSON numbers or numeric strings.

USAGE:
  f := factory.NewSettingsFactory()
  s, err := f.ParseSettings(jsonString)   // merged over defaults, validated
  sj := f.ToJSON(s)                       // full document back

SEE ALSO:
  - settings/settings.go: Settings type and validation
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bzrenis/workt-sub001/generic"
	"github.com/bzrenis/workt-sub001/settings"
	"github.com/bzrenis/workt-sub001/tax"
)

// =============================================================================
// DEFAULTS - CCNL Metalmeccanico PMI, level 5
// =============================================================================

// DefaultSettings returns the settings a new installation starts with.
func DefaultSettings() settings.Settings {
	return settings.Settings{
		Contract: settings.Contract{
			Name:          "CCNL Metalmeccanico PMI",
			Level:         "5",
			MonthlySalary: generic.MustParseDecimal("2839.07"),
			DailyRate:     generic.MustParseDecimal("109.19"),
			HourlyRate:    generic.MustParseDecimal("16.41"),
		},
		TravelAllowance: settings.TravelAllowance{
			Enabled:     true,
			DailyAmount: generic.MustParseDecimal("15.00"),
		},
		MealAllowances: settings.MealAllowances{
			Lunch: settings.MealSlot{
				VoucherAmount: generic.MustParseDecimal("5.29"),
				CashAmount:    decimal.Zero,
			},
			Dinner: settings.MealSlot{
				VoucherAmount: decimal.Zero,
				CashAmount:    decimal.Zero,
			},
		},
		Standby: settings.Standby{
			DailyAllowance: generic.MustParseDecimal("7.50"),
		},
		NetCalculation: tax.Settings{
			Method:              tax.MethodIRPEF,
			CustomDeductionRate: decimal.NewFromInt(25),
		},
	}
}

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// SettingsJSON is the partial JSON representation of settings. Nil fields
// are left at their base value during a merge.
type SettingsJSON struct {
	Contract        *ContractJSON        `json:"contract,omitempty"`
	TravelAllowance *TravelAllowanceJSON `json:"travelAllowance,omitempty"`
	MealAllowances  *MealAllowancesJSON  `json:"mealAllowances,omitempty"`
	Standby         *StandbyJSON         `json:"standby,omitempty"`
	NetCalculation  *NetCalculationJSON  `json:"netCalculation,omitempty"`
	PatronSaint     *string              `json:"patronSaint,omitempty"`
}

type ContractJSON struct {
	Name          *string          `json:"name,omitempty"`
	Level         *string          `json:"level,omitempty"`
	MonthlySalary *decimal.Decimal `json:"monthlySalary,omitempty"`
	DailyRate     *decimal.Decimal `json:"dailyRate,omitempty"`
	HourlyRate    *decimal.Decimal `json:"hourlyRate,omitempty"`
}

type TravelAllowanceJSON struct {
	Enabled     *bool            `json:"enabled,omitempty"`
	DailyAmount *decimal.Decimal `json:"dailyAmount,omitempty"`
}

type MealSlotJSON struct {
	VoucherAmount *decimal.Decimal `json:"voucherAmount,omitempty"`
	CashAmount    *decimal.Decimal `json:"cashAmount,omitempty"`
}

type MealAllowancesJSON struct {
	Lunch  *MealSlotJSON `json:"lunch,omitempty"`
	Dinner *MealSlotJSON `json:"dinner,omitempty"`
}

type StandbyJSON struct {
	DailyAllowance *decimal.Decimal `json:"dailyAllowance,omitempty"`
}

type NetCalculationJSON struct {
	Method              *string          `json:"method,omitempty"`
	CustomDeductionRate *decimal.Decimal `json:"customDeductionRate,omitempty"`
}

// =============================================================================
// SETTINGS FACTORY
// =============================================================================

// SettingsFactory converts JSON settings to Go structs.
type SettingsFactory struct {
	defaults settings.Settings
}

// NewSettingsFactory creates a factory that merges over DefaultSettings.
func NewSettingsFactory() *SettingsFactory {
	return &SettingsFactory{defaults: DefaultSettings()}
}

// Defaults returns the base settings used for merging.
func (f *SettingsFactory) Defaults() settings.Settings {
	return f.defaults
}

// ParseSettings parses a JSON document, merges it over the defaults and
// validates the result. An empty document yields the defaults.
func (f *SettingsFactory) ParseSettings(jsonStr string) (settings.Settings, error) {
	if strings.TrimSpace(jsonStr) == "" {
		return f.defaults, nil
	}

	var sj SettingsJSON
	if err := json.Unmarshal([]byte(jsonStr), &sj); err != nil {
		return settings.Settings{}, fmt.Errorf("%w: failed to parse settings JSON: %v", generic.ErrInvalidSettings, err)
	}

	return f.FromJSON(f.defaults, sj)
}

// FromJSON merges sj over base and validates the result.
func (f *SettingsFactory) FromJSON(base settings.Settings, sj SettingsJSON) (settings.Settings, error) {
	s := base

	if c := sj.Contract; c != nil {
		setString(&s.Contract.Name, c.Name)
		setString(&s.Contract.Level, c.Level)
		setDecimal(&s.Contract.MonthlySalary, c.MonthlySalary)
		setDecimal(&s.Contract.DailyRate, c.DailyRate)
		setDecimal(&s.Contract.HourlyRate, c.HourlyRate)
	}

	if t := sj.TravelAllowance; t != nil {
		if t.Enabled != nil {
			s.TravelAllowance.Enabled = *t.Enabled
		}
		setDecimal(&s.TravelAllowance.DailyAmount, t.DailyAmount)
	}

	if m := sj.MealAllowances; m != nil {
		mergeMealSlot(&s.MealAllowances.Lunch, m.Lunch)
		mergeMealSlot(&s.MealAllowances.Dinner, m.Dinner)
	}

	if sb := sj.Standby; sb != nil {
		setDecimal(&s.Standby.DailyAllowance, sb.DailyAllowance)
	}

	if n := sj.NetCalculation; n != nil {
		if n.Method != nil {
			s.NetCalculation.Method = tax.Method(strings.ToLower(strings.TrimSpace(*n.Method)))
		}
		setDecimal(&s.NetCalculation.CustomDeductionRate, n.CustomDeductionRate)
	}

	setString(&s.PatronSaint, sj.PatronSaint)

	if err := s.Validate(); err != nil {
		return settings.Settings{}, err
	}
	return s, nil
}

// ToJSON renders a complete settings document.
func (f *SettingsFactory) ToJSON(s settings.Settings) SettingsJSON {
	method := string(s.NetCalculation.Method)
	sj := SettingsJSON{
		Contract: &ContractJSON{
			Name:          ptr(s.Contract.Name),
			Level:         ptr(s.Contract.Level),
			MonthlySalary: ptr(s.Contract.MonthlySalary),
			DailyRate:     ptr(s.Contract.DailyRate),
			HourlyRate:    ptr(s.Contract.HourlyRate),
		},
		TravelAllowance: &TravelAllowanceJSON{
			Enabled:     ptr(s.TravelAllowance.Enabled),
			DailyAmount: ptr(s.TravelAllowance.DailyAmount),
		},
		MealAllowances: &MealAllowancesJSON{
			Lunch:  mealSlotJSON(s.MealAllowances.Lunch),
			Dinner: mealSlotJSON(s.MealAllowances.Dinner),
		},
		Standby: &StandbyJSON{
			DailyAllowance: ptr(s.Standby.DailyAllowance),
		},
		NetCalculation: &NetCalculationJSON{
			Method:              &method,
			CustomDeductionRate: ptr(s.NetCalculation.CustomDeductionRate),
		},
	}
	if s.PatronSaint != "" {
		sj.PatronSaint = ptr(s.PatronSaint)
	}
	return sj
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func mergeMealSlot(dst *settings.MealSlot, src *MealSlotJSON) {
	if src == nil {
		return
	}
	setDecimal(&dst.VoucherAmount, src.VoucherAmount)
	setDecimal(&dst.CashAmount, src.CashAmount)
}

func mealSlotJSON(m settings.MealSlot) *MealSlotJSON {
	return &MealSlotJSON{
		VoucherAmount: ptr(m.VoucherAmount),
		CashAmount:    ptr(m.CashAmount),
	}
}

func setDecimal(dst *decimal.Decimal, src *decimal.Decimal) {
	if src != nil {
		*dst = *src
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func ptr[T any](v T) *T { return &v }
