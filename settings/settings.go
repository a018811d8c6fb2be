/*
Package settings holds the worker's effective payroll settings.

PURPOSE:
  The aggregator and the tax engine never read raw entry fields as money.
  They interpret them through these settings: contract rates, the daily
  travel allowance, meal voucher/cash amounts per slot, the standby
  allowance and the net calculation method.

EFFECTIVE SETTINGS:
  Stored settings are merged over the CCNL defaults by the factory package,
  so every field here is always populated. Settings are read-only for the
  engine.

SEE ALSO:
  - factory/settings.go: Defaults, JSON parsing and merge
  - monthly/aggregate.go: Consumer
*/
package settings

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bzrenis/workt-sub001/generic"
	"github.com/bzrenis/workt-sub001/tax"
)

// DefaultTravelDailyAmount is used when the configured amount is unset or
// not positive.
var DefaultTravelDailyAmount = decimal.NewFromInt(15)

// Contract describes the CCNL pay level.
type Contract struct {
	Name          string          `json:"name"`
	Level         string          `json:"level"`
	MonthlySalary decimal.Decimal `json:"monthlySalary"`
	DailyRate     decimal.Decimal `json:"dailyRate"`
	HourlyRate    decimal.Decimal `json:"hourlyRate"`
}

type TravelAllowance struct {
	Enabled     bool            `json:"enabled"`
	DailyAmount decimal.Decimal `json:"dailyAmount"`
}

// MealSlot is the reimbursement for one meal (lunch or dinner).
// VoucherAmount applies when the voucher flag is set, CashAmount is the
// standard cash reimbursement.
type MealSlot struct {
	VoucherAmount decimal.Decimal `json:"voucherAmount"`
	CashAmount    decimal.Decimal `json:"cashAmount"`
}

type MealAllowances struct {
	Lunch  MealSlot `json:"lunch"`
	Dinner MealSlot `json:"dinner"`
}

type Standby struct {
	DailyAllowance decimal.Decimal `json:"dailyAllowance"`
}

// Settings is the complete, effective settings set.
type Settings struct {
	Contract        Contract        `json:"contract"`
	TravelAllowance TravelAllowance `json:"travelAllowance"`
	MealAllowances  MealAllowances  `json:"mealAllowances"`
	Standby         Standby         `json:"standby"`
	NetCalculation  tax.Settings    `json:"netCalculation"`
	PatronSaint     string          `json:"patronSaint,omitempty"` // "MM-DD"
}

// TravelDailyAmount returns the full-day travel allowance, falling back to
// DefaultTravelDailyAmount.
func (s Settings) TravelDailyAmount() decimal.Decimal {
	if s.TravelAllowance.DailyAmount.IsPositive() {
		return s.TravelAllowance.DailyAmount
	}
	return DefaultTravelDailyAmount
}

// Calendar returns the holiday calendar for the worker's location.
func (s Settings) Calendar() generic.HolidayCalendar {
	return generic.ItalianCalendar{PatronSaint: s.PatronSaint}
}

// Validate reports every problem at once, wrapped in ErrInvalidSettings.
func (s Settings) Validate() error {
	var problems []string

	amounts := []struct {
		field string
		value decimal.Decimal
	}{
		{"contract.monthlySalary", s.Contract.MonthlySalary},
		{"contract.dailyRate", s.Contract.DailyRate},
		{"contract.hourlyRate", s.Contract.HourlyRate},
		{"travelAllowance.dailyAmount", s.TravelAllowance.DailyAmount},
		{"mealAllowances.lunch.voucherAmount", s.MealAllowances.Lunch.VoucherAmount},
		{"mealAllowances.lunch.cashAmount", s.MealAllowances.Lunch.CashAmount},
		{"mealAllowances.dinner.voucherAmount", s.MealAllowances.Dinner.VoucherAmount},
		{"mealAllowances.dinner.cashAmount", s.MealAllowances.Dinner.CashAmount},
		{"standby.dailyAllowance", s.Standby.DailyAllowance},
	}
	for _, a := range amounts {
		if a.value.IsNegative() {
			problems = append(problems, a.field+" must not be negative")
		}
	}

	switch s.NetCalculation.Method {
	case tax.MethodIRPEF, tax.MethodCustom:
	default:
		problems = append(problems, fmt.Sprintf("netCalculation.method %q is not one of irpef, custom", s.NetCalculation.Method))
	}
	rate := s.NetCalculation.CustomDeductionRate
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		problems = append(problems, "netCalculation.customDeductionRate must be between 0 and 100")
	}

	if !generic.ValidMonthDay(s.PatronSaint) {
		problems = append(problems, fmt.Sprintf("patronSaint %q is not MM-DD", s.PatronSaint))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", generic.ErrInvalidSettings, strings.Join(problems, "; "))
	}
	return nil
}
