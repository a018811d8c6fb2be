/*
Package tax estimates Italian net pay from gross pay and back.

PURPOSE:
  Converts a gross monthly amount into an estimated net amount under one
  of two interchangeable methods, and inverts the conversion numerically
  (desired net -> required gross). The figures are estimates for display,
  not a payslip.

METHODS:
  irpef:
    Progressive IRPEF brackets on the annualized gross, minus the work
    and personal deductions, plus fixed-rate social contributions and
    regional/municipal additional taxes.

  custom:
    A single flat deduction percentage chosen by the worker.

  Any other value behaves as irpef.

RULES (rules.go):
  Brackets (annual):  [0, 28000) 23%   [28000, 50000) 35%   [50000, ∞) 43%
  Social:             9.87% = 9.19% pension + 0.68% unemployment
  Additional taxes:   2.53%
  Work deduction:     €1880, always
  Personal deduction: €1955 up to €15000, linearly to zero at €28000

SEE ALSO:
  - engine.go: CalculateNet
  - solver.go: GrossFromNet and the generic monotone inverter
*/
package tax

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// METHOD AND SETTINGS
// =============================================================================

type Method string

const (
	MethodIRPEF  Method = "irpef"
	MethodCustom Method = "custom"
)

// Settings selects the net calculation method.
// CustomDeductionRate is a percentage (30 means 30%) used by MethodCustom.
type Settings struct {
	Method              Method          `json:"method"`
	CustomDeductionRate decimal.Decimal `json:"customDeductionRate"`
}

// DeductionKind keys the per-kind deduction breakdown.
type DeductionKind string

const (
	KindIRPEF               DeductionKind = "irpef"
	KindSocialContributions DeductionKind = "socialContributions"
	KindAdditionalTaxes     DeductionKind = "additionalTaxes"
	KindCustom              DeductionKind = "custom"
	KindOther               DeductionKind = "other"
)

// AllKinds lists every breakdown key; results always carry all of them.
var AllKinds = []DeductionKind{KindIRPEF, KindSocialContributions, KindAdditionalTaxes, KindCustom, KindOther}

// =============================================================================
// RULES - Immutable tax configuration
// =============================================================================

// Bracket taxes the income slice [Min, Max) at Rate. An invalid Max means
// the bracket is unbounded.
type Bracket struct {
	Min  decimal.Decimal
	Max  decimal.NullDecimal
	Rate decimal.Decimal
}

// Span is the width of the bracket, or false for the unbounded top bracket.
func (b Bracket) Span() (decimal.Decimal, bool) {
	if !b.Max.Valid {
		return decimal.Zero, false
	}
	return b.Max.Decimal.Sub(b.Min), true
}

type Rules struct {
	Brackets []Bracket

	PensionRate      decimal.Decimal
	UnemploymentRate decimal.Decimal
	AdditionalRate   decimal.Decimal

	WorkDeduction     decimal.Decimal
	PersonalDeduction decimal.Decimal
	PhaseOutStart     decimal.Decimal
	PhaseOutEnd       decimal.Decimal
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func upTo(s string) decimal.NullDecimal { return decimal.NewNullDecimal(dec(s)) }

// ItalianRules returns the IRPEF configuration used by the app.
func ItalianRules() Rules {
	return Rules{
		Brackets: []Bracket{
			{Min: dec("0"), Max: upTo("28000"), Rate: dec("0.23")},
			{Min: dec("28000"), Max: upTo("50000"), Rate: dec("0.35")},
			{Min: dec("50000"), Rate: dec("0.43")},
		},
		PensionRate:       dec("0.0919"),
		UnemploymentRate:  dec("0.0068"),
		AdditionalRate:    dec("0.0253"),
		WorkDeduction:     dec("1880"),
		PersonalDeduction: dec("1955"),
		PhaseOutStart:     dec("15000"),
		PhaseOutEnd:       dec("28000"),
	}
}

// SocialRate is pension + unemployment (9.87% with the Italian rules).
func (r Rules) SocialRate() decimal.Decimal {
	return r.PensionRate.Add(r.UnemploymentRate)
}

// BracketTax walks the brackets in order, taxing only the part of the
// remaining income that falls inside each one.
func (r Rules) BracketTax(annualIncome decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	remaining := annualIncome
	for _, b := range r.Brackets {
		if !remaining.IsPositive() {
			break
		}
		taxable := remaining
		if span, bounded := b.Span(); bounded {
			taxable = decimal.Min(remaining, span)
		}
		total = total.Add(taxable.Mul(b.Rate))
		remaining = remaining.Sub(taxable)
	}
	return total
}

// Deductions returns the work deduction plus the phased personal deduction.
func (r Rules) Deductions(annualIncome decimal.Decimal) decimal.Decimal {
	personal := r.PersonalDeduction
	switch {
	case annualIncome.LessThanOrEqual(r.PhaseOutStart):
	case annualIncome.GreaterThanOrEqual(r.PhaseOutEnd):
		personal = decimal.Zero
	default:
		reduction := annualIncome.Sub(r.PhaseOutStart).Div(r.PhaseOutEnd.Sub(r.PhaseOutStart))
		personal = personal.Mul(decimal.NewFromInt(1).Sub(reduction))
	}
	return r.WorkDeduction.Add(personal)
}

// AnnualIRPEF is the bracket tax minus deductions, floored at zero.
func (r Rules) AnnualIRPEF(annualIncome decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, r.BracketTax(annualIncome).Sub(r.Deductions(annualIncome)))
}
