/*
Package generic provides the shared numeric and calendar primitives of the
payroll engine.

PURPOSE:
  This package contains domain-agnostic types used by both the monthly
  aggregator and the tax engine. Whether summing worked hours, euro
  amounts or percentages, the same decimal helpers keep every figure exact
  until it is displayed.

KEY CONCEPTS IN THIS FILE (types.go):
  - SafeDiv / Percent: Ratios that collapse to zero on a zero denominator
  - Clamp / Round2: Bounding and display rounding
  - Optional: An explicit "maybe a value" for running minimums

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
  2. Totality: No helper panics or returns NaN/Inf for valid input
  3. Value semantics: Every helper returns a new value

USAGE:
  avg := generic.SafeDiv(total, decimal.NewFromInt(int64(days)))
  share := generic.Percent(overtime, totalHours)

SEE ALSO:
  - time.go: TimePoint and calendar helpers
  - period.go: Month periods
  - format.go: Italian display formatting
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// RATIOS
// =============================================================================

var hundred = decimal.NewFromInt(100)

// SafeDiv returns num/den, or zero when den is zero.
func SafeDiv(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.Div(den)
}

// Percent returns part/whole*100, or zero when whole is not positive.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

// Clamp bounds d to [lo, hi].
func Clamp(d, lo, hi decimal.Decimal) decimal.Decimal {
	if d.LessThan(lo) {
		return lo
	}
	if d.GreaterThan(hi) {
		return hi
	}
	return d
}

// =============================================================================
// ROUNDING AND PARSING
// =============================================================================

// MustParseDecimal parses s, returning zero for malformed input.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Round2 rounds half away from zero to cents.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Sum adds all values.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// =============================================================================
// OPTIONAL - Explicit presence for running extrema
// =============================================================================

// Optional holds a decimal that may not have been observed yet.
type Optional struct {
	value decimal.Decimal
	set   bool
}

func Some(d decimal.Decimal) Optional { return Optional{value: d, set: true} }

func (o Optional) IsSet() bool { return o.set }

// OrZero returns the held value, or zero if none was set.
func (o Optional) OrZero() decimal.Decimal {
	if !o.set {
		return decimal.Zero
	}
	return o.value
}

// MinWith returns an Optional holding the smaller of the current value and d.
func (o Optional) MinWith(d decimal.Decimal) Optional {
	if !o.set || d.LessThan(o.value) {
		return Some(d)
	}
	return o
}
