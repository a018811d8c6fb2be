package monthly

import (
	"github.com/shopspring/decimal"

	"github.com/bzrenis/workt-sub001/settings"
)

// =============================================================================
// MEALS
// =============================================================================
//
// Per slot (lunch, dinner), first match wins:
//   1. slot-specific cash > 0      -> specific
//   2. voucher flag                -> voucher amount AND standard cash amount
//   3. otherwise                   -> standard cash amount, if positive

// MealSlotTotals are the monthly sums for one meal slot.
type MealSlotTotals struct {
	Voucher      decimal.Decimal `json:"voucher"`
	VoucherDays  int             `json:"voucherDays"`
	Cash         decimal.Decimal `json:"cash"`
	CashDays     int             `json:"cashDays"`
	Specific     decimal.Decimal `json:"specific"`
	SpecificDays int             `json:"specificDays"`
}

// MealTypeTotal counts contributions (Count) and days with at least one
// contribution (Days) of one meal type.
type MealTypeTotal struct {
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
	Days  int             `json:"days"`
}

type MealTypeTotals struct {
	Vouchers     MealTypeTotal `json:"vouchers"`
	CashStandard MealTypeTotal `json:"cashStandard"`
	CashSpecific MealTypeTotal `json:"cashSpecific"`
}

// slotMeal is what one slot contributed on one day. Zero means none.
type slotMeal struct {
	voucher  decimal.Decimal
	cash     decimal.Decimal
	specific decimal.Decimal
}

func resolveSlot(voucherFlag bool, specificCash decimal.Decimal, slot settings.MealSlot) slotMeal {
	var m slotMeal
	switch {
	case specificCash.IsPositive():
		m.specific = specificCash
	case voucherFlag:
		if slot.VoucherAmount.IsPositive() {
			m.voucher = slot.VoucherAmount
		}
		if slot.CashAmount.IsPositive() {
			m.cash = slot.CashAmount
		}
	case slot.CashAmount.IsPositive():
		m.cash = slot.CashAmount
	}
	return m
}

func (m slotMeal) total() decimal.Decimal {
	return m.voucher.Add(m.cash).Add(m.specific)
}

func (m slotMeal) addTo(t MealSlotTotals) MealSlotTotals {
	if m.voucher.IsPositive() {
		t.Voucher = t.Voucher.Add(m.voucher)
		t.VoucherDays++
	}
	if m.cash.IsPositive() {
		t.Cash = t.Cash.Add(m.cash)
		t.CashDays++
	}
	if m.specific.IsPositive() {
		t.Specific = t.Specific.Add(m.specific)
		t.SpecificDays++
	}
	return t
}

// dayMeal is the meal outcome of one day.
type dayMeal struct {
	lunch  slotMeal
	dinner slotMeal
}

func dayMeals(e WorkEntry, m settings.MealAllowances) dayMeal {
	return dayMeal{
		lunch:  resolveSlot(e.MealLunchVoucher, e.MealLunchCash, m.Lunch),
		dinner: resolveSlot(e.MealDinnerVoucher, e.MealDinnerCash, m.Dinner),
	}
}

func (d dayMeal) total() decimal.Decimal {
	return d.lunch.total().Add(d.dinner.total())
}

func (d dayMeal) addTo(t MealTotals) MealTotals {
	t.Lunch = d.lunch.addTo(t.Lunch)
	t.Dinner = d.dinner.addTo(t.Dinner)

	t.ByType.Vouchers = addType(t.ByType.Vouchers, d.lunch.voucher, d.dinner.voucher)
	t.ByType.CashStandard = addType(t.ByType.CashStandard, d.lunch.cash, d.dinner.cash)
	t.ByType.CashSpecific = addType(t.ByType.CashSpecific, d.lunch.specific, d.dinner.specific)
	return t
}

// addType adds each positive contribution and counts the day once if any
// contributed.
func addType(t MealTypeTotal, amounts ...decimal.Decimal) MealTypeTotal {
	contributed := false
	for _, a := range amounts {
		if a.IsPositive() {
			t.Total = t.Total.Add(a)
			t.Count++
			contributed = true
		}
	}
	if contributed {
		t.Days++
	}
	return t
}
