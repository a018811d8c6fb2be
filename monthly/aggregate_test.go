package monthly_test

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bzrenis/workt-sub001/factory"
	"github.com/bzrenis/workt-sub001/generic"
	"github.com/bzrenis/workt-sub001/monthly"
	"github.com/bzrenis/workt-sub001/settings"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	if !d(expected).Equal(actual) {
		assert.Fail(t, "decimal mismatch: expected "+expected+", got "+actual.String(), msgAndArgs...)
	}
}

func assertNear(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, d(expected).Sub(actual).Abs().LessThan(d("0.01")), "expected ~%s, got %s", expected, actual)
}

// March 2025: the 3rd is a Monday, the 8th a Saturday, the 9th a Sunday.
func march(day int) generic.TimePoint {
	return generic.NewTimePoint(2025, time.March, day)
}

func entryOn(date generic.TimePoint) monthly.WorkEntry {
	return monthly.WorkEntry{ID: "entry-" + date.String(), Date: date}
}

func ordinaryBreakdown(hours, total string) monthly.DailyBreakdown {
	return monthly.DailyBreakdown{
		TotalEarnings: d(total),
		Ordinary: monthly.Ordinary{
			Total:    d(total),
			Hours:    monthly.OrdinaryHours{DailyWork: d(hours)},
			Earnings: monthly.OrdinaryEarnings{Daily: d(total)},
		},
	}
}

func withTravel(b monthly.DailyBreakdown, amount string) monthly.DailyBreakdown {
	b.Allowances.Travel = d(amount)
	b.TotalEarnings = b.TotalEarnings.Add(d(amount))
	return b
}

func defaults() settings.Settings {
	return factory.DefaultSettings()
}

// assertAllNumericLeavesZero walks the aggregate and checks every decimal
// and int field.
func assertAllNumericLeavesZero(t *testing.T, v reflect.Value, path string) {
	t.Helper()
	if v.Type() == reflect.TypeOf(decimal.Decimal{}) {
		dv := v.Interface().(decimal.Decimal)
		assert.True(t, dv.IsZero(), "%s = %s, want 0", path, dv)
		return
	}
	switch v.Kind() {
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			assertAllNumericLeavesZero(t, v.Field(i), path+"."+v.Type().Field(i).Name)
		}
	case reflect.Int:
		assert.Zero(t, v.Int(), "%s", path)
	}
}

// =============================================================================
// EMPTY MONTH
// =============================================================================

func TestAggregateMonth_EmptyInput_AllZero(t *testing.T) {
	// GIVEN: No days
	// WHEN: Aggregating
	// THEN: Every numeric leaf is zero, buckets are present, min hours is 0
	agg := monthly.AggregateMonth(nil, defaults())

	assertAllNumericLeavesZero(t, reflect.ValueOf(agg), "aggregate")
	assertDecimal(t, "0", agg.Analytics.MinDailyHours)

	raw, err := json.Marshal(agg)
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &doc))

	buckets := doc["allowances"].(map[string]interface{})["travelByPercent"].(map[string]interface{})
	for _, key := range []string{"100", "78", "50", "other"} {
		assert.Contains(t, buckets, key)
	}
	byType := doc["meals"].(map[string]interface{})["byType"].(map[string]interface{})
	for _, key := range []string{"vouchers", "cashStandard", "cashSpecific"} {
		assert.Contains(t, byType, key)
	}
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestAggregateMonth_SingleWeekdayNoStandby(t *testing.T) {
	// GIVEN: One Monday with 8 ordinary hours paid 109.19
	// WHEN: Aggregating
	// THEN: One worked ordinary day, 8 regular hours, no overtime
	days := []monthly.Day{{Entry: entryOn(march(3)), Breakdown: ordinaryBreakdown("8", "109.19")}}

	agg := monthly.AggregateMonth(days, defaults())

	assert.Equal(t, 1, agg.DaysWorked)
	assert.Equal(t, 1, agg.Ordinary.Days)
	assert.Equal(t, 0, agg.Standby.Days)
	assertDecimal(t, "109.19", agg.TotalEarnings)
	assertDecimal(t, "8", agg.TotalHours)
	assertDecimal(t, "8", agg.Analytics.RegularHours)
	assertDecimal(t, "0", agg.Analytics.OvertimeHours)
	assertDecimal(t, "8", agg.Analytics.MaxDailyHours)
	assertDecimal(t, "8", agg.Analytics.MinDailyHours)
	assertDecimal(t, "8", agg.Analytics.AverageHoursPerDay)
	assertDecimal(t, "109.19", agg.Analytics.AverageEarningsPerDay)
	assertNear(t, "13.65", agg.Analytics.AverageEarningsPerHour)
	assertDecimal(t, "100", agg.Analytics.OrdinaryPercentage)
	assertDecimal(t, "100", agg.Analytics.WorkVsTravel)
	assertDecimal(t, "65", agg.Analytics.ProductivityScore)
	assert.Equal(t, 0, agg.Analytics.WeekendDays)
}

func TestAggregateMonth_TravelAllowance78Tier(t *testing.T) {
	// GIVEN: A travel allowance of 11.70 with a 15.00 daily amount
	// WHEN: Aggregating
	// THEN: Only the "78" bucket is filled
	e := entryOn(march(4))
	e.TravelAllowance = true
	days := []monthly.Day{{Entry: e, Breakdown: withTravel(ordinaryBreakdown("8", "109.19"), "11.70")}}

	agg := monthly.AggregateMonth(days, defaults())

	buckets := agg.Allowances.TravelByPercent
	assertDecimal(t, "11.70", buckets.R78.Amount)
	assert.Equal(t, 1, buckets.R78.Days)
	for _, tier := range []monthly.TravelTier{monthly.TierFull, monthly.TierHalf, monthly.TierOther} {
		assertDecimal(t, "0", buckets.Get(tier).Amount)
		assert.Equal(t, 0, buckets.Get(tier).Days)
	}
	assertDecimal(t, "11.70", agg.Allowances.Travel)
	assert.Equal(t, 1, agg.Allowances.TravelDays)
}

func TestAggregateMonth_LunchVoucherOnly(t *testing.T) {
	// GIVEN: Lunch voucher flag, no specific cash, voucher 5.29 and cash 2.00
	// WHEN: Aggregating
	// THEN: Both the voucher and its companion cash are counted
	s := defaults()
	s.MealAllowances.Lunch = settings.MealSlot{VoucherAmount: d("5.29"), CashAmount: d("2.00")}
	s.MealAllowances.Dinner = settings.MealSlot{}

	e := entryOn(march(5))
	e.MealLunchVoucher = true
	days := []monthly.Day{{Entry: e, Breakdown: ordinaryBreakdown("8", "109.19")}}

	agg := monthly.AggregateMonth(days, s)

	assertDecimal(t, "5.29", agg.Meals.Lunch.Voucher)
	assert.Equal(t, 1, agg.Meals.Lunch.VoucherDays)
	assertDecimal(t, "2.00", agg.Meals.Lunch.Cash)
	assert.Equal(t, 1, agg.Meals.Lunch.CashDays)
	assertDecimal(t, "5.29", agg.Meals.ByType.Vouchers.Total)
	assertDecimal(t, "2.00", agg.Meals.ByType.CashStandard.Total)
	assert.Equal(t, 1, agg.Meals.ByType.Vouchers.Days)
	assert.Equal(t, 1, agg.Meals.ByType.CashStandard.Days)
	assertDecimal(t, "7.29", agg.Allowances.Meal)
	assert.Equal(t, 1, agg.Allowances.MealDays)
	assertDecimal(t, "0", agg.Meals.Dinner.Voucher)
}

// =============================================================================
// TRAVEL TIERS
// =============================================================================

func TestClassifyTravel(t *testing.T) {
	daily := d("15")
	tests := []struct {
		amount string
		want   monthly.TravelTier
	}{
		{"15", monthly.TierFull},
		{"14.70", monthly.TierFull}, // 0.98, inclusive
		{"15.30", monthly.TierFull}, // 1.02, inclusive
		{"11.70", monthly.Tier78},
		{"7.50", monthly.TierHalf},
		{"13.125", monthly.TierOther}, // 87.5%
		{"11.25", monthly.TierOther},  // 75%
		{"30", monthly.TierOther},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, monthly.ClassifyTravel(d(tt.amount), daily))
		})
	}
}

func TestAggregateMonth_TravelBucketsExhaustive(t *testing.T) {
	// GIVEN: Days with assorted positive travel allowances and one without
	// WHEN: Aggregating
	// THEN: Every positive allowance is in exactly one bucket
	amounts := []string{"15", "11.70", "7.50", "13.125", "4", "15", "0"}
	var days []monthly.Day
	positive := 0
	for i, a := range amounts {
		e := entryOn(march(3 + i))
		e.TravelAllowance = true
		days = append(days, monthly.Day{Entry: e, Breakdown: withTravel(ordinaryBreakdown("8", "100"), a)})
		if d(a).IsPositive() {
			positive++
		}
	}

	agg := monthly.AggregateMonth(days, defaults())

	buckets := agg.Allowances.TravelByPercent
	assert.Equal(t, positive, buckets.Days())
	assertDecimal(t, agg.Allowances.Travel.String(), buckets.Amount())
	assert.Equal(t, 2, buckets.Full.Days)
	assert.Equal(t, 1, buckets.R78.Days)
	assert.Equal(t, 1, buckets.Half.Days)
	assert.Equal(t, 2, buckets.Other.Days)
}

func TestAggregateMonth_TravelDaysFollowFlag(t *testing.T) {
	// GIVEN: A positive travel allowance on an entry without the travel flag
	// WHEN: Aggregating
	// THEN: The bucket counts the day but travelDays does not
	e := entryOn(march(6))
	days := []monthly.Day{{Entry: e, Breakdown: withTravel(ordinaryBreakdown("8", "100"), "15")}}

	agg := monthly.AggregateMonth(days, defaults())

	assert.Equal(t, 1, agg.Allowances.TravelByPercent.Full.Days)
	assert.Equal(t, 0, agg.Allowances.TravelDays)
}

func TestAggregateMonth_TravelUsesDefaultDailyAmount(t *testing.T) {
	s := defaults()
	s.TravelAllowance.DailyAmount = decimal.Zero

	days := []monthly.Day{{Entry: entryOn(march(6)), Breakdown: withTravel(ordinaryBreakdown("8", "100"), "7.50")}}
	agg := monthly.AggregateMonth(days, s)

	assert.Equal(t, 1, agg.Allowances.TravelByPercent.Half.Days)
}

// =============================================================================
// MEALS
// =============================================================================

func TestAggregateMonth_SpecificCashWinsOverVoucher(t *testing.T) {
	s := defaults()
	s.MealAllowances.Lunch = settings.MealSlot{VoucherAmount: d("5.29"), CashAmount: d("2")}

	e := entryOn(march(3))
	e.MealLunchVoucher = true
	e.MealLunchCash = d("12.50")
	days := []monthly.Day{{Entry: e, Breakdown: ordinaryBreakdown("8", "100")}}

	agg := monthly.AggregateMonth(days, s)

	assertDecimal(t, "12.50", agg.Meals.Lunch.Specific)
	assert.Equal(t, 1, agg.Meals.Lunch.SpecificDays)
	assertDecimal(t, "0", agg.Meals.Lunch.Voucher)
	assertDecimal(t, "0", agg.Meals.Lunch.Cash)
	assertDecimal(t, "12.50", agg.Meals.ByType.CashSpecific.Total)
	assertDecimal(t, "12.50", agg.Allowances.Meal)
}

func TestAggregateMonth_StandardCashWithoutFlags(t *testing.T) {
	s := defaults()
	s.MealAllowances.Dinner = settings.MealSlot{CashAmount: d("3")}

	days := []monthly.Day{{Entry: entryOn(march(3)), Breakdown: ordinaryBreakdown("8", "100")}}
	agg := monthly.AggregateMonth(days, s)

	assertDecimal(t, "3", agg.Meals.Dinner.Cash)
	assertDecimal(t, "3", agg.Meals.ByType.CashStandard.Total)
	assertDecimal(t, "3", agg.Allowances.Meal)
}

func TestAggregateMonth_MealTypeCountVersusDays(t *testing.T) {
	// GIVEN: Both slots paid with vouchers on the same day
	// WHEN: Aggregating
	// THEN: Two voucher contributions, one voucher day
	s := defaults()
	s.MealAllowances.Lunch = settings.MealSlot{VoucherAmount: d("5.29")}
	s.MealAllowances.Dinner = settings.MealSlot{VoucherAmount: d("5.29")}

	e := entryOn(march(3))
	e.MealLunchVoucher = true
	e.MealDinnerVoucher = true
	days := []monthly.Day{{Entry: e, Breakdown: ordinaryBreakdown("10", "140")}}

	agg := monthly.AggregateMonth(days, s)

	assert.Equal(t, 2, agg.Meals.ByType.Vouchers.Count)
	assert.Equal(t, 1, agg.Meals.ByType.Vouchers.Days)
	assertDecimal(t, "10.58", agg.Meals.ByType.Vouchers.Total)
	assert.Equal(t, 1, agg.Allowances.MealDays)
}

// =============================================================================
// STANDBY, CALENDAR AND ANALYTICS
// =============================================================================

func standbyBreakdown() monthly.DailyBreakdown {
	return monthly.DailyBreakdown{
		TotalEarnings: d("200"),
		Ordinary: monthly.Ordinary{
			Total: d("150"),
			Hours: monthly.OrdinaryHours{
				DailyWork:   d("8"),
				DailyTravel: d("1"),
				ExtraWork:   d("2"),
				ExtraTravel: d("1"),
			},
		},
		Standby: monthly.Standby{
			TotalEarnings: d("42.50"),
			WorkHours:     monthly.Bands{Night: d("1.5"), SaturdayNight: d("0.5")},
			WorkEarnings:  monthly.Bands{Night: d("42.50")},
		},
		Allowances: monthly.Allowances{Standby: d("7.50")},
	}
}

func TestAggregateMonth_StandbyDayAndOvertimeSplit(t *testing.T) {
	// GIVEN: A standby day with overtime, extra travel and night interventions
	// WHEN: Aggregating
	// THEN: Overtime excludes extra travel, and standby counters follow the flag
	e := entryOn(march(4))
	e.IsStandbyDay = true
	e.Interventions = []monthly.Intervention{{Start: "22:00", End: "23:30"}, {Start: "23:45", End: "00:15"}}
	days := []monthly.Day{{Entry: e, Breakdown: standbyBreakdown()}}

	agg := monthly.AggregateMonth(days, defaults())

	// 8+1+2+1 ordinary + 2 standby work
	assertDecimal(t, "14", agg.TotalHours)
	assertDecimal(t, "4", agg.Analytics.OvertimeHours)
	assertDecimal(t, "1", agg.Analytics.ExtraTravelHours)
	assertDecimal(t, "9", agg.Analytics.RegularHours)
	assertDecimal(t, "2", agg.Analytics.NightWorkHours)
	assertDecimal(t, "2", agg.Analytics.TravelHours)
	assert.Equal(t, 2, agg.Analytics.StandbyInterventions)

	assert.Equal(t, 0, agg.Ordinary.Days, "standby days are not ordinary days")
	assert.Equal(t, 1, agg.Standby.Days)
	assert.Equal(t, 1, agg.Allowances.StandbyDays)
	assertDecimal(t, "7.50", agg.Allowances.Standby)
	assertDecimal(t, "2", agg.Standby.WorkHours.Total())

	assertNear(t, "28.57", agg.Analytics.OvertimePercentage)
	assertNear(t, "21.25", agg.Analytics.StandbyWorkRatio)
	assertNear(t, "3.75", agg.Analytics.AllowancesPercentage)
	assertNear(t, "85.71", agg.Analytics.WorkVsTravel)
	// 50 + (85.71-70)*0.5 - 10 + 10
	assertNear(t, "57.86", agg.Analytics.ProductivityScore)
}

func TestAggregateMonth_StandbyFlagWithoutEarnings(t *testing.T) {
	e := entryOn(march(5))
	e.IsStandbyDay = true
	days := []monthly.Day{{Entry: e, Breakdown: ordinaryBreakdown("8", "109.19")}}

	agg := monthly.AggregateMonth(days, defaults())

	assert.Equal(t, 0, agg.Standby.Days)
	assert.Equal(t, 0, agg.Ordinary.Days)
	assertDecimal(t, "0", agg.Analytics.StandbyWorkRatio)
}

func TestAggregateMonth_WeekendAndHolidayDays(t *testing.T) {
	s := defaults()
	days := []monthly.Day{
		{Entry: entryOn(march(8)), Breakdown: ordinaryBreakdown("4", "60")},                                 // Saturday
		{Entry: entryOn(march(9)), Breakdown: ordinaryBreakdown("4", "60")},                                 // Sunday
		{Entry: entryOn(generic.NewTimePoint(2025, time.April, 21)), Breakdown: ordinaryBreakdown("4", "60")}, // Easter Monday
	}

	agg := monthly.AggregateMonth(days, s)

	assert.Equal(t, 2, agg.Analytics.WeekendDays)
	assert.Equal(t, 1, agg.Analytics.HolidayDays)
}

func TestAggregateMonth_MinIgnoresZeroHourDays(t *testing.T) {
	days := []monthly.Day{
		{Entry: entryOn(march(3)), Breakdown: ordinaryBreakdown("0", "0")},
		{Entry: entryOn(march(4)), Breakdown: ordinaryBreakdown("6", "80")},
		{Entry: entryOn(march(5)), Breakdown: ordinaryBreakdown("9.5", "130")},
	}

	agg := monthly.AggregateMonth(days, defaults())

	assertDecimal(t, "6", agg.Analytics.MinDailyHours)
	assertDecimal(t, "9.5", agg.Analytics.MaxDailyHours)
	assert.Equal(t, 3, agg.DaysWorked)
	assert.Equal(t, 2, agg.Ordinary.Days)
}

func TestAggregateMonth_OnlyZeroHourDays_MinIsZero(t *testing.T) {
	days := []monthly.Day{{Entry: entryOn(march(3)), Breakdown: ordinaryBreakdown("0", "0")}}

	agg := monthly.AggregateMonth(days, defaults())

	assertDecimal(t, "0", agg.Analytics.MinDailyHours)
	assertDecimal(t, "0", agg.Analytics.AverageEarningsPerHour)
	assertDecimal(t, "0", agg.Analytics.OvertimePercentage)
	assertDecimal(t, "0", agg.Analytics.OrdinaryPercentage)
}

// =============================================================================
// PROPERTIES
// =============================================================================

func sampleMonth() []monthly.Day {
	sb := entryOn(march(11))
	sb.IsStandbyDay = true
	tr := entryOn(march(12))
	tr.TravelAllowance = true
	lunch := entryOn(march(13))
	lunch.MealLunchVoucher = true

	return []monthly.Day{
		{Entry: entryOn(march(10)), Breakdown: ordinaryBreakdown("8", "109.19")},
		{Entry: sb, Breakdown: standbyBreakdown()},
		{Entry: tr, Breakdown: withTravel(ordinaryBreakdown("9", "125.60"), "11.70")},
		{Entry: lunch, Breakdown: ordinaryBreakdown("7.5", "102.33")},
		{Entry: entryOn(march(15)), Breakdown: ordinaryBreakdown("4", "61.50")},
	}
}

func TestAggregateMonth_Additivity(t *testing.T) {
	days := sampleMonth()
	expected := decimal.Zero
	for _, day := range days {
		expected = expected.Add(day.Breakdown.TotalEarnings)
	}

	agg := monthly.AggregateMonth(days, defaults())

	assert.True(t, agg.TotalEarnings.Sub(expected).Abs().LessThanOrEqual(d("0.01")))
	assert.Equal(t, len(days), agg.DaysWorked)
}

func TestAggregateMonth_OrderIndependent(t *testing.T) {
	days := sampleMonth()
	reversed := make([]monthly.Day, len(days))
	for i, day := range days {
		reversed[len(days)-1-i] = day
	}

	a, err := json.Marshal(monthly.AggregateMonth(days, defaults()))
	require.NoError(t, err)
	b, err := json.Marshal(monthly.AggregateMonth(reversed, defaults()))
	require.NoError(t, err)

	assert.JSONEq(t, string(a), string(b))
}
