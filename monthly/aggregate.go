package monthly

import (
	"github.com/shopspring/decimal"

	"github.com/bzrenis/workt-sub001/generic"
	"github.com/bzrenis/workt-sub001/settings"
)

// =============================================================================
// MONTHLY AGGREGATE
// =============================================================================

type OrdinaryTotals struct {
	Total    decimal.Decimal  `json:"total"`
	Hours    OrdinaryHours    `json:"hours"`
	Earnings OrdinaryEarnings `json:"earnings"`
	Days     int              `json:"days"` // non-standby days with ordinary earnings
}

type StandbyTotals struct {
	TotalEarnings  decimal.Decimal `json:"totalEarnings"`
	WorkHours      Bands           `json:"workHours"`
	TravelHours    Bands           `json:"travelHours"`
	WorkEarnings   Bands           `json:"workEarnings"`
	TravelEarnings Bands           `json:"travelEarnings"`
	Days           int             `json:"days"` // standby days with standby earnings
}

type AllowanceTotals struct {
	Travel          decimal.Decimal `json:"travel"`
	Meal            decimal.Decimal `json:"meal"`
	Standby         decimal.Decimal `json:"standby"`
	TravelDays      int             `json:"travelDays"`
	MealDays        int             `json:"mealDays"`
	StandbyDays     int             `json:"standbyDays"`
	TravelByPercent TravelBuckets   `json:"travelByPercent"`
}

type MealTotals struct {
	Lunch  MealSlotTotals `json:"lunch"`
	Dinner MealSlotTotals `json:"dinner"`
	ByType MealTypeTotals `json:"byType"`
}

// Analytics are derived once, after every day has been folded.
type Analytics struct {
	AverageHoursPerDay     decimal.Decimal `json:"averageHoursPerDay"`
	AverageEarningsPerDay  decimal.Decimal `json:"averageEarningsPerDay"`
	AverageEarningsPerHour decimal.Decimal `json:"averageEarningsPerHour"`
	MaxDailyHours          decimal.Decimal `json:"maxDailyHours"`
	MinDailyHours          decimal.Decimal `json:"minDailyHours"`
	WeekendDays            int             `json:"weekendDays"`
	HolidayDays            int             `json:"holidayDays"`
	NightWorkHours         decimal.Decimal `json:"nightWorkHours"`
	TravelHours            decimal.Decimal `json:"travelHours"`
	StandbyInterventions   int             `json:"standbyInterventions"`
	OvertimeHours          decimal.Decimal `json:"overtimeHours"`
	ExtraTravelHours       decimal.Decimal `json:"extraTravelHours"`
	RegularHours           decimal.Decimal `json:"regularHours"`
	OvertimePercentage     decimal.Decimal `json:"overtimePercentage"`
	StandbyWorkRatio       decimal.Decimal `json:"standbyWorkRatio"`
	OrdinaryPercentage     decimal.Decimal `json:"ordinaryPercentage"`
	StandbyPercentage      decimal.Decimal `json:"standbyPercentage"`
	AllowancesPercentage   decimal.Decimal `json:"allowancesPercentage"`
	WorkVsTravel           decimal.Decimal `json:"workVsTravel"`
	ProductivityScore      decimal.Decimal `json:"productivityScore"` // 0-100, display only
}

// MonthlyAggregate summarizes one calendar month. It is rebuilt from the
// full day list on every query.
type MonthlyAggregate struct {
	TotalEarnings decimal.Decimal `json:"totalEarnings"`
	TotalHours    decimal.Decimal `json:"totalHours"`
	DaysWorked    int             `json:"daysWorked"`
	Ordinary      OrdinaryTotals  `json:"ordinary"`
	Standby       StandbyTotals   `json:"standby"`
	Allowances    AllowanceTotals `json:"allowances"`
	Meals         MealTotals      `json:"meals"`
	Analytics     Analytics       `json:"analytics"`
}

// =============================================================================
// FOLD
// =============================================================================

// AggregateMonth folds the days of one month. The result does not depend
// on the order of days. An empty list yields the zero aggregate.
func AggregateMonth(days []Day, s settings.Settings) MonthlyAggregate {
	f := fold{settings: s, calendar: s.Calendar()}
	for _, d := range days {
		f = f.step(d)
	}
	return f.finalize()
}

// fold is the accumulator of AggregateMonth. step works on a copy and
// returns the next state.
type fold struct {
	settings settings.Settings
	calendar generic.HolidayCalendar
	agg      MonthlyAggregate
	minHours generic.Optional
}

func (f fold) step(d Day) fold {
	e, b := d.Entry, d.Breakdown
	a := f.agg

	a.TotalEarnings = a.TotalEarnings.Add(b.TotalEarnings)
	a.DaysWorked++

	hours := b.Hours()
	a.Analytics.MaxDailyHours = decimal.Max(a.Analytics.MaxDailyHours, hours)
	if hours.IsPositive() {
		f.minHours = f.minHours.MinWith(hours)
	}

	if e.Date.IsWeekend() {
		a.Analytics.WeekendDays++
	}
	if f.calendar.IsHoliday(e.Date) {
		a.Analytics.HolidayDays++
	}

	if night := b.Standby.WorkHours.NightTotal(); night.IsPositive() {
		a.Analytics.NightWorkHours = a.Analytics.NightWorkHours.Add(night)
	}
	a.Analytics.TravelHours = generic.Sum(a.Analytics.TravelHours, b.Ordinary.Hours.Travel(), b.Standby.TravelHours.Total())
	a.Analytics.StandbyInterventions += len(e.Interventions)

	a.Ordinary = addOrdinary(a.Ordinary, b.Ordinary, e.IsStandbyDay)
	a.Standby = addStandby(a.Standby, b.Standby, e.IsStandbyDay)
	a.Allowances = addAllowances(a.Allowances, b.Allowances, e, f.settings.TravelDailyAmount())

	meals := dayMeals(e, f.settings.MealAllowances)
	a.Meals = meals.addTo(a.Meals)
	if total := meals.total(); total.IsPositive() {
		a.Allowances.Meal = a.Allowances.Meal.Add(total)
		a.Allowances.MealDays++
	}

	a.TotalHours = a.TotalHours.Add(hours)

	f.agg = a
	return f
}

func addOrdinary(t OrdinaryTotals, o Ordinary, standbyDay bool) OrdinaryTotals {
	t.Total = t.Total.Add(o.Total)
	if !standbyDay && o.Total.IsPositive() {
		t.Days++
	}
	t.Hours = t.Hours.Add(o.Hours)
	t.Earnings = t.Earnings.Add(o.Earnings)
	return t
}

func addStandby(t StandbyTotals, s Standby, standbyDay bool) StandbyTotals {
	t.TotalEarnings = t.TotalEarnings.Add(s.TotalEarnings)
	if standbyDay && s.TotalEarnings.IsPositive() {
		t.Days++
	}
	t.WorkHours = t.WorkHours.Add(s.WorkHours)
	t.TravelHours = t.TravelHours.Add(s.TravelHours)
	t.WorkEarnings = t.WorkEarnings.Add(s.WorkEarnings)
	t.TravelEarnings = t.TravelEarnings.Add(s.TravelEarnings)
	return t
}

func addAllowances(t AllowanceTotals, a Allowances, e WorkEntry, travelDailyAmount decimal.Decimal) AllowanceTotals {
	t.Travel = t.Travel.Add(a.Travel)
	if a.Travel.IsPositive() {
		t.TravelByPercent = t.TravelByPercent.Add(a.Travel, travelDailyAmount)
	}
	// The flag and the computed amount are tracked separately, so this
	// count may differ from the bucket day counts.
	if e.TravelAllowance && a.Travel.IsPositive() {
		t.TravelDays++
	}

	t.Standby = t.Standby.Add(a.Standby)
	if e.IsStandbyDay && a.Standby.IsPositive() {
		t.StandbyDays++
	}
	return t
}

// =============================================================================
// FINALIZATION
// =============================================================================

var (
	productivityBase     = decimal.NewFromInt(50)
	workVsTravelPivot    = decimal.NewFromInt(70)
	workVsTravelWeight   = decimal.RequireFromString("0.5")
	overtimePenaltyAbove = decimal.NewFromInt(20)
	overtimePenalty      = decimal.NewFromInt(10)
	standbyBonus         = decimal.NewFromInt(10)
	productivityFloor    = decimal.Zero
	productivityCeiling  = decimal.NewFromInt(100)
)

func (f fold) finalize() MonthlyAggregate {
	a := f.agg
	a.Analytics.MinDailyHours = f.minHours.OrZero()
	if a.DaysWorked == 0 {
		return a
	}

	days := decimal.NewFromInt(int64(a.DaysWorked))
	an := &a.Analytics

	an.AverageHoursPerDay = a.TotalHours.Div(days)
	an.AverageEarningsPerDay = a.TotalEarnings.Div(days)
	an.AverageEarningsPerHour = generic.SafeDiv(a.TotalEarnings, a.TotalHours)

	// Extra travel is tracked but is not overtime.
	an.OvertimeHours = a.Ordinary.Hours.ExtraWork.Add(a.Standby.WorkHours.Total())
	an.ExtraTravelHours = a.Ordinary.Hours.ExtraTravel
	an.RegularHours = a.TotalHours.Sub(an.OvertimeHours).Sub(an.ExtraTravelHours)
	an.OvertimePercentage = generic.Percent(an.OvertimeHours, a.TotalHours)

	an.StandbyWorkRatio = generic.Percent(a.Standby.TotalEarnings, a.TotalEarnings)
	an.OrdinaryPercentage = generic.Percent(a.Ordinary.Total, a.TotalEarnings)
	an.StandbyPercentage = generic.Percent(a.Standby.TotalEarnings, a.TotalEarnings)
	an.AllowancesPercentage = generic.Percent(a.Allowances.Travel.Add(a.Allowances.Standby), a.TotalEarnings)

	workHours := a.Ordinary.Hours.Work().Add(a.Standby.WorkHours.Total())
	an.WorkVsTravel = generic.Percent(workHours, a.TotalHours)

	an.ProductivityScore = productivityScore(an.WorkVsTravel, an.OvertimePercentage, an.StandbyWorkRatio)
	return a
}

// productivityScore is a display heuristic, clamped to [0, 100].
func productivityScore(workVsTravel, overtimePct, standbyRatio decimal.Decimal) decimal.Decimal {
	score := productivityBase.Add(workVsTravel.Sub(workVsTravelPivot).Mul(workVsTravelWeight))
	if overtimePct.GreaterThan(overtimePenaltyAbove) {
		score = score.Sub(overtimePenalty)
	}
	if standbyRatio.IsPositive() {
		score = score.Add(standbyBonus)
	}
	return generic.Clamp(score, productivityFloor, productivityCeiling)
}
