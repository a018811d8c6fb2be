/*
Package monthly folds daily earnings breakdowns into a monthly summary.

PURPOSE:
  A daily breakdown (what one day of work pays, split into ordinary work,
  standby interventions and allowances) is produced outside this package.
  The aggregator sums many of them into a MonthlyAggregate and performs the
  categorization the daily computation does not: travel allowance tiers,
  meal types and cross-day analytics.

KEY CONCEPTS:
  Bucket:     A labeled hour or earnings amount ("lavoro_extra", "night")
  Band:       A standby time-of-day/day-type bucket
  Tier:       Travel allowance share of the full daily amount (100/78/50)
  Skipped:    A day whose breakdown could not be produced; it is logged and
              left out of every sum

FIXED SCHEMA:
  Buckets are struct fields, not maps. Decoding a provider document fills
  the known labels and ignores any other key, so a newer provider can add
  buckets without breaking older aggregators.

SEE ALSO:
  - aggregate.go: The per-day fold and finalization
  - aggregator.go: Breakdown resolution with partial-failure handling
  - provider.go: Stored breakdown provider
*/
package monthly

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bzrenis/workt-sub001/generic"
)

// =============================================================================
// ORDINARY BUCKETS
// =============================================================================

// OrdinaryHours are the ordinary hour buckets of a day.
type OrdinaryHours struct {
	DailyWork   decimal.Decimal `json:"lavoro_giornaliera"`
	DailyTravel decimal.Decimal `json:"viaggio_giornaliera"`
	ExtraWork   decimal.Decimal `json:"lavoro_extra"`
	ExtraTravel decimal.Decimal `json:"viaggio_extra"`
}

func (h OrdinaryHours) Add(o OrdinaryHours) OrdinaryHours {
	return OrdinaryHours{
		DailyWork:   h.DailyWork.Add(o.DailyWork),
		DailyTravel: h.DailyTravel.Add(o.DailyTravel),
		ExtraWork:   h.ExtraWork.Add(o.ExtraWork),
		ExtraTravel: h.ExtraTravel.Add(o.ExtraTravel),
	}
}

func (h OrdinaryHours) Total() decimal.Decimal {
	return generic.Sum(h.DailyWork, h.DailyTravel, h.ExtraWork, h.ExtraTravel)
}

// Work is the sum of the work buckets.
func (h OrdinaryHours) Work() decimal.Decimal { return h.DailyWork.Add(h.ExtraWork) }

// Travel is the sum of the travel buckets.
func (h OrdinaryHours) Travel() decimal.Decimal { return h.DailyTravel.Add(h.ExtraTravel) }

func (h OrdinaryHours) values() []decimal.Decimal {
	return []decimal.Decimal{h.DailyWork, h.DailyTravel, h.ExtraWork, h.ExtraTravel}
}

// OrdinaryEarnings are the paid components of ordinary work.
type OrdinaryEarnings struct {
	Daily         decimal.Decimal `json:"giornaliera"`
	ExtraTravel   decimal.Decimal `json:"viaggio_extra"`
	ExtraWork     decimal.Decimal `json:"lavoro_extra"`
	SaturdayBonus decimal.Decimal `json:"sabato_bonus"`
	SundayBonus   decimal.Decimal `json:"domenica_bonus"`
	HolidayBonus  decimal.Decimal `json:"festivo_bonus"`
}

func (e OrdinaryEarnings) Add(o OrdinaryEarnings) OrdinaryEarnings {
	return OrdinaryEarnings{
		Daily:         e.Daily.Add(o.Daily),
		ExtraTravel:   e.ExtraTravel.Add(o.ExtraTravel),
		ExtraWork:     e.ExtraWork.Add(o.ExtraWork),
		SaturdayBonus: e.SaturdayBonus.Add(o.SaturdayBonus),
		SundayBonus:   e.SundayBonus.Add(o.SundayBonus),
		HolidayBonus:  e.HolidayBonus.Add(o.HolidayBonus),
	}
}

func (e OrdinaryEarnings) values() []decimal.Decimal {
	return []decimal.Decimal{e.Daily, e.ExtraTravel, e.ExtraWork, e.SaturdayBonus, e.SundayBonus, e.HolidayBonus}
}

// =============================================================================
// STANDBY BANDS
// =============================================================================

// Bands splits standby hours or earnings by time of day and day type.
type Bands struct {
	Ordinary      decimal.Decimal `json:"ordinary"`
	Night         decimal.Decimal `json:"night"`
	Holiday       decimal.Decimal `json:"holiday"`
	Saturday      decimal.Decimal `json:"saturday"`
	SaturdayNight decimal.Decimal `json:"saturday_night"`
	NightHoliday  decimal.Decimal `json:"night_holiday"`
}

func (b Bands) Add(o Bands) Bands {
	return Bands{
		Ordinary:      b.Ordinary.Add(o.Ordinary),
		Night:         b.Night.Add(o.Night),
		Holiday:       b.Holiday.Add(o.Holiday),
		Saturday:      b.Saturday.Add(o.Saturday),
		SaturdayNight: b.SaturdayNight.Add(o.SaturdayNight),
		NightHoliday:  b.NightHoliday.Add(o.NightHoliday),
	}
}

func (b Bands) Total() decimal.Decimal {
	return generic.Sum(b.values()...)
}

// NightTotal sums the night bands: night, saturday night and night holiday.
func (b Bands) NightTotal() decimal.Decimal {
	return generic.Sum(b.Night, b.SaturdayNight, b.NightHoliday)
}

func (b Bands) values() []decimal.Decimal {
	return []decimal.Decimal{b.Ordinary, b.Night, b.Holiday, b.Saturday, b.SaturdayNight, b.NightHoliday}
}

// =============================================================================
// DAILY BREAKDOWN
// =============================================================================

type Ordinary struct {
	Total    decimal.Decimal  `json:"total"`
	Hours    OrdinaryHours    `json:"hours"`
	Earnings OrdinaryEarnings `json:"earnings"`
}

type Standby struct {
	TotalEarnings  decimal.Decimal `json:"totalEarnings"`
	WorkHours      Bands           `json:"workHours"`
	TravelHours    Bands           `json:"travelHours"`
	WorkEarnings   Bands           `json:"workEarnings"`
	TravelEarnings Bands           `json:"travelEarnings"`
}

type Allowances struct {
	Travel  decimal.Decimal `json:"travel"`
	Meal    decimal.Decimal `json:"meal"`
	Standby decimal.Decimal `json:"standby"`
}

// DailyBreakdown is the earnings computation for one day. Ordinary.Total,
// Standby.TotalEarnings and the allowances add up to TotalEarnings; the
// aggregator relies on this and does not re-check it.
type DailyBreakdown struct {
	TotalEarnings decimal.Decimal `json:"totalEarnings"`
	Ordinary      Ordinary        `json:"ordinary"`
	Standby       Standby         `json:"standby"`
	Allowances    Allowances      `json:"allowances"`
}

// Hours is the day's worked time: ordinary buckets plus standby work and
// travel bands.
func (b DailyBreakdown) Hours() decimal.Decimal {
	return generic.Sum(b.Ordinary.Hours.Total(), b.Standby.WorkHours.Total(), b.Standby.TravelHours.Total())
}

// Validate rejects impossible values. Every amount must be non-negative.
func (b DailyBreakdown) Validate() error {
	groups := []struct {
		name   string
		values []decimal.Decimal
	}{
		{"totalEarnings", []decimal.Decimal{b.TotalEarnings}},
		{"ordinary.total", []decimal.Decimal{b.Ordinary.Total}},
		{"ordinary.hours", b.Ordinary.Hours.values()},
		{"ordinary.earnings", b.Ordinary.Earnings.values()},
		{"standby.totalEarnings", []decimal.Decimal{b.Standby.TotalEarnings}},
		{"standby.workHours", b.Standby.WorkHours.values()},
		{"standby.travelHours", b.Standby.TravelHours.values()},
		{"standby.workEarnings", b.Standby.WorkEarnings.values()},
		{"standby.travelEarnings", b.Standby.TravelEarnings.values()},
		{"allowances", []decimal.Decimal{b.Allowances.Travel, b.Allowances.Meal, b.Allowances.Standby}},
	}
	for _, g := range groups {
		for _, v := range g.values {
			if v.IsNegative() {
				return fmt.Errorf("%w: negative value %s in %s", generic.ErrMalformedBreakdown, v, g.name)
			}
		}
	}
	return nil
}

// DecodeBreakdown parses a provider document. Unknown keys are ignored;
// amounts may be numbers or numeric strings.
func DecodeBreakdown(data []byte) (DailyBreakdown, error) {
	if len(data) == 0 {
		return DailyBreakdown{}, fmt.Errorf("%w: empty document", generic.ErrMalformedBreakdown)
	}

	var b DailyBreakdown
	if err := json.Unmarshal(data, &b); err != nil {
		return DailyBreakdown{}, fmt.Errorf("%w: %v", generic.ErrMalformedBreakdown, err)
	}
	if err := b.Validate(); err != nil {
		return DailyBreakdown{}, err
	}
	return b, nil
}

// EncodeBreakdown renders a breakdown in the provider document format.
func EncodeBreakdown(b DailyBreakdown) ([]byte, error) {
	return json.Marshal(b)
}
