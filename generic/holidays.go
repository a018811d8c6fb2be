package generic

import (
	"sort"
	"time"
)

// =============================================================================
// HOLIDAY CALENDAR - Italian public holidays
// =============================================================================

// Holiday is a non-working day that pays the CCNL holiday rate.
type Holiday struct {
	Date      TimePoint
	Name      string
	Recurring bool // true = same month/day every year
}

// HolidayCalendar provides holiday lookup functionality.
type HolidayCalendar interface {
	// IsHoliday checks if a date is a public holiday.
	IsHoliday(date TimePoint) bool

	// HolidaysIn returns all holidays in a given year, ordered by date.
	HolidaysIn(year int) []Holiday
}

// NoHolidays is a no-op calendar for when holidays are disabled.
type NoHolidays struct{}

func (NoHolidays) IsHoliday(TimePoint) bool { return false }
func (NoHolidays) HolidaysIn(int) []Holiday { return nil }

type fixedFeast struct {
	month time.Month
	day   int
	name  string
}

var italianFeasts = []fixedFeast{
	{time.January, 1, "Capodanno"},
	{time.January, 6, "Epifania"},
	{time.April, 25, "Festa della Liberazione"},
	{time.May, 1, "Festa del Lavoro"},
	{time.June, 2, "Festa della Repubblica"},
	{time.August, 15, "Ferragosto"},
	{time.November, 1, "Ognissanti"},
	{time.December, 8, "Immacolata Concezione"},
	{time.December, 25, "Natale"},
	{time.December, 26, "Santo Stefano"},
}

// ItalianCalendar is the national calendar plus an optional local patron
// saint day given as "MM-DD" (e.g., "06-24" for Turin).
type ItalianCalendar struct {
	PatronSaint string
}

func (c ItalianCalendar) IsHoliday(date TimePoint) bool {
	for _, h := range c.HolidaysIn(date.Year()) {
		if h.Date.Equal(date) {
			return true
		}
	}
	return false
}

func (c ItalianCalendar) HolidaysIn(year int) []Holiday {
	holidays := make([]Holiday, 0, len(italianFeasts)+2)
	for _, f := range italianFeasts {
		holidays = append(holidays, Holiday{
			Date:      NewTimePoint(year, f.month, f.day),
			Name:      f.name,
			Recurring: true,
		})
	}

	holidays = append(holidays, Holiday{
		Date: EasterSunday(year).AddDays(1),
		Name: "Lunedì dell'Angelo",
	})

	if md, ok := parseMonthDay(c.PatronSaint); ok {
		patron := NewTimePoint(year, md.Month(), md.Day())
		duplicate := false
		for _, h := range holidays {
			if h.Date.Equal(patron) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			holidays = append(holidays, Holiday{Date: patron, Name: "Santo Patrono", Recurring: true})
		}
	}

	sort.Slice(holidays, func(i, j int) bool {
		return holidays[i].Date.Before(holidays[j].Date)
	})
	return holidays
}

// EasterSunday computes the Gregorian Easter date (anonymous algorithm).
func EasterSunday(year int) TimePoint {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return NewTimePoint(year, time.Month(month), day)
}

// ValidMonthDay reports whether s is an empty or well-formed "MM-DD".
func ValidMonthDay(s string) bool {
	if s == "" {
		return true
	}
	_, ok := parseMonthDay(s)
	return ok
}

func parseMonthDay(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	// 2000 is a leap year, so 02-29 parses.
	t, err := time.Parse("2006-01-02", "2000-"+s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
