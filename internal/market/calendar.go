package market

import (
	"time"
)

// Calendar answers whether the KRX is open on a given date. Weekends are
// always closed; exchange holidays come from the configured set.
type Calendar struct {
	holidays map[string]struct{}
}

const dayKeyLayout = "2006-01-02"

// NewCalendar creates a Calendar that treats the given dates as closed in
// addition to weekends.
func NewCalendar(holidays []time.Time) *Calendar {
	set := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		set[h.Format(dayKeyLayout)] = struct{}{}
	}
	return &Calendar{holidays: set}
}

// IsTradingDay reports whether the exchange trades on the given date.
func (c *Calendar) IsTradingDay(date time.Time) bool {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	_, closed := c.holidays[date.Format(dayKeyLayout)]
	return !closed
}

// DefaultKRXHolidays returns the fixed-date KRX closures for the given
// years: New Year's Day, Independence Movement Day, Labour Day, Children's
// Day, Memorial Day, Liberation Day, National Foundation Day, Hangul Day,
// Christmas and the year-end closing day. Lunar-calendar holidays (Seollal,
// Chuseok, Buddha's Birthday) move year to year and must be supplied by the
// caller on top of these.
func DefaultKRXHolidays(years ...int) []time.Time {
	fixed := []struct{ month, day int }{
		{1, 1},   // New Year's Day
		{3, 1},   // Independence Movement Day
		{5, 1},   // Labour Day (KRX closes)
		{5, 5},   // Children's Day
		{6, 6},   // Memorial Day
		{8, 15},  // Liberation Day
		{10, 3},  // National Foundation Day
		{10, 9},  // Hangul Day
		{12, 25}, // Christmas
		{12, 31}, // year-end closing day
	}

	var out []time.Time
	for _, y := range years {
		for _, f := range fixed {
			out = append(out, time.Date(y, time.Month(f.month), f.day, 0, 0, 0, 0, time.UTC))
		}
	}
	return out
}
