package hours

import (
	"fmt"
	"time"
)

// HolidayCalendar decides whether a calendar date is a public holiday.
type HolidayCalendar interface {
	IsHoliday(date time.Time) bool
}

type monthDay struct {
	month time.Month
	day   int
}

var italianFixedHolidays = []monthDay{
	{time.January, 1},   // Capodanno
	{time.January, 6},   // Epifania
	{time.April, 25},    // Liberazione
	{time.May, 1},       // Festa del Lavoro
	{time.June, 2},      // Festa della Repubblica
	{time.August, 15},   // Ferragosto
	{time.November, 1},  // Ognissanti
	{time.December, 8},  // Immacolata
	{time.December, 25}, // Natale
	{time.December, 26}, // Santo Stefano
}

// ItalianHolidays is the national holiday calendar, Easter Monday included,
// evaluated for the year of the date being checked.
type ItalianHolidays struct {
	extra []monthDay
}

// NewItalianHolidays builds the calendar with additional "MM-DD" dates such as a
// local patron saint day.
func NewItalianHolidays(extra ...string) (*ItalianHolidays, error) {
	cal := &ItalianHolidays{}
	for _, raw := range extra {
		t, err := time.Parse("01-02", raw)
		if err != nil {
			return nil, fmt.Errorf("invalid holiday %q: expected MM-DD", raw)
		}
		cal.extra = append(cal.extra, monthDay{t.Month(), t.Day()})
	}
	return cal, nil
}

func (c *ItalianHolidays) IsHoliday(date time.Time) bool {
	y, m, d := date.Date()
	for _, h := range italianFixedHolidays {
		if h.month == m && h.day == d {
			return true
		}
	}
	if c != nil {
		for _, h := range c.extra {
			if h.month == m && h.day == d {
				return true
			}
		}
	}
	em, ed := easterMonday(y)
	return m == em && d == ed
}

// Holidays lists the calendar's dates for a year in chronological order.
func (c *ItalianHolidays) Holidays(year int) []time.Time {
	var out []time.Time
	for day := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC); day.Year() == year; day = day.AddDate(0, 0, 1) {
		if c.IsHoliday(day) {
			out = append(out, day)
		}
	}
	return out
}

// easterMonday uses the anonymous Gregorian computus.
func easterMonday(year int) (time.Month, int) {
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

	easter := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	monday := easter.AddDate(0, 0, 1)
	return monday.Month(), monday.Day()
}
