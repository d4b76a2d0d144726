// Package hours classifies logged work hours into period totals and overtime
// buckets, and groups entries into job/module/activity summaries.
package hours

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/yukikurage/ndt-worklog/internal/constants"
	"github.com/yukikurage/ndt-worklog/internal/models"
)

// UserStats holds the period totals and overtime buckets for one user.
type UserStats struct {
	TodayHours      decimal.Decimal `json:"today_hours"`
	WeekHours       decimal.Decimal `json:"week_hours"`
	MonthHours      decimal.Decimal `json:"month_hours"`
	OvertimeWeekly  decimal.Decimal `json:"overtime_weekly"`
	OvertimeExtra   decimal.Decimal `json:"overtime_extra"`
	OvertimeHoliday decimal.Decimal `json:"overtime_holiday"`
}

// StatsOptions configures the classification. Zero values select Europe/Rome,
// an 8 hour standard day and the Italian national holidays.
type StatsOptions struct {
	Location      *time.Location
	StandardHours decimal.Decimal
	Holidays      HolidayCalendar
}

var (
	defaultLocation      = mustLoadLocation(constants.DefaultTimezone)
	defaultStandardHours = decimal.RequireFromString(constants.DefaultStandardHours)
	defaultHolidays      = &ItalianHolidays{}
)

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LoadLocation resolves a timezone name, falling back to the default zone.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return defaultLocation
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return defaultLocation
	}
	return loc
}

func (o StatsOptions) withDefaults() StatsOptions {
	if o.Location == nil {
		o.Location = defaultLocation
	}
	if !o.StandardHours.IsPositive() {
		o.StandardHours = defaultStandardHours
	}
	if o.Holidays == nil {
		o.Holidays = defaultHolidays
	}
	return o
}

// Windows are the civil dates bounding each statistics period. All periods end
// on Today.
type Windows struct {
	Today      time.Time
	WeekStart  time.Time
	MonthStart time.Time
}

// StatsWindows computes the periods for asOf in loc. The week starts on the most
// recent Sunday.
func StatsWindows(asOf time.Time, loc *time.Location) Windows {
	if loc == nil {
		loc = defaultLocation
	}
	today := civilDate(asOf.In(loc))
	return Windows{
		Today:      today,
		WeekStart:  today.AddDate(0, 0, -int(today.Weekday())),
		MonthStart: time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC),
	}
}

// Earliest is the first date any period covers.
func (w Windows) Earliest() time.Time {
	if w.WeekStart.Before(w.MonthStart) {
		return w.WeekStart
	}
	return w.MonthStart
}

func (w Windows) contains(start, date time.Time) bool {
	return !date.Before(start) && !date.After(w.Today)
}

// ComputeUserStats sums hours per period and classifies the month's entries
// into overtime buckets. Classification is per entry, not per day.
func ComputeUserStats(entries []models.WorkHourEntry, asOf time.Time, opts StatsOptions) UserStats {
	opts = opts.withDefaults()
	w := StatsWindows(asOf, opts.Location)

	stats := UserStats{
		TodayHours:      decimal.Zero,
		WeekHours:       decimal.Zero,
		MonthHours:      decimal.Zero,
		OvertimeWeekly:  decimal.Zero,
		OvertimeExtra:   decimal.Zero,
		OvertimeHoliday: decimal.Zero,
	}

	for _, entry := range entries {
		date := civilDate(entry.WorkDate)
		h := entry.HoursWorked

		if w.contains(w.Today, date) {
			stats.TodayHours = stats.TodayHours.Add(h)
		}
		if w.contains(w.WeekStart, date) {
			stats.WeekHours = stats.WeekHours.Add(h)
		}
		if !w.contains(w.MonthStart, date) {
			continue
		}
		stats.MonthHours = stats.MonthHours.Add(h)

		switch Classify(date, opts.Holidays) {
		case DayHoliday:
			stats.OvertimeHoliday = stats.OvertimeHoliday.Add(h)
		case DaySaturday:
			stats.OvertimeExtra = stats.OvertimeExtra.Add(h)
		default:
			if h.GreaterThan(opts.StandardHours) {
				stats.OvertimeWeekly = stats.OvertimeWeekly.Add(h.Sub(opts.StandardHours))
			}
		}
	}

	return stats
}

// ComputeUserStatsIn is ComputeUserStats with the zone given by name. Unknown
// zones fall back to the default zone.
func ComputeUserStatsIn(entries []models.WorkHourEntry, asOf time.Time, timezone string) UserStats {
	return ComputeUserStats(entries, asOf, StatsOptions{Location: LoadLocation(timezone)})
}

// DayKind is the overtime category of a calendar date.
type DayKind int

const (
	DayWeekday DayKind = iota
	DaySaturday
	DayHoliday
)

// Classify puts Sundays and holidays first, so a weekday holiday is a holiday.
func Classify(date time.Time, holidays HolidayCalendar) DayKind {
	if holidays == nil {
		holidays = defaultHolidays
	}
	switch {
	case date.Weekday() == time.Sunday || holidays.IsHoliday(date):
		return DayHoliday
	case date.Weekday() == time.Saturday:
		return DaySaturday
	default:
		return DayWeekday
	}
}

// civilDate keeps the calendar date of t in its own location.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
