package hours

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/ndt-worklog/internal/models"
)

var rome = LoadLocation("Europe/Rome")

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func entry(t *testing.T, date, h string) models.WorkHourEntry {
	t.Helper()
	return models.WorkHourEntry{
		WorkDate:     day(t, date),
		JobNumber:    "J-100",
		JobName:      "Bridge Inspection",
		ActivityType: models.ActivityNDEUT,
		HoursWorked:  decimal.RequireFromString(h),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDec(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "%s: want %s, got %s", field, want, got)
}

// Wednesday 19 March 2025, midday in Rome.
func wednesday() time.Time {
	return time.Date(2025, time.March, 19, 12, 0, 0, 0, rome)
}

func TestComputeUserStats_Empty(t *testing.T) {
	stats := ComputeUserStats(nil, wednesday(), StatsOptions{})

	for name, v := range map[string]decimal.Decimal{
		"today": stats.TodayHours, "week": stats.WeekHours, "month": stats.MonthHours,
		"weekly": stats.OvertimeWeekly, "extra": stats.OvertimeExtra, "holiday": stats.OvertimeHoliday,
	} {
		assertDec(t, "0", v, name)
	}
}

func TestComputeUserStats_WeekdaySaturdaySunday(t *testing.T) {
	entries := []models.WorkHourEntry{
		entry(t, "2025-03-17", "9"), // Monday
		entry(t, "2025-03-15", "5"), // Saturday
		entry(t, "2025-03-16", "3"), // Sunday
	}

	stats := ComputeUserStats(entries, wednesday(), StatsOptions{})

	assertDec(t, "1", stats.OvertimeWeekly, "weekly")
	assertDec(t, "5", stats.OvertimeExtra, "extra")
	assertDec(t, "3", stats.OvertimeHoliday, "holiday")
	assertDec(t, "0", stats.TodayHours, "today")
	assertDec(t, "12", stats.WeekHours, "week")
	assertDec(t, "17", stats.MonthHours, "month")
}

func TestComputeUserStats_WeekdayThreshold(t *testing.T) {
	tests := []struct {
		hours  string
		weekly string
	}{
		{"8", "0"},
		{"7.5", "0"},
		{"10", "2"},
		{"8.5", "0.5"},
		{"24", "16"},
	}

	for _, tt := range tests {
		t.Run(tt.hours, func(t *testing.T) {
			stats := ComputeUserStats([]models.WorkHourEntry{entry(t, "2025-03-18", tt.hours)}, wednesday(), StatsOptions{})
			assertDec(t, tt.weekly, stats.OvertimeWeekly, "weekly")
			assertDec(t, "0", stats.OvertimeExtra, "extra")
			assertDec(t, "0", stats.OvertimeHoliday, "holiday")
		})
	}
}

func TestComputeUserStats_PerEntryNotPerDay(t *testing.T) {
	entries := []models.WorkHourEntry{
		entry(t, "2025-03-18", "5"),
		entry(t, "2025-03-18", "5"),
	}

	stats := ComputeUserStats(entries, wednesday(), StatsOptions{})

	assertDec(t, "0", stats.OvertimeWeekly, "weekly")
	assertDec(t, "10", stats.MonthHours, "month")
}

func TestComputeUserStats_HolidayBeatsWeekday(t *testing.T) {
	asOf := time.Date(2025, time.April, 30, 9, 0, 0, 0, rome)
	entries := []models.WorkHourEntry{
		entry(t, "2025-04-25", "10"), // Liberation Day, a Friday
		entry(t, "2025-04-21", "4"),  // Easter Monday
		entry(t, "2025-04-22", "9"),  // ordinary Tuesday
	}

	stats := ComputeUserStats(entries, asOf, StatsOptions{})

	assertDec(t, "14", stats.OvertimeHoliday, "holiday")
	assertDec(t, "1", stats.OvertimeWeekly, "weekly")
	assertDec(t, "0", stats.OvertimeExtra, "extra")
}

func TestComputeUserStats_EasterMonday2025(t *testing.T) {
	asOf := time.Date(2025, time.April, 23, 9, 0, 0, 0, rome)
	entries := []models.WorkHourEntry{
		entry(t, "2025-04-20", "3"),  // Easter Sunday
		entry(t, "2025-04-21", "10"), // Easter Monday
	}

	stats := ComputeUserStats(entries, asOf, StatsOptions{})

	assertDec(t, "13", stats.OvertimeHoliday, "holiday")
	assertDec(t, "0", stats.OvertimeWeekly, "weekly")
	assertDec(t, "0", stats.OvertimeExtra, "extra")
}

func TestComputeUserStats_TodayUsesConfiguredZone(t *testing.T) {
	// 23:30 UTC on the 18th is already the 19th in Rome.
	asOf := time.Date(2025, time.March, 18, 23, 30, 0, 0, time.UTC)
	entries := []models.WorkHourEntry{entry(t, "2025-03-19", "6")}

	inRome := ComputeUserStatsIn(entries, asOf, "Europe/Rome")
	assertDec(t, "6", inRome.TodayHours, "today rome")

	inUTC := ComputeUserStatsIn(entries, asOf, "UTC")
	assertDec(t, "0", inUTC.TodayHours, "today utc")
	assertDec(t, "0", inUTC.MonthHours, "month utc")
}

func TestComputeUserStats_UnknownZoneFallsBack(t *testing.T) {
	entries := []models.WorkHourEntry{entry(t, "2025-03-19", "6")}
	stats := ComputeUserStatsIn(entries, wednesday(), "Mars/Olympus")
	assertDec(t, "6", stats.TodayHours, "today")
}

func TestComputeUserStats_IgnoresFutureAndPreviousMonth(t *testing.T) {
	entries := []models.WorkHourEntry{
		entry(t, "2025-03-20", "8"),  // tomorrow
		entry(t, "2025-02-28", "12"), // previous month
	}

	stats := ComputeUserStats(entries, wednesday(), StatsOptions{})

	assertDec(t, "0", stats.MonthHours, "month")
	assertDec(t, "0", stats.OvertimeWeekly, "weekly")
}

func TestComputeUserStats_WeekSpansMonthBoundary(t *testing.T) {
	// Saturday 1 March: the week began on Sunday 23 February.
	asOf := time.Date(2025, time.March, 1, 10, 0, 0, 0, rome)
	entries := []models.WorkHourEntry{
		entry(t, "2025-02-24", "9"),
		entry(t, "2025-03-01", "4"),
	}

	stats := ComputeUserStats(entries, asOf, StatsOptions{})

	assertDec(t, "13", stats.WeekHours, "week")
	assertDec(t, "4", stats.MonthHours, "month")
	assertDec(t, "4", stats.OvertimeExtra, "extra")
	assertDec(t, "0", stats.OvertimeWeekly, "weekly")
}

func TestComputeUserStats_CustomStandardHours(t *testing.T) {
	entries := []models.WorkHourEntry{entry(t, "2025-03-18", "8")}
	stats := ComputeUserStats(entries, wednesday(), StatsOptions{StandardHours: dec("7.5")})
	assertDec(t, "0.5", stats.OvertimeWeekly, "weekly")
}

func TestComputeUserStats_DecimalSums(t *testing.T) {
	entries := []models.WorkHourEntry{
		entry(t, "2025-03-19", "0.1"),
		entry(t, "2025-03-19", "0.2"),
	}
	stats := ComputeUserStats(entries, wednesday(), StatsOptions{})
	assertDec(t, "0.3", stats.TodayHours, "today")
}

func TestComputeUserStats_Containment(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	start := day(t, "2025-02-01")

	for i := 0; i < 200; i++ {
		n := rng.Intn(20)
		entries := make([]models.WorkHourEntry, 0, n)
		for j := 0; j < n; j++ {
			d := start.AddDate(0, 0, rng.Intn(60))
			h := decimal.New(int64(rng.Intn(240)+1), -1)
			entries = append(entries, models.WorkHourEntry{WorkDate: d, HoursWorked: h})
		}
		asOf := time.Date(2025, time.March, 1+rng.Intn(31), 15, 0, 0, 0, rome)

		stats := ComputeUserStats(entries, asOf, StatsOptions{})

		require.True(t, stats.WeekHours.GreaterThanOrEqual(stats.TodayHours))
		require.True(t, stats.MonthHours.GreaterThanOrEqual(stats.TodayHours))
		overtime := stats.OvertimeWeekly.Add(stats.OvertimeExtra).Add(stats.OvertimeHoliday)
		require.True(t, stats.MonthHours.GreaterThanOrEqual(overtime))
		for _, v := range []decimal.Decimal{stats.OvertimeWeekly, stats.OvertimeExtra, stats.OvertimeHoliday} {
			require.False(t, v.IsNegative())
		}
	}
}

func TestStatsWindows(t *testing.T) {
	w := StatsWindows(wednesday(), rome)
	assert.Equal(t, day(t, "2025-03-19"), w.Today)
	assert.Equal(t, day(t, "2025-03-16"), w.WeekStart)
	assert.Equal(t, day(t, "2025-03-01"), w.MonthStart)
	assert.Equal(t, day(t, "2025-03-01"), w.Earliest())

	sunday := StatsWindows(time.Date(2025, time.March, 16, 8, 0, 0, 0, rome), rome)
	assert.Equal(t, sunday.Today, sunday.WeekStart)
}
