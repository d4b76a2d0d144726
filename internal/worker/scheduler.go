// Package worker runs the periodic scans: missing-entry reminders,
// calibration/qualification expiry warnings and the weekly hours report.
// All of them only log.
package worker

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/yukikurage/ndt-worklog/internal/constants"
	"github.com/yukikurage/ndt-worklog/internal/metrics"
	"github.com/yukikurage/ndt-worklog/internal/models"
	"github.com/yukikurage/ndt-worklog/internal/repository"
	"github.com/yukikurage/ndt-worklog/internal/services"
)

// Scheduler owns the cron runner and the scan jobs.
type Scheduler struct {
	cron      *cron.Cron
	users     repository.UserRepository
	hours     repository.WorkHourRepository
	equipment repository.EquipmentRepository
	quals     repository.QualificationRepository
	settings  *services.SettingsService
	metrics   *metrics.Metrics
	log       zerolog.Logger
	now       func() time.Time
}

// Deps groups the repositories the scans read.
type Deps struct {
	Users          repository.UserRepository
	WorkHours      repository.WorkHourRepository
	Equipment      repository.EquipmentRepository
	Qualifications repository.QualificationRepository
	Settings       *services.SettingsService
	Metrics        *metrics.Metrics
}

func NewScheduler(deps Deps, log zerolog.Logger) *Scheduler {
	log = log.With().Str("component", "worker").Logger()
	cl := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		users:     deps.Users,
		hours:     deps.WorkHours,
		equipment: deps.Equipment,
		quals:     deps.Qualifications,
		settings:  deps.Settings,
		metrics:   deps.Metrics,
		log:       log,
		now:       time.Now,
	}
}

// Register adds the scans. An empty schedule disables its scan.
func (s *Scheduler) Register(reminderSchedule, expirySchedule, weeklySchedule string) error {
	if reminderSchedule != "" {
		if _, err := s.cron.AddFunc(reminderSchedule, s.runReminders); err != nil {
			return fmt.Errorf("invalid reminder schedule %q: %w", reminderSchedule, err)
		}
	}
	if expirySchedule != "" {
		if _, err := s.cron.AddFunc(expirySchedule, s.runExpiryScan); err != nil {
			return fmt.Errorf("invalid expiry scan schedule %q: %w", expirySchedule, err)
		}
	}
	if weeklySchedule != "" {
		if _, err := s.cron.AddFunc(weeklySchedule, s.runWeeklyReport); err != nil {
			return fmt.Errorf("invalid weekly report schedule %q: %w", weeklySchedule, err)
		}
	}
	return nil
}

func (s *Scheduler) Start() {
	s.log.Info().Int("jobs", len(s.cron.Entries())).Msg("Starting scheduler")
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("Scheduler stopped")
}

func (s *Scheduler) runReminders() {
	if _, err := s.Reminders(); err != nil {
		s.log.Error().Err(err).Msg("Reminder scan failed")
	}
}

func (s *Scheduler) runExpiryScan() {
	if _, err := s.ExpiryScan(); err != nil {
		s.log.Error().Err(err).Msg("Expiry scan failed")
	}
}

func (s *Scheduler) runWeeklyReport() {
	if _, err := s.WeeklyReport(); err != nil {
		s.log.Error().Err(err).Msg("Weekly report failed")
	}
}

// Reminders lists the enabled users with no hours logged today, in the
// configured timezone. Nothing happens while daily reminders are off.
func (s *Scheduler) Reminders() ([]models.User, error) {
	settings, err := s.settings.Get()
	if err != nil {
		return nil, err
	}
	if !settings.DailyReminders {
		s.log.Debug().Msg("Daily reminders are disabled")
		return nil, nil
	}

	loc, err := s.settings.Location()
	if err != nil {
		return nil, err
	}
	y, m, d := s.now().In(loc).Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	users, err := s.users.ListEnabled()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	logged, err := s.hours.UserIDsWithEntriesOn(today)
	if err != nil {
		return nil, fmt.Errorf("failed to load today's entries: %w", err)
	}
	done := make(map[uint64]bool, len(logged))
	for _, id := range logged {
		done[id] = true
	}

	var missing []models.User
	for _, u := range users {
		if done[u.ID] {
			continue
		}
		missing = append(missing, u)
		s.log.Info().
			Uint64("user_id", u.ID).
			Str("operator", u.DisplayName()).
			Str("date", today.Format(constants.DateLayout)).
			Msg("No hours logged today")
	}
	s.log.Info().Int("missing", len(missing)).Int("users", len(users)).Msg("Reminder scan finished")
	return missing, nil
}

// ExpiryReport lists what expires within the warning window.
type ExpiryReport struct {
	Equipment      []models.Equipment
	Qualifications []models.Qualification
}

// ExpiryScan warns about calibrations and qualifications that expired or
// expire within constants.ExpiryWarningDays.
func (s *Scheduler) ExpiryScan() (*ExpiryReport, error) {
	now := s.now()
	limit := now.AddDate(0, 0, constants.ExpiryWarningDays)

	equipment, err := s.equipment.ListCalibrationDueBefore(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list calibrations: %w", err)
	}
	for _, e := range equipment {
		s.log.Warn().
			Uint64("equipment_id", e.ID).
			Str("internal_serial_number", e.InternalSerialNumber).
			Str("equipment_type", string(e.EquipmentType)).
			Int("days_left", models.DaysUntil(now, *e.CalibrationExpiry)).
			Msg("Calibration expiring")
	}
	s.metrics.ExpiryWarnings("calibration", len(equipment))

	quals, err := s.quals.ListExpiringBefore(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list qualifications: %w", err)
	}
	for _, q := range quals {
		s.log.Warn().
			Uint64("qualification_id", q.ID).
			Uint64("operator_id", q.OperatorID).
			Str("operator", q.Operator.DisplayName()).
			Str("qualification_type", string(q.QualificationType)).
			Str("level", string(q.Level)).
			Int("days_left", models.DaysUntil(now, q.ExpiryDate)).
			Msg("Qualification expiring")
	}
	s.metrics.ExpiryWarnings("qualification", len(quals))

	return &ExpiryReport{Equipment: equipment, Qualifications: quals}, nil
}

// WeeklyTotal is one user's hours over the reported week.
type WeeklyTotal struct {
	User  models.User
	Hours decimal.Decimal
}

// WeeklyReport totals the hours of every enabled user over the last full
// Monday-to-Sunday week, in the configured timezone. Nothing happens while
// weekly reports are off.
func (s *Scheduler) WeeklyReport() ([]WeeklyTotal, error) {
	settings, err := s.settings.Get()
	if err != nil {
		return nil, err
	}
	if !settings.WeeklyReports {
		s.log.Debug().Msg("Weekly reports are disabled")
		return nil, nil
	}

	loc, err := s.settings.Location()
	if err != nil {
		return nil, err
	}
	y, m, d := s.now().In(loc).Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	offset := (int(today.Weekday()) + 6) % 7
	from := today.AddDate(0, 0, -offset-7)
	to := from.AddDate(0, 0, 6)

	users, err := s.users.ListEnabled()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	entries, _, err := s.hours.List(repository.WorkHoursFilter{StartDate: &from, EndDate: &to})
	if err != nil {
		return nil, fmt.Errorf("failed to load the week's entries: %w", err)
	}
	sums := make(map[uint64]decimal.Decimal, len(users))
	for _, e := range entries {
		sums[e.UserID] = sums[e.UserID].Add(e.HoursWorked)
	}

	totals := make([]WeeklyTotal, 0, len(users))
	grand := decimal.Zero
	for _, u := range users {
		t := WeeklyTotal{User: u, Hours: sums[u.ID]}
		totals = append(totals, t)
		grand = grand.Add(t.Hours)
		s.log.Info().
			Uint64("user_id", u.ID).
			Str("operator", u.DisplayName()).
			Str("hours", t.Hours.String()).
			Msg("Weekly hours")
	}
	s.log.Info().
		Str("from", from.Format(constants.DateLayout)).
		Str("to", to.Format(constants.DateLayout)).
		Str("hours", grand.String()).
		Int("users", len(users)).
		Msg("Weekly report finished")
	return totals, nil
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
