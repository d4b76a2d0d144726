package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yukikurage/ndt-worklog/internal/constants"
	"github.com/yukikurage/ndt-worklog/internal/hours"
	"github.com/yukikurage/ndt-worklog/internal/models"
	"github.com/yukikurage/ndt-worklog/internal/policy"
	"github.com/yukikurage/ndt-worklog/internal/repository"
	"gorm.io/gorm"
)

// SettingsService exposes the runtime settings. Until an admin saves them the
// configured defaults apply.
type SettingsService struct {
	repo     repository.SettingsRepository
	defaults models.AppSettings
	holidays hours.HolidayCalendar
}

// NewSettingsService creates a new SettingsService. An invalid default
// standard-hours value falls back to the built-in one.
func NewSettingsService(repo repository.SettingsRepository, timezone, standardHours string, holidays hours.HolidayCalendar) *SettingsService {
	std, err := decimal.NewFromString(standardHours)
	if err != nil || !std.IsPositive() {
		std = decimal.RequireFromString(constants.DefaultStandardHours)
	}
	if timezone == "" {
		timezone = constants.DefaultTimezone
	}
	return &SettingsService{
		repo: repo,
		defaults: models.AppSettings{
			ID:            models.AppSettingsID,
			Timezone:      timezone,
			StandardHours: std,
		},
		holidays: holidays,
	}
}

// Get returns the saved settings or the defaults.
func (s *SettingsService) Get() (*models.AppSettings, error) {
	settings, err := s.repo.Get()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		defaults := s.defaults
		return &defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

// StatsOptions builds the classification options from the current settings.
func (s *SettingsService) StatsOptions() (hours.StatsOptions, error) {
	settings, err := s.Get()
	if err != nil {
		return hours.StatsOptions{}, err
	}
	return hours.StatsOptions{
		Location:      hours.LoadLocation(settings.Timezone),
		StandardHours: settings.StandardHours,
		Holidays:      s.holidays,
	}, nil
}

// Location returns the configured timezone.
func (s *SettingsService) Location() (*time.Location, error) {
	settings, err := s.Get()
	if err != nil {
		return nil, err
	}
	return hours.LoadLocation(settings.Timezone), nil
}

// UpdateSettingsInput represents a partial settings update.
type UpdateSettingsInput struct {
	Timezone       *string
	StandardHours  *decimal.Decimal
	DailyReminders *bool
	WeeklyReports  *bool
}

// Update applies a partial update. Admin only.
func (s *SettingsService) Update(actor policy.Actor, input UpdateSettingsInput) (*models.AppSettings, error) {
	if !policy.Authorize(actor, policy.ManageSettings, nil) {
		return nil, ErrForbidden
	}

	settings, err := s.Get()
	if err != nil {
		return nil, err
	}

	var v fieldChecks
	if input.Timezone != nil {
		_, err := time.LoadLocation(*input.Timezone)
		v.check(*input.Timezone != "" && err == nil, "timezone", "must be an IANA timezone name")
		settings.Timezone = *input.Timezone
	}
	if input.StandardHours != nil {
		v.check(input.StandardHours.IsPositive() && input.StandardHours.LessThanOrEqual(decimal.NewFromInt(constants.MaxHoursPerEntry)),
			"standard_hours", fmt.Sprintf("must be greater than 0 and at most %d", constants.MaxHoursPerEntry))
		settings.StandardHours = *input.StandardHours
	}
	if input.DailyReminders != nil {
		settings.DailyReminders = *input.DailyReminders
	}
	if input.WeeklyReports != nil {
		settings.WeeklyReports = *input.WeeklyReports
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	if err := s.repo.Save(settings); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}
	return settings, nil
}
