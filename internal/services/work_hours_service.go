package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yukikurage/ndt-worklog/internal/constants"
	"github.com/yukikurage/ndt-worklog/internal/export"
	"github.com/yukikurage/ndt-worklog/internal/hours"
	"github.com/yukikurage/ndt-worklog/internal/metrics"
	"github.com/yukikurage/ndt-worklog/internal/models"
	"github.com/yukikurage/ndt-worklog/internal/policy"
	"github.com/yukikurage/ndt-worklog/internal/repository"
	"gorm.io/gorm"
)

// WorkHoursService handles logging, listing and reporting work hours.
type WorkHoursService struct {
	hoursRepo    repository.WorkHourRepository
	userRepo     repository.UserRepository
	jobOrderRepo repository.JobOrderRepository
	settings     *SettingsService
	aiService    *AIService
	metrics      *metrics.Metrics
	now          func() time.Time
}

// NewWorkHoursService creates a new WorkHoursService
func NewWorkHoursService(
	hoursRepo repository.WorkHourRepository,
	userRepo repository.UserRepository,
	jobOrderRepo repository.JobOrderRepository,
	settings *SettingsService,
	aiService *AIService,
	m *metrics.Metrics,
) *WorkHoursService {
	return &WorkHoursService{
		hoursRepo:    hoursRepo,
		userRepo:     userRepo,
		jobOrderRepo: jobOrderRepo,
		settings:     settings,
		aiService:    aiService,
		metrics:      m,
		now:          time.Now,
	}
}

// CreateWorkHoursInput represents input for logging hours
type CreateWorkHoursInput struct {
	WorkDate      time.Time
	JobNumber     string
	JobName       string
	ActivityType  models.ActivityType
	RepairCompany string
	HoursWorked   decimal.Decimal
	Notes         string
}

// UpdateWorkHoursInput represents a partial update of an entry
type UpdateWorkHoursInput struct {
	WorkDate      *time.Time
	JobNumber     *string
	JobName       *string
	ActivityType  *models.ActivityType
	RepairCompany *string
	HoursWorked   *decimal.Decimal
	Notes         *string
}

// ListWorkHoursInput represents filters for listing entries. UserID is only
// honoured for roles that may read everybody's hours.
type ListWorkHoursInput struct {
	UserID       *uint64
	StartDate    *time.Time
	EndDate      *time.Time
	ActivityType *models.ActivityType
	JobNumber    string
	Page         int
	PageSize     int
}

// TeamStats summarises the whole team for the current month.
type TeamStats struct {
	TotalMembers int64           `json:"total_members"`
	ActiveJobs   int64           `json:"active_jobs"`
	TotalHours   decimal.Decimal `json:"total_hours"`
}

// Create logs hours for the actor, snapshotting their display name.
func (s *WorkHoursService) Create(actor policy.Actor, input CreateWorkHoursInput) (*models.WorkHourEntry, error) {
	user, err := s.userRepo.FindByID(actor.ID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound, "find user")
	}

	entry := &models.WorkHourEntry{
		UserID:        user.ID,
		OperatorName:  user.DisplayName(),
		WorkDate:      civilDate(input.WorkDate),
		JobNumber:     strings.TrimSpace(input.JobNumber),
		JobName:       strings.TrimSpace(input.JobName),
		ActivityType:  input.ActivityType,
		RepairCompany: strings.TrimSpace(input.RepairCompany),
		HoursWorked:   input.HoursWorked,
		Notes:         input.Notes,
	}
	if err := s.fillJobName(entry); err != nil {
		return nil, err
	}
	if err := validateEntry(entry); err != nil {
		return nil, err
	}

	if err := s.hoursRepo.Create(entry); err != nil {
		return nil, fmt.Errorf("failed to create work hours: %w", err)
	}
	s.metrics.EntryCreated()
	return entry, nil
}

// Get returns an entry the actor may read. Entries the actor may not read are
// reported as missing.
func (s *WorkHoursService) Get(actor policy.Actor, id uint64) (*models.WorkHourEntry, error) {
	entry, err := s.hoursRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrEntryNotFound, "find work hours")
	}
	if !policy.Authorize(actor, policy.ReadHours, &policy.Target{OwnerID: entry.UserID}) {
		return nil, ErrEntryNotFound
	}
	return entry, nil
}

// Update applies a partial update. The operator name snapshot is kept.
func (s *WorkHoursService) Update(actor policy.Actor, id uint64, input UpdateWorkHoursInput) (*models.WorkHourEntry, error) {
	entry, err := s.Get(actor, id)
	if err != nil {
		return nil, err
	}
	if !policy.Authorize(actor, policy.EditHours, &policy.Target{OwnerID: entry.UserID}) {
		return nil, ErrForbidden
	}

	if input.WorkDate != nil {
		entry.WorkDate = civilDate(*input.WorkDate)
	}
	if input.JobNumber != nil {
		entry.JobNumber = strings.TrimSpace(*input.JobNumber)
	}
	if input.JobName != nil {
		entry.JobName = strings.TrimSpace(*input.JobName)
	}
	if input.ActivityType != nil {
		entry.ActivityType = *input.ActivityType
	}
	if input.RepairCompany != nil {
		entry.RepairCompany = strings.TrimSpace(*input.RepairCompany)
	}
	if input.HoursWorked != nil {
		entry.HoursWorked = *input.HoursWorked
	}
	if input.Notes != nil {
		entry.Notes = *input.Notes
	}
	if err := s.fillJobName(entry); err != nil {
		return nil, err
	}
	if err := validateEntry(entry); err != nil {
		return nil, err
	}

	if err := s.hoursRepo.Update(entry); err != nil {
		return nil, fmt.Errorf("failed to update work hours: %w", err)
	}
	return entry, nil
}

// Delete removes an entry. Team leaders may edit but not delete others' hours.
func (s *WorkHoursService) Delete(actor policy.Actor, id uint64) error {
	entry, err := s.Get(actor, id)
	if err != nil {
		return err
	}
	if !policy.Authorize(actor, policy.DeleteHours, &policy.Target{OwnerID: entry.UserID}) {
		return ErrForbidden
	}

	if err := s.hoursRepo.Delete(id); err != nil {
		return notFound(err, ErrEntryNotFound, "delete work hours")
	}
	return nil
}

// List returns the entries visible to the actor. Operators always see only
// their own entries.
func (s *WorkHoursService) List(actor policy.Actor, input ListWorkHoursInput) ([]models.WorkHourEntry, int64, error) {
	filter, err := s.scopedFilter(actor, policy.ReadHours, input)
	if err != nil {
		return nil, 0, err
	}

	entries, total, err := s.hoursRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list work hours: %w", err)
	}
	return entries, total, nil
}

// Summary groups every visible entry matching the filters by job, module and
// activity type. Pagination is ignored.
func (s *WorkHoursService) Summary(actor policy.Actor, input ListWorkHoursInput) (hours.Summary, error) {
	input.Page, input.PageSize = 0, 0
	entries, _, err := s.List(actor, input)
	if err != nil {
		return hours.Summary{}, err
	}
	return hours.BuildHoursSummary(entries), nil
}

// ExportCSV renders the visible entries matching the filters as CSV.
func (s *WorkHoursService) ExportCSV(actor policy.Actor, input ListWorkHoursInput) ([]byte, error) {
	input.Page, input.PageSize = 0, 0
	filter, err := s.scopedFilter(actor, policy.ExportHours, input)
	if err != nil {
		return nil, err
	}

	entries, _, err := s.hoursRepo.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list work hours: %w", err)
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, entries); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}

	scope := "all"
	if filter.UserID != nil {
		scope = "own"
	}
	s.metrics.ExportGenerated(scope)
	return buf.Bytes(), nil
}

// ExportFilename names an export generated now in the configured timezone.
func (s *WorkHoursService) ExportFilename() string {
	loc, err := s.settings.Location()
	if err != nil {
		loc = time.UTC
	}
	return export.Filename(s.now().In(loc))
}

// UserStats computes period totals and overtime for userID, defaulting to the
// actor. Reading someone else's statistics needs read access to their hours.
func (s *WorkHoursService) UserStats(actor policy.Actor, userID *uint64) (hours.UserStats, error) {
	target := actor.ID
	if userID != nil {
		target = *userID
	}
	if !policy.Authorize(actor, policy.ReadHours, &policy.Target{OwnerID: target}) {
		return hours.UserStats{}, ErrForbidden
	}

	opts, err := s.settings.StatsOptions()
	if err != nil {
		return hours.UserStats{}, err
	}

	now := s.now()
	windows := hours.StatsWindows(now, opts.Location)
	entries, err := s.hoursRepo.ListSince(target, windows.Earliest())
	if err != nil {
		return hours.UserStats{}, fmt.Errorf("failed to load work hours: %w", err)
	}

	return hours.ComputeUserStats(entries, now, opts), nil
}

// TeamStats reports head count, active job orders and this month's hours.
func (s *WorkHoursService) TeamStats(actor policy.Actor) (*TeamStats, error) {
	if !policy.Authorize(actor, policy.ViewTeamStats, nil) {
		return nil, ErrForbidden
	}

	loc, err := s.settings.Location()
	if err != nil {
		return nil, err
	}
	windows := hours.StatsWindows(s.now(), loc)

	members, err := s.userRepo.Count(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	active := models.JobOrderActive
	jobs, err := s.jobOrderRepo.Count(&active)
	if err != nil {
		return nil, fmt.Errorf("failed to count job orders: %w", err)
	}
	total, err := s.hoursRepo.SumHoursSince(windows.MonthStart)
	if err != nil {
		return nil, fmt.Errorf("failed to sum work hours: %w", err)
	}

	return &TeamStats{TotalMembers: members, ActiveJobs: jobs, TotalHours: total}, nil
}

// DraftFromText proposes entries from a free-text work log without storing them.
func (s *WorkHoursService) DraftFromText(ctx context.Context, text string) ([]DraftEntry, error) {
	if strings.TrimSpace(text) == "" {
		return nil, invalidField("text", "is required")
	}
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}

	loc, err := s.settings.Location()
	if err != nil {
		return nil, err
	}
	return s.aiService.DraftEntriesFromText(ctx, text, s.now().In(loc))
}

func (s *WorkHoursService) scopedFilter(actor policy.Actor, action policy.Action, input ListWorkHoursInput) (repository.WorkHoursFilter, error) {
	filter := repository.WorkHoursFilter{
		UserID:       input.UserID,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		ActivityType: input.ActivityType,
		JobNumber:    strings.TrimSpace(input.JobNumber),
		Page:         input.Page,
		PageSize:     input.PageSize,
	}
	if !policy.CanActOnOthers(actor.Role, action) {
		own := actor.ID
		filter.UserID = &own
	}
	if input.ActivityType != nil && !input.ActivityType.Valid() {
		return filter, invalidField("activity_type", "is not a known activity type")
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return filter, invalidField("end_date", "must not be before start_date")
	}
	return filter, nil
}

// fillJobName takes the job name from the registry when it was left empty.
func (s *WorkHoursService) fillJobName(entry *models.WorkHourEntry) error {
	if entry.JobName != "" || entry.JobNumber == "" || s.jobOrderRepo == nil {
		return nil
	}
	order, err := s.jobOrderRepo.FindByNumber(entry.JobNumber)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up job order: %w", err)
	}
	entry.JobName = order.JobName
	return nil
}

func validateEntry(entry *models.WorkHourEntry) error {
	var v fieldChecks
	v.check(!entry.WorkDate.IsZero(), "work_date", "is required")
	v.check(entry.JobNumber != "", "job_number", "is required")
	v.check(entry.JobName != "", "job_name", "is required")
	v.check(entry.ActivityType.Valid(), "activity_type", "is not a known activity type")
	v.check(entry.HoursWorked.IsPositive() && entry.HoursWorked.LessThanOrEqual(decimal.NewFromInt(constants.MaxHoursPerEntry)),
		"hours_worked", fmt.Sprintf("must be greater than 0 and at most %d", constants.MaxHoursPerEntry))
	v.check(entry.HoursWorked.Equal(entry.HoursWorked.Round(2)), "hours_worked", "must have at most two decimal places")
	return v.err()
}

// civilDate drops the time of day, keeping the calendar date as given.
func civilDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
