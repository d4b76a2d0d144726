package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/yukikurage/ndt-worklog/internal/models"
	"github.com/yukikurage/ndt-worklog/internal/utils"
)

// WorkHourEntryDTO represents a work-hour entry in API responses
type WorkHourEntryDTO struct {
	ID            uint64              `json:"id"`
	UserID        uint64              `json:"user_id"`
	OperatorName  string              `json:"operator_name"`
	WorkDate      string              `json:"work_date"`
	JobNumber     string              `json:"job_number"`
	JobName       string              `json:"job_name"`
	ModuleNumber  string              `json:"module_number"`
	ActivityType  models.ActivityType `json:"activity_type"`
	RepairCompany string              `json:"repair_company"`
	HoursWorked   decimal.Decimal     `json:"hours_worked"`
	Notes         string              `json:"notes"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// WorkHourListResponse represents a paginated list of entries
type WorkHourListResponse struct {
	Entries    []WorkHourEntryDTO       `json:"entries"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// CreateWorkHoursRequest is the body of POST /work-hours. Hours are checked
// by the service.
type CreateWorkHoursRequest struct {
	WorkDate      string              `json:"work_date" binding:"required,datetime=2006-01-02"`
	JobNumber     string              `json:"job_number" binding:"required,max=100"`
	JobName       string              `json:"job_name" binding:"max=255"`
	ActivityType  models.ActivityType `json:"activity_type" binding:"required"`
	RepairCompany string              `json:"repair_company" binding:"max=255"`
	HoursWorked   decimal.Decimal     `json:"hours_worked"`
	Notes         string              `json:"notes"`
}

// UpdateWorkHoursRequest is the body of PUT /work-hours/:id
type UpdateWorkHoursRequest struct {
	WorkDate      *string              `json:"work_date" binding:"omitempty,datetime=2006-01-02"`
	JobNumber     *string              `json:"job_number" binding:"omitempty,max=100"`
	JobName       *string              `json:"job_name" binding:"omitempty,max=255"`
	ActivityType  *models.ActivityType `json:"activity_type"`
	RepairCompany *string              `json:"repair_company" binding:"omitempty,max=255"`
	HoursWorked   *decimal.Decimal     `json:"hours_worked"`
	Notes         *string              `json:"notes"`
}

// WorkHoursQuery holds the list, summary and export filters
type WorkHoursQuery struct {
	UserID       *uint64 `form:"user_id"`
	StartDate    string  `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate      string  `form:"end_date" binding:"omitempty,datetime=2006-01-02"`
	ActivityType string  `form:"activity_type"`
	JobNumber    string  `form:"job_number"`
}

// DraftRequest is the body of POST /work-hours/draft
type DraftRequest struct {
	Text string `json:"text" binding:"required,max=5000"`
}

// ToWorkHourEntryDTO converts a WorkHourEntry model to WorkHourEntryDTO
func ToWorkHourEntryDTO(e models.WorkHourEntry) WorkHourEntryDTO {
	return WorkHourEntryDTO{
		ID:            e.ID,
		UserID:        e.UserID,
		OperatorName:  e.OperatorName,
		WorkDate:      formatDate(e.WorkDate),
		JobNumber:     e.JobNumber,
		JobName:       e.JobName,
		ModuleNumber:  e.Module(),
		ActivityType:  e.ActivityType,
		RepairCompany: e.RepairCompany,
		HoursWorked:   e.HoursWorked,
		Notes:         e.Notes,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// ToWorkHourEntryDTOs converts a slice of entries
func ToWorkHourEntryDTOs(entries []models.WorkHourEntry) []WorkHourEntryDTO {
	out := make([]WorkHourEntryDTO, len(entries))
	for i, e := range entries {
		out[i] = ToWorkHourEntryDTO(e)
	}
	return out
}
