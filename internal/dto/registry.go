package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/yukikurage/ndt-worklog/internal/constants"
	"github.com/yukikurage/ndt-worklog/internal/models"
)

// JobOrderDTO represents a job order in API responses
type JobOrderDTO struct {
	ID          uint64                `json:"id"`
	JobNumber   string                `json:"job_number"`
	JobName     string                `json:"job_name"`
	Description string                `json:"description"`
	Status      models.JobOrderStatus `json:"status"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

type CreateJobOrderRequest struct {
	JobNumber   string                `json:"job_number" binding:"required,max=100"`
	JobName     string                `json:"job_name" binding:"required,max=255"`
	Description string                `json:"description"`
	Status      models.JobOrderStatus `json:"status" binding:"omitempty,oneof=active completed suspended"`
}

type UpdateJobOrderRequest struct {
	JobName     *string                `json:"job_name" binding:"omitempty,max=255"`
	Description *string                `json:"description"`
	Status      *models.JobOrderStatus `json:"status" binding:"omitempty,oneof=active completed suspended"`
}

func ToJobOrderDTO(o models.JobOrder) JobOrderDTO {
	return JobOrderDTO{
		ID:          o.ID,
		JobNumber:   o.JobNumber,
		JobName:     o.JobName,
		Description: o.Description,
		Status:      o.Status,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func ToJobOrderDTOs(orders []models.JobOrder) []JobOrderDTO {
	out := make([]JobOrderDTO, len(orders))
	for i, o := range orders {
		out[i] = ToJobOrderDTO(o)
	}
	return out
}

// EquipmentDTO represents an instrument with its calibration warning
type EquipmentDTO struct {
	ID                      uint64                 `json:"id"`
	EquipmentType           models.EquipmentType   `json:"equipment_type"`
	Brand                   string                 `json:"brand"`
	Model                   string                 `json:"model"`
	InternalSerialNumber    string                 `json:"internal_serial_number"`
	SerialNumber            string                 `json:"serial_number"`
	CalibrationExpiry       *string                `json:"calibration_expiry"`
	CalibrationExpiringSoon bool                   `json:"calibration_expiring_soon"`
	DaysUntilCalibration    *int                   `json:"days_until_calibration,omitempty"`
	AssignedOperatorID      *uint64                `json:"assigned_operator_id"`
	AssignedOperator        *UserSummaryDTO        `json:"assigned_operator,omitempty"`
	Status                  models.EquipmentStatus `json:"status"`
	CalibrationCertificate  string                 `json:"calibration_certificate,omitempty"`
	EquipmentPhoto          string                 `json:"equipment_photo,omitempty"`
	CreatedAt               time.Time              `json:"created_at"`
	UpdatedAt               time.Time              `json:"updated_at"`
}

type EquipmentRequest struct {
	EquipmentType        *models.EquipmentType   `json:"equipment_type" binding:"omitempty,oneof=magnetic_yoke ut_instrument ut_probe other"`
	Brand                *string                 `json:"brand" binding:"omitempty,max=100"`
	Model                *string                 `json:"model" binding:"omitempty,max=100"`
	InternalSerialNumber *string                 `json:"internal_serial_number" binding:"omitempty,max=100"`
	SerialNumber         *string                 `json:"serial_number" binding:"omitempty,max=100"`
	CalibrationExpiry    *string                 `json:"calibration_expiry" binding:"omitempty,datetime=2006-01-02"`
	ClearCalibration     bool                    `json:"clear_calibration"`
	AssignedOperatorID   *uint64                 `json:"assigned_operator_id"`
	ClearAssignment      bool                    `json:"clear_assignment"`
	Status               *models.EquipmentStatus `json:"status" binding:"omitempty,oneof=active maintenance retired"`
}

func ToEquipmentDTO(e models.Equipment, now time.Time) EquipmentDTO {
	dto := EquipmentDTO{
		ID:                      e.ID,
		EquipmentType:           e.EquipmentType,
		Brand:                   e.Brand,
		Model:                   e.Model,
		InternalSerialNumber:    e.InternalSerialNumber,
		SerialNumber:            e.SerialNumber,
		CalibrationExpiry:       formatDatePtr(e.CalibrationExpiry),
		CalibrationExpiringSoon: e.CalibrationExpiringSoon(now, constants.ExpiryWarningDays),
		AssignedOperatorID:      e.AssignedOperatorID,
		AssignedOperator:        ToUserSummaryDTO(e.AssignedOperator),
		Status:                  e.Status,
		CalibrationCertificate:  e.CalibrationCertificate,
		EquipmentPhoto:          e.EquipmentPhoto,
		CreatedAt:               e.CreatedAt,
		UpdatedAt:               e.UpdatedAt,
	}
	if e.CalibrationExpiry != nil && e.EquipmentType.RequiresCalibration() {
		days := models.DaysUntil(now, *e.CalibrationExpiry)
		dto.DaysUntilCalibration = &days
	}
	return dto
}

func ToEquipmentDTOs(items []models.Equipment, now time.Time) []EquipmentDTO {
	out := make([]EquipmentDTO, len(items))
	for i, e := range items {
		out[i] = ToEquipmentDTO(e, now)
	}
	return out
}

// ProcedureDTO represents a procedure revision in API responses
type ProcedureDTO struct {
	ID                uint64                 `json:"id"`
	JobNumber         string                 `json:"job_number"`
	ProcedureCode     string                 `json:"procedure_code"`
	ProcedureName     string                 `json:"procedure_name"`
	ProcedureType     models.Method          `json:"procedure_type"`
	Revision          string                 `json:"revision"`
	IsCurrentRevision bool                   `json:"is_current_revision"`
	Description       string                 `json:"description"`
	Status            models.ProcedureStatus `json:"status"`
	ApprovedBy        *UserSummaryDTO        `json:"approved_by,omitempty"`
	ApprovedAt        *time.Time             `json:"approved_at,omitempty"`
	DocumentPath      string                 `json:"document_path,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

type ProcedureRequest struct {
	JobNumber         *string                 `json:"job_number" binding:"omitempty,max=100"`
	ProcedureCode     *string                 `json:"procedure_code" binding:"omitempty,max=100"`
	ProcedureName     *string                 `json:"procedure_name" binding:"omitempty,max=255"`
	ProcedureType     *models.Method          `json:"procedure_type" binding:"omitempty,oneof=UT MT VT PT RT ET LT"`
	Revision          *string                 `json:"revision" binding:"omitempty,max=50"`
	IsCurrentRevision *bool                   `json:"is_current_revision"`
	Description       *string                 `json:"description"`
	Status            *models.ProcedureStatus `json:"status" binding:"omitempty,oneof=draft approved superseded"`
}

func ToProcedureDTO(p models.Procedure) ProcedureDTO {
	return ProcedureDTO{
		ID:                p.ID,
		JobNumber:         p.JobNumber,
		ProcedureCode:     p.ProcedureCode,
		ProcedureName:     p.ProcedureName,
		ProcedureType:     p.ProcedureType,
		Revision:          p.Revision,
		IsCurrentRevision: p.IsCurrentRevision,
		Description:       p.Description,
		Status:            p.Status,
		ApprovedBy:        ToUserSummaryDTO(p.ApprovedBy),
		ApprovedAt:        p.ApprovedAt,
		DocumentPath:      p.DocumentPath,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func ToProcedureDTOs(procedures []models.Procedure) []ProcedureDTO {
	out := make([]ProcedureDTO, len(procedures))
	for i, p := range procedures {
		out[i] = ToProcedureDTO(p)
	}
	return out
}

// QualificationDTO carries the stored status and the status in effect today
type QualificationDTO struct {
	ID                  uint64                     `json:"id"`
	OperatorID          uint64                     `json:"operator_id"`
	QualificationType   models.Method              `json:"qualification_type"`
	Level               models.QualificationLevel  `json:"level"`
	CertificationNumber string                     `json:"certification_number"`
	IssuingBody         string                     `json:"issuing_body"`
	IssueDate           string                     `json:"issue_date"`
	ExpiryDate          string                     `json:"expiry_date"`
	Status              models.QualificationStatus `json:"status"`
	EffectiveStatus     models.QualificationStatus `json:"effective_status"`
	ExpiringSoon        bool                       `json:"expiring_soon"`
	DaysUntilExpiry     int                        `json:"days_until_expiry"`
	DocumentPath        string                     `json:"document_path,omitempty"`
	Notes               string                     `json:"notes"`
	CreatedAt           time.Time                  `json:"created_at"`
	UpdatedAt           time.Time                  `json:"updated_at"`
}

type QualificationRequest struct {
	OperatorID          *uint64                     `json:"operator_id"`
	QualificationType   *models.Method              `json:"qualification_type" binding:"omitempty,oneof=UT MT VT PT RT ET LT"`
	Level               *models.QualificationLevel  `json:"level" binding:"omitempty,oneof='Level 1' 'Level 2' 'Level 3'"`
	CertificationNumber *string                     `json:"certification_number" binding:"omitempty,max=100"`
	IssuingBody         *string                     `json:"issuing_body" binding:"omitempty,max=255"`
	IssueDate           *string                     `json:"issue_date" binding:"omitempty,datetime=2006-01-02"`
	ExpiryDate          *string                     `json:"expiry_date" binding:"omitempty,datetime=2006-01-02"`
	Status              *models.QualificationStatus `json:"status" binding:"omitempty,oneof=active expired suspended"`
	Notes               *string                     `json:"notes"`
}

func ToQualificationDTO(q models.Qualification, now time.Time) QualificationDTO {
	return QualificationDTO{
		ID:                  q.ID,
		OperatorID:          q.OperatorID,
		QualificationType:   q.QualificationType,
		Level:               q.Level,
		CertificationNumber: q.CertificationNumber,
		IssuingBody:         q.IssuingBody,
		IssueDate:           formatDate(q.IssueDate),
		ExpiryDate:          formatDate(q.ExpiryDate),
		Status:              q.Status,
		EffectiveStatus:     q.EffectiveStatus(now),
		ExpiringSoon:        q.ExpiringSoon(now, constants.ExpiryWarningDays),
		DaysUntilExpiry:     models.DaysUntil(now, q.ExpiryDate),
		DocumentPath:        q.DocumentPath,
		Notes:               q.Notes,
		CreatedAt:           q.CreatedAt,
		UpdatedAt:           q.UpdatedAt,
	}
}

func ToQualificationDTOs(items []models.Qualification, now time.Time) []QualificationDTO {
	out := make([]QualificationDTO, len(items))
	for i, q := range items {
		out[i] = ToQualificationDTO(q, now)
	}
	return out
}

// SettingsDTO represents the runtime settings
type SettingsDTO struct {
	Timezone       string          `json:"timezone"`
	StandardHours  decimal.Decimal `json:"standard_hours"`
	DailyReminders bool            `json:"daily_reminders"`
	WeeklyReports  bool            `json:"weekly_reports"`
}

type UpdateSettingsRequest struct {
	Timezone       *string          `json:"timezone"`
	StandardHours  *decimal.Decimal `json:"standard_hours"`
	DailyReminders *bool            `json:"daily_reminders"`
	WeeklyReports  *bool            `json:"weekly_reports"`
}

func ToSettingsDTO(s models.AppSettings) SettingsDTO {
	return SettingsDTO{
		Timezone:       s.Timezone,
		StandardHours:  s.StandardHours,
		DailyReminders: s.DailyReminders,
		WeeklyReports:  s.WeeklyReports,
	}
}
