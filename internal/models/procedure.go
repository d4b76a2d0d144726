package models

import "time"

// Method is an NDT inspection method.
type Method string

const (
	MethodUT Method = "UT"
	MethodMT Method = "MT"
	MethodVT Method = "VT"
	MethodPT Method = "PT"
	MethodRT Method = "RT"
	MethodET Method = "ET"
	MethodLT Method = "LT"
)

func (m Method) Valid() bool {
	switch m {
	case MethodUT, MethodMT, MethodVT, MethodPT, MethodRT, MethodET, MethodLT:
		return true
	}
	return false
}

type ProcedureStatus string

const (
	ProcedureDraft      ProcedureStatus = "draft"
	ProcedureApproved   ProcedureStatus = "approved"
	ProcedureSuperseded ProcedureStatus = "superseded"
)

func (s ProcedureStatus) Valid() bool {
	switch s {
	case ProcedureDraft, ProcedureApproved, ProcedureSuperseded:
		return true
	}
	return false
}

type Procedure struct {
	ID                uint64          `gorm:"primarykey" json:"id"`
	JobNumber         string          `gorm:"type:varchar(100);not null;index:idx_procedures_job_code" json:"job_number"`
	ProcedureCode     string          `gorm:"type:varchar(100);not null;index:idx_procedures_job_code" json:"procedure_code"`
	ProcedureName     string          `gorm:"type:varchar(255);not null" json:"procedure_name"`
	ProcedureType     Method          `gorm:"type:varchar(5);not null" json:"procedure_type"`
	Revision          string          `gorm:"type:varchar(50);not null;default:'Rev. 0'" json:"revision"`
	IsCurrentRevision bool            `gorm:"not null" json:"is_current_revision"`
	Description       string          `gorm:"type:text" json:"description"`
	Status            ProcedureStatus `gorm:"type:varchar(20);not null;default:'draft'" json:"status"`
	ApprovedByID      *uint64         `json:"approved_by_id"`
	ApprovedAt        *time.Time      `json:"approved_at"`
	DocumentPath      string          `gorm:"type:varchar(255)" json:"document_path"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	// Relations
	ApprovedBy *User `gorm:"foreignKey:ApprovedByID;constraint:OnDelete:SET NULL" json:"approved_by,omitempty"`
}
