package models

import (
	"math"
	"time"
)

type EquipmentType string

const (
	EquipmentMagneticYoke EquipmentType = "magnetic_yoke"
	EquipmentUTInstrument EquipmentType = "ut_instrument"
	EquipmentUTProbe      EquipmentType = "ut_probe"
	EquipmentOther        EquipmentType = "other"
)

func (t EquipmentType) Valid() bool {
	switch t {
	case EquipmentMagneticYoke, EquipmentUTInstrument, EquipmentUTProbe, EquipmentOther:
		return true
	}
	return false
}

// RequiresCalibration is false for probes, which have no calibration cycle.
func (t EquipmentType) RequiresCalibration() bool {
	return t != EquipmentUTProbe
}

type EquipmentStatus string

const (
	EquipmentActive      EquipmentStatus = "active"
	EquipmentMaintenance EquipmentStatus = "maintenance"
	EquipmentRetired     EquipmentStatus = "retired"
)

func (s EquipmentStatus) Valid() bool {
	switch s {
	case EquipmentActive, EquipmentMaintenance, EquipmentRetired:
		return true
	}
	return false
}

type Equipment struct {
	ID                     uint64          `gorm:"primarykey" json:"id"`
	EquipmentType          EquipmentType   `gorm:"type:varchar(30);not null" json:"equipment_type"`
	Brand                  string          `gorm:"type:varchar(100);not null" json:"brand"`
	Model                  string          `gorm:"type:varchar(100)" json:"model"`
	InternalSerialNumber   string          `gorm:"type:varchar(100);not null" json:"internal_serial_number"`
	SerialNumber           string          `gorm:"type:varchar(100)" json:"serial_number"`
	CalibrationExpiry      *time.Time      `gorm:"type:date" json:"calibration_expiry"`
	AssignedOperatorID     *uint64         `gorm:"index" json:"assigned_operator_id"`
	Status                 EquipmentStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CalibrationCertificate string          `gorm:"type:varchar(255)" json:"calibration_certificate"`
	EquipmentPhoto         string          `gorm:"type:varchar(255)" json:"equipment_photo"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`

	// Relations
	AssignedOperator *User `gorm:"foreignKey:AssignedOperatorID;constraint:OnDelete:SET NULL" json:"assigned_operator,omitempty"`
}

// TableName keeps the singular table name used by the reports.
func (Equipment) TableName() string {
	return "equipment"
}

// DaysUntil returns the whole days from now until t, rounded up.
func DaysUntil(now, t time.Time) int {
	return int(math.Ceil(t.Sub(now).Hours() / 24))
}

// CalibrationExpiringSoon is true when calibration expires within the warning
// window, including already expired instruments.
func (e Equipment) CalibrationExpiringSoon(now time.Time, warningDays int) bool {
	if !e.EquipmentType.RequiresCalibration() || e.CalibrationExpiry == nil {
		return false
	}
	return DaysUntil(now, *e.CalibrationExpiry) <= warningDays
}
