package models

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ActivityType string

const (
	ActivityNDEMTPT       ActivityType = "NDE-MT/PT"
	ActivityNDEUT         ActivityType = "NDE-UT"
	ActivityRepairNDEMTPT ActivityType = "RIP.NDE - MT/PT"
	ActivityRepairNDEUT   ActivityType = "RIP.NDE - UT"
	ActivityInspectionWI  ActivityType = "ISPEZIONE WI"
	ActivityRepairInspWI  ActivityType = "RIP.ISPEZIONE WI"
)

// ActivityTypes lists the closed set of activity categories.
var ActivityTypes = []ActivityType{
	ActivityNDEMTPT,
	ActivityNDEUT,
	ActivityRepairNDEMTPT,
	ActivityRepairNDEUT,
	ActivityInspectionWI,
	ActivityRepairInspWI,
}

func (a ActivityType) Valid() bool {
	for _, t := range ActivityTypes {
		if a == t {
			return true
		}
	}
	return false
}

// OtherModule is the bucket for entries whose job name carries no module token.
const OtherModule = "Other"

var moduleToken = regexp.MustCompile(`(?i)MOD\s*(\d+)`)

// ParseModule extracts "MOD <digits>" from a job name, or returns OtherModule.
func ParseModule(jobName string) string {
	m := moduleToken.FindStringSubmatch(jobName)
	if m == nil {
		return OtherModule
	}
	return "MOD " + m[1]
}

// StripModule removes every module token from a job name.
func StripModule(jobName string) string {
	return moduleToken.ReplaceAllString(jobName, "")
}

type WorkHourEntry struct {
	ID            uint64          `gorm:"primarykey" json:"id"`
	UserID        uint64          `gorm:"not null;index" json:"user_id"`
	OperatorName  string          `gorm:"type:varchar(255);not null" json:"operator_name"`
	WorkDate      time.Time       `gorm:"type:date;not null;index" json:"work_date"`
	JobNumber     string          `gorm:"type:varchar(100);not null;index" json:"job_number"`
	JobName       string          `gorm:"type:varchar(255);not null" json:"job_name"`
	ModuleNumber  string          `gorm:"type:varchar(50)" json:"module_number"`
	ActivityType  ActivityType    `gorm:"type:varchar(50);not null" json:"activity_type"`
	RepairCompany string          `gorm:"type:varchar(255)" json:"repair_company"`
	HoursWorked   decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"hours_worked"`
	Notes         string          `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}

// BeforeSave derives the module number from the job name once, at write time.
func (e *WorkHourEntry) BeforeSave(tx *gorm.DB) error {
	e.ModuleNumber = ParseModule(e.JobName)
	return nil
}

// Module returns the stored module number, parsing the job name for rows written
// before the column existed.
func (e WorkHourEntry) Module() string {
	if e.ModuleNumber != "" {
		return e.ModuleNumber
	}
	return ParseModule(e.JobName)
}
