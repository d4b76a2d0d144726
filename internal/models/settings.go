package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AppSettingsID is the primary key of the single settings row.
const AppSettingsID = 1

type AppSettings struct {
	ID             uint64          `gorm:"primarykey" json:"-"`
	Timezone       string          `gorm:"type:varchar(64);not null" json:"timezone"`
	StandardHours  decimal.Decimal `gorm:"type:decimal(4,2);not null" json:"standard_hours"`
	DailyReminders bool            `gorm:"not null;default:false" json:"daily_reminders"`
	WeeklyReports  bool            `gorm:"not null;default:false" json:"weekly_reports"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
