package models

import "time"

type JobOrderStatus string

const (
	JobOrderActive    JobOrderStatus = "active"
	JobOrderCompleted JobOrderStatus = "completed"
	JobOrderSuspended JobOrderStatus = "suspended"
)

func (s JobOrderStatus) Valid() bool {
	switch s {
	case JobOrderActive, JobOrderCompleted, JobOrderSuspended:
		return true
	}
	return false
}

type JobOrder struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	JobNumber   string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"job_number"`
	JobName     string         `gorm:"type:varchar(255);not null" json:"job_name"`
	Description string         `gorm:"type:text" json:"description"`
	Status      JobOrderStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
