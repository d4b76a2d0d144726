package models

import "time"

type QualificationLevel string

const (
	Level1 QualificationLevel = "Level 1"
	Level2 QualificationLevel = "Level 2"
	Level3 QualificationLevel = "Level 3"
)

func (l QualificationLevel) Valid() bool {
	switch l {
	case Level1, Level2, Level3:
		return true
	}
	return false
}

type QualificationStatus string

const (
	QualificationActive    QualificationStatus = "active"
	QualificationExpired   QualificationStatus = "expired"
	QualificationSuspended QualificationStatus = "suspended"
)

func (s QualificationStatus) Valid() bool {
	switch s {
	case QualificationActive, QualificationExpired, QualificationSuspended:
		return true
	}
	return false
}

type Qualification struct {
	ID                  uint64              `gorm:"primarykey" json:"id"`
	OperatorID          uint64              `gorm:"not null;index" json:"operator_id"`
	QualificationType   Method              `gorm:"type:varchar(5);not null" json:"qualification_type"`
	Level               QualificationLevel  `gorm:"type:varchar(20);not null" json:"level"`
	CertificationNumber string              `gorm:"type:varchar(100)" json:"certification_number"`
	IssuingBody         string              `gorm:"type:varchar(255);not null" json:"issuing_body"`
	IssueDate           time.Time           `gorm:"type:date;not null" json:"issue_date"`
	ExpiryDate          time.Time           `gorm:"type:date;not null" json:"expiry_date"`
	Status              QualificationStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	DocumentPath        string              `gorm:"type:varchar(255)" json:"document_path"`
	Notes               string              `gorm:"type:text" json:"notes"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`

	// Relations
	Operator User `gorm:"foreignKey:OperatorID;constraint:OnDelete:CASCADE" json:"-"`
}

// EffectiveStatus applies expiry on read. Suspension takes precedence.
func (q Qualification) EffectiveStatus(now time.Time) QualificationStatus {
	if q.Status == QualificationSuspended {
		return QualificationSuspended
	}
	if now.After(q.ExpiryDate) {
		return QualificationExpired
	}
	return q.Status
}

// ExpiringSoon is true for qualifications still valid but expiring within warningDays.
func (q Qualification) ExpiringSoon(now time.Time, warningDays int) bool {
	days := DaysUntil(now, q.ExpiryDate)
	return days > 0 && days <= warningDays
}
