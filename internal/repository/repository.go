package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/yukikurage/ndt-worklog/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// FindByExternalID finds a user linked to an external identity
	FindByExternalID(provider, externalID string) (*models.User, error)

	// List lists users, optionally restricted to one role
	List(role *models.Role) ([]models.User, error)

	// ListEnabled lists users whose accounts are enabled
	ListEnabled() ([]models.User, error)

	// Count counts users, optionally restricted to one role
	Count(role *models.Role) (int64, error)

	// Update saves every field of the user
	Update(user *models.User) error

	// Delete deletes a user together with the records they own
	Delete(id uint64) error
}

// WorkHourRepository defines the interface for work-hour data access
type WorkHourRepository interface {
	Create(entry *models.WorkHourEntry) error
	FindByID(id uint64) (*models.WorkHourEntry, error)

	// List retrieves entries with filtering, newest first. Pagination applies
	// only when both Page and PageSize are positive.
	List(filter WorkHoursFilter) ([]models.WorkHourEntry, int64, error)

	// ListSince returns a user's entries dated on or after from
	ListSince(userID uint64, from time.Time) ([]models.WorkHourEntry, error)

	Update(entry *models.WorkHourEntry) error
	Delete(id uint64) error

	// SumHoursSince totals the hours of every entry dated on or after from
	SumHoursSince(from time.Time) (decimal.Decimal, error)

	// UserIDsWithEntriesOn returns the users that logged hours on day
	UserIDsWithEntriesOn(day time.Time) ([]uint64, error)
}

// WorkHoursFilter holds filtering options for listing work hours
type WorkHoursFilter struct {
	UserID       *uint64
	StartDate    *time.Time
	EndDate      *time.Time
	ActivityType *models.ActivityType
	JobNumber    string
	Page         int
	PageSize     int
}

// JobOrderRepository defines the interface for job order data access
type JobOrderRepository interface {
	Create(order *models.JobOrder) error
	FindByID(id uint64) (*models.JobOrder, error)
	FindByNumber(jobNumber string) (*models.JobOrder, error)

	// List lists job orders by job number, optionally restricted to one status
	List(status *models.JobOrderStatus) ([]models.JobOrder, error)

	Count(status *models.JobOrderStatus) (int64, error)
	Update(order *models.JobOrder) error
}

// EquipmentRepository defines the interface for equipment data access
type EquipmentRepository interface {
	Create(item *models.Equipment) error
	FindByID(id uint64) (*models.Equipment, error)
	List(filter EquipmentFilter) ([]models.Equipment, error)
	Update(item *models.Equipment) error
	Delete(id uint64) error

	// ListCalibrationDueBefore lists instruments whose calibration expires before t
	ListCalibrationDueBefore(t time.Time) ([]models.Equipment, error)
}

// EquipmentFilter holds filtering options for listing equipment
type EquipmentFilter struct {
	AssignedOperatorID *uint64
	EquipmentType      *models.EquipmentType
	Status             *models.EquipmentStatus
}

// ProcedureRepository defines the interface for procedure data access.
// Writes of a current revision demote the other revisions of the same
// job number and procedure code in the same transaction.
type ProcedureRepository interface {
	Create(procedure *models.Procedure) error
	FindByID(id uint64) (*models.Procedure, error)
	List(filter ProcedureFilter) ([]models.Procedure, error)
	Update(procedure *models.Procedure) error
	Delete(id uint64) error
}

// ProcedureFilter holds filtering options for listing procedures
type ProcedureFilter struct {
	JobNumber     string
	ProcedureType *models.Method
	Status        *models.ProcedureStatus
	CurrentOnly   bool
}

// QualificationRepository defines the interface for qualification data access
type QualificationRepository interface {
	Create(q *models.Qualification) error
	FindByID(id uint64) (*models.Qualification, error)
	List(filter QualificationFilter) ([]models.Qualification, error)
	Update(q *models.Qualification) error
	Delete(id uint64) error

	// ListExpiringBefore lists qualifications that are not suspended and expire before t
	ListExpiringBefore(t time.Time) ([]models.Qualification, error)
}

// QualificationFilter holds filtering options for listing qualifications
type QualificationFilter struct {
	OperatorID        *uint64
	QualificationType *models.Method
}

// SettingsRepository stores the single application settings row
type SettingsRepository interface {
	// Get returns gorm.ErrRecordNotFound until settings are first saved
	Get() (*models.AppSettings, error)
	Save(settings *models.AppSettings) error
}
