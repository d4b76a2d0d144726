package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/yukikurage/ndt-worklog/internal/database"
	"github.com/yukikurage/ndt-worklog/internal/models"
	"github.com/yukikurage/ndt-worklog/internal/utils"
	"gorm.io/gorm"
)

// GormWorkHourRepository is a GORM implementation of WorkHourRepository
type GormWorkHourRepository struct {
	db *gorm.DB
}

// NewWorkHourRepository creates a new WorkHourRepository
func NewWorkHourRepository(db *gorm.DB) WorkHourRepository {
	return &GormWorkHourRepository{db: db}
}

func (r *GormWorkHourRepository) Create(entry *models.WorkHourEntry) error {
	return r.db.Create(entry).Error
}

func (r *GormWorkHourRepository) FindByID(id uint64) (*models.WorkHourEntry, error) {
	var entry models.WorkHourEntry
	if err := r.db.First(&entry, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// List retrieves entries with filtering, newest first
func (r *GormWorkHourRepository) List(filter WorkHoursFilter) ([]models.WorkHourEntry, int64, error) {
	var entries []models.WorkHourEntry

	query := r.db.Model(&models.WorkHourEntry{}).
		Scopes(database.DateBetween("work_date", filter.StartDate, filter.EndDate))

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.ActivityType != nil {
		query = query.Where("activity_type = ?", *filter.ActivityType)
	}
	if filter.JobNumber != "" {
		query = query.Where("job_number = ?", filter.JobNumber)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("work_date DESC, id DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.NewPaginationParams(filter.Page, filter.PageSize)))
	}

	if err := listQuery.Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// ListSince returns a user's entries dated on or after from
func (r *GormWorkHourRepository) ListSince(userID uint64, from time.Time) ([]models.WorkHourEntry, error) {
	var entries []models.WorkHourEntry
	err := r.db.Where("user_id = ?", userID).
		Scopes(database.DateBetween("work_date", &from, nil)).
		Order("work_date ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

func (r *GormWorkHourRepository) Update(entry *models.WorkHourEntry) error {
	return r.db.Save(entry).Error
}

func (r *GormWorkHourRepository) Delete(id uint64) error {
	result := r.db.Delete(&models.WorkHourEntry{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SumHoursSince totals hours in Go so the result stays exact on every driver
func (r *GormWorkHourRepository) SumHoursSince(from time.Time) (decimal.Decimal, error) {
	var hours []decimal.Decimal
	err := r.db.Model(&models.WorkHourEntry{}).
		Scopes(database.DateBetween("work_date", &from, nil)).
		Pluck("hours_worked", &hours).Error
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.Sum(decimal.Zero, hours...), nil
}

// UserIDsWithEntriesOn returns the users that logged hours on day
func (r *GormWorkHourRepository) UserIDsWithEntriesOn(day time.Time) ([]uint64, error) {
	var ids []uint64
	err := r.db.Model(&models.WorkHourEntry{}).
		Scopes(database.DateBetween("work_date", &day, &day)).
		Distinct().
		Pluck("user_id", &ids).Error
	return ids, err
}
