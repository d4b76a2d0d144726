package repository

import (
	"github.com/yukikurage/ndt-worklog/internal/models"
	"gorm.io/gorm"
)

// GormJobOrderRepository is a GORM implementation of JobOrderRepository
type GormJobOrderRepository struct {
	db *gorm.DB
}

// NewJobOrderRepository creates a new JobOrderRepository
func NewJobOrderRepository(db *gorm.DB) JobOrderRepository {
	return &GormJobOrderRepository{db: db}
}

func (r *GormJobOrderRepository) Create(order *models.JobOrder) error {
	return r.db.Create(order).Error
}

func (r *GormJobOrderRepository) FindByID(id uint64) (*models.JobOrder, error) {
	var order models.JobOrder
	if err := r.db.First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormJobOrderRepository) FindByNumber(jobNumber string) (*models.JobOrder, error) {
	var order models.JobOrder
	if err := r.db.Where("job_number = ?", jobNumber).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormJobOrderRepository) List(status *models.JobOrderStatus) ([]models.JobOrder, error) {
	var orders []models.JobOrder
	query := r.db.Model(&models.JobOrder{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if err := query.Order("job_number ASC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormJobOrderRepository) Count(status *models.JobOrderStatus) (int64, error) {
	var count int64
	query := r.db.Model(&models.JobOrder{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *GormJobOrderRepository) Update(order *models.JobOrder) error {
	return r.db.Save(order).Error
}
