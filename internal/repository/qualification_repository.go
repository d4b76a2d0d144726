package repository

import (
	"time"

	"github.com/yukikurage/ndt-worklog/internal/models"
	"gorm.io/gorm"
)

// GormQualificationRepository is a GORM implementation of QualificationRepository
type GormQualificationRepository struct {
	db *gorm.DB
}

// NewQualificationRepository creates a new QualificationRepository
func NewQualificationRepository(db *gorm.DB) QualificationRepository {
	return &GormQualificationRepository{db: db}
}

func (r *GormQualificationRepository) Create(q *models.Qualification) error {
	return r.db.Omit("Operator").Create(q).Error
}

func (r *GormQualificationRepository) FindByID(id uint64) (*models.Qualification, error) {
	var q models.Qualification
	if err := r.db.First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *GormQualificationRepository) List(filter QualificationFilter) ([]models.Qualification, error) {
	var qualifications []models.Qualification
	query := r.db.Model(&models.Qualification{})

	if filter.OperatorID != nil {
		query = query.Where("operator_id = ?", *filter.OperatorID)
	}
	if filter.QualificationType != nil {
		query = query.Where("qualification_type = ?", *filter.QualificationType)
	}

	if err := query.Order("expiry_date ASC, id ASC").Find(&qualifications).Error; err != nil {
		return nil, err
	}
	return qualifications, nil
}

func (r *GormQualificationRepository) Update(q *models.Qualification) error {
	return r.db.Omit("Operator").Save(q).Error
}

func (r *GormQualificationRepository) Delete(id uint64) error {
	result := r.db.Delete(&models.Qualification{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormQualificationRepository) ListExpiringBefore(t time.Time) ([]models.Qualification, error) {
	var qualifications []models.Qualification
	err := r.db.Preload("Operator").
		Where("expiry_date < ? AND status <> ?", t, models.QualificationSuspended).
		Order("expiry_date ASC").
		Find(&qualifications).Error
	return qualifications, err
}
