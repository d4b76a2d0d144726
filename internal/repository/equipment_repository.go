package repository

import (
	"time"

	"github.com/yukikurage/ndt-worklog/internal/models"
	"gorm.io/gorm"
)

// GormEquipmentRepository is a GORM implementation of EquipmentRepository
type GormEquipmentRepository struct {
	db *gorm.DB
}

// NewEquipmentRepository creates a new EquipmentRepository
func NewEquipmentRepository(db *gorm.DB) EquipmentRepository {
	return &GormEquipmentRepository{db: db}
}

func (r *GormEquipmentRepository) Create(item *models.Equipment) error {
	return r.db.Create(item).Error
}

// FindByID loads the item with its assigned operator
func (r *GormEquipmentRepository) FindByID(id uint64) (*models.Equipment, error) {
	var item models.Equipment
	if err := r.db.Preload("AssignedOperator").First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormEquipmentRepository) List(filter EquipmentFilter) ([]models.Equipment, error) {
	var items []models.Equipment
	query := r.db.Model(&models.Equipment{})

	if filter.AssignedOperatorID != nil {
		query = query.Where("assigned_operator_id = ?", *filter.AssignedOperatorID)
	}
	if filter.EquipmentType != nil {
		query = query.Where("equipment_type = ?", *filter.EquipmentType)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if err := query.Preload("AssignedOperator").Order("created_at DESC, id DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Update saves the item's own columns; the preloaded operator is left untouched
func (r *GormEquipmentRepository) Update(item *models.Equipment) error {
	return r.db.Omit("AssignedOperator").Save(item).Error
}

func (r *GormEquipmentRepository) Delete(id uint64) error {
	result := r.db.Delete(&models.Equipment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListCalibrationDueBefore skips probes and retired instruments
func (r *GormEquipmentRepository) ListCalibrationDueBefore(t time.Time) ([]models.Equipment, error) {
	var items []models.Equipment
	err := r.db.Preload("AssignedOperator").
		Where("calibration_expiry IS NOT NULL AND calibration_expiry < ?", t).
		Where("equipment_type <> ? AND status <> ?", models.EquipmentUTProbe, models.EquipmentRetired).
		Order("calibration_expiry ASC").
		Find(&items).Error
	return items, err
}
