package repository

import (
	"github.com/yukikurage/ndt-worklog/internal/models"
	"gorm.io/gorm"
)

// GormSettingsRepository is a GORM implementation of SettingsRepository
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &GormSettingsRepository{db: db}
}

func (r *GormSettingsRepository) Get() (*models.AppSettings, error) {
	var settings models.AppSettings
	if err := r.db.First(&settings, models.AppSettingsID).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

// Save upserts the single settings row
func (r *GormSettingsRepository) Save(settings *models.AppSettings) error {
	settings.ID = models.AppSettingsID
	return r.db.Save(settings).Error
}
