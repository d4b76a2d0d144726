package repository

import (
	"github.com/yukikurage/ndt-worklog/internal/models"
	"gorm.io/gorm"
)

// GormProcedureRepository is a GORM implementation of ProcedureRepository
type GormProcedureRepository struct {
	db *gorm.DB
}

// NewProcedureRepository creates a new ProcedureRepository
func NewProcedureRepository(db *gorm.DB) ProcedureRepository {
	return &GormProcedureRepository{db: db}
}

// Create inserts the procedure, demoting sibling revisions when it is current
func (r *GormProcedureRepository) Create(procedure *models.Procedure) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("ApprovedBy").Create(procedure).Error; err != nil {
			return err
		}
		return demoteSiblings(tx, procedure)
	})
}

func (r *GormProcedureRepository) FindByID(id uint64) (*models.Procedure, error) {
	var procedure models.Procedure
	if err := r.db.Preload("ApprovedBy").First(&procedure, id).Error; err != nil {
		return nil, err
	}
	return &procedure, nil
}

func (r *GormProcedureRepository) List(filter ProcedureFilter) ([]models.Procedure, error) {
	var procedures []models.Procedure
	query := r.db.Model(&models.Procedure{})

	if filter.JobNumber != "" {
		query = query.Where("job_number = ?", filter.JobNumber)
	}
	if filter.ProcedureType != nil {
		query = query.Where("procedure_type = ?", *filter.ProcedureType)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CurrentOnly {
		query = query.Where("is_current_revision = ?", true)
	}

	err := query.Preload("ApprovedBy").
		Order("job_number ASC, procedure_code ASC, created_at DESC, id DESC").
		Find(&procedures).Error
	if err != nil {
		return nil, err
	}
	return procedures, nil
}

// Update saves the procedure, demoting sibling revisions when it is current
func (r *GormProcedureRepository) Update(procedure *models.Procedure) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("ApprovedBy").Save(procedure).Error; err != nil {
			return err
		}
		return demoteSiblings(tx, procedure)
	})
}

func (r *GormProcedureRepository) Delete(id uint64) error {
	result := r.db.Delete(&models.Procedure{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// demoteSiblings keeps at most one current revision per job number and
// procedure code.
func demoteSiblings(tx *gorm.DB, procedure *models.Procedure) error {
	if !procedure.IsCurrentRevision {
		return nil
	}
	return tx.Model(&models.Procedure{}).
		Where("job_number = ? AND procedure_code = ? AND id <> ? AND is_current_revision = ?",
			procedure.JobNumber, procedure.ProcedureCode, procedure.ID, true).
		Updates(map[string]interface{}{
			"is_current_revision": false,
			"status":              models.ProcedureSuperseded,
		}).Error
}
